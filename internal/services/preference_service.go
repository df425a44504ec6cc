package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/temporahq/tempora/internal/models"
	apperrors "github.com/temporahq/tempora/pkg/errors"
)

// UpsertPreferenceInput carries reminder settings for one (event, user) pair.
type UpsertPreferenceInput struct {
	LeadMinutes  int
	EmailEnabled bool
	InAppEnabled bool
}

// PreferenceService manages per-event reminder preferences.
type PreferenceService struct {
	db *gorm.DB
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(db *gorm.DB) (*PreferenceService, error) {
	if db == nil {
		return nil, errors.New("preference service: db is required")
	}
	return &PreferenceService{db: db}, nil
}

// Upsert creates or replaces the reminder preference for an event the user can
// see. The write is keyed on (event_id, user_id); updating the lead time also
// clears the fire marker so the reminder can fire again at its new offset.
func (s *PreferenceService) Upsert(ctx context.Context, eventID, userID string, input UpsertPreferenceInput) (*models.NotificationPreference, error) {
	ctx = ensureContext(ctx)

	if input.LeadMinutes < 0 {
		return nil, apperrors.NewBadRequest("lead_minutes must not be negative")
	}

	var event models.Event
	if err := s.db.WithContext(ctx).
		Preload("Attendees").
		First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("preference service: load event: %w", err)
	}
	if !eventVisibleTo(event, userID) {
		return nil, apperrors.ErrForbidden
	}

	preference := models.NotificationPreference{
		EventID:      eventID,
		UserID:       userID,
		LeadMinutes:  input.LeadMinutes,
		EmailEnabled: input.EmailEnabled,
		InAppEnabled: input.InAppEnabled,
		LastFiredAt:  nil,
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"lead_minutes":   input.LeadMinutes,
				"email_enabled":  input.EmailEnabled,
				"in_app_enabled": input.InAppEnabled,
				"last_fired_at":  nil,
			}),
		}).
		Create(&preference).Error; err != nil {
		return nil, fmt.Errorf("preference service: upsert preference: %w", err)
	}

	return s.Get(ctx, eventID, userID)
}

// Get returns the user's preference for one event.
func (s *PreferenceService) Get(ctx context.Context, eventID, userID string) (*models.NotificationPreference, error) {
	ctx = ensureContext(ctx)

	var preference models.NotificationPreference
	if err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&preference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("preference service: load preference: %w", err)
	}
	return &preference, nil
}

// Delete removes the user's preference for one event.
func (s *PreferenceService) Delete(ctx context.Context, eventID, userID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.NotificationPreference{})
	if result.Error != nil {
		return fmt.Errorf("preference service: delete preference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
