package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/temporahq/tempora/internal/models"
	"github.com/temporahq/tempora/internal/notifications"
	apperrors "github.com/temporahq/tempora/pkg/errors"
)

// EventDTO is the API-friendly representation of a calendar event.
type EventDTO struct {
	ID          string                `json:"id"`
	OwnerID     string                `json:"owner_id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Location    string                `json:"location,omitempty"`
	StartTime   time.Time             `json:"start_time"`
	EndTime     time.Time             `json:"end_time"`
	AllDay      bool                  `json:"all_day"`
	CategoryID  *string               `json:"category_id,omitempty"`
	Category    *models.EventCategory `json:"category,omitempty"`
	Attendees   []AttendeeDTO         `json:"attendees,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// CreateEventInput defines attributes required to create an event.
type CreateEventInput struct {
	OwnerID     string
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	CategoryID  *string
}

// UpdateEventInput carries optional fields for a partial event update.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
	AllDay      *bool
	CategoryID  *string
}

// ListEventsInput defines filters for querying a user's calendar.
type ListEventsInput struct {
	UserID     string
	From       *time.Time
	To         *time.Time
	CategoryID string
	Limit      int
	Offset     int
}

// EventService manages calendar events and their lifecycle.
type EventService struct {
	db  *gorm.DB
	hub *notifications.Hub
}

// NewEventService constructs an EventService. The hub may be nil, in which
// case lifecycle events are not pushed to connected clients.
func NewEventService(db *gorm.DB, hub *notifications.Hub) (*EventService, error) {
	if db == nil {
		return nil, errors.New("event service: db is required")
	}
	return &EventService{db: db, hub: hub}, nil
}

// Create persists a new event after validating its time range.
func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*EventDTO, error) {
	ctx = ensureContext(ctx)

	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return nil, errors.New("event service: owner id is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if err := validateTimeRange(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}
	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, *input.CategoryID, ownerID); err != nil {
			return nil, err
		}
	}

	event := models.Event{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		StartTime:   input.StartTime.UTC(),
		EndTime:     input.EndTime.UTC(),
		AllDay:      input.AllDay,
		CategoryID:  input.CategoryID,
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("event service: create event: %w", err)
	}

	return s.Get(ctx, event.ID, ownerID)
}

// Get loads a single event visible to the supplied user (owner or attendee).
func (s *EventService) Get(ctx context.Context, eventID, userID string) (*EventDTO, error) {
	ctx = ensureContext(ctx)

	var event models.Event
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Attendees.User").
		First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("event service: load event: %w", err)
	}

	if !eventVisibleTo(event, userID) {
		return nil, apperrors.ErrForbidden
	}

	dto := mapEvent(event)
	return &dto, nil
}

// List returns events the user owns or attends, ordered by start time.
func (s *EventService) List(ctx context.Context, input ListEventsInput) ([]EventDTO, error) {
	ctx = ensureContext(ctx)
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("event service: user id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).
		Preload("Category").
		Where("owner_id = ? OR id IN (?)", userID,
			s.db.Model(&models.EventAttendee{}).Select("event_id").Where("user_id = ?", userID))

	if input.From != nil {
		query = query.Where("end_time >= ?", input.From.UTC())
	}
	if input.To != nil {
		query = query.Where("start_time <= ?", input.To.UTC())
	}
	if categoryID := strings.TrimSpace(input.CategoryID); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var rows []models.Event
	if err := query.
		Order("start_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("event service: list events: %w", err)
	}

	items := make([]EventDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapEvent(row))
	}
	return items, nil
}

// Update applies a partial update to an event owned by the supplied user.
func (s *EventService) Update(ctx context.Context, eventID, ownerID string, input UpdateEventInput) (*EventDTO, error) {
	ctx = ensureContext(ctx)

	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("event service: load event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}

	updates := map[string]any{}
	startTime := event.StartTime
	endTime := event.EndTime

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewBadRequest("title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Location != nil {
		updates["location"] = strings.TrimSpace(*input.Location)
	}
	if input.StartTime != nil {
		startTime = input.StartTime.UTC()
		updates["start_time"] = startTime
	}
	if input.EndTime != nil {
		endTime = input.EndTime.UTC()
		updates["end_time"] = endTime
	}
	if input.AllDay != nil {
		updates["all_day"] = *input.AllDay
	}
	if input.CategoryID != nil {
		if *input.CategoryID == "" {
			updates["category_id"] = nil
		} else {
			if err := s.checkCategory(ctx, *input.CategoryID, ownerID); err != nil {
				return nil, err
			}
			updates["category_id"] = *input.CategoryID
		}
	}

	if err := validateTimeRange(startTime, endTime); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&event).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("event service: update event: %w", err)
		}
	}

	// A moved start time invalidates previous reminder fire markers so the
	// reminder can fire again at the new offset.
	if input.StartTime != nil {
		if err := s.db.WithContext(ctx).
			Model(&models.NotificationPreference{}).
			Where("event_id = ?", event.ID).
			Update("last_fired_at", nil).Error; err != nil {
			return nil, fmt.Errorf("event service: reset reminder markers: %w", err)
		}
	}

	return s.Get(ctx, event.ID, ownerID)
}

// Delete removes an event together with its attendees and reminder preferences.
func (s *EventService) Delete(ctx context.Context, eventID, ownerID string) error {
	ctx = ensureContext(ctx)

	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("event service: load event: %w", err)
	}
	if event.OwnerID != ownerID {
		return apperrors.ErrForbidden
	}

	var attendeeIDs []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.EventAttendee{}).
			Where("event_id = ?", eventID).
			Pluck("user_id", &attendeeIDs).Error; err != nil {
			return fmt.Errorf("event service: list attendees: %w", err)
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.NotificationPreference{}).Error; err != nil {
			return fmt.Errorf("event service: delete preferences: %w", err)
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.EventAttendee{}).Error; err != nil {
			return fmt.Errorf("event service: delete attendees: %w", err)
		}
		if err := tx.Delete(&models.Event{}, "id = ?", eventID).Error; err != nil {
			return fmt.Errorf("event service: delete event: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Attendees with an open client learn the event is gone right away.
	if s.hub != nil && len(attendeeIDs) > 0 {
		s.hub.BroadcastMany(attendeeIDs, notifications.Event{
			Event:   "event.cancelled",
			EventID: eventID,
		})
	}
	return nil
}

func (s *EventService) checkCategory(ctx context.Context, categoryID, ownerID string) error {
	var category models.EventCategory
	if err := s.db.WithContext(ctx).First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewBadRequest("unknown category")
		}
		return fmt.Errorf("event service: load category: %w", err)
	}
	// Seeded categories have no owner and are usable by everyone.
	if category.OwnerID != "" && category.OwnerID != ownerID {
		return apperrors.ErrForbidden
	}
	return nil
}

func validateTimeRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperrors.NewBadRequest("start_time and end_time are required")
	}
	if !start.Before(end) {
		return apperrors.NewBadRequest("start_time must precede end_time")
	}
	return nil
}

func eventVisibleTo(event models.Event, userID string) bool {
	if event.OwnerID == userID {
		return true
	}
	for _, attendee := range event.Attendees {
		if attendee.UserID == userID {
			return true
		}
	}
	return false
}

func mapEvent(event models.Event) EventDTO {
	dto := EventDTO{
		ID:          event.ID,
		OwnerID:     event.OwnerID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		AllDay:      event.AllDay,
		CategoryID:  event.CategoryID,
		Category:    event.Category,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
	for _, attendee := range event.Attendees {
		dto.Attendees = append(dto.Attendees, mapAttendee(attendee))
	}
	return dto
}
