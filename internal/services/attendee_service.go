package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/temporahq/tempora/internal/models"
	apperrors "github.com/temporahq/tempora/pkg/errors"
	"github.com/temporahq/tempora/pkg/logger"
)

// AttendeeDTO represents one invitation row for API consumers.
type AttendeeDTO struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteInput names the users and teams to invite to an event.
type InviteInput struct {
	UserIDs []string
	TeamIDs []string
}

// AttendeeService manages event invitations and responses.
type AttendeeService struct {
	db            *gorm.DB
	notifications *NotificationService
	log           *zap.Logger
}

// NewAttendeeService constructs an AttendeeService.
func NewAttendeeService(db *gorm.DB, notifications *NotificationService) (*AttendeeService, error) {
	if db == nil {
		return nil, errors.New("attendee service: db is required")
	}
	if notifications == nil {
		return nil, errors.New("attendee service: notification service is required")
	}
	return &AttendeeService{
		db:            db,
		notifications: notifications,
		log:           logger.WithModule("attendees"),
	}, nil
}

// Invite adds the named users (and every member of the named teams) as
// attendees of the event and sends each new attendee an invitation
// notification. Users already invited are skipped silently.
func (s *AttendeeService) Invite(ctx context.Context, eventID, inviterID string, input InviteInput) ([]AttendeeDTO, error) {
	ctx = ensureContext(ctx)

	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("attendee service: load event: %w", err)
	}
	if event.OwnerID != inviterID {
		return nil, apperrors.ErrForbidden
	}

	var inviter models.User
	if err := s.db.WithContext(ctx).First(&inviter, "id = ?", inviterID).Error; err != nil {
		return nil, fmt.Errorf("attendee service: load inviter: %w", err)
	}

	userIDs, err := s.resolveInvitees(ctx, input)
	if err != nil {
		return nil, err
	}

	var created []AttendeeDTO
	for _, userID := range userIDs {
		if userID == event.OwnerID {
			continue
		}

		attendee := models.EventAttendee{
			EventID:     event.ID,
			UserID:      userID,
			Status:      models.AttendeeStatusInvited,
			InvitedByID: inviterID,
		}
		if err := s.db.WithContext(ctx).Create(&attendee).Error; err != nil {
			if isUniqueConstraintError(err) {
				continue // already invited
			}
			return nil, fmt.Errorf("attendee service: create attendee: %w", err)
		}
		created = append(created, mapAttendee(attendee))

		// Invitation delivery is best effort; a broken notification must not
		// undo the attendee row.
		if _, err := s.notifications.Create(ctx, CreateNotificationInput{
			UserID:  userID,
			Kind:    models.NotificationKindInvitation,
			Title:   fmt.Sprintf("Invitation: %s", event.Title),
			Message: fmt.Sprintf("%s invited you to %q", inviter.DisplayName, event.Title),
			Payload: models.InvitationPayload{
				EventID:     event.ID,
				EventTitle:  event.Title,
				StartTime:   event.StartTime,
				InvitedByID: inviter.ID,
				InvitedBy:   inviter.DisplayName,
			},
			ActionURL: fmt.Sprintf("/events/%s", event.ID),
		}); err != nil {
			s.log.Warn("invitation notification failed",
				zap.String("event_id", event.ID),
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}

	return created, nil
}

// Respond records an attendee's answer to an invitation.
func (s *AttendeeService) Respond(ctx context.Context, eventID, userID, status string) (*AttendeeDTO, error) {
	ctx = ensureContext(ctx)

	status = strings.TrimSpace(strings.ToLower(status))
	if status != models.AttendeeStatusAccepted && status != models.AttendeeStatusDeclined {
		return nil, apperrors.NewBadRequest("status must be accepted or declined")
	}

	var attendee models.EventAttendee
	if err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&attendee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("attendee service: load attendee: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&attendee).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("attendee service: update status: %w", err)
	}
	attendee.Status = status

	dto := mapAttendee(attendee)
	return &dto, nil
}

// Remove uninvites a user; allowed for the event owner or the attendee themselves.
func (s *AttendeeService) Remove(ctx context.Context, eventID, targetUserID, actorID string) error {
	ctx = ensureContext(ctx)

	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("attendee service: load event: %w", err)
	}
	if actorID != event.OwnerID && actorID != targetUserID {
		return apperrors.ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("event_id = ? AND user_id = ?", eventID, targetUserID).
			Delete(&models.EventAttendee{})
		if result.Error != nil {
			return fmt.Errorf("attendee service: delete attendee: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		// An uninvited user keeps no reminder for the event.
		if err := tx.Where("event_id = ? AND user_id = ?", eventID, targetUserID).
			Delete(&models.NotificationPreference{}).Error; err != nil {
			return fmt.Errorf("attendee service: delete preference: %w", err)
		}
		return nil
	})
}

func (s *AttendeeService) resolveInvitees(ctx context.Context, input InviteInput) ([]string, error) {
	userIDs := normaliseIDs(input.UserIDs)

	for _, teamID := range normaliseIDs(input.TeamIDs) {
		var team models.Team
		if err := s.db.WithContext(ctx).Preload("Members").First(&team, "id = ?", teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown team %s", teamID))
			}
			return nil, fmt.Errorf("attendee service: load team: %w", err)
		}
		for _, member := range team.Members {
			userIDs = append(userIDs, member.ID)
		}
	}

	return normaliseIDs(userIDs), nil
}

func mapAttendee(attendee models.EventAttendee) AttendeeDTO {
	dto := AttendeeDTO{
		ID:        attendee.ID,
		EventID:   attendee.EventID,
		UserID:    attendee.UserID,
		Status:    attendee.Status,
		CreatedAt: attendee.CreatedAt,
	}
	if attendee.User != nil {
		dto.Username = attendee.User.Username
	}
	return dto
}
