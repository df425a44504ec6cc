package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/temporahq/tempora/internal/models"
	apperrors "github.com/temporahq/tempora/pkg/errors"
)

// TeamInput holds attributes for creating or updating a team.
type TeamInput struct {
	Name        string
	Description string
}

// TeamService manages teams and their membership.
type TeamService struct {
	db *gorm.DB
}

// NewTeamService constructs a TeamService.
func NewTeamService(db *gorm.DB) (*TeamService, error) {
	if db == nil {
		return nil, errors.New("team service: db is required")
	}
	return &TeamService{db: db}, nil
}

// Create registers a new team owned by the supplied user; the owner becomes a member.
func (s *TeamService) Create(ctx context.Context, ownerID string, input TeamInput) (*models.Team, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}

	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("team service: load owner: %w", err)
	}

	team := models.Team{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     ownerID,
		Members:     []models.User{owner},
	}

	if err := s.db.WithContext(ctx).Create(&team).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("team name already in use")
		}
		return nil, fmt.Errorf("team service: create team: %w", err)
	}
	return &team, nil
}

// Get loads a team with its members.
func (s *TeamService) Get(ctx context.Context, teamID string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	var team models.Team
	if err := s.db.WithContext(ctx).Preload("Members").First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("team service: load team: %w", err)
	}
	return &team, nil
}

// ListForUser returns every team the user belongs to.
func (s *TeamService) ListForUser(ctx context.Context, userID string) ([]models.Team, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Preload("Teams").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("team service: load user: %w", err)
	}
	return user.Teams, nil
}

// Update renames a team; only the owner may do so.
func (s *TeamService) Update(ctx context.Context, teamID, actorID string, input TeamInput) (*models.Team, error) {
	ctx = ensureContext(ctx)

	team, err := s.loadOwned(ctx, teamID, actorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if description := strings.TrimSpace(input.Description); description != "" {
		updates["description"] = description
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(team).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, apperrors.NewConflict("team name already in use")
			}
			return nil, fmt.Errorf("team service: update team: %w", err)
		}
	}
	return team, nil
}

// Delete removes a team and its membership rows; only the owner may do so.
func (s *TeamService) Delete(ctx context.Context, teamID, actorID string) error {
	ctx = ensureContext(ctx)

	team, err := s.loadOwned(ctx, teamID, actorID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(team).Association("Members").Clear(); err != nil {
		return fmt.Errorf("team service: clear members: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&models.Team{}, "id = ?", team.ID).Error; err != nil {
		return fmt.Errorf("team service: delete team: %w", err)
	}
	return nil
}

// AddMember attaches a user to the team; only the owner may do so.
func (s *TeamService) AddMember(ctx context.Context, teamID, actorID, userID string) error {
	ctx = ensureContext(ctx)

	team, err := s.loadOwned(ctx, teamID, actorID)
	if err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("team service: load user: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(team).Association("Members").Append(&user); err != nil {
		return fmt.Errorf("team service: add member: %w", err)
	}
	return nil
}

// RemoveMember detaches a user from the team; the owner or the member themselves may do so.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, actorID, userID string) error {
	ctx = ensureContext(ctx)

	var team models.Team
	if err := s.db.WithContext(ctx).First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("team service: load team: %w", err)
	}
	if team.OwnerID != actorID && actorID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.db.WithContext(ctx).Model(&team).Association("Members").Delete(&models.User{ID: userID}); err != nil {
		return fmt.Errorf("team service: remove member: %w", err)
	}
	return nil
}

func (s *TeamService) loadOwned(ctx context.Context, teamID, actorID string) (*models.Team, error) {
	var team models.Team
	if err := s.db.WithContext(ctx).First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("team service: load team: %w", err)
	}
	if team.OwnerID != actorID {
		return nil, apperrors.ErrForbidden
	}
	return &team, nil
}
