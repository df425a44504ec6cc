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

// CategoryInput holds attributes for creating or updating a category.
type CategoryInput struct {
	Name  string
	Color string
}

// CategoryService manages per-user event categories.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB) (*CategoryService, error) {
	if db == nil {
		return nil, errors.New("category service: db is required")
	}
	return &CategoryService{db: db}, nil
}

// List returns the seeded default categories plus the user's own.
func (s *CategoryService) List(ctx context.Context, ownerID string) ([]models.EventCategory, error) {
	ctx = ensureContext(ctx)

	var rows []models.EventCategory
	if err := s.db.WithContext(ctx).
		Where("owner_id = ? OR owner_id = ?", "", ownerID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("category service: list categories: %w", err)
	}
	return rows, nil
}

// Create adds a category owned by the supplied user.
func (s *CategoryService) Create(ctx context.Context, ownerID string, input CategoryInput) (*models.EventCategory, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}

	category := models.EventCategory{
		OwnerID: ownerID,
		Name:    name,
		Color:   defaultIfEmpty(strings.TrimSpace(input.Color), "#6366f1"),
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("category name already in use")
		}
		return nil, fmt.Errorf("category service: create category: %w", err)
	}
	return &category, nil
}

// Update renames or recolours a category owned by the supplied user.
func (s *CategoryService) Update(ctx context.Context, categoryID, ownerID string, input CategoryInput) (*models.EventCategory, error) {
	ctx = ensureContext(ctx)

	category, err := s.loadOwned(ctx, categoryID, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if color := strings.TrimSpace(input.Color); color != "" {
		updates["color"] = color
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, apperrors.NewConflict("category name already in use")
			}
			return nil, fmt.Errorf("category service: update category: %w", err)
		}
	}
	return category, nil
}

// Delete removes a category; events referencing it fall back to uncategorised.
func (s *CategoryService) Delete(ctx context.Context, categoryID, ownerID string) error {
	ctx = ensureContext(ctx)

	category, err := s.loadOwned(ctx, categoryID, ownerID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Event{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("category service: detach events: %w", err)
		}
		if err := tx.Delete(&models.EventCategory{}, "id = ?", category.ID).Error; err != nil {
			return fmt.Errorf("category service: delete category: %w", err)
		}
		return nil
	})
}

func (s *CategoryService) loadOwned(ctx context.Context, categoryID, ownerID string) (*models.EventCategory, error) {
	var category models.EventCategory
	if err := s.db.WithContext(ctx).First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("category service: load category: %w", err)
	}
	// Seeded defaults are read-only.
	if category.OwnerID == "" || category.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}
	return &category, nil
}
