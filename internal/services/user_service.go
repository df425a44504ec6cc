package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/temporahq/tempora/internal/models"
	"github.com/temporahq/tempora/pkg/crypto"
	apperrors "github.com/temporahq/tempora/pkg/errors"
)

// UserDTO is the API-friendly representation of a user account.
type UserDTO struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Avatar      string     `json:"avatar"`
	Timezone    string     `json:"timezone"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RegisterUserInput holds the attributes required to create an account.
type RegisterUserInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Timezone    string
}

// UserService manages account registration and credential checks.
type UserService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, now: time.Now}, nil
}

// Register creates a new active account with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*UserDTO, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(strings.ToLower(input.Username))
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if username == "" {
		return nil, apperrors.NewBadRequest("username is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("password must be at least 8 characters")
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := models.User{
		Username:    username,
		Email:       email,
		Password:    hash,
		DisplayName: defaultIfEmpty(input.DisplayName, username),
		Timezone:    defaultIfEmpty(input.Timezone, "UTC"),
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("username or email already in use")
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	dto := mapUser(user)
	return &dto, nil
}

// Authenticate verifies credentials by username or email and records the login time.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*UserDTO, error) {
	ctx = ensureContext(ctx)

	identifier = strings.TrimSpace(strings.ToLower(identifier))
	if identifier == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrForbidden
	}
	if !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).
		Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: record login: %w", err)
	}
	user.LastLoginAt = &now

	dto := mapUser(user)
	return &dto, nil
}

// Get returns a single user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*UserDTO, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	dto := mapUser(user)
	return &dto, nil
}

// List returns active users, optionally filtered by a search term, for invite pickers.
func (s *UserService) List(ctx context.Context, search string, limit int) ([]UserDTO, error) {
	ctx = ensureContext(ctx)

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR display_name LIKE ?", like, like, like)
	}

	var rows []models.User
	if err := query.Order("username ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}

	items := make([]UserDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapUser(row))
	}
	return items, nil
}

func mapUser(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		Timezone:    user.Timezone,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
