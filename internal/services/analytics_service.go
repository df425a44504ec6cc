package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/temporahq/tempora/internal/models"
)

// OverviewStats summarises a user's calendar usage.
type OverviewStats struct {
	TotalEvents         int64 `json:"total_events"`
	UpcomingEvents      int64 `json:"upcoming_events"`
	CategoriesInUse     int64 `json:"categories_in_use"`
	InvitationsSent     int64 `json:"invitations_sent"`
	InvitationsAccepted int64 `json:"invitations_accepted"`
	UnreadNotifications int64 `json:"unread_notifications"`
}

// CategoryCount pairs a category with how many of the user's events use it.
type CategoryCount struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Count      int64  `json:"count"`
}

// MonthCount reports events per calendar month.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

// WeekdayCount reports events per weekday (0 = Sunday).
type WeekdayCount struct {
	Weekday int   `json:"weekday"`
	Count   int64 `json:"count"`
}

// AnalyticsService computes usage statistics over a user's events.
type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(db *gorm.DB) (*AnalyticsService, error) {
	if db == nil {
		return nil, errors.New("analytics service: db is required")
	}
	return &AnalyticsService{db: db, now: time.Now}, nil
}

// Overview aggregates headline numbers for the user's dashboard.
func (s *AnalyticsService) Overview(ctx context.Context, userID string) (*OverviewStats, error) {
	ctx = ensureContext(ctx)
	now := s.now().UTC()

	stats := &OverviewStats{}

	if err := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("owner_id = ?", userID).
		Count(&stats.TotalEvents).Error; err != nil {
		return nil, fmt.Errorf("analytics service: total events: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("owner_id = ? AND start_time > ?", userID, now).
		Count(&stats.UpcomingEvents).Error; err != nil {
		return nil, fmt.Errorf("analytics service: upcoming events: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("owner_id = ? AND category_id IS NOT NULL", userID).
		Distinct("category_id").
		Count(&stats.CategoriesInUse).Error; err != nil {
		return nil, fmt.Errorf("analytics service: categories in use: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.EventAttendee{}).
		Where("invited_by_id = ?", userID).
		Count(&stats.InvitationsSent).Error; err != nil {
		return nil, fmt.Errorf("analytics service: invitations sent: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.EventAttendee{}).
		Where("invited_by_id = ? AND status = ?", userID, models.AttendeeStatusAccepted).
		Count(&stats.InvitationsAccepted).Error; err != nil {
		return nil, fmt.Errorf("analytics service: invitations accepted: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&stats.UnreadNotifications).Error; err != nil {
		return nil, fmt.Errorf("analytics service: unread notifications: %w", err)
	}

	return stats, nil
}

// EventsByCategory counts the user's events per category, uncategorised last.
func (s *AnalyticsService) EventsByCategory(ctx context.Context, userID string) ([]CategoryCount, error) {
	ctx = ensureContext(ctx)

	var rows []models.Event
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Where("owner_id = ?", userID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("analytics service: load events: %w", err)
	}

	counts := make(map[string]*CategoryCount)
	order := []string{}
	for _, event := range rows {
		key := ""
		name := "Uncategorised"
		if event.CategoryID != nil {
			key = *event.CategoryID
			if event.Category != nil {
				name = event.Category.Name
			}
		}
		entry, ok := counts[key]
		if !ok {
			entry = &CategoryCount{CategoryID: key, Name: name}
			counts[key] = entry
			order = append(order, key)
		}
		entry.Count++
	}

	out := make([]CategoryCount, 0, len(order))
	for _, key := range order {
		out = append(out, *counts[key])
	}
	return out, nil
}

// EventsByMonth buckets the user's events by start month over the trailing window.
func (s *AnalyticsService) EventsByMonth(ctx context.Context, userID string, months int) ([]MonthCount, error) {
	ctx = ensureContext(ctx)

	if months <= 0 || months > 24 {
		months = 6
	}

	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	var rows []models.Event
	if err := s.db.WithContext(ctx).
		Where("owner_id = ? AND start_time >= ?", userID, from).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("analytics service: load events: %w", err)
	}

	// Pre-populate so empty months still appear in charts.
	out := make([]MonthCount, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		month := from.AddDate(0, i, 0).Format("2006-01")
		out[i] = MonthCount{Month: month}
		index[month] = i
	}

	for _, event := range rows {
		month := event.StartTime.UTC().Format("2006-01")
		if i, ok := index[month]; ok {
			out[i].Count++
		}
	}
	return out, nil
}

// BusiestWeekdays counts the user's events per weekday.
func (s *AnalyticsService) BusiestWeekdays(ctx context.Context, userID string) ([]WeekdayCount, error) {
	ctx = ensureContext(ctx)

	var rows []models.Event
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("analytics service: load events: %w", err)
	}

	out := make([]WeekdayCount, 7)
	for i := range out {
		out[i].Weekday = i
	}
	for _, event := range rows {
		out[int(event.StartTime.UTC().Weekday())].Count++
	}
	return out, nil
}
