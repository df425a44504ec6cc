package reminders

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/temporahq/tempora/internal/models"
	"github.com/temporahq/tempora/pkg/logger"
	"github.com/temporahq/tempora/pkg/metrics"
)

const (
	defaultSchedule        = "* * * * *"
	defaultDispatchTimeout = 10 * time.Second
)

// ScannerOption customises the Scanner.
type ScannerOption func(*Scanner)

// WithNow overrides the clock used for due-time comparisons.
func WithNow(now func() time.Time) ScannerOption {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) ScannerOption {
	return func(s *Scanner) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithSchedule overrides the cron expression for the scan tick.
func WithSchedule(spec string) ScannerOption {
	return func(s *Scanner) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithDispatchTimeout bounds how long one reminder delivery may take.
func WithDispatchTimeout(d time.Duration) ScannerOption {
	return func(s *Scanner) {
		if d > 0 {
			s.dispatchTimeout = d
		}
	}
}

// Scanner runs the once-per-minute reminder tick: it loads preferences for
// events that have not yet started, decides which fall due in the current
// minute, claims them, and hands each one to the Dispatcher.
//
// A preference is due exactly once, in the tick during which the clock first
// reaches or passes its fire time. The claim is a conditional update of
// last_fired_at, so overlapping or repeated scans for the same tick are
// no-ops rather than duplicate deliveries.
type Scanner struct {
	db         *gorm.DB
	dispatcher *Dispatcher

	now             func() time.Time
	cron            *cron.Cron
	schedule        string
	dispatchTimeout time.Duration
	log             *zap.Logger
}

// NewScanner constructs a Scanner with sensible defaults.
func NewScanner(db *gorm.DB, dispatcher *Dispatcher, opts ...ScannerOption) (*Scanner, error) {
	if db == nil {
		return nil, errors.New("reminder scanner: db is required")
	}
	if dispatcher == nil {
		return nil, errors.New("reminder scanner: dispatcher is required")
	}

	scanner := &Scanner{
		db:              db,
		dispatcher:      dispatcher,
		now:             time.Now,
		schedule:        defaultSchedule,
		dispatchTimeout: defaultDispatchTimeout,
		log:             logger.WithModule("reminders"),
	}

	for _, opt := range opts {
		opt(scanner)
	}

	if scanner.cron == nil {
		// SkipIfStillRunning guarantees at most one scan instance is active,
		// even when a tick overruns its minute budget.
		scanner.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	}

	return scanner, nil
}

// Start registers the scan tick with the cron scheduler and launches it.
func (s *Scanner) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background(), s.now()); err != nil {
			s.log.Warn("reminder scan completed with errors", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for a running scan to complete.
func (s *Scanner) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes a single scan tick at the supplied wall-clock time.
// Failures local to one preference are logged and aggregated; they never
// abort the remaining preferences.
func (s *Scanner) RunOnce(ctx context.Context, now time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}

	started := time.Now()
	defer func() {
		metrics.ReminderScanDuration.Observe(time.Since(started).Seconds())
	}()

	tick := now.UTC().Truncate(time.Minute)

	// Past events are never scanned: an offset longer than the time remaining
	// for an event already in progress is silently skipped.
	var preferences []models.NotificationPreference
	if err := s.db.WithContext(ctx).
		Preload("Event").
		Preload("User").
		Where("event_id IN (?)", s.db.Model(&models.Event{}).Select("id").Where("start_time > ?", tick)).
		Find(&preferences).Error; err != nil {
		return err
	}

	var errs error
	for _, preference := range preferences {
		if err := s.processPreference(ctx, preference, tick); err != nil {
			s.log.Warn("reminder dispatch failed",
				zap.String("preference_id", preference.ID),
				zap.String("event_id", preference.EventID),
				zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

func (s *Scanner) processPreference(ctx context.Context, preference models.NotificationPreference, tick time.Time) error {
	if preference.Event == nil || preference.User == nil {
		// Event or recipient vanished between query and dispatch; skip.
		metrics.ReminderScanPreferences.WithLabelValues("skipped").Inc()
		s.log.Debug("skipping preference with missing associations",
			zap.String("preference_id", preference.ID))
		return nil
	}

	fireAt := preference.FireAt(preference.Event.StartTime)
	if fireAt.After(tick) || tick.Sub(fireAt) >= time.Minute {
		metrics.ReminderScanPreferences.WithLabelValues("skipped").Inc()
		return nil
	}

	// Claim the preference for this fire time. Zero rows affected means a
	// previous or concurrent scan already delivered it.
	claim := s.db.WithContext(ctx).
		Model(&models.NotificationPreference{}).
		Where("id = ? AND (last_fired_at IS NULL OR last_fired_at < ?)", preference.ID, fireAt).
		Update("last_fired_at", tick)
	if claim.Error != nil {
		return claim.Error
	}
	if claim.RowsAffected == 0 {
		metrics.ReminderScanPreferences.WithLabelValues("already_fired").Inc()
		return nil
	}

	metrics.ReminderScanPreferences.WithLabelValues("due").Inc()

	dispatchCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()

	return s.dispatcher.Dispatch(dispatchCtx, Delivery{
		Preference: &preference,
		Event:      *preference.Event,
		Recipient:  *preference.User,
	})
}
