package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemindersFired counts reminder deliveries by channel (in_app|email) and result (success|failure).
	RemindersFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempora_reminders_fired_total",
			Help: "Total number of reminder channel deliveries",
		},
		[]string{"channel", "result"},
	)

	// ReminderScanPreferences counts preferences inspected per scan outcome (due|skipped|already_fired).
	ReminderScanPreferences = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempora_reminder_scan_preferences_total",
			Help: "Preferences inspected by the reminder scan",
		},
		[]string{"outcome"},
	)

	// ReminderScanDuration measures how long a single reminder scan tick takes.
	ReminderScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tempora_reminder_scan_duration_seconds",
			Help:    "Duration of one reminder scan tick",
			Buckets: prometheus.DefBuckets,
		},
	)

	// NotificationsCreated counts persisted notifications by kind.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempora_notifications_created_total",
			Help: "Total number of notifications persisted",
		},
		[]string{"kind"},
	)

	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempora_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tempora_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
