package reminders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temporahq/tempora/internal/models"
	"github.com/temporahq/tempora/internal/services"
	"github.com/temporahq/tempora/pkg/logger"
	"github.com/temporahq/tempora/pkg/mail"
	"github.com/temporahq/tempora/pkg/metrics"
)

// Delivery bundles everything the dispatcher needs to send one reminder.
// Preference may be nil (a recipient without stored settings), in which case
// only the in-app channel is used.
type Delivery struct {
	Preference *models.NotificationPreference
	Event      models.Event
	Recipient  models.User
}

// DispatcherOption customises the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBaseURL sets the base URL used for deep links in reminder emails.
func WithBaseURL(url string) DispatcherOption {
	return func(d *Dispatcher) {
		d.baseURL = strings.TrimRight(url, "/")
	}
}

// Dispatcher delivers a due reminder over its resolved channels: an in-app
// notification record always (unless explicitly disabled), an email when the
// preference asks for one. Channels are independent; an email failure never
// prevents the in-app record.
type Dispatcher struct {
	notifications *services.NotificationService
	mailer        mail.Mailer
	baseURL       string
	log           *zap.Logger
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(notifications *services.NotificationService, mailer mail.Mailer, opts ...DispatcherOption) (*Dispatcher, error) {
	if notifications == nil {
		return nil, errors.New("reminder dispatcher: notification service is required")
	}

	dispatcher := &Dispatcher{
		notifications: notifications,
		mailer:        mailer,
		baseURL:       "http://localhost:8000",
		log:           logger.WithModule("reminders"),
	}

	for _, opt := range opts {
		opt(dispatcher)
	}

	return dispatcher, nil
}

// Dispatch sends the reminder over each resolved channel. The returned error
// reflects the in-app channel only; email failures are logged and counted but
// never propagated, so a broken mail relay cannot abort a scan.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery Delivery) error {
	inApp, email := resolveChannels(delivery.Preference)

	if inApp {
		if err := d.sendInApp(ctx, delivery); err != nil {
			metrics.RemindersFired.WithLabelValues("in_app", "failure").Inc()
			return fmt.Errorf("reminder dispatcher: in-app delivery: %w", err)
		}
		metrics.RemindersFired.WithLabelValues("in_app", "success").Inc()
	}

	if email {
		if err := d.sendEmail(ctx, delivery); err != nil {
			metrics.RemindersFired.WithLabelValues("email", "failure").Inc()
			d.log.Warn("reminder email failed",
				zap.String("event_id", delivery.Event.ID),
				zap.String("user_id", delivery.Recipient.ID),
				zap.Error(err))
		} else {
			metrics.RemindersFired.WithLabelValues("email", "success").Inc()
		}
	}

	return nil
}

// resolveChannels maps a preference to delivery channels. A missing preference
// defaults to in-app only.
func resolveChannels(preference *models.NotificationPreference) (inApp, email bool) {
	if preference == nil {
		return true, false
	}
	return preference.InAppEnabled, preference.EmailEnabled
}

func (d *Dispatcher) sendInApp(ctx context.Context, delivery Delivery) error {
	event := delivery.Event

	_, err := d.notifications.Create(ctx, services.CreateNotificationInput{
		UserID:  delivery.Recipient.ID,
		Kind:    models.NotificationKindReminder,
		Title:   fmt.Sprintf("Reminder: %s", event.Title),
		Message: fmt.Sprintf("%s starts at %s", event.Title, event.StartTime.UTC().Format("15:04 on Mon, 2 Jan 2006")),
		Payload: models.ReminderPayload{
			EventID:    event.ID,
			EventTitle: event.Title,
			StartTime:  event.StartTime,
			Location:   event.Location,
		},
		ActionURL: d.eventURL(event.ID),
	})
	return err
}

var reminderEmailTmpl = template.Must(template.New("reminder_email").Parse(`<!DOCTYPE html>
<html>
  <body>
    <p>Your event <strong>{{.Title}}</strong> is coming up.</p>
    <p>When: {{.When}}{{if .Location}}<br>Where: {{.Location}}{{end}}</p>
    <p><a href="{{.URL}}">View the event</a></p>
  </body>
</html>
`))

func (d *Dispatcher) sendEmail(ctx context.Context, delivery Delivery) error {
	if d.mailer == nil {
		return nil
	}

	event := delivery.Event
	when := event.StartTime.UTC().Format(time.RFC1123)

	lines := []string{
		fmt.Sprintf("Your event %q is coming up.", event.Title),
		"",
		fmt.Sprintf("When: %s", when),
	}
	if event.Location != "" {
		lines = append(lines, fmt.Sprintf("Where: %s", event.Location))
	}
	lines = append(lines, "", fmt.Sprintf("View the event: %s", d.eventURL(event.ID)))

	err := d.mailer.Send(ctx, mail.Message{
		To:       []string{delivery.Recipient.Email},
		Subject:  fmt.Sprintf("Reminder: %s", event.Title),
		Body:     strings.Join(lines, "\n"),
		HTMLBody: d.renderReminderHTML(event, when),
	})
	if errors.Is(err, mail.ErrSMTPDisabled) {
		return nil
	}
	return err
}

// renderReminderHTML builds the html/template alternative part. A render
// failure degrades to the plain-text body rather than blocking the email.
func (d *Dispatcher) renderReminderHTML(event models.Event, when string) string {
	var buf bytes.Buffer
	err := reminderEmailTmpl.Execute(&buf, struct {
		Title    string
		When     string
		Location string
		URL      string
	}{
		Title:    event.Title,
		When:     when,
		Location: event.Location,
		URL:      d.eventURL(event.ID),
	})
	if err != nil {
		d.log.Warn("reminder email template failed", zap.Error(err))
		return ""
	}
	return buf.String()
}

func (d *Dispatcher) eventURL(eventID string) string {
	return fmt.Sprintf("%s/events/%s", d.baseURL, eventID)
}
