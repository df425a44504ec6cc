package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
	})
	if err == nil || !strings.Contains(err.Error(), "host is required") {
		t.Fatalf("expected host validation error, got %v", err)
	}

	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("expected disabled configuration to succeed: %v", err)
	}
	if mailer == nil {
		t.Fatal("expected mailer to be returned")
	}
}

func TestSMTPMailerSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To:      []string{"test@example.com"},
		Subject: "Test",
		Body:    "Hello",
	})
	if err != ErrSMTPDisabled {
		t.Fatalf("expected ErrSMTPDisabled, got %v", err)
	}
}

func TestSMTPMailerDefaultTimeout(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
		UseTLS:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	sm, ok := mailer.(*smtpMailer)
	if !ok {
		t.Fatal("expected smtpMailer type")
	}
	if sm.cfg.Timeout != 10*time.Second {
		t.Fatalf("expected timeout to be 10s, got %v", sm.cfg.Timeout)
	}
}

func TestSMTPMailerSendRequiresRecipients(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To:      []string{"   ", "\t"},
		Subject: "No recipients",
		Body:    "Body",
	})
	if err == nil || !strings.Contains(err.Error(), "at least one recipient") {
		t.Fatalf("expected missing recipient error, got %v", err)
	}
}

func TestSMTPMailerSendValidatesAddresses(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		From: "invalid-from",
		To:   []string{"user@example.com"},
	})
	if err == nil || !strings.Contains(err.Error(), "invalid from address") {
		t.Fatalf("expected invalid from error, got %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To: []string{"user@example.com", "bad-address"},
	})
	if err == nil || !strings.Contains(err.Error(), "invalid recipient address") {
		t.Fatalf("expected invalid recipient error, got %v", err)
	}
}

type recordedSMTPClient struct {
	from    string
	rcpts   []string
	data    bytes.Buffer
	quit    bool
	closed  bool
	authArg smtp.Auth
}

func (c *recordedSMTPClient) Mail(from string) error { c.from = from; return nil }
func (c *recordedSMTPClient) Rcpt(to string) error   { c.rcpts = append(c.rcpts, to); return nil }
func (c *recordedSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&c.data}, nil
}
func (c *recordedSMTPClient) Quit() error                     { c.quit = true; return nil }
func (c *recordedSMTPClient) Close() error                    { c.closed = true; return nil }
func (c *recordedSMTPClient) StartTLS(*tls.Config) error      { return nil }
func (c *recordedSMTPClient) Auth(a smtp.Auth) error          { c.authArg = a; return nil }
func (c *recordedSMTPClient) Extension(string) (bool, string) { return false, "" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func TestSMTPMailerSendDeliversMessage(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	recorded := &recordedSMTPClient{}
	server, client := net.Pipe()
	defer server.Close()

	sm := mailer.(*smtpMailer)
	sm.dialFn = func(context.Context, SMTPSettings) (net.Conn, smtpClient, error) {
		return client, recorded, nil
	}
	sm.authFn = func(smtpClient, SMTPSettings) error { return nil }

	err = sm.Send(context.Background(), Message{
		To:      []string{"alice@example.com"},
		Subject: "Reminder: Design review",
		Body:    "Starts at 10:00",
	})
	if err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	if recorded.from != "no-reply@example.com" {
		t.Fatalf("unexpected mail from: %s", recorded.from)
	}
	if len(recorded.rcpts) != 1 || recorded.rcpts[0] != "alice@example.com" {
		t.Fatalf("unexpected recipients: %v", recorded.rcpts)
	}
	payload := recorded.data.String()
	if !strings.Contains(payload, "Subject: Reminder: Design review") {
		t.Fatalf("expected subject header, got %q", payload)
	}
	if !strings.HasSuffix(payload, "Starts at 10:00") {
		t.Fatalf("expected body suffix, got %q", payload)
	}
	if !recorded.quit {
		t.Fatal("expected client quit")
	}
}

func TestFormatMessage(t *testing.T) {
	content := formatMessage("from@example.com", []string{"to@example.com"}, Message{
		Subject: "Subject\r\nBreak",
		Body:    "Body",
	})
	if !strings.Contains(content, "From: from@example.com") {
		t.Fatalf("expected from header, got %q", content)
	}
	if !strings.Contains(content, "Subject: Subject  Break") {
		t.Fatalf("expected sanitised subject, got %q", content)
	}
	if !strings.HasSuffix(content, "\r\n\r\nBody") {
		t.Fatalf("expected blank line between headers and body, got %q", content)
	}
}

func TestFormatMessageSeparatesHeadersFromBody(t *testing.T) {
	content := formatMessage("from@example.com", []string{"to@example.com"}, Message{
		Subject: "Hello",
		Body:    "Content-Type: gotcha",
	})

	headerEnd := strings.Index(content, "\r\n\r\n")
	if headerEnd < 0 {
		t.Fatalf("expected header/body separator, got %q", content)
	}
	headers := content[:headerEnd]
	if strings.Contains(headers, "gotcha") {
		t.Fatalf("body leaked into headers: %q", headers)
	}
	if content[headerEnd+4:] != "Content-Type: gotcha" {
		t.Fatalf("unexpected body: %q", content[headerEnd+4:])
	}
}

func TestFormatMessageMultipartAlternative(t *testing.T) {
	content := formatMessage("from@example.com", []string{"to@example.com"}, Message{
		Subject:  "Reminder",
		Body:     "plain text part",
		HTMLBody: "<p>html part</p>",
	})

	if !strings.Contains(content, "Content-Type: multipart/alternative; boundary=") {
		t.Fatalf("expected multipart content type, got %q", content)
	}
	plainIdx := strings.Index(content, "plain text part")
	htmlIdx := strings.Index(content, "<p>html part</p>")
	if plainIdx < 0 || htmlIdx < 0 {
		t.Fatalf("expected both parts, got %q", content)
	}
	if plainIdx > htmlIdx {
		t.Fatalf("expected the plain part before the html part, got %q", content)
	}
	if !strings.Contains(content, "Content-Type: text/html; charset=UTF-8") {
		t.Fatalf("expected html part header, got %q", content)
	}
}

func TestUniqueAddresses(t *testing.T) {
	addresses := []string{"alice@example.com", "bob@example.com", " alice@example.com ", "", "bob@example.com"}
	result := uniqueAddresses(addresses)
	if len(result) != 2 {
		t.Fatalf("expected 2 unique addresses, got %d: %v", len(result), result)
	}
	if result[0] != "alice@example.com" || result[1] != "bob@example.com" {
		t.Fatalf("unexpected result order/content: %v", result)
	}
}
