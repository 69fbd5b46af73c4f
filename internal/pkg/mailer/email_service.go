package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("email credentials not set")

type IEmailService interface {
	// SendNotes mails grounded notes; the body is escaped and line breaks kept
	SendNotes(ctx context.Context, toEmail, title, notes string) error
	// SendMessage mails caller-provided HTML as-is
	SendMessage(ctx context.Context, toEmail, title, htmlBody string) error
}

// sender is the part of gomail.Dialer used here
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer       sender
	senderEmail  string
	senderName   string
	defaultTitle string
	timeout      time.Duration
}

func NewEmailService(host string, port int, username, password, senderName, defaultTitle string, timeout time.Duration) IEmailService {
	var d sender
	if username != "" && password != "" {
		d = gomail.NewDialer(host, port, username, password)
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &emailService{
		dialer:       d,
		senderEmail:  username,
		senderName:   senderName,
		defaultTitle: defaultTitle,
		timeout:      timeout,
	}
}

func (s *emailService) SendNotes(ctx context.Context, toEmail, title, notes string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your notes</h2>
			<p>Here is the information you asked the assistant for:</p>
			<div style="background: #f5f5f5; padding: 12px; border-radius: 5px;">%s</div>
			<p>Reply to this email if anything looks wrong.</p>
		</div>
	`, strings.ReplaceAll(html.EscapeString(notes), "\n", "<br>"))

	return s.SendMessage(ctx, toEmail, title, body)
}

func (s *emailService) SendMessage(ctx context.Context, toEmail, title, htmlBody string) error {
	if s.dialer == nil {
		return ErrNotConfigured
	}
	if strings.TrimSpace(title) == "" {
		title = s.defaultTitle
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", title)
	m.SetBody("text/html", htmlBody)

	// gomail has no context support, so the send races the deadline
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", toEmail, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail to %s: %w", toEmail, ctx.Err())
	}
}
