package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"net/url"

	"github.com/redmonkez12/eats-api/internal/config"
	"github.com/redmonkez12/eats-api/internal/logging"
	"github.com/redmonkez12/eats-api/templates"
)

// ErrDisabled is returned when no SMTP host is configured
var ErrDisabled = errors.New("email delivery is not configured")

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	frontendURL  string
	tmpl         *template.Template
	send         sendFunc
}

func NewService(cfg config.EmailConfig) (*Service, error) {
	tmpl, err := template.ParseFS(templates.EmailFS, "email/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	from := cfg.FromEmail
	if from == "" {
		from = cfg.SMTPUser
	}

	return &Service{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUser:     cfg.SMTPUser,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    from,
		frontendURL:  cfg.FrontendURL,
		tmpl:         tmpl,
		send:         smtp.SendMail,
	}, nil
}

// SendVerificationEmail mails the verification code together with a link
// that submits it. Delivery is abandoned when ctx is done.
func (s *Service) SendVerificationEmail(ctx context.Context, toEmail, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	if s.smtpHost == "" {
		return ErrDisabled
	}

	verificationLink := fmt.Sprintf("%s/verify?code=%s", s.frontendURL, url.QueryEscape(code))

	body, err := s.render("verification.html", map[string]string{
		"Email":            toEmail,
		"Code":             code,
		"VerificationLink": verificationLink,
	})
	if err != nil {
		logger.Error("failed to render email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(ctx, toEmail, "Verify your email address", body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

func (s *Service) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) sendEmail(ctx context.Context, to, subject, body string) error {
	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := net.JoinHostPort(s.smtpHost, s.smtpPort)

	// net/smtp has no context support; the send keeps running in the
	// background if ctx ends first.
	done := make(chan error, 1)
	go func() {
		done <- s.send(addr, auth, s.fromEmail, []string{to}, msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
