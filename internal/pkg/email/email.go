package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService delivers transactional mail over SMTP.
type EmailService interface {
	SendPasswordResetOTP(to, fullName, code string, validFor time.Duration) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	backoff   time.Duration
}

func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		backoff:   time.Second,
	}, nil
}

type passwordResetOTPData struct {
	FullName string
	Code     string
	Minutes  int
}

func (s *emailServiceImpl) SendPasswordResetOTP(to, fullName, code string, validFor time.Duration) error {
	return s.deliver(to, "Your password reset code", "password_reset_otp.html", passwordResetOTPData{
		FullName: fullName,
		Code:     code,
		Minutes:  int(validFor.Minutes()),
	})
}

func (s *emailServiceImpl) deliver(to, subject, templateName string, data any) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}
	return s.sendWithRetry(to, subject, s.compose(to, subject, body.String()))
}

// compose renders an RFC 5322 HTML message; the subject is Q-encoded for non-ASCII names.
func (s *emailServiceImpl) compose(to, subject, htmlBody string) []byte {
	from := mail.Address{Name: s.cfg.FromName, Address: s.cfg.From}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from.String())
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(htmlBody)
	return []byte(msg.String())
}

func (s *emailServiceImpl) sendWithRetry(to, subject string, message []byte) error {
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = s.send(addr, auth, s.cfg.From, []string{to}, message); err == nil {
			slog.Info("Email sent", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}
		slog.Error("Failed to send email", "to", to, "subject", subject, "attempt", attempt, "error", err)

		if attempt < maxRetries {
			time.Sleep(s.backoff << (attempt - 1))
		}
	}
	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, err)
}
