package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	intconfig "railway/internal/config"
)

// Mail is a plain-text message to one recipient.
type Mail struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// NewMailer picks SMTP delivery when a host is configured and log-only otherwise.
func NewMailer(cfg intconfig.SMTPConfig) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return LogMailer{}
	}
	return SMTPMailer{Config: cfg}
}

type SMTPMailer struct {
	Config intconfig.SMTPConfig
}

func (m SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := m.Config
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	msg := strings.Join([]string{
		"From: " + cfg.From,
		"To: " + mail.To,
		"Subject: " + mail.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		mail.Body,
	}, "\r\n")
	if err := smtp.SendMail(addr, auth, cfg.From, []string{mail.To}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", mail.To, err)
	}
	return nil
}

// LogMailer writes mails to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Mail) error {
	logrus.WithFields(logrus.Fields{
		"module":  "notify",
		"to":      m.To,
		"subject": m.Subject,
	}).Info("email (log only)")
	return nil
}
