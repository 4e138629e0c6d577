package mailer

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/mamadbah2/telelbirds/internal/config"
)

// ErrNotConfigured is returned by Send when no SMTP host is set.
var ErrNotConfigured = errors.New("mailer: smtp host not configured")

// Message is a plain text e-mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Sender delivers e-mails.
type Sender interface {
	Send(msg Message) error
}

// Mailer wraps SMTP configuration for sending e-mails.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		host:     cfg.Host,
		user:     cfg.User,
		password: cfg.Password,
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
}

// Send delivers msg, authenticating only when an SMTP user is configured.
func (m *Mailer) Send(msg Message) error {
	if m.host == "" {
		return ErrNotConfigured
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := build(msg).Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send %q: %w", msg.Subject, err)
	}
	return nil
}

func build(msg Message) *email.Email {
	e := email.NewEmail()
	e.From = msg.From
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)
	return e
}
