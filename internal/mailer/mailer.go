// Package mailer delivers the outbound account emails. Sending is
// best-effort and blocking: a failure is returned to the caller, never
// retried, and never rolls back the state change that triggered it.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"os"

	"github.com/sirupsen/logrus"
)

// Notifier is the outbound-email contract consumed by the account
// services.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, username string) error
	SendLoginNotification(ctx context.Context, email, username string) error
	SendPasswordResetEmail(ctx context.Context, email, newPassword string) error
}

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

// ConfigFromEnv reads SMTP settings from the environment with development
// fallbacks.
func ConfigFromEnv() Config {
	cfg := Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		From:     os.Getenv("SMTP_FROM"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.From == "" {
		cfg.From = "no-reply@localhost"
	}
	return cfg
}

type smtpMailer struct {
	cfg Config
	log *logrus.Logger
}

// NewSMTPMailer returns a Notifier backed by a plain SMTP transport.
func NewSMTPMailer(cfg Config, log *logrus.Logger) Notifier {
	return &smtpMailer{cfg: cfg, log: log}
}

func (m *smtpMailer) SendVerificationEmail(ctx context.Context, email, username string) error {
	body := fmt.Sprintf(
		"Bonjour %s,\r\n\r\nMerci de vérifier votre adresse e-mail pour activer votre compte.\r\n",
		username,
	)
	return m.send(email, "Vérification de votre adresse e-mail", body)
}

func (m *smtpMailer) SendLoginNotification(ctx context.Context, email, username string) error {
	body := fmt.Sprintf(
		"Bonjour %s,\r\n\r\nUne connexion à votre compte vient d'être effectuée.\r\n",
		username,
	)
	return m.send(email, "Nouvelle connexion à votre compte", body)
}

func (m *smtpMailer) SendPasswordResetEmail(ctx context.Context, email, newPassword string) error {
	body := fmt.Sprintf(
		"Bonjour,\r\n\r\nVotre nouveau mot de passe est : %s\r\n",
		newPassword,
	)
	return m.send(email, "Réinitialisation de votre mot de passe", body)
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := buildMessage(m.cfg.From, to, subject, body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, a, m.cfg.From, []string{to}, msg); err != nil {
		m.log.WithError(err).WithField("to", to).Error("mail delivery failed")
		return err
	}
	return nil
}

// buildMessage assembles a minimal RFC 5322 plaintext message.
func buildMessage(from, to, subject, body string) []byte {
	return []byte(
		"From: " + from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)
}
