package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/vlasenko/contacts_api/internal/tokens"
)

// Sender dispatches the out-of-band action links. Delivery is delegated
// work: callers fire it off without blocking the request on it.
type Sender interface {
	SendVerification(ctx context.Context, email, username string) error
	SendPasswordReset(ctx context.Context, email, username string) error
}

type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
	// AppURL is the public base URL embedded into action links.
	AppURL string
}

type SMTPSender struct {
	cfg    SMTPConfig
	issuer *tokens.Issuer
}

func NewSMTPSender(cfg SMTPConfig, issuer *tokens.Issuer) *SMTPSender {
	return &SMTPSender{cfg: cfg, issuer: issuer}
}

func (s *SMTPSender) SendVerification(ctx context.Context, email, username string) error {
	token, err := s.issuer.Action(email, tokens.PurposeEmailConfirm, tokens.EmailConfirmDays)
	if err != nil {
		return fmt.Errorf("issue confirm token: %w", err)
	}
	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", s.cfg.AppURL, token)
	body := fmt.Sprintf("Hello %s,\n\nConfirm your email:\n%s\n", username, link)
	return s.send(ctx, email, "Confirm your email", body)
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, email, username string) error {
	token, err := s.issuer.Action(email, tokens.PurposePasswordReset, tokens.PasswordResetDays)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	link := fmt.Sprintf("%s/api/auth/reset_password_new/%s", s.cfg.AppURL, token)
	body := fmt.Sprintf("Hello %s,\n\nReset your password:\n%s\n", username, link)
	return s.send(ctx, email, "How to update your credentials", body)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, body string) error {
	msg := []byte("To: " + to + "\r\n" +
		"From: " + s.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body)

	// The goroutine owns the client outright: on ctx expiry the caller walks
	// away while delivery runs to completion (or failure) and closes the
	// connection itself.
	done := make(chan error, 1)
	go func() {
		client, err := smtp.Dial(s.cfg.Host + ":" + s.cfg.Port)
		if err != nil {
			done <- fmt.Errorf("smtp dial: %w", err)
			return
		}
		defer client.Close()
		done <- s.deliver(client, to, msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPSender) deliver(client *smtp.Client, to string, msg []byte) error {
	if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
		return fmt.Errorf("smtp starttls: %w", err)
	}
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}
