package dispatch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/dragonmail/dragonmail/internal/model"
)

// SMTPSubmitter submits messages over standard mail submission: connect,
// EHLO, optional STARTTLS upgrade with re-greeting, AUTH, submit, QUIT.
type SMTPSubmitter struct {
	timeout time.Duration
}

// NewSMTPSubmitter creates an SMTPSubmitter. timeout bounds the dial of
// each connection; zero means 30 seconds.
func NewSMTPSubmitter(timeout time.Duration) *SMTPSubmitter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMTPSubmitter{timeout: timeout}
}

// Submit sends one message through the transport profile's SMTP endpoint.
func (s *SMTPSubmitter) Submit(ctx context.Context, transport model.TransportConfig, msg Email) error {
	addr := net.JoinHostPort(transport.Host, strconv.Itoa(transport.Port))

	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, transport.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to greet %s: %w", addr, err)
	}
	defer client.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := client.Hello("localhost"); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if transport.UseTLS {
		ok, _ := client.Extension("STARTTLS")
		if !ok {
			return errors.New("server does not support STARTTLS")
		}
		if err := client.StartTLS(&tls.Config{ServerName: transport.Host}); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	if transport.Password != "" {
		auth := smtp.PlainAuth("", transport.Email, transport.Password, transport.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
	}

	if err := client.Mail(transport.Email); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("RCPT TO rejected: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(buildMIME(msg)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("message rejected: %w", err)
	}

	return client.Quit()
}
