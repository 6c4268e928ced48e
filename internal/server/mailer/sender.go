// Package mailer delivers verification emails. Sender talks to the mail
// transport, Dispatcher queues messages and sends them from a fixed pool of
// workers so request handlers never block on SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	mail "github.com/go-mail/mail"
)

// Sender delivers a single HTML message. Errors wrap common.ErrDelivery.
type Sender interface {
	Send(ctx context.Context, to, subject, bodyHTML string) error
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
	// SSL selects implicit TLS; otherwise STARTTLS is negotiated when offered.
	SSL bool
}

func NewSMTPSender(host string, port int, from, user, pass string, ssl bool) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, User: user, Pass: pass, SSL: ssl}
}

// dialAndSend is a seam for tests.
var dialAndSend = func(d *mail.Dialer, m *mail.Message) error {
	return d.DialAndSend(m)
}

// Send delivers one message. A deadline on ctx bounds the SMTP dial and each
// read or write on the connection.
func (s *SMTPSender) Send(ctx context.Context, to, subject, bodyHTML string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelivery, err)
	}

	m := s.message(to, subject, bodyHTML)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{ServerName: s.Host}
	d.SSL = s.SSL
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return fmt.Errorf("%w: %v", common.ErrDelivery, context.DeadlineExceeded)
		}
		d.Timeout = left
	}

	if err := dialAndSend(d, m); err != nil {
		return fmt.Errorf("%w: smtp send: %v", common.ErrDelivery, err)
	}
	return nil
}

func (s *SMTPSender) message(to, subject, bodyHTML string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", bodyHTML)
	return m
}
