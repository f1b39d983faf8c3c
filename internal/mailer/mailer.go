// Package mailer delivers admin invite mail. Delivery problems are
// classified as ErrUnavailable so callers can surface a retryable 503; a
// failed send never touches stored state, which is what makes the resend
// endpoint safe to retry.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// ErrUnavailable marks a transient delivery failure. The admin record is
// unaffected; the caller may retry.
var ErrUnavailable = errors.New("mail delivery unavailable")

// Invite is a rendered message ready for delivery.
type Invite struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the single capability the service layer needs from a mail
// transport.
type Mailer interface {
	Send(ctx context.Context, inv Invite) error
}

// DomainBlocked reports whether addr's domain is in the blocked list.
// Blocked domains short-circuit to ErrUnavailable before any send attempt,
// which is how deployments exercise the transient failure path end to end.
func DomainBlocked(domains []string, addr string) bool {
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return false
	}
	domain := addr[at+1:]
	for _, d := range domains {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}

// SMTP delivers invites over a plain SMTP connection.
type SMTP struct {
	// Addr is the host:port of the SMTP relay.
	Addr string
	// From is the envelope and header sender.
	From string
	// Timeout bounds the whole delivery, dial included, so one slow relay
	// cannot stall a request. Defaults to 10s.
	Timeout time.Duration
	// FailDomains are recipient domains that always fail transiently.
	FailDomains []string
}

// Send delivers the invite. Every failure on this path is transient from the
// caller's point of view: the relay may be down, slow, or rejecting, and
// none of that invalidates the admin record.
func (m *SMTP) Send(ctx context.Context, inv Invite) error {
	if DomainBlocked(m.FailDomains, inv.To) {
		return fmt.Errorf("%w: domain blocked for %s", ErrUnavailable, inv.To)
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.Addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrUnavailable, m.Addr, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(timeout))

	host, _, err := net.SplitHostPort(m.Addr)
	if err != nil {
		host = m.Addr
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("%w: handshake: %v", ErrUnavailable, err)
	}
	defer client.Close()

	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("%w: MAIL FROM: %v", ErrUnavailable, err)
	}
	if err := client.Rcpt(inv.To); err != nil {
		return fmt.Errorf("%w: RCPT TO: %v", ErrUnavailable, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%w: DATA: %v", ErrUnavailable, err)
	}
	if _, err := w.Write([]byte(message(m.From, inv))); err != nil {
		return fmt.Errorf("%w: write body: %v", ErrUnavailable, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: close body: %v", ErrUnavailable, err)
	}
	return client.Quit()
}

func message(from string, inv Invite) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", inv.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", inv.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(inv.Body)
	return b.String()
}

// Log writes invites to the logger instead of delivering them. Used in dev
// mode and in tests; it honors FailDomains so the transient path stays
// reachable without a relay.
type Log struct {
	Logger      *slog.Logger
	FailDomains []string
}

func (m *Log) Send(ctx context.Context, inv Invite) error {
	if DomainBlocked(m.FailDomains, inv.To) {
		return fmt.Errorf("%w: domain blocked for %s", ErrUnavailable, inv.To)
	}
	m.Logger.Info("invite mail (not delivered, log mode)",
		"to", inv.To,
		"subject", inv.Subject,
	)
	return nil
}
