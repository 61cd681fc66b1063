package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// EncryptionMode selects how the SMTP connection is secured.
type EncryptionMode string

const (
	EncNone     EncryptionMode = "NONE"
	EncStartTLS EncryptionMode = "STARTTLS"
	EncSSLTLS   EncryptionMode = "SSL/TLS"
)

const (
	dialTimeout = 15 * time.Second
	// applies when the caller's context carries no deadline
	defaultSendTimeout = 30 * time.Second
)

// EmailSettings configures the SMTP sink.
type EmailSettings struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	To         string
	Encryption string
}

// EmailNotifier mails lockout alerts to an administrative recipient.
type EmailNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
	enc      EncryptionMode
}

// NewEmailNotifier returns nil when s has no host or recipient.
func NewEmailNotifier(s EmailSettings) *EmailNotifier {
	if strings.TrimSpace(s.Host) == "" || strings.TrimSpace(s.To) == "" {
		return nil
	}
	mode := EncryptionMode(strings.ToUpper(strings.TrimSpace(s.Encryption)))
	if mode != EncNone && mode != EncStartTLS && mode != EncSSLTLS {
		mode = EncStartTLS
	}
	from := s.From
	if from == "" {
		from = s.Username
	}
	return &EmailNotifier{
		host:     s.Host,
		port:     s.Port,
		username: s.Username,
		password: s.Password,
		from:     from,
		to:       s.To,
		enc:      mode,
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, e LockoutEvent) error {
	msg := buildMessage(n.from, n.to, "Vendedor bloqueado: "+e.SalespersonID, e.message())
	address := net.JoinHostPort(n.host, fmt.Sprint(n.port))

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	conn, err := n.dial(ctx, address)
	if err != nil {
		return fmt.Errorf("email: dial: %w", err)
	}
	defer conn.Close()

	// smtp.Client has no context support; bound every read and write
	// and drop the connection when ctx is cancelled.
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultSendTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("email: set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, n.host)
	if err != nil {
		return fmt.Errorf("email: new client: %w", err)
	}
	defer c.Quit()

	if n.enc == EncStartTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: n.host}); err != nil {
				return fmt.Errorf("email: starttls: %w", err)
			}
		}
	}
	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("email: auth: %w", err)
		}
	}
	if err := c.Mail(n.from); err != nil {
		return fmt.Errorf("email: MAIL FROM: %w", err)
	}
	if err := c.Rcpt(n.to); err != nil {
		return fmt.Errorf("email: RCPT TO %s: %w", n.to, err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("email: DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("email: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("email: close data: %w", err)
	}
	return nil
}

func (n *EmailNotifier) dial(ctx context.Context, address string) (net.Conn, error) {
	d := &net.Dialer{Timeout: dialTimeout}
	if n.enc == EncSSLTLS {
		td := &tls.Dialer{NetDialer: d, Config: &tls.Config{ServerName: n.host}}
		return td.DialContext(ctx, "tcp", address)
	}
	return d.DialContext(ctx, "tcp", address)
}

func buildMessage(from, to, subject, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
