package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mlorenc/go-shop-api/internal/notify"
)

// Sender delivers one rendered email. Implementations must be safe for
// concurrent use by the consumer workers.
type Sender interface {
	Send(ctx context.Context, job notify.EmailJob) error
}

// SMTPSender talks plain SMTP to the relay named in config. There is no
// auth; the relay is expected to sit inside the deployment network.
type SMTPSender struct {
	Addr string
}

func (s *SMTPSender) Send(ctx context.Context, job notify.EmailJob) error {
	msg := buildMessage(job)
	if err := smtp.SendMail(s.Addr, nil, job.From, job.To, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

const mimeBoundary = "=_shop_mail_boundary"

// multipart/alternative with a text part and an html part.
func buildMessage(job notify.EmailJob) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", job.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(job.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", job.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(job.Text)
	b.WriteString("\r\n")

	if job.HTML != "" {
		fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(job.HTML)
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}
