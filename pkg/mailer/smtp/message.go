package smtp

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// buildMessage serializes an email into wire format: visible headers plus a
// multipart/alternative body with the plain-text part first and the HTML
// part last, so clients treat HTML as the preferred rendering while
// text-only clients still degrade gracefully.
//
// Bcc recipients are envelope-only and never appear in headers.
func buildMessage(email *mailer.Email, host string) []byte {
	var buf bytes.Buffer
	header := func(key, value string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}

	header("From", email.From)
	header("To", strings.Join(email.To, ", "))
	if len(email.CC) > 0 {
		header("Cc", strings.Join(email.CC, ", "))
	}
	header("Subject", email.Subject)
	header("Date", time.Now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), host))
	header("MIME-Version", "1.0")

	mw := multipart.NewWriter(&buf)
	header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mw.Boundary()))
	buf.WriteString("\r\n")

	// Writes into a bytes.Buffer cannot fail.
	if email.Text != "" {
		part, _ := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type": {`text/plain; charset="UTF-8"`},
		})
		_, _ = part.Write([]byte(email.Text))
	}
	part, _ := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	_, _ = part.Write([]byte(email.HTML))
	_ = mw.Close()

	return buf.Bytes()
}
