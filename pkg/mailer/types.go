package mailer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Recipients holds a normalized list of email addresses.
// In JSON it accepts either a single address string or an array of strings,
// so callers can write `"to": "a@x.com"` or `"to": ["a@x.com", "b@x.com"]`.
type Recipients []string

// UnmarshalJSON accepts a string, an array of strings, or null.
func (r *Recipients) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = Recipients{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("recipients must be a string or an array of strings: %w", err)
	}
	*r = Recipients(list)
	return nil
}

// MarshalJSON always emits the canonical array form.
func (r Recipients) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(r))
}

// Normalize returns the recipient list with blank entries removed and
// surrounding whitespace trimmed. A nil receiver yields nil.
func (r Recipients) Normalize() []string {
	if len(r) == 0 {
		return nil
	}
	out := make([]string, 0, len(r))
	for _, addr := range r {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			out = append(out, addr)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email represents a fully-prepared email message ready for sending.
type Email struct {
	Subject string   // Email subject, post-substitution
	HTML    string   // HTML body content
	Text    string   // Plain text alternative, may be empty
	From    string   // Sender address
	To      []string // Recipients (at least one required)
	CC      []string // Carbon copy recipients
	BCC     []string // Blind carbon copy recipients, never exposed in headers
}

// EnvelopeRecipients returns the full SMTP envelope recipient list:
// to, cc, and bcc in order. Duplicates are kept; deduplication is the
// transport server's concern, not ours.
func (e *Email) EnvelopeRecipients() []string {
	out := make([]string, 0, len(e.To)+len(e.CC)+len(e.BCC))
	out = append(out, e.To...)
	out = append(out, e.CC...)
	out = append(out, e.BCC...)
	return out
}
