// Package mailer implements the two engines behind transactional email
// dispatch: a template rendering engine and a delivery engine.
//
// # Architecture
//
// The package consists of three main components:
//
//   - Registry: resolves template ids to compiled templates and renders
//     HTML plus plain-text bodies with variable substitution
//   - Sender: interface that transport providers implement
//   - Mailer: delivery engine combining a Sender with the Registry
//
// # Templates
//
// Templates are markdown files with YAML frontmatter, loaded once from an
// fs.FS (usually embedded) when the registry is built:
//
//	---
//	Subject: "Payment Created - {{payment_id}}"
//	---
//	# Payment Created
//
//	A new payment for **{{.service_name}}** was created.
//
//	[!button|Pay Now]({{.payment_url}})
//
// Bodies use Go template syntax over a map[string]string, so optional
// sections gate on key presence: {{if .due_date}}...{{end}}. Subject
// patterns use bare {{token}} placeholders substituted verbatim with
// SubstituteSubject. A template may ship a .txt sibling as its plain-text
// source; without one, or when the sibling fails to render, the text body
// falls back to TextFallbackNotice.
//
// Registry loading is eager and fail-fast: a broken template prevents
// startup rather than failing the first request. After construction the
// registry is immutable and needs no locking.
//
// # Delivery
//
// Mailer.SendEmail performs one synchronous delivery attempt and reports
// success as a bool. Transport failures are logged and converted to false;
// they never propagate as errors. Rendering failures from SendTemplate are
// returned as errors, because an unknown template id is a caller bug, not a
// transient condition. This asymmetry is deliberate.
//
// Recipients accept a single address or a list at the JSON boundary and are
// normalized before any engine logic runs. The SMTP envelope covers
// to ∪ cc ∪ bcc while visible headers never include bcc.
//
// # Providers
//
// Transport providers implement Sender:
//
//   - smtp.Sender: direct SMTP with STARTTLS (subpackage smtp)
//   - resend.Sender: Resend API (subpackage resend)
//   - DevSender: writes emails to disk for local development
//
// The provider is chosen once at startup; there is no failover routing.
package mailer
