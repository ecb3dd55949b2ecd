package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

// recordingSender captures sent emails and returns a configurable error.
type recordingSender struct {
	mu     sync.Mutex
	sent   []*mailer.Email
	result error
}

func (s *recordingSender) Send(_ context.Context, email *mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return s.result
	}
	s.sent = append(s.sent, email)
	return nil
}

func (s *recordingSender) last() *mailer.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return nil
	}
	return s.sent[len(s.sent)-1]
}

func testCatalog() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`<html><body>{{.Content}}</body></html>`),
		},
		"emails/payment_created.md": &fstest.MapFile{
			Data: []byte(`---
Subject: "Payment Created - {{payment_id}}"
---
Payment {{.payment_id}} for {{.service_name}}, amount {{.amount}}.
{{if .due_date}}Due: {{.due_date}}{{end}}`),
		},
		"emails/payment_failed.md": &fstest.MapFile{
			Data: []byte(`---
Subject: "Payment Failed - {{payment_id}}"
---
Payment {{.payment_id}} failed: {{.reason}}`),
		},
		"emails/application_approved.md": &fstest.MapFile{
			Data: []byte(`---
Subject: "Application Approved - {{application_id}}"
---
Application {{.application_id}} approved.`),
		},
	}
}

func newTestServer(t *testing.T, sender mailer.Sender, cfg mailer.Config) *chi.Mux {
	t.Helper()
	reg, err := mailer.NewRegistry(testCatalog())
	require.NoError(t, err)

	h := New(mailer.New(sender, reg, cfg, nil), nil)
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRootEndpoint(t *testing.T) {
	t.Parallel()

	r := newTestServer(t, &recordingSender{}, mailer.Config{})
	rec := doJSON(t, r, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "email-service", body["service"])
}

func TestSendEmail(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{DefaultSender: "noreply@example.com"})

		rec := doJSON(t, r, http.MethodPost, "/send", map[string]any{
			"to":             []string{"alice@example.com"},
			"subject":        "Test Subject",
			"body":           "Test Body",
			"html_body":      "<p>Test HTML</p>",
			"source_service": "test-service",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "success", body["status"])
		assert.Equal(t, "Email sent successfully", body["message"])

		email := sender.last()
		require.NotNil(t, email)
		assert.Equal(t, []string{"alice@example.com"}, email.To)
		assert.Equal(t, "Test Subject", email.Subject)
		assert.Equal(t, "<p>Test HTML</p>", email.HTML)
		assert.Equal(t, "Test Body", email.Text)
		assert.Equal(t, "noreply@example.com", email.From)
	})

	t.Run("string recipient accepted", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send", map[string]any{
			"to":      "alice@example.com",
			"subject": "Test",
			"body":    "Body",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"alice@example.com"}, sender.last().To)
	})

	t.Run("body doubles as html when html_body absent", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send", map[string]any{
			"to":      []string{"alice@example.com"},
			"subject": "Test",
			"body":    "Plain body",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		email := sender.last()
		assert.Equal(t, "Plain body", email.HTML)
		assert.Equal(t, "Plain body", email.Text)
	})

	t.Run("caller html is sanitized", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send", map[string]any{
			"to":        []string{"alice@example.com"},
			"subject":   "Test",
			"body":      "Body",
			"html_body": `<p>ok</p><script>alert(1)</script>`,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<p>ok</p>", sender.last().HTML)
	})

	t.Run("missing recipients rejected", func(t *testing.T) {
		t.Parallel()
		r := newTestServer(t, &recordingSender{}, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send", map[string]any{
			"subject": "Test",
			"body":    "Body",
		})

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["detail"], "'to'")
	})

	t.Run("missing subject rejected", func(t *testing.T) {
		t.Parallel()
		r := newTestServer(t, &recordingSender{}, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send", map[string]any{
			"to":   []string{"alice@example.com"},
			"body": "Body",
		})

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		t.Parallel()
		r := newTestServer(t, &recordingSender{}, mailer.Config{})

		req := httptest.NewRequest(http.MethodPost, "/send", bytes.NewBufferString("{broken"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("transport failure maps to 500", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{result: assert.AnError}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send", map[string]any{
			"to":      []string{"alice@example.com"},
			"subject": "Test",
			"body":    "Body",
		})

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to send email", decodeBody(t, rec)["detail"])
	})

	t.Run("sandbox mode reports success without delivery", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{SandboxMode: true})

		rec := doJSON(t, r, http.MethodPost, "/send", map[string]any{
			"to":      []string{"alice@example.com"},
			"subject": "Test",
			"body":    "Body",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, sender.last())
	})
}

func TestSendTemplate(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send-template", map[string]any{
			"to":          []string{"alice@example.com"},
			"template_id": "payment_created",
			"template_data": map[string]string{
				"payment_id":   "PAY123",
				"service_name": "X",
				"amount":       "100.00",
			},
			"source_service": "test-service",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "success", body["status"])
		assert.Equal(t, "Template email sent successfully", body["message"])

		email := sender.last()
		require.NotNil(t, email)
		assert.Equal(t, "Payment Created - PAY123", email.Subject)
		assert.Contains(t, email.HTML, "PAY123")
	})

	t.Run("custom subject used verbatim", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send-template", map[string]any{
			"to":            []string{"alice@example.com"},
			"template_id":   "payment_created",
			"template_data": map[string]string{"payment_id": "PAY123", "service_name": "X", "amount": "1.00"},
			"subject":       "Custom Subject",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Custom Subject", sender.last().Subject)
	})

	t.Run("unknown template maps to 404", func(t *testing.T) {
		t.Parallel()
		r := newTestServer(t, &recordingSender{}, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send-template", map[string]any{
			"to":          []string{"alice@example.com"},
			"template_id": "nope",
		})

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["detail"], "Error processing template")
	})

	t.Run("missing template_id rejected", func(t *testing.T) {
		t.Parallel()
		r := newTestServer(t, &recordingSender{}, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send-template", map[string]any{
			"to": []string{"alice@example.com"},
		})

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("delivery failure maps to 500", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{result: assert.AnError}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/send-template", map[string]any{
			"to":            []string{"alice@example.com"},
			"template_id":   "payment_created",
			"template_data": map[string]string{"payment_id": "PAY123", "service_name": "X", "amount": "1.00"},
		})

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to send template email", decodeBody(t, rec)["detail"])
	})
}

func TestEventEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("payment created", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/events/payment-created", map[string]any{
			"recipient":    "alice@example.com",
			"payment_id":   "PAY123",
			"service_name": "X",
			"amount":       100.0,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Payment created notification sent", decodeBody(t, rec)["message"])

		email := sender.last()
		require.NotNil(t, email)
		assert.Equal(t, []string{"alice@example.com"}, email.To)
		assert.Equal(t, "Payment Created - PAY123", email.Subject)
		assert.Contains(t, email.HTML, "100.00")
		assert.NotContains(t, email.HTML, "Due:")
	})

	t.Run("payment created with due date", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/events/payment-created", map[string]any{
			"recipient":    "alice@example.com",
			"payment_id":   "PAY123",
			"service_name": "X",
			"amount":       99.5,
			"due_date":     "2026-12-31",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		email := sender.last()
		assert.Contains(t, email.HTML, "2026-12-31")
		assert.Contains(t, email.HTML, "99.50")
	})

	t.Run("payment failed carries reason", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/events/payment-failed", map[string]any{
			"recipient":    "alice@example.com",
			"payment_id":   "PAY123",
			"service_name": "X",
			"amount":       100.0,
			"reason":       "Card declined",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, sender.last().HTML, "Card declined")
	})

	t.Run("application approved", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		r := newTestServer(t, sender, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/events/application-approved", map[string]any{
			"recipient":      "alice@example.com",
			"application_id": "APP123",
			"service_name":   "X",
			"amount":         100.5,
			"payment_id":     "PAY123",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Application Approved - APP123", sender.last().Subject)
	})

	t.Run("missing recipient rejected", func(t *testing.T) {
		t.Parallel()
		r := newTestServer(t, &recordingSender{}, mailer.Config{})

		rec := doJSON(t, r, http.MethodPost, "/events/payment-created", map[string]any{
			"payment_id": "PAY123",
		})

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
