// Package handlers exposes the HTTP surface of the dispatch service: ad-hoc
// sends, template sends, and typed event endpoints for the payment and
// application lifecycle.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/metrics"
	"github.com/dmitrymomot/mailroom/pkg/sanitizer"
)

// Handler serves the dispatch endpoints on top of a configured Mailer.
type Handler struct {
	mailer *mailer.Mailer
	log    *slog.Logger
}

// New creates a Handler. A nil logger discards log output.
func New(m *mailer.Mailer, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{mailer: m, log: log}
}

// Routes mounts all endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.root)
	r.Post("/send", h.sendEmail)
	r.Post("/send-template", h.sendTemplate)
	r.Route("/events", func(r chi.Router) {
		r.Post("/payment-created", h.paymentCreated)
		r.Post("/payment-success", h.paymentSuccess)
		r.Post("/payment-failed", h.paymentFailed)
		r.Post("/application-created", h.applicationCreated)
		r.Post("/application-approved", h.applicationApproved)
		r.Post("/application-rejected", h.applicationRejected)
		r.Post("/application-deleted", h.applicationDeleted)
	})
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "email-service",
	})
}

// decode unmarshals the request body into v, answering malformed JSON with
// a 400. Unknown fields are ignored so callers can evolve their payloads.
// Returns false when a response has already been written.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.To.Normalize()) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "field 'to' is required")
		return
	}
	if req.Subject == "" {
		respondError(w, http.StatusUnprocessableEntity, "field 'subject' is required")
		return
	}
	if req.Body == "" {
		respondError(w, http.StatusUnprocessableEntity, "field 'body' is required")
		return
	}

	// When no HTML body is given the plain body serves both parts. Caller
	// HTML is untrusted and gets sanitized before it reaches the wire.
	html := req.Body
	if req.HTMLBody != "" {
		html = sanitizer.SanitizeEmailHTML(req.HTMLBody)
	}

	if len(req.Attachments) > 0 {
		h.log.WarnContext(r.Context(), "attachments are not supported, ignoring",
			slog.Int("count", len(req.Attachments)),
			slog.String("source_service", req.SourceService))
	}

	ok := h.mailer.SendEmail(r.Context(), mailer.SendEmailParams{
		To:      req.To,
		CC:      req.CC,
		BCC:     req.BCC,
		Subject: req.Subject,
		HTML:    html,
		Text:    req.Body,
		From:    req.Sender,
	})
	if !ok {
		respondError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}
	respondSuccess(w, "Email sent successfully")
}

func (h *Handler) sendTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateEmailRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.To.Normalize()) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "field 'to' is required")
		return
	}
	if req.TemplateID == "" {
		respondError(w, http.StatusUnprocessableEntity, "field 'template_id' is required")
		return
	}

	ok, err := h.mailer.SendTemplate(r.Context(), mailer.SendTemplateParams{
		To:         req.To,
		CC:         req.CC,
		BCC:        req.BCC,
		TemplateID: req.TemplateID,
		Data:       req.TemplateData,
		Subject:    req.Subject,
		From:       req.Sender,
	})
	if err != nil {
		metrics.TemplateRenderFailure.WithLabelValues(req.TemplateID).Inc()
		h.log.ErrorContext(r.Context(), "template rendering failed",
			slog.String("template_id", req.TemplateID),
			slog.String("source_service", req.SourceService),
			slog.Any("error", err))
		if errors.Is(err, mailer.ErrTemplateNotFound) {
			respondError(w, http.StatusNotFound, "Error processing template: "+err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Error processing template: "+err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusInternalServerError, "Failed to send template email")
		return
	}
	respondSuccess(w, "Template email sent successfully")
}

// sendEvent renders the catalog template for a lifecycle event and reports
// the outcome in the uniform status/detail shape.
func (h *Handler) sendEvent(w http.ResponseWriter, r *http.Request, recipient, templateID string, data map[string]string, successMsg string) {
	ok, err := h.mailer.SendTemplate(r.Context(), mailer.SendTemplateParams{
		To:         mailer.Recipients{recipient},
		TemplateID: templateID,
		Data:       data,
	})
	if err != nil {
		metrics.TemplateRenderFailure.WithLabelValues(templateID).Inc()
		h.log.ErrorContext(r.Context(), "event notification failed",
			slog.String("template_id", templateID),
			slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Error processing template: "+err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusInternalServerError, "Failed to send notification")
		return
	}
	respondSuccess(w, successMsg)
}

// formatAmount renders monetary amounts with two decimal places so templates
// and subjects always show "100.00" style values.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (h *Handler) paymentCreated(w http.ResponseWriter, r *http.Request) {
	var req PaymentCreatedRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Recipient == "" {
		respondError(w, http.StatusUnprocessableEntity, "field 'recipient' is required")
		return
	}
	data := map[string]string{
		"payment_id":   req.PaymentID,
		"service_name": req.ServiceName,
		"amount":       formatAmount(req.Amount),
	}
	if req.DueDate != "" {
		data["due_date"] = req.DueDate
	}
	h.sendEvent(w, r, req.Recipient, "payment_created", data, "Payment created notification sent")
}

func (h *Handler) paymentSuccess(w http.ResponseWriter, r *http.Request) {
	var req PaymentSuccessRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Recipient == "" {
		respondError(w, http.StatusUnprocessableEntity, "field 'recipient' is required")
		return
	}
	data := map[string]string{
		"payment_id":   req.PaymentID,
		"service_name": req.ServiceName,
		"amount":       formatAmount(req.Amount),
	}
	if req.TransactionID != "" {
		data["transaction_id"] = req.TransactionID
	}
	h.sendEvent(w, r, req.Recipient, "payment_success", data, "Payment success notification sent")
}

func (h *Handler) paymentFailed(w http.ResponseWriter, r *http.Request) {
	var req PaymentFailedRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Recipient == "" {
		respondError(w, http.StatusUnprocessableEntity, "field 'recipient' is required")
		return
	}
	data := map[string]string{
		"payment_id":   req.PaymentID,
		"service_name": req.ServiceName,
		"amount":       formatAmount(req.Amount),
		"reason":       req.Reason,
	}
	h.sendEvent(w, r, req.Recipient, "payment_failed", data, "Payment failed notification sent")
}

func (h *Handler) applicationCreated(w http.ResponseWriter, r *http.Request) {
	var req ApplicationCreatedRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Recipient == "" {
		respondError(w, http.StatusUnprocessableEntity, "field 'recipient' is required")
		return
	}
	data := map[string]string{
		"application_id": req.ApplicationID,
		"service_name":   req.ServiceName,
		"amount":         formatAmount(req.Amount),
	}
	h.sendEvent(w, r, req.Recipient, "application_created", data, "Application created notification sent")
}

func (h *Handler) applicationApproved(w http.ResponseWriter, r *http.Request) {
	var req ApplicationApprovedRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Recipient == "" {
		respondError(w, http.StatusUnprocessableEntity, "field 'recipient' is required")
		return
	}
	data := map[string]string{
		"application_id": req.ApplicationID,
		"service_name":   req.ServiceName,
		"amount":         formatAmount(req.Amount),
	}
	if req.PaymentID != "" {
		data["payment_id"] = req.PaymentID
	}
	h.sendEvent(w, r, req.Recipient, "application_approved", data, "Application approved notification sent")
}

func (h *Handler) applicationRejected(w http.ResponseWriter, r *http.Request) {
	var req ApplicationRejectedRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Recipient == "" {
		respondError(w, http.StatusUnprocessableEntity, "field 'recipient' is required")
		return
	}
	data := map[string]string{
		"application_id": req.ApplicationID,
		"service_name":   req.ServiceName,
		"amount":         formatAmount(req.Amount),
		"reason":         req.Reason,
	}
	h.sendEvent(w, r, req.Recipient, "application_rejected", data, "Application rejected notification sent")
}

func (h *Handler) applicationDeleted(w http.ResponseWriter, r *http.Request) {
	var req ApplicationDeletedRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Recipient == "" {
		respondError(w, http.StatusUnprocessableEntity, "field 'recipient' is required")
		return
	}
	data := map[string]string{
		"application_id": req.ApplicationID,
		"service_name":   req.ServiceName,
		"amount":         formatAmount(req.Amount),
	}
	h.sendEvent(w, r, req.Recipient, "application_deleted", data, "Application deleted notification sent")
}
