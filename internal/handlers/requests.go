package handlers

import "github.com/dmitrymomot/mailroom/pkg/mailer"

// EmailRequest is the payload for POST /send. Body is the plain-text content;
// when HTMLBody is empty the body doubles as the HTML content. Attachments are
// accepted for forward compatibility but not delivered.
type EmailRequest struct {
	To            mailer.Recipients `json:"to"`
	Subject       string            `json:"subject"`
	Body          string            `json:"body"`
	HTMLBody      string            `json:"html_body,omitempty"`
	CC            mailer.Recipients `json:"cc,omitempty"`
	BCC           mailer.Recipients `json:"bcc,omitempty"`
	Sender        string            `json:"sender,omitempty"`
	SourceService string            `json:"source_service"`
	Attachments   []map[string]any  `json:"attachments,omitempty"`
}

// TemplateEmailRequest is the payload for POST /send-template. Subject, when
// set, overrides the template's subject pattern verbatim (no substitution).
type TemplateEmailRequest struct {
	To            mailer.Recipients `json:"to"`
	TemplateID    string            `json:"template_id"`
	TemplateData  map[string]string `json:"template_data"`
	Subject       string            `json:"subject,omitempty"`
	CC            mailer.Recipients `json:"cc,omitempty"`
	BCC           mailer.Recipients `json:"bcc,omitempty"`
	Sender        string            `json:"sender,omitempty"`
	SourceService string            `json:"source_service"`
}

type PaymentCreatedRequest struct {
	Recipient   string  `json:"recipient"`
	PaymentID   string  `json:"payment_id"`
	ServiceName string  `json:"service_name"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date,omitempty"`
}

type PaymentSuccessRequest struct {
	Recipient     string  `json:"recipient"`
	PaymentID     string  `json:"payment_id"`
	ServiceName   string  `json:"service_name"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transaction_id,omitempty"`
}

type PaymentFailedRequest struct {
	Recipient   string  `json:"recipient"`
	PaymentID   string  `json:"payment_id"`
	ServiceName string  `json:"service_name"`
	Amount      float64 `json:"amount"`
	Reason      string  `json:"reason"`
}

type ApplicationCreatedRequest struct {
	Recipient     string  `json:"recipient"`
	ApplicationID string  `json:"application_id"`
	ServiceName   string  `json:"service_name"`
	Amount        float64 `json:"amount"`
}

type ApplicationApprovedRequest struct {
	Recipient     string  `json:"recipient"`
	ApplicationID string  `json:"application_id"`
	ServiceName   string  `json:"service_name"`
	Amount        float64 `json:"amount"`
	PaymentID     string  `json:"payment_id,omitempty"`
}

type ApplicationRejectedRequest struct {
	Recipient     string  `json:"recipient"`
	ApplicationID string  `json:"application_id"`
	ServiceName   string  `json:"service_name"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason"`
}

type ApplicationDeletedRequest struct {
	Recipient     string  `json:"recipient"`
	ApplicationID string  `json:"application_id"`
	ServiceName   string  `json:"service_name"`
	Amount        float64 `json:"amount"`
}
