// Package metrics defines Prometheus metrics for the mailroom service:
// transport delivery outcomes and template rendering failures.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MailSendSuccess counts emails accepted by the transport, per host.
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailroom_mail_send_success_total",
		Help: "Total number of emails accepted by the mail transport",
	}, []string{"host"})

	// MailSendFailure counts delivery attempts rejected or failed at the
	// transport, per host.
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailroom_mail_send_failure_total",
		Help: "Total number of failed mail delivery attempts",
	}, []string{"host"})

	// TemplateRenderFailure counts rendering errors per template id.
	TemplateRenderFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailroom_template_render_failure_total",
		Help: "Total number of template rendering failures",
	}, []string{"template"})
)

func init() {
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(TemplateRenderFailure)
}

// Handler exposes the default Prometheus registry over HTTP.
func Handler() http.Handler {
	return promhttp.Handler()
}
