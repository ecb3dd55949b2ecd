// Package sanitizer provides bluemonday policies for HTML that enters the
// service from callers rather than from the template registry.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	emailPolicy *bluemonday.Policy
	initOnce    sync.Once
)

func initPolicy() {
	initOnce.Do(func() {
		// Email markup is table-era HTML: allow structural tags, images
		// and inline styles, strip scripts and event handlers.
		emailPolicy = bluemonday.NewPolicy()
		emailPolicy.AllowStandardURLs()
		emailPolicy.AllowElements(
			"html", "head", "body", "title",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"p", "br", "hr", "div", "span",
			"strong", "b", "em", "i", "u", "small",
			"ul", "ol", "li",
			"table", "thead", "tbody", "tfoot", "tr", "td", "th",
			"code", "pre", "blockquote",
			"img",
		)
		emailPolicy.AllowAttrs("href").OnElements("a")
		emailPolicy.AllowAttrs("src", "alt", "width", "height").OnElements("img")
		emailPolicy.AllowAttrs("style").Globally()
		emailPolicy.AllowAttrs("align", "valign", "cellpadding", "cellspacing", "border", "width").OnElements("table", "td", "th", "tr")
	})
}

// SanitizeEmailHTML strips dangerous markup from caller-supplied HTML bodies
// while keeping the layout tags mail clients rely on. Registry-rendered HTML
// never passes through here; it is trusted output of our own templates.
func SanitizeEmailHTML(s string) string {
	initPolicy()
	return emailPolicy.Sanitize(s)
}

// SanitizeEmailHTMLCustom applies a custom bluemonday policy.
// Returns input unchanged if policy is nil.
func SanitizeEmailHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
