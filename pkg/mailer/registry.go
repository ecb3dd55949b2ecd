package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
)

// TextFallbackNotice is the plain-text alternative substituted when a template
// has no text source or its text source fails to render. The HTML body is the
// canonical rendering; this is only a hint for text-only clients.
const TextFallbackNotice = "Please view this message in an HTML-compatible email client."

// RegistryConfig configures template discovery inside the backing filesystem.
type RegistryConfig struct {
	TemplateDir     string // directory with *.md bodies and optional *.txt siblings, default "emails"
	LayoutDir       string // directory with HTML layouts, default "layouts"
	Layout          string // layout filename wrapped around every rendered body, default "base.html"
	FallbackSubject string // subject returned for unknown template ids, default "Notification"
}

// entry is a compiled catalog template: subject pattern, markdown body and
// optional plain-text source. Built once at startup, never mutated.
type entry struct {
	metadata map[string]any
	subject  string
	body     *texttemplate.Template
	text     *texttemplate.Template // nil when no .txt sibling exists
}

// Registry maps template ids to compiled email templates.
//
// All templates are loaded and compiled eagerly by NewRegistry so that broken
// templates fail process startup instead of the first request. The registry is
// read-only afterwards and safe for concurrent use without locking.
type Registry struct {
	md              goldmark.Markdown
	layout          *template.Template
	entries         map[string]*entry
	fallbackSubject string
}

// NewRegistry loads every template from the filesystem using default config.
func NewRegistry(fsys fs.FS) (*Registry, error) {
	return NewRegistryWithConfig(fsys, RegistryConfig{})
}

// NewRegistryWithConfig loads every *.md template under the template dir,
// together with the layout and any *.txt siblings. Any unreadable or
// uncompilable template makes the whole call fail.
func NewRegistryWithConfig(fsys fs.FS, cfg RegistryConfig) (*Registry, error) {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "emails"
	}
	if cfg.LayoutDir == "" {
		cfg.LayoutDir = "layouts"
	}
	if cfg.Layout == "" {
		cfg.Layout = "base.html"
	}
	if cfg.FallbackSubject == "" {
		cfg.FallbackSubject = "Notification"
	}

	layoutPath := path.Join(cfg.LayoutDir, cfg.Layout)
	layoutContent, err := fs.ReadFile(fsys, layoutPath)
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrTemplateNotFound, layoutPath, err)
	}
	layout, err := template.New(cfg.Layout).Parse(string(layoutContent))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse layout %s: %v", ErrRenderFailed, layoutPath, err)
	}

	matches, err := fs.Glob(fsys, path.Join(cfg.TemplateDir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no templates under %s", ErrTemplateNotFound, cfg.TemplateDir)
	}

	entries := make(map[string]*entry, len(matches))
	for _, name := range matches {
		id := strings.TrimSuffix(path.Base(name), ".md")

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, id, err)
		}

		source, err := ParseSource(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}

		body, err := texttemplate.New(id).Parse(source.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse template body %s: %v", ErrRenderFailed, id, err)
		}

		e := &entry{
			metadata: source.Metadata,
			subject:  source.Subject(),
			body:     body,
		}

		// Optional plain-text sibling. When it exists it must compile;
		// silently shipping a broken text source would only surface as the
		// fallback notice in production.
		txtPath := path.Join(cfg.TemplateDir, id+".txt")
		if txtContent, err := fs.ReadFile(fsys, txtPath); err == nil {
			txt, err := texttemplate.New(id + ".txt").Parse(string(txtContent))
			if err != nil {
				return nil, fmt.Errorf("%w: failed to parse text template %s: %v", ErrRenderFailed, id, err)
			}
			e.text = txt
		}

		entries[id] = e
	}

	return &Registry{
		md: goldmark.New(
			goldmark.WithExtensions(NewButtonExtension()),
		),
		layout:          layout,
		entries:         entries,
		fallbackSubject: cfg.FallbackSubject,
	}, nil
}

// MustNewRegistry loads templates and panics on failure.
// Broken templates should prevent startup, not surface per request.
func MustNewRegistry(fsys fs.FS, cfg RegistryConfig) *Registry {
	reg, err := NewRegistryWithConfig(fsys, cfg)
	if err != nil {
		panic(err)
	}
	return reg
}

// Has reports whether the registry holds a template with the given id.
func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Subject returns the raw subject pattern for a template id, with {{token}}
// placeholders intact. Unknown ids yield the fallback subject; this is a
// display fallback and never an error.
func (r *Registry) Subject(id string) string {
	e, ok := r.entries[id]
	if !ok || e.subject == "" {
		return r.fallbackSubject
	}
	return e.subject
}

// Render produces the HTML and plain-text bodies for a template id.
//
// The markdown body is executed against data, converted to HTML and wrapped
// in the layout; any failure along that path fails the whole call. The text
// body comes from the .txt sibling when one exists and renders, and falls
// back to TextFallbackNotice otherwise. There is no partial result: either
// both bodies are returned or an error is.
func (r *Registry) Render(id string, data map[string]string) (html, text string, err error) {
	e, ok := r.entries[id]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}

	var processed bytes.Buffer
	if err := e.body.Execute(&processed, data); err != nil {
		return "", "", fmt.Errorf("%w: failed to execute template %s: %v", ErrRenderFailed, id, err)
	}

	var fragment bytes.Buffer
	if err := r.md.Convert(processed.Bytes(), &fragment); err != nil {
		return "", "", fmt.Errorf("%w: failed to convert markdown %s: %v", ErrRenderFailed, id, err)
	}

	var page bytes.Buffer
	layoutData := map[string]any{
		"Content":  template.HTML(fragment.String()), //nolint:gosec // own template output
		"Metadata": e.metadata,
	}
	if err := r.layout.Execute(&page, layoutData); err != nil {
		return "", "", fmt.Errorf("%w: failed to execute layout for %s: %v", ErrRenderFailed, id, err)
	}

	return page.String(), r.renderText(e, data), nil
}

// renderText resolves the plain-text alternative. This path never fails.
func (r *Registry) renderText(e *entry, data map[string]string) string {
	if e.text == nil {
		return TextFallbackNotice
	}
	var buf bytes.Buffer
	if err := e.text.Execute(&buf, data); err != nil {
		return TextFallbackNotice
	}
	return buf.String()
}

// SubstituteSubject replaces every {{key}} token in a subject pattern with
// the corresponding value from data. Unknown tokens are left untouched.
// Patterns use bare tokens, not Go template syntax, because they travel
// through the registry catalog as plain strings.
func SubstituteSubject(pattern string, data map[string]string) string {
	for key, value := range data {
		pattern = strings.ReplaceAll(pattern, "{{"+key+"}}", value)
	}
	return pattern
}
