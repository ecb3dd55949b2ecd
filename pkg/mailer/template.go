package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Source is a raw template file split into frontmatter metadata and body.
type Source struct {
	Metadata map[string]any
	Body     string
}

// Subject returns the subject pattern declared in the frontmatter, or ""
// when the template has none.
func (s *Source) Subject() string {
	if subject, ok := s.Metadata["Subject"].(string); ok {
		return subject
	}
	return ""
}

var frontmatterDelimiter = []byte("---")

// ParseSource splits template file content into YAML frontmatter and body.
// Content without an opening delimiter is treated as a bare body with empty
// metadata.
func ParseSource(content []byte) (*Source, error) {
	if !bytes.HasPrefix(content, frontmatterDelimiter) {
		return &Source{
			Metadata: make(map[string]any),
			Body:     string(content),
		}, nil
	}

	rest := bytes.TrimPrefix(content, frontmatterDelimiter)
	rest = bytes.TrimLeft(rest, "\r\n")
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	end := bytes.Index(rest, frontmatterDelimiter)
	if end == -1 {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	head := rest[:end]
	body := rest[end+len(frontmatterDelimiter):]
	// Drop the single newline that follows the closing delimiter.
	if bytes.HasPrefix(body, []byte("\r\n")) {
		body = body[2:]
	} else if bytes.HasPrefix(body, []byte("\n")) {
		body = body[1:]
	}

	metadata := make(map[string]any)
	if len(bytes.TrimSpace(head)) > 0 {
		if err := yaml.Unmarshal(head, &metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return &Source{
		Metadata: metadata,
		Body:     string(body),
	}, nil
}
