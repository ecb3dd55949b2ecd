package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrTemplateNotFound indicates the requested template id is not in the registry.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrSendFailed indicates email delivery failed.
	ErrSendFailed = errors.New("failed to send email")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter in a template source.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")

	// ErrInvalidConfig indicates invalid mailer configuration.
	ErrInvalidConfig = errors.New("invalid mailer configuration")
)
