// Package templates embeds the notification catalog shipped with the service.
//
// Markdown sources live under emails/, one file per template id, with YAML
// frontmatter carrying the subject pattern. An optional .txt sibling provides
// the plain-text rendering; templates without one fall back to a generic
// notice at render time. HTML layouts live under layouts/.
package templates

import "embed"

//go:embed emails layouts
var FS embed.FS
