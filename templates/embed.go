package templates

import "embed"

// EmailFS holds the HTML bodies of outgoing mail, rendered with html/template.
//
//go:embed email/*.html
var EmailFS embed.FS
