package mailer

import (
	"html"
	"regexp"
	"strings"

	"github.com/almaluz/backend/pkg/sanitizer"
)

var (
	styleBlockRe = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	lineBreakRe  = regexp.MustCompile(`(?i)<(?:br\s*/?|/p|/div|/h[1-6]|/li|/tr)>`)
	multiBlankRe = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText derives a plain-text body from rendered HTML. This is a
// best-effort degrade for multipart emails, not a proper HTML renderer:
// style blocks are dropped, block-level closers become line breaks, all
// remaining markup is stripped, and runs of blank lines are collapsed.
func HTMLToText(htmlBody string) string {
	s := styleBlockRe.ReplaceAllString(htmlBody, "")
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = sanitizer.StripHTML(s)
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = multiBlankRe.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
