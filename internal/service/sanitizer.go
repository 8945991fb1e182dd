package service

import (
	"html"
	"regexp"
	"strings"
)

var (
	slugPattern      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	paragraphPattern = regexp.MustCompile(`\n[ \t]*\n+`)
)

// RenderContent escapes user content and turns it into paragraph HTML.
// Blank lines separate paragraphs, single newlines become <br>.
func RenderContent(content string) string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return ""
	}

	blocks := paragraphPattern.Split(normalized, -1)
	var b strings.Builder
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		for i := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(lines[i]))
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

// ValidSlug reports whether slug is lowercase words joined by single hyphens.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}
