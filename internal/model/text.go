package model

import (
	"html"
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// CleanText converts an HTML or HTML-encoded snippet to plain text that is safe
// to embed anywhere a quoted literal is expected. It unescapes entities, strips
// all tags, replaces single quotes with a typographic apostrophe and collapses
// whitespace. CleanText(CleanText(s)) == CleanText(s) for tag-free input.
func CleanText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	plain = strings.ReplaceAll(plain, "'", "’")
	return strings.Join(strings.Fields(plain), " ")
}
