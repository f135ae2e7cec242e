// Package textutil normalizes the rich-text notes stored on time entries.
package textutil

import (
	"regexp"
	"strings"
)

var (
	lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	paragraphTag = regexp.MustCompile(`(?i)<p(?:\s[^>]*)?>`)
	anchorTag    = regexp.MustCompile(`(?is)<a\s[^>]*?href="([^"]*)"[^>]*>(.*?)</a>`)
	anyTag       = regexp.MustCompile(`<(?:.|\s)*?>`)
	nbspRun      = regexp.MustCompile(`(?i)(?:&nbsp;)+`)
	ampRun       = regexp.MustCompile(`(?i)(?:&amp;)+`)
	whitespace   = regexp.MustCompile(`\s+`)

	jiraBrowseURL = regexp.MustCompile(`https?://\w+\.atlassian\.net/browse/`)
)

// StripHTML turns an HTML note into plain text. Line breaks and paragraphs
// become newlines, anchors become " URL text ", every other tag is dropped and
// whitespace runs collapse to a single space. Leading and trailing space is
// kept; callers trim when they need to.
func StripHTML(html string) string {
	if html == "" {
		return ""
	}

	plain := lineBreakTag.ReplaceAllString(html, "\n")
	plain = paragraphTag.ReplaceAllString(plain, "\n")
	plain = anchorTag.ReplaceAllStringFunc(plain, rewriteAnchor)
	plain = anyTag.ReplaceAllString(plain, "")
	plain = nbspRun.ReplaceAllString(plain, " ")
	plain = ampRun.ReplaceAllString(plain, "&")
	return whitespace.ReplaceAllString(plain, " ")
}

func rewriteAnchor(tag string) string {
	m := anchorTag.FindStringSubmatch(tag)
	if m == nil {
		return tag
	}
	href := m[1]
	text := strings.TrimSpace(anyTag.ReplaceAllString(m[2], ""))
	if text == "" || text == href {
		return " " + href + " "
	}
	return " " + href + " " + text + " "
}

// SimplifyJiraLinks strips the Atlassian browse prefix from issue URLs so that
// only the issue key (for example "ABC-123") is left.
func SimplifyJiraLinks(s string) string {
	return jiraBrowseURL.ReplaceAllString(s, "")
}
