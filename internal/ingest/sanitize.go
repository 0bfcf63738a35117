package ingest

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	sanitizePolicy = bluemonday.UGCPolicy()
	spaceRe        = regexp.MustCompile(`\s+`)
)

// HTMLToText sanitizes an HTML fragment and flattens it to plain text.
// Scripts, styles and event handlers are stripped before extraction.
func HTMLToText(fragment string) string {
	safe := sanitizePolicy.Sanitize(fragment)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(safe))
	if err != nil {
		// Sanitized input that still fails to parse is treated as text.
		return cleanText(safe)
	}

	var b strings.Builder
	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			node := c.Get(0)
			if node.Type == html.TextNode {
				b.WriteString(node.Data)
				b.WriteString(" ")
				return
			}
			walk(c)
		})
	}
	walk(doc.Find("body"))

	return cleanText(b.String())
}

// cleanText collapses whitespace runs and trims the result.
func cleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func appendUnique(list []string, v string) []string {
	v = cleanText(v)
	if v == "" {
		return list
	}
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}
