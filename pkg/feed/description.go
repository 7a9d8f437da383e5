package feed

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// cleanDescription drops embedded markup and collapses whitespace runs.
// Line-break and block elements become word separators.
func cleanDescription(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsRune(s, '<') {
		return collapseWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(tagRegex.ReplaceAllString(s, " "))
	}
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").AppendHtml(" ")
	doc.Find("script, style").Remove()

	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
