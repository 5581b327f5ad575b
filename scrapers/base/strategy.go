package base

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy extracts one field from a document. An empty result means the
// next strategy should be tried.
type Strategy func(doc *goquery.Document) string

// FirstNonEmpty runs strategies in order and returns the first non-empty result.
func FirstNonEmpty(doc *goquery.Document, strategies ...Strategy) string {
	if doc == nil {
		return ""
	}
	for _, s := range strategies {
		if v := strings.TrimSpace(s(doc)); v != "" {
			return v
		}
	}
	return ""
}

// Text returns the trimmed text of the first element matching selector.
func Text(selector string) Strategy {
	return func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(selector).First().Text())
	}
}

// Attr returns the trimmed attribute of the first element matching selector.
func Attr(selector, attr string) Strategy {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find(selector).First().Attr(attr)
		return strings.TrimSpace(v)
	}
}

// Price is Text with CleanPrice applied, so text without digits falls through.
func Price(selector string) Strategy {
	return func(doc *goquery.Document) string {
		return CleanPrice(Text(selector)(doc))
	}
}

// List renders the non-empty texts of every match as a <ul> fragment.
func List(selector string) Strategy {
	return func(doc *goquery.Document) string {
		var items []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				items = append(items, t)
			}
		})
		return ListHTML(items)
	}
}

// ScriptMatch returns the first capture group of re found in any inline script.
func ScriptMatch(re *regexp.Regexp) Strategy {
	return func(doc *goquery.Document) string {
		var found string
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if m := re.FindStringSubmatch(s.Text()); len(m) > 1 && m[1] != "" {
				found = m[1]
				return false
			}
			return true
		})
		return found
	}
}

// ListHTML joins items into <ul><li>…</li></ul>, escaping each item.
func ListHTML(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(item))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}
