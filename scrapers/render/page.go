package render

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/base"
)

// ResultFromHTML builds a Result from browser-rendered HTML the way the
// metadata API would: og tags, <title>, and the selector hints.
func ResultFromHTML(html, finalURL string, hints Hints) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	result := &Result{
		Title: base.FirstNonEmpty(doc,
			base.Attr(`meta[property="og:title"]`, "content"),
			base.Text("title"),
		),
		Description: base.FirstNonEmpty(doc,
			base.Attr(`meta[property="og:description"]`, "content"),
			base.Attr(`meta[name="description"]`, "content"),
		),
		URL: finalURL,
	}
	if hints.Price != "" {
		result.Price = base.FirstNonEmpty(doc, base.Text(hints.Price))
	}
	if hints.Specs != "" {
		result.Specs = base.FirstNonEmpty(doc, base.Text(hints.Specs))
	}

	if img := base.FirstNonEmpty(doc, base.Attr(`meta[property="og:image"]`, "content")); img != "" {
		result.Image = &Image{
			URL:    img,
			Width:  atoi(base.FirstNonEmpty(doc, base.Attr(`meta[property="og:image:width"]`, "content"))),
			Height: atoi(base.FirstNonEmpty(doc, base.Attr(`meta[property="og:image:height"]`, "content"))),
		}
	}
	return result, nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
