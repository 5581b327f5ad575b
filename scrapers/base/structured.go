package base

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StructuredData holds what a page declares about itself through JSON-LD
// and meta tags. Empty fields were not found.
type StructuredData struct {
	Name     string
	Price    string
	ImageURL string
	Specs    string
}

// ParseStructuredData reads Product nodes from JSON-LD blocks, then fills the
// remaining name, image and description from og/twitter meta tags and <title>.
// Malformed blocks are skipped.
func ParseStructuredData(doc *goquery.Document) StructuredData {
	var out StructuredData
	if doc == nil {
		return out
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(s.Text()))))
		dec.UseNumber()
		var data any
		if err := dec.Decode(&data); err != nil {
			return
		}
		for _, item := range asList(data) {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			nodes := []any{obj}
			if graph, ok := obj["@graph"]; ok && graph != nil {
				nodes = asList(graph)
			}
			for _, n := range nodes {
				node, ok := n.(map[string]any)
				if !ok || !isProductNode(node) {
					continue
				}
				out.fillFrom(node)
			}
		}
	})

	if out.Name == "" {
		out.Name = CleanTitle(FirstNonEmpty(doc,
			metaContent("og:title"),
			metaContent("twitter:title"),
			Attr(`meta[name="title"]`, "content"),
			Text("title"),
		))
	}
	if out.ImageURL == "" {
		out.ImageURL = FirstNonEmpty(doc,
			metaContent("og:image"),
			metaContent("og:image:url"),
			metaContent("twitter:image"),
		)
	}
	if out.Specs == "" {
		out.Specs = FirstNonEmpty(doc,
			metaContent("og:description"),
			Attr(`meta[name="description"]`, "content"),
			metaContent("twitter:description"),
		)
	}
	return out
}

func (d *StructuredData) fillFrom(node map[string]any) {
	if d.Name == "" {
		d.Name = CleanTitle(scalarString(node["name"]))
	}
	if d.ImageURL == "" {
		d.ImageURL = imageString(node["image"])
	}
	if d.Specs == "" {
		d.Specs = strings.TrimSpace(scalarString(node["description"]))
	}
	if d.Price == "" {
		if offers := asList(node["offers"]); len(offers) > 0 {
			if offer, ok := offers[0].(map[string]any); ok {
				d.Price = priceString(offer["price"])
				if d.Price == "" {
					d.Price = priceString(offer["lowPrice"])
				}
			}
		}
	}
}

// metaContent matches either the property or the name attribute.
func metaContent(key string) Strategy {
	return func(doc *goquery.Document) string {
		return FirstNonEmpty(doc,
			Attr(fmt.Sprintf(`meta[property=%q]`, key), "content"),
			Attr(fmt.Sprintf(`meta[name=%q]`, key), "content"),
		)
	}
}

func isProductNode(node map[string]any) bool {
	var t string
	switch v := node["@type"].(type) {
	case string:
		t = v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		t = strings.Join(parts, ",")
	}
	return t == "Product" || strings.Contains(strings.ToLower(t), "product")
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprint(t)
	}
	return ""
}

func imageString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		if len(t) == 0 {
			return ""
		}
		return imageString(t[0])
	case map[string]any:
		return strings.TrimSpace(scalarString(t["url"]))
	}
	return ""
}

// priceString formats numbers without trailing zeros; zero counts as missing.
func priceString(v any) string {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		if f == 0 {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case string:
		return strings.TrimSpace(t)
	}
	return ""
}
