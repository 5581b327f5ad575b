package catalog

import (
	"html"
	"regexp"
	"strings"

	"github.com/raushankrgupta/marketchoice-admin/models"
)

var (
	specNoise      = regexp.MustCompile(`(?i)About this item|See more product details|Report an issue with this product`)
	bulletSplitter = regexp.MustCompile(`\n|•|\s-\s`)
)

// ProductForm is the editable draft shown before a product is committed.
type ProductForm struct {
	Name     string            `json:"name"`
	Price    string            `json:"price"`
	MRP      string            `json:"mrp,omitempty"`
	Currency string            `json:"currency"`
	Specs    string            `json:"specs"`
	Images   []models.ImageRef `json:"image"`
	Links    []models.Link     `json:"links"`
	InStock  bool              `json:"inStock"`
}

// FormFromScraped prefills a draft from an imported record.
func FormFromScraped(rec *models.ScrapedRecord) ProductForm {
	form := ProductForm{
		Name:     rec.Name,
		Price:    rec.Price,
		MRP:      rec.MRP,
		Currency: rec.Currency,
		Specs:    CleanSpecs(rec.Specs),
		Images:   []models.ImageRef{},
		Links:    []models.Link{},
		InStock:  true,
	}
	if form.Currency == "" {
		form.Currency = models.DefaultCurrency
	}
	if rec.ImageURL != "" {
		form.Images = append(form.Images, models.URLImage(rec.ImageURL))
	}
	if rec.URL != "" {
		form.Links = append(form.Links, models.Link{Store: rec.Platform, URL: rec.URL})
	}
	return form
}

// Product converts the draft into a catalog product.
func (f ProductForm) Product() models.Product {
	return models.Product{
		Name:     strings.TrimSpace(f.Name),
		Price:    models.Price(strings.TrimSpace(f.Price)),
		MRP:      models.Price(strings.TrimSpace(f.MRP)),
		Currency: f.Currency,
		Specs:    f.Specs,
		Images:   append([]models.ImageRef(nil), f.Images...),
		Links:    append([]models.Link(nil), f.Links...),
		InStock:  f.InStock,
	}.Normalized()
}

// CleanSpecs drops marketplace boilerplate and turns bulleted plain text
// into a list.
func CleanSpecs(specs string) string {
	s := specNoise.ReplaceAllString(specs, "")
	s = strings.TrimSpace(strings.ReplaceAll(s, "›", ""))

	if !strings.Contains(s, "<") && (strings.Contains(s, "\n") || strings.Contains(s, "•") || strings.Contains(s, "- ")) {
		var items []string
		for _, line := range bulletSplitter.Split(s, -1) {
			if line = strings.TrimSpace(line); line != "" {
				items = append(items, html.EscapeString(line))
			}
		}
		return listOf(items)
	}
	if !strings.Contains(s, "<ul") && !strings.Contains(s, "<li") && strings.Contains(s, "\n") {
		var items []string
		for _, line := range strings.Split(s, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				items = append(items, line)
			}
		}
		return listOf(items)
	}
	return s
}

func listOf(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "<ul><li>" + strings.Join(items, "</li><li>") + "</li></ul>"
}
