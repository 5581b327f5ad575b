package flipkart

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/marketchoice-admin/models"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/base"
)

// Selector hints handed to the rendering service.
const (
	PriceHint = "._30jeq3, .Nx9bqj, ._16Jk6d"
	SpecsHint = "._2418kt, ._1mXcCf"
)

// FlipkartParser extracts product fields from a Flipkart product page.
// Flipkart rotates its obfuscated class names, so each field lists the
// older and newer classes before a generic fallback.
type FlipkartParser struct {
	name, price, mrp, image, specs []base.Strategy
}

func NewFlipkartParser() *FlipkartParser {
	return &FlipkartParser{
		name: []base.Strategy{
			base.Text(".B_NuCI"),
			base.Text("h1.yhB1nd"),
			base.Text(".G6XhRU"),
			base.Text(`h1[class*="title"]`),
			base.Text("h1"),
		},
		price: []base.Strategy{
			base.Price("._30jeq3"),
			base.Price("._1_WHN1"),
			base.Price(".Nx9bqj"),
			base.Price(`div[class*="price"]`),
		},
		mrp: []base.Strategy{
			base.Price("div._3I9_wc"),
			base.Price("div.yRaY8j"),
		},
		image: []base.Strategy{
			base.Attr("._396cs4", "src"),
			base.Attr("img._2r_T1I", "src"),
			base.Attr("._2amPTt img", "src"),
			base.Attr("img.q6DClP", "src"),
			base.Attr(`img[class*="product"]`, "src"),
		},
		specs: []base.Strategy{
			base.List("._1mXcCf li, .RmoJbe li, ._3Rm6K3 li"),
			base.Text("._1AN87F"),
			base.Text(".X3BRps"),
		},
	}
}

func (p *FlipkartParser) Platform() models.Platform {
	return models.PlatformFlipkart
}

func (p *FlipkartParser) Parse(doc *goquery.Document, url string) *models.ScrapedRecord {
	structured := base.ParseStructuredData(doc)
	return &models.ScrapedRecord{
		Platform: models.PlatformFlipkart,
		Name:     base.CleanTitle(firstOf(base.FirstNonEmpty(doc, p.name...), structured.Name)),
		Price:    base.CleanPrice(firstOf(base.FirstNonEmpty(doc, p.price...), structured.Price)),
		MRP:      base.FirstNonEmpty(doc, p.mrp...),
		Currency: models.DefaultCurrency,
		ImageURL: firstOf(base.FirstNonEmpty(doc, p.image...), structured.ImageURL),
		Specs:    firstOf(base.FirstNonEmpty(doc, p.specs...), structured.Specs),
		URL:      url,
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
