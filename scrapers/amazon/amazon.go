package amazon

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/marketchoice-admin/models"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/base"
)

var hiResPattern = regexp.MustCompile(`"hiRes"\s*:\s*"([^"]+)"`)

// Selector hints handed to the rendering service.
const (
	PriceHint = ".a-price-whole, .a-price .a-offscreen, #priceblock_ourprice"
	SpecsHint = "#feature-bullets ul"
)

// AmazonParser extracts product fields from an Amazon product page
type AmazonParser struct {
	name, price, mrp, image, specs []base.Strategy
}

func NewAmazonParser() *AmazonParser {
	return &AmazonParser{
		name: []base.Strategy{
			base.Text("#productTitle"),
			base.Text("h1.a-size-large"),
		},
		price: []base.Strategy{
			wholeAndFraction,
			base.Price("#priceblock_ourprice"),
			base.Price("#priceblock_dealprice"),
			base.Price(".a-price .a-offscreen"),
		},
		mrp: []base.Strategy{
			base.Price(".basisPrice .a-offscreen"),
			base.Price(`span[data-a-strike="true"] .a-offscreen`),
		},
		image: []base.Strategy{
			base.Attr("#landingImage", "data-old-hires"),
			base.Attr("#landingImage", "src"),
			base.Attr("#imgBlkFront", "src"),
			base.Attr("#main-image", "src"),
			base.ScriptMatch(hiResPattern),
		},
		specs: []base.Strategy{
			base.List("#feature-bullets li span.a-list-item"),
			base.Text("#productDescription"),
		},
	}
}

func (p *AmazonParser) Platform() models.Platform {
	return models.PlatformAmazon
}

// Parse reads the DOM first; fields it cannot find come from the page's
// structured data.
func (p *AmazonParser) Parse(doc *goquery.Document, url string) *models.ScrapedRecord {
	structured := base.ParseStructuredData(doc)
	return &models.ScrapedRecord{
		Platform: models.PlatformAmazon,
		Name:     base.CleanTitle(firstOf(base.FirstNonEmpty(doc, p.name...), structured.Name)),
		Price:    base.CleanPrice(firstOf(base.FirstNonEmpty(doc, p.price...), structured.Price)),
		MRP:      base.FirstNonEmpty(doc, p.mrp...),
		Currency: models.DefaultCurrency,
		ImageURL: firstOf(base.FirstNonEmpty(doc, p.image...), structured.ImageURL),
		Specs:    firstOf(base.FirstNonEmpty(doc, p.specs...), structured.Specs),
		URL:      url,
	}
}

// wholeAndFraction joins the split price widget: whole "1,299." and fraction "00".
func wholeAndFraction(doc *goquery.Document) string {
	whole := digits(doc.Find(".a-price-whole").First().Text())
	if whole == "" {
		return ""
	}
	fraction := digits(doc.Find(".a-price-fraction").First().Text())
	if fraction == "" {
		fraction = "00"
	}
	return whole + "." + fraction
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
