package scrapers

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/marketchoice-admin/models"
)

// Parser extracts a product record from a marketplace page
type Parser interface {
	// Platform reports which marketplace the parser understands
	Platform() models.Platform
	// Parse reads the record from doc; url is copied into the result
	Parse(doc *goquery.Document, url string) *models.ScrapedRecord
}
