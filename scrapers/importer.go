package scrapers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/marketchoice-admin/models"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/base"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/render"
	"github.com/sirupsen/logrus"
)

const unknownProductName = "Unknown Product"

// HTMLSource fetches raw page HTML, typically through a proxy chain.
type HTMLSource interface {
	Fetch(ctx context.Context, target string) (string, error)
}

// Importer turns a product link into a ScrapedRecord. It asks the rendering
// service first, enriches that result from the raw page, and falls back to
// parsing the raw page alone when the service is unavailable.
type Importer struct {
	renderer      render.Service
	pages         HTMLSource
	renderTimeout time.Duration
	logger        logrus.FieldLogger
}

// NewImporter creates an Importer. renderer may be nil to skip the service.
func NewImporter(renderer render.Service, pages HTMLSource, renderTimeout time.Duration, logger logrus.FieldLogger) *Importer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Importer{renderer: renderer, pages: pages, renderTimeout: renderTimeout, logger: logger}
}

// FetchProductFromLink runs the import pipeline for rawURL. The returned
// record always carries rawURL, even when the service resolved a redirect.
func (im *Importer) FetchProductFromLink(ctx context.Context, rawURL string) (*models.ScrapedRecord, error) {
	rawURL = strings.TrimSpace(rawURL)
	platform, err := DetectPlatform(rawURL)
	if err != nil {
		return nil, err
	}
	if platform == models.PlatformUnknown {
		return nil, ErrUnsupportedPlatform
	}
	log := im.logger.WithFields(logrus.Fields{"url": rawURL, "platform": platform})

	var rec *models.ScrapedRecord
	if rendered := im.render(ctx, rawURL, platform, log); rendered != nil {
		rec = im.fromRendered(ctx, rawURL, platform, rendered, log)
	} else {
		log.Info("render service unavailable, falling back to proxies")
		html, err := im.pages.Fetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		rec, err = parsePage(html, rawURL, platform)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
	}

	rec.URL = rawURL
	normalize(rec)
	log.WithFields(logrus.Fields{"name": rec.Name, "price": rec.Price}).Info("product imported")
	return rec, nil
}

func (im *Importer) render(ctx context.Context, rawURL string, platform models.Platform, log logrus.FieldLogger) *render.Result {
	if im.renderer == nil {
		return nil
	}
	if im.renderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, im.renderTimeout)
		defer cancel()
	}
	res, err := im.renderer.Render(ctx, rawURL, hintsFor(platform))
	if err != nil {
		log.WithError(err).Warn("render service failed")
		return nil
	}
	return res
}

func (im *Importer) fromRendered(ctx context.Context, rawURL string, platform models.Platform, res *render.Result, log logrus.FieldLogger) *models.ScrapedRecord {
	resolvedURL := rawURL
	if res.URL != "" {
		resolvedURL = res.URL
	}
	if p, err := DetectPlatform(resolvedURL); err == nil && p != models.PlatformUnknown {
		platform = p
	}

	rec := &models.ScrapedRecord{
		Platform: platform,
		Name:     base.CleanTitle(res.Title),
		Price:    base.CleanPrice(res.Price),
		Currency: models.DefaultCurrency,
		Specs:    firstNonEmpty(res.Specs, res.Description),
	}
	if res.Image != nil && !isLikelyLogo(res.Image) {
		rec.ImageURL = res.Image.URL
	}
	if rec.ImageURL == "" && platform == models.PlatformAmazon {
		if asin := ExtractASIN(resolvedURL); asin != "" {
			rec.ImageURL = AmazonImageURL(asin)
		}
	}

	im.enrich(ctx, rec, resolvedURL, platform, log)
	return rec
}

// enrich reads the raw page for a better price and any missing fields.
// Failures are only logged.
func (im *Importer) enrich(ctx context.Context, rec *models.ScrapedRecord, resolvedURL string, platform models.Platform, log logrus.FieldLogger) {
	html, err := im.pages.Fetch(ctx, resolvedURL)
	if err != nil {
		log.WithError(err).Warn("enrichment fetch failed")
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.WithError(err).Warn("enrichment parse failed")
		return
	}

	parser, err := GetParser(platform)
	if err != nil {
		log.WithError(err).Warn("no parser for enrichment")
		return
	}
	// Parse resolves each field DOM first with structured data as fallback.
	dom := parser.Parse(doc, resolvedURL)

	if price := base.CleanPrice(dom.Price); price != "" {
		rec.Price = price
	}
	rec.Name = firstNonEmpty(rec.Name, dom.Name)
	rec.ImageURL = firstNonEmpty(rec.ImageURL, dom.ImageURL)
	rec.Specs = firstNonEmpty(rec.Specs, dom.Specs)
	rec.MRP = firstNonEmpty(rec.MRP, dom.MRP)
}

func parsePage(html, rawURL string, platform models.Platform) (*models.ScrapedRecord, error) {
	parser, err := GetParser(platform)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return parser.Parse(doc, rawURL), nil
}

var logoMarkers = []string{"favicon", "logo", "Prime_Logo", "brand"}

// isLikelyLogo rejects site chrome the service sometimes reports as the
// product image.
func isLikelyLogo(img *render.Image) bool {
	for _, m := range logoMarkers {
		if strings.Contains(img.URL, m) {
			return true
		}
	}
	return img.Width > 0 && img.Height > 0 && img.Width < 200 && img.Height < 200
}

func normalize(rec *models.ScrapedRecord) {
	rec.Name = base.CleanTitle(rec.Name)
	if rec.Name == "" {
		rec.Name = unknownProductName
	}
	rec.Price = base.CleanPrice(rec.Price)
	rec.MRP = base.CleanPrice(rec.MRP)
	if rec.Currency == "" {
		rec.Currency = models.DefaultCurrency
	}
	rec.ImageURL = strings.TrimSpace(rec.ImageURL)
	rec.Specs = strings.TrimSpace(rec.Specs)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
