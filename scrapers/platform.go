package scrapers

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/raushankrgupta/marketchoice-admin/models"
)

var asinPattern = regexp.MustCompile(`(?i)/(?:dp|gp/product|gp/aw/d)/([A-Z0-9]{10})`)

// DetectPlatform classifies a product link by hostname. Hosts that belong to
// neither marketplace return PlatformUnknown and no error.
func DetectPlatform(rawURL string) (models.Platform, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return models.PlatformUnknown, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "amazon"), host == "amzn.to", host == "a.co", strings.Contains(host, "amzn."):
		return models.PlatformAmazon, nil
	case strings.Contains(host, "flipkart"):
		return models.PlatformFlipkart, nil
	}
	return models.PlatformUnknown, nil
}

// ExtractASIN returns the 10-character Amazon product id in a URL, or "".
func ExtractASIN(rawURL string) string {
	m := asinPattern.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// AmazonImageURL is the public product image for an ASIN.
func AmazonImageURL(asin string) string {
	return "https://m.media-amazon.com/images/P/" + asin + ".jpg"
}
