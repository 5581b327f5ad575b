package scrapers

import (
	"errors"
	"strings"
)

var (
	ErrInvalidURL          = errors.New("invalid product url")
	ErrUnsupportedPlatform = errors.New("unsupported platform: only Amazon and Flipkart links can be imported")
	ErrFetchFailed         = errors.New("could not fetch product page")
)

const (
	shortLinkHint = "Amazon blocked the automated request or the short link could not be followed. " +
		"Open the link in your browser, copy the full product URL from the address bar (it contains /dp/) and try again."
	genericHint = "Check that the link opens a single product page, or fill in the product details manually."
)

// Hint returns remediation text for a failed import of rawURL.
func Hint(err error, rawURL string) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "captcha") || strings.Contains(msg, "robot") ||
		strings.Contains(rawURL, "amzn.to") || strings.Contains(rawURL, "a.co") {
		return shortLinkHint
	}
	return genericHint
}
