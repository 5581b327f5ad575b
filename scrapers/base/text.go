package base

import (
	"regexp"
	"strings"
)

var (
	titlePrefix      = regexp.MustCompile(`(?i)^(Amazon\.in|Amazon\.com|Flipkart\.com|Flipkart):\s*`)
	titleSuffix      = regexp.MustCompile(`(?i)[|\-–—]\s*(Amazon\.in|Amazon\.com|Flipkart\.com|Flipkart).*$`)
	titleColonSuffix = regexp.MustCompile(`(?i):\s*(Amazon\.in|Amazon\.com|Flipkart\.com|Flipkart).*$`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// CleanTitle strips marketplace branding and collapses whitespace.
func CleanTitle(title string) string {
	if title == "" {
		return ""
	}
	t := titlePrefix.ReplaceAllString(title, "")
	t = titleSuffix.ReplaceAllString(t, "")
	t = titleColonSuffix.ReplaceAllString(t, "")
	t = whitespaceRun.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// CleanPrice keeps only ASCII digits and the decimal point.
func CleanPrice(price string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, price)
}
