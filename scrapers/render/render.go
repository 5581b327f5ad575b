package render

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Hints are CSS selectors the renderer should read price and specs from.
type Hints struct {
	Price string
	Specs string
}

// Image is a preview image with its declared dimensions (0 when unknown).
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Result is what a rendering engine learned about a page.
type Result struct {
	Title       string
	Description string
	Price       string
	Specs       string
	Image       *Image
	// URL is the final location after redirects, empty if unknown.
	URL string
}

// Service renders a product page and reports its metadata.
type Service interface {
	Render(ctx context.Context, target string, hints Hints) (*Result, error)
}

// Config selects and configures an engine.
type Config struct {
	Engine           string // microlink, chromedp or selenium
	MicrolinkURL     string
	MicrolinkAPIKey  string
	ChromeDriverPath string
	Client           *http.Client
	SettleDelay      time.Duration
}

// NewService builds the engine named by cfg.Engine.
func NewService(cfg Config, logger logrus.FieldLogger) (Service, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	switch cfg.Engine {
	case "", "microlink":
		return NewMicrolink(cfg.MicrolinkURL, cfg.MicrolinkAPIKey, cfg.Client), nil
	case "chromedp":
		return NewChromeDP(cfg.SettleDelay, logger), nil
	case "selenium":
		return NewSelenium(cfg.ChromeDriverPath, NewPortManager(4444, 16), cfg.SettleDelay, logger), nil
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown render engine %q", cfg.Engine)
}
