package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raushankrgupta/marketchoice-admin/scrapers/base"
	"github.com/sirupsen/logrus"
)

// ChromeDP renders pages in a local headless Chrome.
type ChromeDP struct {
	settle time.Duration
	logger logrus.FieldLogger
}

func NewChromeDP(settle time.Duration, logger logrus.FieldLogger) *ChromeDP {
	if settle <= 0 {
		settle = 2 * time.Second
	}
	return &ChromeDP{settle: settle, logger: logger}
}

func (c *ChromeDP) Render(ctx context.Context, target string, hints Hints) (*Result, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.UserAgent(base.UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	headers := map[string]interface{}{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
	}
	if err := chromedp.Run(taskCtx, network.SetExtraHTTPHeaders(network.Headers(headers))); err != nil {
		return nil, fmt.Errorf("chromedp header error: %w", err)
	}

	var html, location string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(c.settle),
		chromedp.OuterHTML("html", &html),
		chromedp.Location(&location),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp navigation error: %w", err)
	}

	c.logger.WithFields(logrus.Fields{"url": target, "location": location, "bytes": len(html)}).Debug("chromedp rendered page")
	return ResultFromHTML(html, location, hints)
}
