package render

import (
	"context"
	"fmt"
	"time"

	"github.com/raushankrgupta/marketchoice-admin/scrapers/base"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const maskScript = `
        Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
        window.chrome = {runtime: {}};
    `

// Selenium renders pages through a ChromeDriver started per request.
type Selenium struct {
	driverPath string
	ports      *PortManager
	settle     time.Duration
	logger     logrus.FieldLogger
}

func NewSelenium(driverPath string, ports *PortManager, settle time.Duration, logger logrus.FieldLogger) *Selenium {
	if settle <= 0 {
		settle = 2 * time.Second
	}
	return &Selenium{driverPath: driverPath, ports: ports, settle: settle, logger: logger}
}

func (s *Selenium) Render(ctx context.Context, target string, hints Hints) (*Result, error) {
	port, err := s.ports.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("waiting for a driver port: %w", err)
	}
	defer s.ports.Release(port)

	service, err := selenium.NewChromeDriverService(s.driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("error starting Chrome driver service: %v", err)
	}
	defer service.Stop()

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Args: []string{
			"--headless=new",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--disable-extensions",
			"--disable-gpu",
			"--window-size=1920,1080",
			fmt.Sprintf("--user-agent=%s", base.UserAgent),
		},
		ExcludeSwitches: []string{"enable-automation"},
	})

	driver, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		return nil, fmt.Errorf("error creating WebDriver: %v", err)
	}
	defer driver.Quit()

	// WebDriver calls take no context; bound page loads by the deadline instead.
	loadTimeout := 60 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		loadTimeout = time.Until(deadline)
	}
	if err := driver.SetPageLoadTimeout(loadTimeout); err != nil {
		return nil, fmt.Errorf("page load timeout: %w", err)
	}

	if err := driver.Get(target); err != nil {
		return nil, fmt.Errorf("navigation error: %w", err)
	}
	if _, err := driver.ExecuteScript(maskScript, nil); err != nil {
		s.logger.WithError(err).Debug("mask script failed")
	}

	select {
	case <-time.After(s.settle):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	html, err := driver.PageSource()
	if err != nil {
		return nil, fmt.Errorf("page source error: %w", err)
	}
	location, err := driver.CurrentURL()
	if err != nil {
		location = ""
	}
	return ResultFromHTML(html, location, hints)
}
