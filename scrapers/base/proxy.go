package base

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MinHTMLLength is the shortest body accepted as a real product page.
const MinHTMLLength = 500

var ErrProxiesExhausted = errors.New("no proxy returned usable html")

// Proxy fetches a page on our behalf.
type Proxy interface {
	Name() string
	Fetch(ctx context.Context, f *Fetcher, target string) (string, error)
}

// RawProxy returns the page body verbatim for <Prefix><escaped target>.
type RawProxy struct {
	Prefix string
}

func (p RawProxy) Name() string { return p.Prefix }

func (p RawProxy) Fetch(ctx context.Context, f *Fetcher, target string) (string, error) {
	body, err := f.Get(ctx, p.Prefix+url.QueryEscape(target), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// AllOriginsProxy wraps the page in a JSON envelope: {"contents": "..."}.
type AllOriginsProxy struct {
	Endpoint string
}

func (p AllOriginsProxy) Name() string { return p.Endpoint }

func (p AllOriginsProxy) Fetch(ctx context.Context, f *Fetcher, target string) (string, error) {
	u, err := url.Parse(p.Endpoint)
	if err != nil {
		return "", fmt.Errorf("allorigins endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()

	body, err := f.Get(ctx, u.String(), nil)
	if err != nil {
		return "", err
	}
	var envelope struct {
		Contents string `json:"contents"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	return envelope.Contents, nil
}

// ParseProxyChain reads "kind:endpoint" entries separated by commas.
// Kinds are raw and allorigins.
func ParseProxyChain(spec string) ([]Proxy, error) {
	var proxies []Proxy
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		kind, endpoint, ok := strings.Cut(entry, ":")
		if !ok || endpoint == "" {
			return nil, fmt.Errorf("proxy entry %q: want kind:endpoint", entry)
		}
		switch kind {
		case "raw":
			proxies = append(proxies, RawProxy{Prefix: endpoint})
		case "allorigins":
			proxies = append(proxies, AllOriginsProxy{Endpoint: endpoint})
		default:
			return nil, fmt.Errorf("proxy entry %q: unknown kind %q", entry, kind)
		}
	}
	return proxies, nil
}

// ProxyChain tries proxies in order and returns the first usable body.
type ProxyChain struct {
	proxies []Proxy
	fetcher *Fetcher
	timeout time.Duration
	logger  logrus.FieldLogger
}

func NewProxyChain(proxies []Proxy, fetcher *Fetcher, timeout time.Duration, logger logrus.FieldLogger) *ProxyChain {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProxyChain{proxies: proxies, fetcher: fetcher, timeout: timeout, logger: logger}
}

// Fetch returns ErrProxiesExhausted, joined with each attempt's error, when
// no proxy produced at least MinHTMLLength characters.
func (c *ProxyChain) Fetch(ctx context.Context, target string) (string, error) {
	errs := []error{ErrProxiesExhausted}
	for _, p := range c.proxies {
		html, err := c.attempt(ctx, p, target)
		if err == nil {
			return html, nil
		}
		c.logger.WithError(err).WithField("proxy", p.Name()).Warn("proxy attempt failed")
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return "", errors.Join(errs...)
}

func (c *ProxyChain) attempt(ctx context.Context, p Proxy, target string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	html, err := p.Fetch(ctx, c.fetcher, target)
	if err != nil {
		return "", err
	}
	if len(html) < MinHTMLLength {
		return "", fmt.Errorf("body too short (%d chars)", len(html))
	}
	return html, nil
}
