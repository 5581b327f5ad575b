package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/raushankrgupta/marketchoice-admin/models"
)

var ErrNoData = errors.New("render service returned no data")

// Microlink calls a microlink-compatible metadata API.
type Microlink struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewMicrolink(baseURL, apiKey string, client *http.Client) *Microlink {
	if baseURL == "" {
		baseURL = "https://api.microlink.io"
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Microlink{baseURL: baseURL, apiKey: apiKey, client: client}
}

type microlinkResponse struct {
	Status string `json:"status"`
	Data   *struct {
		Title       string       `json:"title"`
		Description string       `json:"description"`
		Price       models.Price `json:"price"`
		Specs       string       `json:"specs"`
		Image       *Image       `json:"image"`
		URL         string       `json:"url"`
	} `json:"data"`
}

func (m *Microlink) Render(ctx context.Context, target string, hints Hints) (*Result, error) {
	u, err := url.Parse(m.baseURL)
	if err != nil {
		return nil, fmt.Errorf("microlink base url: %w", err)
	}
	q := u.Query()
	q.Set("url", target)
	if hints.Price != "" {
		q.Set("data.price.selector", hints.Price)
	}
	if hints.Specs != "" {
		q.Set("data.specs.selector", hints.Specs)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if m.apiKey != "" {
		req.Header.Set("x-api-key", m.apiKey)
	}

	res, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("microlink returned %d", res.StatusCode)
	}

	var payload microlinkResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode microlink response: %w", err)
	}
	if payload.Status != "success" || payload.Data == nil {
		return nil, fmt.Errorf("%w (status %q)", ErrNoData, payload.Status)
	}

	d := payload.Data
	result := &Result{
		Title:       d.Title,
		Description: d.Description,
		Price:       string(d.Price),
		Specs:       d.Specs,
		URL:         d.URL,
	}
	if d.Image != nil && d.Image.URL != "" {
		result.Image = d.Image
	}
	return result, nil
}
