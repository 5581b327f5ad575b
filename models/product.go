package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultCurrency is the currency symbol used when a source does not provide one.
const DefaultCurrency = "₹"

// Platform identifies a supported marketplace
type Platform string

const (
	PlatformUnknown  Platform = ""
	PlatformAmazon   Platform = "Amazon"
	PlatformFlipkart Platform = "Flipkart"
)

// Link is a store listing for a product
type Link struct {
	Store Platform `json:"store" bson:"store"`
	URL   string   `json:"url" bson:"url"`
}

// ImageRef is either a direct image URL ("url:" prefix) or a blob id
type ImageRef string

const urlImagePrefix = "url:"

// URLImage wraps a direct image URL as an ImageRef.
func URLImage(u string) ImageRef {
	return ImageRef(urlImagePrefix + u)
}

func (r ImageRef) IsURL() bool {
	return strings.HasPrefix(string(r), urlImagePrefix)
}

// URL returns the direct URL, or "" for blob references.
func (r ImageRef) URL() string {
	if !r.IsURL() {
		return ""
	}
	return strings.TrimPrefix(string(r), urlImagePrefix)
}

// BlobID returns the blob id, or "" for direct URLs.
func (r ImageRef) BlobID() string {
	if r.IsURL() {
		return ""
	}
	return string(r)
}

// Price keeps the textual form of an amount. Older catalogs store numbers,
// newer ones strings; both decode.
type Price string

func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*p = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*p = Price(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = Price(n.String())
	return nil
}

// Float parses the amount, returning false when it is not numeric.
func (p Price) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(p)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Product is one catalog entry. Identity within a category is positional.
type Product struct {
	Name     string     `json:"name"`
	Price    Price      `json:"price"`
	Currency string     `json:"currency"`
	Specs    string     `json:"specs"`
	Images   []ImageRef `json:"image"`
	Links    []Link     `json:"links"`
	InStock  bool       `json:"inStock"`
	MRP      Price      `json:"mrp,omitempty"`
	Coupon   string     `json:"coupon,omitempty"`
}

// UnmarshalJSON treats a missing inStock as true.
func (p *Product) UnmarshalJSON(b []byte) error {
	type plain Product
	aux := struct {
		*plain
		InStock *bool `json:"inStock"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.InStock = aux.InStock == nil || *aux.InStock
	return nil
}

// Normalized fills defaults so the product serializes with arrays rather than nulls.
func (p Product) Normalized() Product {
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Images == nil {
		p.Images = []ImageRef{}
	}
	if p.Links == nil {
		p.Links = []Link{}
	}
	return p
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	c := p
	if p.Images != nil {
		c.Images = append([]ImageRef(nil), p.Images...)
	}
	if p.Links != nil {
		c.Links = append([]Link(nil), p.Links...)
	}
	return c
}

// DiscountPercent is the rounded saving against MRP, 0 when unknown.
func (p Product) DiscountPercent() int {
	mrp, ok := p.MRP.Float()
	if !ok || mrp <= 0 {
		return 0
	}
	price, ok := p.Price.Float()
	if !ok || price >= mrp {
		return 0
	}
	return int((mrp-price)/mrp*100 + 0.5)
}

// ScrapedRecord is the transient result of importing a product link.
type ScrapedRecord struct {
	Platform Platform `json:"platform"`
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Currency string   `json:"currency"`
	ImageURL string   `json:"imageUrl"`
	Specs    string   `json:"specs"`
	URL      string   `json:"url"`
	MRP      string   `json:"mrp,omitempty"`
}
