package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_DecodesNumbersAndStrings(t *testing.T) {
	var got struct {
		A Price `json:"a"`
		B Price `json:"b"`
		C Price `json:"c"`
		D Price `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":1299,"b":"1,299","c":null,"d":12.50}`), &got))
	assert.Equal(t, Price("1299"), got.A)
	assert.Equal(t, Price("1,299"), got.B)
	assert.Equal(t, Price(""), got.C)
	assert.Equal(t, Price("12.50"), got.D)

	var bad Price
	assert.Error(t, json.Unmarshal([]byte(`{}`), &bad))
}

func TestProduct_InStockDefaultsTrue(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Old","price":10}`), &p))
	assert.True(t, p.InStock)
	assert.Equal(t, Price("10"), p.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Gone","inStock":false}`), &p))
	assert.False(t, p.InStock)
}

func TestProduct_NormalizedAndClone(t *testing.T) {
	p := Product{Name: "Bare"}.Normalized()
	assert.Equal(t, DefaultCurrency, p.Currency)
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"image":[]`)
	assert.Contains(t, string(b), `"links":[]`)
	assert.NotContains(t, string(b), "mrp")

	orig := Product{Images: []ImageRef{"a"}, Links: []Link{{Store: PlatformAmazon, URL: "u"}}}
	c := orig.Clone()
	c.Images[0] = "b"
	c.Links[0].URL = "v"
	assert.Equal(t, ImageRef("a"), orig.Images[0])
	assert.Equal(t, "u", orig.Links[0].URL)
}

func TestProduct_DiscountPercent(t *testing.T) {
	cases := []struct {
		price, mrp Price
		want       int
	}{
		{"750", "1000", 25},
		{"999", "1499", 33},
		{"1000", "1000", 0},
		{"1200", "1000", 0},
		{"100", "", 0},
		{"n/a", "1000", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Product{Price: tc.price, MRP: tc.mrp}.DiscountPercent(), "%s of %s", tc.price, tc.mrp)
	}
}

func TestImageRef(t *testing.T) {
	u := URLImage("https://img/x.jpg")
	assert.True(t, u.IsURL())
	assert.Equal(t, "https://img/x.jpg", u.URL())
	assert.Empty(t, u.BlobID())

	blob := ImageRef("3f2a")
	assert.False(t, blob.IsURL())
	assert.Equal(t, "3f2a", blob.BlobID())
	assert.Empty(t, blob.URL())
}
