package base

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productPage = "<html><body>" + strings.Repeat("<p>product</p>", 60) + "</body></html>"

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestParseProxyChain(t *testing.T) {
	proxies, err := ParseProxyChain("raw:https://corsproxy.io/?, allorigins:https://api.allorigins.win/get")
	require.NoError(t, err)
	require.Len(t, proxies, 2)
	assert.Equal(t, RawProxy{Prefix: "https://corsproxy.io/?"}, proxies[0])
	assert.Equal(t, AllOriginsProxy{Endpoint: "https://api.allorigins.win/get"}, proxies[1])

	_, err = ParseProxyChain("socks:localhost")
	assert.Error(t, err)
	_, err = ParseProxyChain("raw")
	assert.Error(t, err)
}

func TestProxyChain_SkipsShortBodiesAndErrors(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, name)
	}
	short := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record("short")
		w.Write([]byte("<html>blocked</html>"))
	}))
	defer short.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record("failing")
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer failing.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record("good")
		assert.Equal(t, "https://www.amazon.in/dp/B0TEST1234", r.URL.Query().Get("url"))
		json.NewEncoder(w).Encode(map[string]string{"contents": productPage})
	}))
	defer good.Close()

	chain := NewProxyChain([]Proxy{
		RawProxy{Prefix: short.URL + "/?"},
		RawProxy{Prefix: failing.URL + "/?"},
		AllOriginsProxy{Endpoint: good.URL + "/get"},
	}, NewFetcher(5*time.Second), time.Second, quietLogger())

	html, err := chain.Fetch(context.Background(), "https://www.amazon.in/dp/B0TEST1234")
	require.NoError(t, err)
	assert.Equal(t, productPage, html)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"short", "failing", "good"}, calls)
}

func TestProxyChain_Exhausted(t *testing.T) {
	short := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tiny"))
	}))
	defer short.Close()

	chain := NewProxyChain([]Proxy{RawProxy{Prefix: short.URL + "/?"}}, NewFetcher(5*time.Second), time.Second, quietLogger())
	_, err := chain.Fetch(context.Background(), "https://www.flipkart.com/p/itm1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProxiesExhausted))
}

func TestFetcher_DecodesBrotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, err := bw.Write([]byte(productPage))
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	body, err := NewFetcher(5*time.Second).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, productPage, string(body))
}
