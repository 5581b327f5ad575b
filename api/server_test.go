package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raushankrgupta/marketchoice-admin/auth"
	"github.com/raushankrgupta/marketchoice-admin/cache"
	"github.com/raushankrgupta/marketchoice-admin/catalog"
	"github.com/raushankrgupta/marketchoice-admin/models"
	"github.com/raushankrgupta/marketchoice-admin/scrapers"
	"github.com/raushankrgupta/marketchoice-admin/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type fakeImporter struct {
	rec *models.ScrapedRecord
	err error
	got string
}

func (f *fakeImporter) FetchProductFromLink(ctx context.Context, rawURL string) (*models.ScrapedRecord, error) {
	f.got = rawURL
	return f.rec, f.err
}

type testEnv struct {
	server   *Server
	handler  http.Handler
	blobs    *store.Memory
	importer *fakeImporter
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	remote := store.NewMemory()
	console := catalog.NewConsole(remote, cache.NewMemory(), logger)
	require.NoError(t, console.Load(context.Background()))
	t.Cleanup(console.Close)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	authenticator, err := auth.NewLocalAuthenticator("admin", string(hash))
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	env := &testEnv{blobs: remote, importer: &fakeImporter{}}
	env.server = &Server{
		Console:  console,
		Importer: env.importer,
		Blobs:    remote,
		Auth:     auth.NewThrottled(authenticator, 3, time.Minute),
		Tokens:   tokens,
		Logger:   logger,
	}
	env.handler = env.server.Routes()
	env.token = env.login(t, "admin", "s3cret", http.StatusOK)
	return env
}

func (e *testEnv) login(t *testing.T, username, password string, want int) string {
	t.Helper()
	body, _ := json.Marshal(LoginRequest{Username: username, Password: password})
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
	require.Equal(t, want, rr.Code, rr.Body.String())
	if want != http.StatusOK {
		return ""
	}
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Token
}

func (e *testEnv) do(method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	default:
		json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Authorization", "Bearer "+e.token)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeViews(t *testing.T, rr *httptest.ResponseRecorder) []catalog.CategoryView {
	t.Helper()
	var views []catalog.CategoryView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	return views
}

func TestHealthAndCORS(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/catalog", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	env.login(t, "admin", "wrong", http.StatusUnauthorized)
	env.login(t, "not an email", "s3cret", http.StatusBadRequest)
	env.login(t, "", "", http.StatusBadRequest)

	rr := env.do(http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var p auth.Principal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, "admin@marketchoice.com", p.Email)
}

func TestLogin_Throttled(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		env.login(t, "admin", "wrong", http.StatusUnauthorized)
	}
	env.login(t, "admin", "wrong", http.StatusTooManyRequests)
}

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCategoryLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/categories", map[string]string{"name": "Shoes"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = env.do(http.MethodPost, "/categories", map[string]string{"name": "Shoes"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	rr = env.do(http.MethodPost, "/categories", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(http.MethodPost, "/categories/Shoes/toggle", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"expanded":true}`, rr.Body.String())

	rr = env.do(http.MethodPut, "/categories/Shoes", map[string]string{"name": "Footwear"})
	require.Equal(t, http.StatusOK, rr.Code)
	views := decodeViews(t, rr)
	require.Len(t, views, 1)
	assert.Equal(t, "Footwear", views[0].Name)
	assert.True(t, views[0].Expanded)

	rr = env.do(http.MethodDelete, "/categories/Shoes", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = env.do(http.MethodDelete, "/categories/Footwear", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeViews(t, rr))
}

func TestProductLifecycle(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/categories", map[string]string{"name": "Phones"}).Code)

	phone := models.Product{Name: "Phone X", Price: "999", InStock: true}
	rr := env.do(http.MethodPost, "/categories/Phones/products", phone)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"index":0}`, rr.Body.String())

	rr = env.do(http.MethodPost, "/categories/Phones/products", models.Product{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = env.do(http.MethodPost, "/categories/Tablets/products", phone)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	phone.InStock = false
	rr = env.do(http.MethodPut, "/categories/Phones/products/0", phone)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(http.MethodPut, "/categories/Phones/products/7", phone)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = env.do(http.MethodPut, "/categories/Phones/products/abc", phone)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	views := decodeViews(t, env.do(http.MethodGet, "/catalog", nil))
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].Total)
	assert.Equal(t, 0, views[0].InStock)

	rr = env.do(http.MethodDelete, "/categories/Phones/products/0", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	views = decodeViews(t, env.do(http.MethodGet, "/catalog", nil))
	assert.Equal(t, 0, views[0].Total)
}

func TestSearchAndExpand(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"Phones", "Laptops"} {
		require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/categories", map[string]string{"name": name}).Code)
	}
	env.do(http.MethodPost, "/categories/Phones/products", models.Product{Name: "Pixel", Price: "1"})
	env.do(http.MethodPost, "/categories/Laptops/products", models.Product{Name: "ThinkPad", Price: "2"})

	views := decodeViews(t, env.do(http.MethodGet, "/catalog?q=pix", nil))
	require.Len(t, views, 1)
	assert.Equal(t, "Phones", views[0].Name)
	assert.True(t, views[0].Expanded)

	env.do(http.MethodGet, "/catalog?q=", nil)
	views = decodeViews(t, env.do(http.MethodPost, "/catalog/expand-all", nil))
	require.Len(t, views, 2)
	for _, v := range views {
		assert.True(t, v.Expanded, v.Name)
	}
	views = decodeViews(t, env.do(http.MethodPost, "/catalog/collapse-all", nil))
	for _, v := range views {
		assert.False(t, v.Expanded, v.Name)
	}
}

func TestCatalogJSONRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPut, "/catalog/json", []byte(`{"B":[{"name":"b1","price":5}],"A":[]}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	views := decodeViews(t, rr)
	require.Len(t, views, 2)
	assert.Equal(t, "B", views[0].Name)

	rr = env.do(http.MethodGet, "/catalog/json", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	cat, err := catalog.Parse(rr.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, cat.Categories())

	rr = env.do(http.MethodPut, "/catalog/json", []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = env.do(http.MethodPut, "/catalog/json", []byte(`null`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, []string{"B", "A"}, env.server.Console.Snapshot().Categories())
}

func TestReload(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/categories", map[string]string{"name": "Shoes"})
	require.Eventually(t, func() bool {
		raw, _ := env.blobs.ReadOnce(context.Background(), catalog.RemotePath)
		return bytes.Contains(raw, []byte("Shoes"))
	}, time.Second, 10*time.Millisecond)

	rr := env.do(http.MethodPost, "/catalog/reload", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	views := decodeViews(t, rr)
	require.Len(t, views, 1)
	assert.Equal(t, "Shoes", views[0].Name)
}

func TestImport(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/categories", map[string]string{"name": "Phones"})
	env.importer.rec = &models.ScrapedRecord{
		Platform: models.PlatformAmazon,
		Name:     "Phone X",
		Price:    "999",
		Currency: "₹",
		ImageURL: "https://m.media-amazon.com/images/I/x.jpg",
		Specs:    "About this item\nFast\nLight",
		URL:      "https://www.amazon.in/dp/B0TEST1234",
	}

	rr := env.do(http.MethodPost, "/import", ImportRequest{URL: " https://www.amazon.in/dp/B0TEST1234 ", Category: "Phones"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "https://www.amazon.in/dp/B0TEST1234", env.importer.got)

	var resp ImportResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Phones", resp.Category)
	assert.Equal(t, "Phone X", resp.Form.Name)
	assert.Equal(t, []models.ImageRef{models.URLImage("https://m.media-amazon.com/images/I/x.jpg")}, resp.Form.Images)
	assert.Equal(t, "<ul><li>Fast</li><li>Light</li></ul>", resp.Form.Specs)

	rr = env.do(http.MethodPost, "/import", ImportRequest{URL: "https://www.amazon.in/dp/B0TEST1234", Category: "Nope"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = env.do(http.MethodPost, "/import", ImportRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestImport_Errors(t *testing.T) {
	env := newTestEnv(t)

	env.importer.err = scrapers.ErrUnsupportedPlatform
	rr := env.do(http.MethodPost, "/import", ImportRequest{URL: "https://example.com/item"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	env.importer.err = fmt.Errorf("%w: captcha", scrapers.ErrFetchFailed)
	rr = env.do(http.MethodPost, "/import", ImportRequest{URL: "https://amzn.to/abc"})
	require.Equal(t, http.StatusBadGateway, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	assert.Contains(t, body["hint"], "/dp/")
}

func TestImport_MirrorsImage(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngHeader)
	}))
	defer img.Close()

	env := newTestEnv(t)
	env.server.MirrorImages = true
	env.server.ImageClient = img.Client()
	env.importer.rec = &models.ScrapedRecord{Platform: models.PlatformFlipkart, Name: "Kettle", ImageURL: img.URL + "/k.png"}

	rr := env.do(http.MethodPost, "/import", ImportRequest{URL: "https://www.flipkart.com/kettle/p/itm1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp ImportResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Form.Images, 1)
	id := resp.Form.Images[0].BlobID()
	require.NotEmpty(t, id)

	data, err := env.blobs.GetBlob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestImages(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	part.Write(pngHeader)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created["id"])

	rr = env.do(http.MethodGet, "/images/"+created["id"], nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, rr.Body.Bytes())

	rr = env.do(http.MethodGet, "/images/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

type presigningBlobs struct{ *store.Memory }

func (presigningBlobs) PresignBlob(ctx context.Context, id string) (string, error) {
	return "https://bucket.example.com/images/" + id + "?sig=1", nil
}

func TestGetImage_RedirectsWhenPresignable(t *testing.T) {
	env := newTestEnv(t)
	env.server.Blobs = presigningBlobs{env.blobs}

	rr := env.do(http.MethodGet, "/images/abc", nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://bucket.example.com/images/abc?sig=1", rr.Header().Get("Location"))
}
