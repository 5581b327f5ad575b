package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/raushankrgupta/marketchoice-admin/auth"
	"github.com/raushankrgupta/marketchoice-admin/catalog"
	"github.com/raushankrgupta/marketchoice-admin/models"
	"github.com/raushankrgupta/marketchoice-admin/store"
	"github.com/raushankrgupta/marketchoice-admin/utils"
	"github.com/sirupsen/logrus"
)

// ProductImporter turns a product link into a scraped record.
type ProductImporter interface {
	FetchProductFromLink(ctx context.Context, rawURL string) (*models.ScrapedRecord, error)
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	Console      *catalog.Console
	Importer     ProductImporter
	Blobs        store.Blobs
	Auth         auth.Authenticator
	Tokens       *auth.TokenIssuer
	MirrorImages bool
	ImageClient  *http.Client
	Logger       logrus.FieldLogger
}

type principalKey struct{}

// PrincipalFrom returns the operator attached by RequireAuth.
func PrincipalFrom(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*auth.Principal)
	return p, ok
}

// Routes registers every endpoint behind CORS and latency logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HealthHandler)
	mux.HandleFunc("POST /auth/login", s.LoginHandler)

	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.RequireAuth(h))
	}
	protected("GET /auth/me", s.MeHandler)

	protected("GET /catalog", s.RenderCatalogHandler)
	protected("GET /catalog/json", s.ExportCatalogHandler)
	protected("PUT /catalog/json", s.ImportCatalogHandler)
	protected("POST /catalog/reload", s.ReloadCatalogHandler)
	protected("POST /catalog/expand-all", s.ExpandAllHandler)
	protected("POST /catalog/collapse-all", s.CollapseAllHandler)

	protected("POST /categories", s.AddCategoryHandler)
	protected("PUT /categories/{name}", s.RenameCategoryHandler)
	protected("DELETE /categories/{name}", s.DeleteCategoryHandler)
	protected("POST /categories/{name}/toggle", s.ToggleCategoryHandler)

	protected("POST /categories/{name}/products", s.AddProductHandler)
	protected("PUT /categories/{name}/products/{index}", s.UpdateProductHandler)
	protected("DELETE /categories/{name}/products/{index}", s.DeleteProductHandler)

	protected("POST /import", s.ImportHandler)

	protected("POST /images", s.UploadImageHandler)
	protected("GET /images/{id}", s.GetImageHandler)

	return utils.CORSMiddleware(utils.LatencyMiddleware(s.Logger, mux))
}

// RequireAuth rejects requests without a valid bearer token.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			utils.RespondError(w, nil, "Missing bearer token", http.StatusUnauthorized)
			return
		}
		p, err := s.Tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			s.Logger.WithError(err).Debug("rejected session token")
			utils.RespondError(w, nil, "Session expired, please sign in again", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// catalogStatus maps console errors to HTTP status codes.
func catalogStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrCategoryExists):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrNoRemoteData):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
