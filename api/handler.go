package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/marketchoice-admin/catalog"
	"github.com/raushankrgupta/marketchoice-admin/models"
	"github.com/raushankrgupta/marketchoice-admin/scrapers"
	"github.com/raushankrgupta/marketchoice-admin/utils"
)

// ImportRequest is the body of POST /import.
type ImportRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

// ImportResponse carries the scraped record and the prefilled draft.
type ImportResponse struct {
	Record   *models.ScrapedRecord `json:"record"`
	Form     catalog.ProductForm   `json:"form"`
	Category string                `json:"category,omitempty"`
}

// ImportHandler scrapes a marketplace link into a product draft.
func (s *Server) ImportHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Import API]")

	req := ImportRequest{URL: r.URL.Query().Get("url"), Category: r.URL.Query().Get("category")}
	if req.URL == "" {
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		utils.RespondError(w, &logMessageBuilder, "Please paste a product link", http.StatusBadRequest)
		return
	}
	if req.Category != "" && !s.Console.Has(req.Category) {
		utils.RespondError(w, &logMessageBuilder, catalog.ErrCategoryNotFound.Error(), http.StatusNotFound)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Importing URL: %s", req.URL))

	// The operator may navigate away; a finished import still lands in the log.
	ctx := context.WithoutCancel(r.Context())
	rec, err := s.Importer.FetchProductFromLink(ctx, req.URL)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, scrapers.ErrInvalidURL) || errors.Is(err, scrapers.ErrUnsupportedPlatform) {
			status = http.StatusBadRequest
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Import failed: %v", err))
		utils.RespondErrorWithFields(w, &logMessageBuilder, importMessage(err), status,
			map[string]string{"hint": scrapers.Hint(err, req.URL)})
		return
	}

	form := catalog.FormFromScraped(rec)
	if s.MirrorImages && rec.ImageURL != "" {
		id, err := utils.MirrorImage(ctx, s.ImageClient, s.Blobs, rec.ImageURL)
		if err != nil {
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Keeping remote image, mirror failed: %v", err))
		} else {
			form.Images = []models.ImageRef{models.ImageRef(id)}
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Mirrored image as %s", id))
		}
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Imported %q", rec.Name))
	utils.RespondJSON(w, http.StatusOK, ImportResponse{Record: rec, Form: form, Category: req.Category})
}

func importMessage(err error) string {
	switch {
	case errors.Is(err, scrapers.ErrInvalidURL):
		return "That does not look like a valid link"
	case errors.Is(err, scrapers.ErrUnsupportedPlatform):
		return "Only Amazon and Flipkart links can be imported"
	}
	return "Could not fetch product details from this link"
}
