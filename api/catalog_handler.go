package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raushankrgupta/marketchoice-admin/utils"
)

const maxCatalogBytes = 16 << 20

// RenderCatalogHandler lists categories and products; ?q= searches by name.
func (s *Server) RenderCatalogHandler(w http.ResponseWriter, r *http.Request) {
	if q, ok := r.URL.Query()["q"]; ok {
		utils.RespondJSON(w, http.StatusOK, s.Console.Search(q[0]))
		return
	}
	utils.RespondJSON(w, http.StatusOK, s.Console.Render())
}

// ExportCatalogHandler returns the raw catalog for review.
func (s *Server) ExportCatalogHandler(w http.ResponseWriter, r *http.Request) {
	data, err := s.Console.ExportJSON()
	if err != nil {
		utils.RespondError(w, nil, "Could not encode catalog", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportCatalogHandler replaces the catalog with reviewed JSON.
func (s *Server) ImportCatalogHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Catalog Import API]")

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxCatalogBytes))
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Could not read request body", http.StatusBadRequest)
		return
	}
	if err := s.Console.ImportJSON(raw); err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, "Catalog replaced")
	utils.RespondJSON(w, http.StatusOK, s.Console.Render())
}

// ReloadCatalogHandler discards local state in favour of the remote copy.
func (s *Server) ReloadCatalogHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Catalog Reload API]")

	if err := s.Console.Reload(r.Context()); err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Reload failed: %v", err), catalogStatus(err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, s.Console.Render())
}

func (s *Server) ExpandAllHandler(w http.ResponseWriter, r *http.Request) {
	s.Console.ExpandAll()
	utils.RespondJSON(w, http.StatusOK, s.Console.Render())
}

func (s *Server) CollapseAllHandler(w http.ResponseWriter, r *http.Request) {
	s.Console.CollapseAll()
	utils.RespondJSON(w, http.StatusOK, s.Console.Render())
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) AddCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Add Category API]")

	var req categoryRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Console.AddCategory(req.Name); err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), catalogStatus(err))
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Added category %q", req.Name))
	utils.RespondJSON(w, http.StatusCreated, s.Console.Render())
}

func (s *Server) RenameCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Rename Category API]")

	oldName := r.PathValue("name")
	var req categoryRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Console.RenameCategory(oldName, req.Name); err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), catalogStatus(err))
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Renamed %q to %q", oldName, req.Name))
	utils.RespondJSON(w, http.StatusOK, s.Console.Render())
}

func (s *Server) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Delete Category API]")

	name := r.PathValue("name")
	if err := s.Console.DeleteCategory(name); err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), catalogStatus(err))
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Deleted category %q", name))
	utils.RespondJSON(w, http.StatusOK, s.Console.Render())
}

func (s *Server) ToggleCategoryHandler(w http.ResponseWriter, r *http.Request) {
	expanded, err := s.Console.Toggle(r.PathValue("name"))
	if err != nil {
		utils.RespondError(w, nil, err.Error(), catalogStatus(err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"expanded": expanded})
}
