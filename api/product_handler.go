package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/raushankrgupta/marketchoice-admin/models"
	"github.com/raushankrgupta/marketchoice-admin/utils"
)

func decodeProduct(r *http.Request) (models.Product, error) {
	var p models.Product
	if err := utils.DecodeJSON(r, &p); err != nil {
		return p, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return p, fmt.Errorf("product name is required")
	}
	return p, nil
}

func productIndex(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("index"))
}

func (s *Server) AddProductHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Add Product API]")

	category := r.PathValue("name")
	p, err := decodeProduct(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Invalid product: %v", err), http.StatusBadRequest)
		return
	}
	index, err := s.Console.AddProduct(category, p)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), catalogStatus(err))
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Added %q to %q at %d", p.Name, category, index))
	utils.RespondJSON(w, http.StatusCreated, map[string]int{"index": index})
}

func (s *Server) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Update Product API]")

	category := r.PathValue("name")
	index, err := productIndex(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid product index", http.StatusBadRequest)
		return
	}
	p, err := decodeProduct(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Invalid product: %v", err), http.StatusBadRequest)
		return
	}
	if err := s.Console.UpdateProduct(category, index, p); err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), catalogStatus(err))
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Updated %q #%d", category, index))
	utils.RespondJSON(w, http.StatusOK, map[string]int{"index": index})
}

func (s *Server) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Delete Product API]")

	category := r.PathValue("name")
	index, err := productIndex(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid product index", http.StatusBadRequest)
		return
	}
	if err := s.Console.DeleteProduct(category, index); err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), catalogStatus(err))
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Deleted %q #%d", category, index))
	w.WriteHeader(http.StatusNoContent)
}
