package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raushankrgupta/marketchoice-admin/store"
	"github.com/raushankrgupta/marketchoice-admin/utils"
)

// UploadImageHandler stores a multipart "image" file and returns its blob id.
func (s *Server) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(s.Logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Upload Image API]")

	r.Body = http.MaxBytesReader(w, r.Body, utils.MaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(utils.MaxImageBytes); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Image too large or malformed upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, utils.MaxImageBytes+1))
	if err != nil || len(data) == 0 {
		utils.RespondError(w, &logMessageBuilder, "Could not read image", http.StatusBadRequest)
		return
	}
	if len(data) > utils.MaxImageBytes {
		utils.RespondError(w, &logMessageBuilder, "Image too large", http.StatusRequestEntityTooLarge)
		return
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Unsupported file type %s", ct), http.StatusUnsupportedMediaType)
		return
	}

	id := utils.NewBlobID()
	if err := s.Blobs.PutBlob(r.Context(), id, data); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("PutBlob failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to store image", http.StatusBadGateway)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Stored %s (%d bytes) as %s", header.Filename, len(data), id))
	utils.RespondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// GetImageHandler redirects to a presigned link when the backend has one,
// otherwise it streams the blob.
func (s *Server) GetImageHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	link, ok, err := store.Gateway{Blobs: s.Blobs}.Presign(r.Context(), id)
	if ok && err == nil {
		http.Redirect(w, r, link, http.StatusFound)
		return
	}
	if err != nil {
		s.Logger.WithError(err).WithField("id", id).Warn("presign failed, serving bytes")
	}

	data, err := s.Blobs.GetBlob(r.Context(), id)
	if errors.Is(err, store.ErrBlobNotFound) {
		utils.RespondError(w, nil, "Image not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.RespondError(w, nil, "Failed to load image", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
