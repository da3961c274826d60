package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-share/pkg/simpleshare"
)

// FileResponse is the response body for a shared file
type FileResponse struct {
	ID          string     `json:"id"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	Downloads   int64      `json:"downloads"`
	DownloadURL string     `json:"download_url"`
	ShareURL    string     `json:"share_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	HasPassword bool       `json:"has_password"`
}

// FileHandler handles HTTP requests for shared files
type FileHandler struct {
	service simpleshare.Service
}

// NewFileHandler creates a new file handler
func NewFileHandler(service simpleshare.Service) *FileHandler {
	return &FileHandler{service: service}
}

// Routes returns the routes for file sharing
func (h *FileHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/upload", h.UploadFile)
	r.Get("/{id}", h.DownloadFile)
	r.Get("/{id}/info", h.GetFileInfo)
	r.Delete("/{id}", h.DeleteFile)

	return r
}

// UploadFile accepts a multipart upload under the "file" field, with
// optional "password" and "expiration_days" fields.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "file field is required"})
		return
	}
	defer file.Close()

	expirationDays, _ := strconv.Atoi(r.FormValue("expiration_days"))

	record, err := h.service.UploadFile(r.Context(), simpleshare.UploadFileRequest{
		FileName:       header.Filename,
		ContentType:    header.Header.Get("Content-Type"),
		Data:           file,
		Size:           header.Size,
		ExpirationDays: expirationDays,
		Password:       r.FormValue("password"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, fileResponse(record, requestOrigin(r)))
}

// DownloadFile streams the file payload. A protected file takes the
// password from the "password" query parameter.
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	download, err := h.service.DownloadFile(r.Context(), id, r.URL.Query().Get("password"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer download.Body.Close()

	record := download.Record
	w.Header().Set("Content-Type", record.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.OriginalName))
	w.Header().Set("Content-Length", strconv.FormatInt(record.Size, 10))

	if _, err := io.Copy(w, download.Body); err != nil {
		// Headers are already out; nothing left to do but log.
		slog.Error("Failed to stream file", "id", id, "error", err)
	}
}

// GetFileInfo returns file metadata. Metadata is not password-gated; the
// password protects the payload only.
func (h *FileHandler) GetFileInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.service.GetFileInfo(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, fileResponse(record, requestOrigin(r)))
}

// DeleteFile removes a file and its payload
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteFile(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func fileResponse(record *simpleshare.FileRecord, origin string) FileResponse {
	return FileResponse{
		ID:          record.ID,
		FileName:    record.OriginalName,
		ContentType: record.ContentType,
		Size:        record.Size,
		Downloads:   record.Downloads,
		DownloadURL: origin + "/api/files/" + record.ID,
		ShareURL:    origin + "/api/files/" + record.ID + "/info",
		CreatedAt:   record.CreatedAt,
		ExpiresAt:   record.ExpiresAt,
		HasPassword: record.HasPassword,
	}
}
