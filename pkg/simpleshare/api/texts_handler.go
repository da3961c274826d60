package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-share/pkg/simpleshare"
)

// CreateTextRequest is the request body for sharing a text paste
type CreateTextRequest struct {
	Content        string `json:"content"`
	ContentType    string `json:"content_type,omitempty"`
	ExpirationDays int    `json:"expiration_days,omitempty"`
	Password       string `json:"password,omitempty"`
}

// TextResponse is the response body for a text paste
type TextResponse struct {
	ID          string     `json:"id"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	Views       int64      `json:"views"`
	ViewURL     string     `json:"view_url"`
	RawURL      string     `json:"raw_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	HasPassword bool       `json:"has_password"`
	Content     string     `json:"content,omitempty"`
}

// TextHandler handles HTTP requests for text pastes
type TextHandler struct {
	service simpleshare.Service
}

// NewTextHandler creates a new text handler
func NewTextHandler(service simpleshare.Service) *TextHandler {
	return &TextHandler{service: service}
}

// Routes returns the routes for text sharing
func (h *TextHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateText)
	r.Get("/{id}", h.GetText)
	r.Get("/{id}/info", h.GetTextInfo)
	r.Delete("/{id}", h.DeleteText)

	return r
}

// CreateText shares a text paste
func (h *TextHandler) CreateText(w http.ResponseWriter, r *http.Request) {
	var req CreateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	record, err := h.service.CreateText(r.Context(), simpleshare.CreateTextRequest{
		Content:        req.Content,
		ContentType:    req.ContentType,
		ExpirationDays: req.ExpirationDays,
		Password:       req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, textResponse(record, requestOrigin(r)))
}

// GetText returns the paste content. A protected paste takes the password
// from the "password" query parameter; "raw=true" returns the bare payload
// with its content type instead of the JSON envelope.
func (h *TextHandler) GetText(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	text, err := h.service.FetchText(r.Context(), id, r.URL.Query().Get("password"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("raw") == "true" {
		w.Header().Set("Content-Type", text.Record.ContentType)
		w.Write([]byte(text.Content))
		return
	}

	resp := textResponse(text.Record, requestOrigin(r))
	resp.Content = text.Content
	render.JSON(w, r, resp)
}

// GetTextInfo returns paste metadata without the content. Metadata is not
// password-gated; the password protects the payload only.
func (h *TextHandler) GetTextInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.service.GetTextInfo(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, textResponse(record, requestOrigin(r)))
}

// DeleteText removes a paste and its payload
func (h *TextHandler) DeleteText(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteText(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func textResponse(record *simpleshare.TextRecord, origin string) TextResponse {
	return TextResponse{
		ID:          record.ID,
		ContentType: record.ContentType,
		Size:        record.Size,
		Views:       record.Views,
		ViewURL:     origin + "/api/text/" + record.ID,
		RawURL:      origin + "/api/text/" + record.ID + "?raw=true",
		CreatedAt:   record.CreatedAt,
		ExpiresAt:   record.ExpiresAt,
		HasPassword: record.HasPassword,
	}
}
