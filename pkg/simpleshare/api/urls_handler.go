package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-share/pkg/simpleshare"
)

// CreateURLRequest is the request body for shortening a link
type CreateURLRequest struct {
	URL            string `json:"url"`
	CustomCode     string `json:"custom_code,omitempty"`
	ExpirationDays int    `json:"expiration_days,omitempty"`
}

// URLResponse is the response body for a shortened link
type URLResponse struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	URL       string     `json:"url"`
	ShortURL  string     `json:"short_url"`
	Clicks    int64      `json:"clicks"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// URLHandler handles HTTP requests for shortened links
type URLHandler struct {
	service simpleshare.Service
}

// NewURLHandler creates a new link handler
func NewURLHandler(service simpleshare.Service) *URLHandler {
	return &URLHandler{service: service}
}

// Routes returns the routes for link management
func (h *URLHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateURL)
	r.Get("/{code}", h.GetURL)
	r.Delete("/{code}", h.DeleteURL)

	return r
}

// CreateURL shortens a link
func (h *URLHandler) CreateURL(w http.ResponseWriter, r *http.Request) {
	var req CreateURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	record, err := h.service.CreateLink(r.Context(), simpleshare.CreateLinkRequest{
		Address:        req.URL,
		CustomCode:     req.CustomCode,
		ExpirationDays: req.ExpirationDays,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, urlResponse(record, requestOrigin(r)))
}

// GetURL returns link metadata without counting a click
func (h *URLHandler) GetURL(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	record, err := h.service.GetLink(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, urlResponse(record, requestOrigin(r)))
}

// DeleteURL removes a link
func (h *URLHandler) DeleteURL(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.service.DeleteLink(r.Context(), code); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Redirect resolves a short code and issues a 302 to the target address.
// This is the click path: it increments the counter.
func (h *URLHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	address, err := h.service.ResolveLink(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.Redirect(w, r, address, http.StatusFound)
}

func urlResponse(record *simpleshare.LinkRecord, origin string) URLResponse {
	return URLResponse{
		ID:        record.ID,
		Code:      record.Code,
		URL:       record.Address,
		ShortURL:  origin + "/s/" + record.Code,
		Clicks:    record.Clicks,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}
}
