package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-share/pkg/simpleshare/admin"
)

// AdminHandler handles the administrative HTTP surface. Every route is
// gated by RequireAdmin.
type AdminHandler struct {
	service admin.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service admin.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// Routes returns the admin routes
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/stats", h.GetStats)
	r.Get("/urls", h.ListURLs)
	r.Get("/files", h.ListFiles)
	r.Get("/texts", h.ListTexts)
	r.Delete("/urls/{code}", h.DeleteURL)
	r.Delete("/files/{id}", h.DeleteFile)
	r.Delete("/texts/{id}", h.DeleteText)
	r.Post("/cleanup", h.Cleanup)

	return r
}

// RequireAdmin rejects requests whose Authorization header does not carry
// the shared secret as a bearer token. An empty secret disables the whole
// admin surface rather than leaving it open.
func RequireAdmin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if secret == "" || !ok ||
				subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, ErrorResponse{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetStats returns aggregate usage counters
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, stats)
}

// ListURLs returns one page of links
func (h *AdminHandler) ListURLs(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	result, err := h.service.ListLinks(r.Context(), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// ListFiles returns one page of files
func (h *AdminHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	result, err := h.service.ListFiles(r.Context(), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// ListTexts returns one page of texts
func (h *AdminHandler) ListTexts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	result, err := h.service.ListTexts(r.Context(), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// DeleteURL force-removes a link
func (h *AdminHandler) DeleteURL(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLink(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFile force-removes a file
func (h *AdminHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteFile(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteText force-removes a text paste
func (h *AdminHandler) DeleteText(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteText(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cleanup runs the active expiry sweep
func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Cleanup(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}
