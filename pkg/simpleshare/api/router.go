// Package api exposes the content-sharing service over HTTP with chi.
// Handlers translate between the wire format and the service types; the
// error taxonomy maps one-to-one onto status codes in writeError.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/admin"
)

// NewRouter assembles the full HTTP surface: content routes, the redirect
// path, and the admin routes behind the shared secret.
func NewRouter(content simpleshare.Service, adminService admin.Service, adminSecret string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	urls := NewURLHandler(content)
	files := NewFileHandler(content)
	texts := NewTextHandler(content)

	r.Get("/", healthCheck)
	r.Get("/s/{code}", urls.Redirect)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/urls", urls.Routes())
		r.Mount("/files", files.Routes())
		r.Mount("/text", texts.Routes())

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(adminSecret))
			r.Mount("/", NewAdminHandler(adminService).Routes())
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// requestOrigin derives the external base URL from the request, honoring
// the forwarding headers a fronting proxy sets.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = forwarded
	}
	return scheme + "://" + host
}
