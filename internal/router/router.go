// Package router sets up all HTTP routes and middleware chains for the
// DocShelf API. Routes split into the public catalog surface, rate-limited
// auth endpoints, and authenticated staff/admin groups.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"docshelf/internal/auth"
	"docshelf/internal/handlers"
	"docshelf/internal/middleware"
	"docshelf/internal/models"
)

// Deps carries everything the router wires together.
type Deps struct {
	Authorizer  *auth.Authorizer
	AuthLimiter *middleware.RateLimiter
	Auth        *handlers.Auth
	Documents   *handlers.Assets
	Services    *handlers.Assets
	Users       *handlers.Users

	// Files serves uploaded content when the local storage backend is
	// active; nil with S3, where file URLs point at the bucket directly.
	Files       http.Handler
	FilesPrefix string
}

// New creates and returns the configured chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	// Catalog surfaces. Reads are public; mutations need staff or above.
	r.Route("/assets/documents", func(r chi.Router) {
		assetRoutes(r, d.Authorizer, d.Documents)
	})
	r.Route("/assets/services", func(r chi.Router) {
		assetRoutes(r, d.Authorizer, d.Services)
	})

	// Auth endpoints, rate-limited per client IP.
	r.Route("/auth", func(r chi.Router) {
		r.Use(d.AuthLimiter.Middleware)

		r.Post("/register", d.Auth.Register)
		r.Post("/login", d.Auth.Login)
		r.Post("/password/request", d.Auth.PasswordRequest)
		r.Post("/password/reset", d.Auth.PasswordReset)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Authorizer))
			r.Get("/profile", d.Auth.Profile)
			r.Put("/profile", d.Auth.UpdateProfile)
		})
	})

	// User administration, admin and above. The superadmin-only guards
	// live in the handlers.
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Authorizer))
		r.Use(middleware.RequireRole(models.RoleAdmin))

		r.Get("/", d.Users.List)
		r.Post("/", d.Users.Create)
		r.Put("/{id}", d.Users.Update)
		r.Delete("/{id}", d.Users.Delete)
	})

	// Uploaded files, local backend only.
	if d.Files != nil {
		r.Mount(strings.TrimSuffix(d.FilesPrefix, "/"), d.Files)
	}

	return r
}

// assetRoutes mounts one asset surface on the given subrouter.
func assetRoutes(r chi.Router, authorizer *auth.Authorizer, h *handlers.Assets) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/download", h.Download)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authorizer))
		r.Use(middleware.RequireRole(models.RoleStaff))

		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
