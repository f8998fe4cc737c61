// Package router sets up all HTTP routes and middleware chains for the
// pagecraft API. Routes are split into public, session-only and
// authorized groups with the matching middleware stacks.
package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"pagecraft/internal/handlers"
	"pagecraft/internal/middleware"
)

// Rate limits. Auth endpoints are limited per client IP, generation
// endpoints per user.
const (
	authLimit      = 10
	authWindow     = time.Minute
	generateLimit  = 30
	generateWindow = time.Minute
)

// Options configures the router.
type Options struct {
	Sessions middleware.SessionLoader
	Auth     *handlers.Auth
	API      *handlers.API
	// Origins are the browser origins allowed by CORS and allowed to
	// frame previews.
	Origins []string
	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(corsHandler(opts.Origins))
	r.Use(middleware.LoadSession(opts.Sessions))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	api := opts.API
	auth := opts.Auth
	framing := middleware.AllowFraming(opts.Origins)

	// Health check, no auth, no CSRF.
	r.Get("/health", api.Health)

	// Share links render without a session.
	r.With(framing).Get("/share/{token}", api.SharedPreview)

	authLimiter := middleware.NewRateLimiter(authLimit, authWindow)
	generateLimiter := middleware.NewKeyedRateLimiter(generateLimit, generateWindow, middleware.UserOrIP)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CSRF(opts.SecureCookies))

		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter.Middleware).Post("/register", auth.Register)
			r.With(authLimiter.Middleware).Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)

			// A session waiting on its second factor reaches these.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession)
				r.Get("/me", auth.Me)
				r.With(authLimiter.Middleware).Post("/2fa/verify", auth.TwoFAVerify)
			})

			r.With(middleware.RequireAuth).Get("/2fa/setup", auth.TwoFASetup)
		})

		// Authorized builder API.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/library", api.Library)
			r.With(generateLimiter.Middleware).Post("/generate", api.Generate)
			r.With(generateLimiter.Middleware).Post("/generate/backend", api.GenerateBackend)

			r.Get("/assistant/suggestions", api.Suggestions)
			r.Post("/assistant/messages", api.AssistantMessage)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", api.ListProjects)
				r.Post("/", api.CreateProject)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", api.GetProject)
					r.Put("/", api.UpdateProject)
					r.Delete("/", api.DeleteProject)

					r.Post("/elements", api.AddElement)
					r.Patch("/elements/{elementID}", api.UpdateElement)
					r.Delete("/elements/{elementID}", api.DeleteElement)
					r.Put("/snapshot", api.ReplaceSnapshot)

					r.Post("/tables", api.AddTable)
					r.Patch("/tables/{tableID}", api.RenameTable)
					r.Delete("/tables/{tableID}", api.DeleteTable)
					r.Post("/tables/{tableID}/fields", api.AddField)
					r.Patch("/tables/{tableID}/fields/{fieldID}", api.UpdateField)
					r.Delete("/tables/{tableID}/fields/{fieldID}", api.DeleteField)

					r.Group(func(r chi.Router) {
						r.Use(generateLimiter.Middleware)
						r.Post("/generate", api.GenerateProject)
						r.Post("/generate/backend", api.GenerateProjectBackend)
						r.Post("/deploy", api.Deploy)
					})
					r.Get("/code", api.ExportCode)
					r.With(framing).Get("/preview", api.Preview)
					r.Post("/share", api.Share)

					r.Get("/revisions", api.ListRevisions)
					r.Post("/revisions/{revID}/restore", api.RestoreRevision)

					r.Get("/live", api.Live)
				})
			})
		})
	})

	return r
}

// corsHandler allows the builder frontend to call the API with cookies.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", middleware.CSRFHeaderName},
		ExposedHeaders:   []string{"Retry-After", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

// writeError writes the API error body for router-level responses.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
