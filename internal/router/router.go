package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"archeohub-backend/internal/handlers"
	"archeohub-backend/internal/middleware"
)

// Deps collects everything the HTTP surface needs. JWTAuth, AuthHandler and
// WSHub may be nil when accounts are not configured; the chat, health and
// catalog routes are mounted regardless.
type Deps struct {
	JWTAuth        *middleware.JWTAuth
	AuthLimiter    *middleware.RateLimiter
	ChatHandler    *handlers.ChatHandler
	AuthHandler    *handlers.AuthHandler
	HealthHandler  *handlers.HealthHandler
	CatalogHandler *handlers.CatalogHandler
	WSHub          http.HandlerFunc
	FrontendOrigin string
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Recoverer(d.FrontendOrigin))
	r.Use(middleware.CORS(d.FrontendOrigin))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	authEnabled := d.JWTAuth != nil && d.AuthHandler != nil

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", d.HealthHandler.Health)

		// The handler owns method dispatch so non-POST gets its JSON 405.
		if d.JWTAuth != nil {
			r.With(d.JWTAuth.Optional).HandleFunc("/chat", d.ChatHandler.Chat)
		} else {
			r.HandleFunc("/chat", d.ChatHandler.Chat)
		}

		if authEnabled {
			limiter := d.AuthLimiter
			if limiter == nil {
				limiter = middleware.NewRateLimiter(10, time.Minute)
			}
			r.Route("/auth", func(r chi.Router) {
				r.Use(limiter.Middleware)
				r.Post("/signup", d.AuthHandler.Signup)
				r.Post("/me", d.AuthHandler.Login)
				r.With(d.JWTAuth.Middleware).Get("/me", d.AuthHandler.Me)
				r.With(d.JWTAuth.Optional).Post("/logout", d.AuthHandler.Logout)
			})
		}

		r.Route("/artifacts", func(r chi.Router) {
			r.Get("/", d.CatalogHandler.ListArtifacts)
			r.Get("/{id}", d.CatalogHandler.GetArtifact)
		})
		r.Route("/excavations", func(r chi.Router) {
			r.Get("/", d.CatalogHandler.ListExcavations)
			r.Get("/{id}", d.CatalogHandler.GetExcavation)
		})
		r.Route("/research", func(r chi.Router) {
			r.Get("/", d.CatalogHandler.ListResearch)
			r.Get("/{id}", d.CatalogHandler.GetResearch)
		})

		if d.WSHub != nil {
			r.Get("/ws", d.WSHub)
		}
	})

	return r
}
