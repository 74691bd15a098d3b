/**
 * @description
 * This file sets up the HTTP router for the registry-service. It defines the API
 * endpoints grouped by resource, associates them with their corresponding
 * handlers, and applies middleware for logging, panic recovery, CORS, and
 * session authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for chi.
 */

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes creates and returns the router for the registry service.
func Routes(h *RegistryHandlers, auth SessionValidator, corsAllowedOrigins string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if origins := splitOrigins(corsAllowedOrigins); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Public identity endpoints.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.RegisterHandler)
		r.Post("/login", h.LoginHandler)
		r.Post("/logout", h.LogoutHandler)
		r.Get("/me", h.CurrentUserHandler)

		r.Group(func(r chi.Router) {
			r.Use(SessionAuthMiddleware(auth))
			r.Post("/users/lookup", h.LookupUserByEmailHandler)
		})
	})

	// Group routes that require an authenticated session.
	r.Group(func(r chi.Router) {
		r.Use(SessionAuthMiddleware(auth))

		r.Route("/assets", func(r chi.Router) {
			r.Post("/", h.CreateAssetHandler)
			r.Get("/", h.ListAssetsHandler)
			r.Post("/{assetID}/transfer", h.TransferAssetHandler)
			r.Get("/{assetID}/transactions", h.ListAssetTransactionsHandler)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotificationsHandler)
			r.Post("/read-all", h.MarkAllNotificationsReadHandler)
			r.Post("/{notificationID}/read", h.MarkNotificationReadHandler)
			r.Delete("/{notificationID}", h.DeleteNotificationHandler)
			r.Delete("/", h.DeleteAllNotificationsHandler)
		})
	})

	return r
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
