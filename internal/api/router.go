package api

import (
	"net/http"

	"github.com/Rijass/Spotify-Stats/internal/api/handlers"
	"github.com/Rijass/Spotify-Stats/internal/api/middleware"
	"github.com/Rijass/Spotify-Stats/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	userHandler := handlers.NewUserHandler(services.User)
	spotifyHandler := handlers.NewSpotifyHandler(services.Spotify)
	chartHandler := handlers.NewChartHandler(services.Chart)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			// Public routes
			r.Post("/", userHandler.Create)
			r.Post("/login", userHandler.Login)
			r.Get("/session", userHandler.Session)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.User))
				r.Get("/me", userHandler.Me)
				r.Put("/", userHandler.Update)
				r.Delete("/", userHandler.Delete)
				r.Post("/logout", userHandler.Logout)
			})
		})

		r.Route("/spotify", func(r chi.Router) {
			// Spotify redirects the browser here without a session header.
			r.Get("/callback", spotifyHandler.Callback)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.User))
				r.Get("/login", spotifyHandler.Login)
				r.Get("/status", spotifyHandler.Status)
				r.Delete("/link", spotifyHandler.Unlink)
				r.Get("/profile", spotifyHandler.Profile)
				r.Get("/top-tracks", spotifyHandler.TopTracks)
			})
		})

		// Chart data is public
		r.Get("/charts/global-top-50", chartHandler.GlobalTop50)
	})

	return r
}
