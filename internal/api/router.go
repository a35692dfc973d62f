package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/videoflow/videoflow-be/internal/api/handlers"
	"github.com/videoflow/videoflow-be/internal/auth"
	"github.com/videoflow/videoflow-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(authManager *auth.Manager, userService services.UserServiceProvider, videoService services.VideoServiceProvider, corsOrigin string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, authManager)
	videoHandler := handlers.NewVideoHandler(videoService)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Protected catalog routes
	r.Route("/api", func(r chi.Router) {
		r.Use(authManager.Middleware())

		r.Route("/videos", func(r chi.Router) {
			r.Post("/", videoHandler.Create)
			r.Get("/", videoHandler.List)
			r.Put("/{id}", videoHandler.Update)
			r.Delete("/{id}", videoHandler.Delete)
		})
	})

	return r
}
