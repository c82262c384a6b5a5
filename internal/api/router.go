package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/buk/tasker-be/internal/api/handlers"
	"github.com/buk/tasker-be/internal/auth"
	"github.com/buk/tasker-be/internal/middleware"
	"github.com/buk/tasker-be/internal/services"
	"github.com/buk/tasker-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	taskService services.TaskServiceProvider,
	commentService services.CommentServiceProvider,
	isProd bool,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, isProd)
	taskHandler := handlers.NewTaskHandler(taskService, userService)
	commentHandler := handlers.NewCommentHandler(commentService, taskService, userService)
	systemHandler := handlers.NewSystemHandler()
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Route("/api/v1", func(r chi.Router) {
		// Credential endpoints, rate limited per IP.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimiter(rate.Limit(1), 5))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())

			r.Get("/auth/me", authHandler.Me)
			r.Get("/system", systemHandler.Status)
			r.Get("/ws", wsHandler.Serve)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.GetAll)
				r.Post("/", taskHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Put("/", taskHandler.Update)
					r.Patch("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
				})
			})

			r.Route("/comments", func(r chi.Router) {
				r.Route("/task/{taskId}", func(r chi.Router) {
					r.Get("/", commentHandler.GetByTask)
					r.Post("/", commentHandler.Create)
				})
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", commentHandler.Update)
					r.Patch("/", commentHandler.Update)
					r.Delete("/", commentHandler.Delete)
				})
			})
		})
	})

	return r
}
