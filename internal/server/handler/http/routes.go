package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/akarpenko/todoapi/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the API.
//
// Routes:
//
//	POST   /users           → userHandler.Register  (public)
//	POST   /users/login     → userHandler.Login     (public)
//	GET    /users/me        → userHandler.Me        (auth)
//	DELETE /users/me/token  → userHandler.Logout    (auth)
//	POST   /todos           → todoHandler.Create    (auth)
//	GET    /todos           → todoHandler.List      (auth)
//	GET    /todos/{id}      → todoHandler.Get       (auth)
//	DELETE /todos/{id}      → todoHandler.Delete    (auth)
//	PATCH  /todos/{id}      → todoHandler.Patch     (auth)
//
// Authenticated routes sit behind middleware.RequireAuth, which resolves
// the x-auth header against the user service and rejects with 401.
func NewRouter(
	userHandler *UserHandler,
	todoHandler *TodoHandler,
	auth middleware.TokenAuthenticator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow JSON bodies; requests without a body pass through.
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata.
	r.Use(middleware.WithRequestLogging(logger))

	// Public endpoints
	r.Post("/users", userHandler.Register)
	r.Post("/users/login", userHandler.Login)

	// Protected group: requires a valid, still-listed token
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(auth))

		r.Get("/users/me", userHandler.Me)
		r.Delete("/users/me/token", userHandler.Logout)

		r.Route("/todos", func(r chi.Router) {
			r.Post("/", todoHandler.Create)
			r.Get("/", todoHandler.List)
			r.Get("/{id}", todoHandler.Get)
			r.Delete("/{id}", todoHandler.Delete)
			r.Patch("/{id}", todoHandler.Patch)
		})
	})

	return r
}
