package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes builds the HTTP router. allowedOrigins configures CORS on the /api subtree.
func (h *Handlers) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.Get("/students", h.Students)

	r.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))

		api.Get("/health", h.Health)

		api.Post("/register", h.Register)
		api.Post("/login", h.Login)
		api.Post("/logout", h.Logout)
		api.Get("/session", h.Session)

		api.Get("/users/{id}", h.GetUser)
		api.Put("/users/{id}", h.UpdateUser)
		api.Delete("/users/{id}", h.DeleteUser)
		api.Get("/users/{id}/expenses", h.ListUserExpenses)

		api.Post("/expenses", h.CreateExpense)
		api.Get("/expenses/{id}", h.GetExpense)
		api.Put("/expenses/{id}", h.UpdateExpense)
		api.Delete("/expenses/{id}", h.DeleteExpense)
	})

	return r
}
