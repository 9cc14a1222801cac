package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/NotAnonymousUser/Ticket-System/internal/config"
	"github.com/NotAnonymousUser/Ticket-System/internal/handlers"
	"github.com/NotAnonymousUser/Ticket-System/internal/middleware"
	"github.com/NotAnonymousUser/Ticket-System/internal/models"
	"github.com/NotAnonymousUser/Ticket-System/internal/repository"
	"github.com/NotAnonymousUser/Ticket-System/internal/service"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	DB      handlers.Pinger // optional; health check skips the ping when nil
	Auth    *service.AuthService
	Tickets *service.TicketService
	Users   repository.UserRepository
}

func New(log zerolog.Logger, cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(middleware.WithAuth(log, cfg.SessionSecret))

	// Health
	r.Get("/healthz", handlers.Health(d.DB))

	ah := handlers.NewAuthHTTP(d.Auth, d.Users, log, cfg.Env == "prod")
	th := handlers.NewTicketHTTP(d.Tickets, log)
	uh := handlers.NewUserHTTP(d.Users, log)
	rh := handlers.NewReportsHTTP(d.Tickets, log)

	r.Route("/api", func(r chi.Router) {
		// Accounts
		r.Post("/signup", ah.Signup())
		r.Post("/login", ah.Login())
		r.Post("/logout", ah.Logout())
		r.With(middleware.RequireAuth).Get("/me", ah.Me())

		// Tickets
		r.Post("/ticket", th.Create())
		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", th.List())
			r.Post("/", th.Create())
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", th.Get())
				r.With(middleware.RequireAuth).Put("/", th.Update())
				r.With(middleware.RequireAuth).Delete("/", th.Delete())
				r.Get("/comments", th.ListComments())
				r.Post("/comments", th.AddComment())
			})
		})

		// Users
		r.Route("/users", func(r chi.Router) {
			r.With(middleware.RequireRoles(models.RoleAdmin)).Get("/", uh.List())
			r.With(middleware.RequireSelfOrRoles(models.RoleAdmin)).Get("/{id}", uh.Get())
		})

		// Reports
		r.With(middleware.RequireRoles(models.RoleAdmin, models.RoleHR)).Get("/reports/summary", rh.Summary())
	})

	return r
}
