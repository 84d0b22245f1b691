// Package httpapi exposes the platform over REST: registration and the
// quiz-gated freelancer onboarding, job lifecycle transitions, fraud
// reports, and the admin surface.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gigflow/fraud"
	"gigflow/marketplace"
	"gigflow/users"
)

// Server is the HTTP API server.
type Server struct {
	users  *users.Service
	jobs   *marketplace.Service
	fraud  *fraud.Service
	router *chi.Mux
}

// NewServer wires the domain services into a configured router.
func NewServer(userSvc *users.Service, jobSvc *marketplace.Service, fraudSvc *fraud.Service) *Server {
	s := &Server{
		users: userSvc,
		jobs:  jobSvc,
		fraud: fraudSvc,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Registration and onboarding run before the candidate has a token.
		r.Post("/users/register/client", s.handleRegisterClient)
		r.Post("/users/register/freelancer", s.handleRegisterFreelancer)
		r.Get("/users/{id}/quiz", s.handleGetQuiz)
		r.Post("/users/quiz/{id}", s.handleSubmitQuiz)
		r.Post("/users/freelancers/{id}", s.handleCompleteProfile)
		r.Post("/users/login", s.handleLogin)
		r.Post("/admin/login/admin", s.handleAdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/users/freelancers", s.handleListFreelancers)

			r.With(s.requireRole(users.RoleClient)).Post("/jobs", s.handleCreateJob)
			r.With(s.requireRole(users.RoleClient)).Get("/jobs/client", s.handleClientJobs)
			r.With(s.requireRole(users.RoleFreelancer)).Get("/jobs/freelancer/{id}", s.handleFreelancerJobs)
			r.With(s.requireRole(users.RoleFreelancer)).Put("/jobs/{id}/price", s.handleSetPrice)
			r.With(s.requireRole(users.RoleFreelancer)).Put("/jobs/{id}/accept", s.handleAcceptJob)
			r.With(s.requireRole(users.RoleFreelancer)).Put("/jobs/{id}/ignore", s.handleIgnoreJob)
			r.With(s.requireRole(users.RoleFreelancer)).Put("/jobs/{id}/complete", s.handleCompleteJob)
			r.With(s.requireRole(users.RoleClient)).Put("/jobs/{id}/payment", s.handlePayJob)
			r.With(s.requireRole(users.RoleClient)).Delete("/jobs/{id}", s.handleDeleteJob)

			r.Post("/fraud/report", s.handleFileReport)
			r.With(s.requireRole(users.RoleAdmin)).Get("/fraud/reports", s.handleListReports)
			r.With(s.requireRole(users.RoleAdmin)).Put("/fraud/reports/{id}/resolve", s.handleResolveReport)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireRole(users.RoleAdmin))
				r.Get("/freelancers", s.handleAdminFreelancers)
				r.Get("/clients", s.handleAdminClients)
				r.Delete("/delete/{id}", s.handleAdminDeleteUser)
			})
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
