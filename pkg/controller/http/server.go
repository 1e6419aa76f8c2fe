package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/briareus/pkg/domain/model/config"
	"github.com/secmon-lab/briareus/pkg/usecase"
	"github.com/secmon-lab/briareus/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
}

// New builds the API router. Every route except signup and login sits
// behind the session middleware, and each route group behind its dashboard
// section gate.
func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{router: r}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	authn := authMiddleware(uc.Auth, uc.Access)

	// Unauthenticated: signup and login
	r.Post("/api/access/register", registerAccountHandler(uc.Access))
	r.Post("/api/auth/login", authLoginHandler(uc.Auth))

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Post("/api/auth/logout", authLogoutHandler(uc.Auth))
		r.Get("/api/auth/me", authMeHandler())

		r.Route("/api/overview", func(r chi.Router) {
			r.Use(requireSection(config.SectionOverview))
			r.Get("/", overviewHandler(uc.Risk, uc.Access))
		})

		r.Route("/api/risks", func(r chi.Router) {
			r.Use(requireSection(config.SectionRiskManagement))

			r.Get("/", listRisksHandler(uc.Risk))
			r.Post("/", createRiskHandler(uc.Risk, false))
			r.Post("/submit", createRiskHandler(uc.Risk, true))
			r.Get("/matrix", matrixHandler(uc.Matrix()))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getRiskHandler(uc.Risk))
				r.Patch("/", updateRiskHandler(uc.Risk))
				r.Delete("/", deleteRiskHandler(uc.Risk))
				r.Put("/status", updateRiskStatusHandler(uc.Risk))
				r.Post("/review", openReviewHandler(uc.Risk))
				r.Post("/evaluate", evaluateRiskHandler(uc.Risk))
			})
		})

		r.Route("/api/access", func(r chi.Router) {
			r.Use(requireSection(config.SectionAccessControl))

			r.Get("/accounts", listAccountsHandler(uc.Access))
			r.Get("/pending", listPendingAccountsHandler(uc.Access))
			r.Get("/roles", rolesHandler(uc.Roles()))
			r.Post("/accounts/{id}/approve", approveAccountHandler(uc.Access))
			r.Post("/accounts/{id}/reject", rejectAccountHandler(uc.Access))
			r.Post("/bulk/approve", bulkApproveHandler(uc.Access))
			r.Post("/bulk/reject", bulkRejectHandler(uc.Access))
		})

		r.Route("/api/reports", func(r chi.Router) {
			r.Use(requireSection(config.SectionReports))
			r.Get("/accounts.csv", exportAccountsHandler(uc.Access))
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
