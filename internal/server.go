package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/bueroportal/bueroportal/internal/complaint"
	"github.com/bueroportal/bueroportal/internal/config"
	"github.com/bueroportal/bueroportal/internal/identity"
	"github.com/bueroportal/bueroportal/internal/meeting"
	"github.com/bueroportal/bueroportal/internal/notify"
	"github.com/bueroportal/bueroportal/internal/task"
	"github.com/bueroportal/bueroportal/pkg/cerr"
	"github.com/bueroportal/bueroportal/pkg/clog"
)

type Server struct {
	server          *http.Server
	env             *config.Env
	taskServer      *task.Server
	complaintServer *complaint.Server
	meetingServer   *meeting.Server
	notifyServer    *notify.Server
}

func NewServer(
	env *config.Env,
	taskServer *task.Server,
	complaintServer *complaint.Server,
	meetingServer *meeting.Server,
	notifyServer *notify.Server,
) *Server {
	return &Server{
		env:             env,
		taskServer:      taskServer,
		complaintServer: complaintServer,
		meetingServer:   meetingServer,
		notifyServer:    notifyServer,
	}
}

// ListenAndServe starts the HTTP server. The provided context is used as
// the base context for all incoming requests, so cancelling it (shutdown
// signal) also cancels in-flight request contexts.
func (s *Server) ListenAndServe(ctx context.Context) error {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			clog.SlogChiMiddleware(),
			cerr.NewJSONResponseChiMiddleware(),
			identity.Middleware(),
		)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
		s.taskServer.RegisterRoutes(r)
		s.complaintServer.RegisterRoutes(r)
		s.meetingServer.RegisterRoutes(r)
		s.notifyServer.RegisterRoutes(r)
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)

	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr: addr,
		Handler: cors.New(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}).Handler(mux),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
