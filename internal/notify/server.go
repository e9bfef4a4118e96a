package notify

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/bueroportal/bueroportal/internal/config"
	"github.com/bueroportal/bueroportal/pkg/cerr"
)

type Server struct {
	vapidEnv *config.VAPIDEnv
	repo     Repository
}

func NewServer(vapidEnv *config.VAPIDEnv, repo Repository) *Server {
	return &Server{vapidEnv: vapidEnv, repo: repo}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/push/key", s.handleKey)
	r.Post("/push/subscriptions", s.handleSubscribe)
	r.Delete("/push/subscriptions/{id}", s.handleUnsubscribe)
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), map[string]string{
		"publicKey": s.vapidEnv.VAPIDPublicKey,
	})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Endpoint) == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "endpoint is required", nil)
		return
	}
	sub := &Subscription{
		ID:        ulid.Make().String(),
		Endpoint:  req.Endpoint,
		P256dhKey: req.Keys.P256dh,
		AuthKey:   req.Keys.Auth,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseStatus(ctx, http.StatusCreated, sub)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, struct{}{})
}
