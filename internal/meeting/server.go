package meeting

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/bueroportal/bueroportal/internal/eventbus"
	"github.com/bueroportal/bueroportal/pkg/cerr"
)

type Server struct {
	repo Repository
	bus  *eventbus.Bus
}

func NewServer(repo Repository, bus *eventbus.Bus) *Server {
	return &Server{repo: repo, bus: bus}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/meetings", s.handleList)
	r.Post("/meetings", s.handleCreate)
	r.Get("/meetings/{id}", s.handleGet)
	r.Patch("/meetings/{id}", s.handlePatch)
	r.Delete("/meetings/{id}", s.handleDelete)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all, err := s.repo.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if all == nil {
		all = []*Meeting{}
	}
	cerr.SetJSONResponse(ctx, all)
}

type createRequest struct {
	Title        string       `json:"title"`
	Date         string       `json:"date"`
	Participants []string     `json:"participants"`
	Agenda       []AgendaItem `json:"agenda"`
	Minutes      string       `json:"minutes"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "title is required", nil)
		return
	}
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "date must be formatted as YYYY-MM-DD", err)
			return
		}
	}
	now := time.Now()
	m := &Meeting{
		ID:           ulid.Make().String(),
		Title:        req.Title,
		Date:         req.Date,
		Participants: req.Participants,
		Agenda:       req.Agenda,
		Minutes:      req.Minutes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if s.bus != nil {
		s.bus.PublishNew(eventbus.EventTypeMeetingCreated, m.ID, m.Title, nil)
	}
	cerr.SetJSONResponseStatus(ctx, http.StatusCreated, m)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	m, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, m)
}

type patchRequest struct {
	Title        *string       `json:"title"`
	Date         *string       `json:"date"`
	Participants *[]string     `json:"participants"`
	Agenda       *[]AgendaItem `json:"agenda"`
	Minutes      *string       `json:"minutes"`
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Date != nil {
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "date must be formatted as YYYY-MM-DD", err)
			return
		}
	}
	m, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Date != nil {
		m.Date = *req.Date
	}
	if req.Participants != nil {
		m.Participants = *req.Participants
	}
	if req.Agenda != nil {
		m.Agenda = *req.Agenda
	}
	if req.Minutes != nil {
		m.Minutes = *req.Minutes
	}
	m.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, m)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, struct{}{})
}
