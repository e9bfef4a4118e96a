package complaint

import (
	"encoding/json"
	"fmt"
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
	r.Get("/complaints", s.handleList)
	r.Post("/complaints", s.handleCreate)
	r.Get("/complaints/{id}", s.handleGet)
	r.Patch("/complaints/{id}", s.handlePatch)
	r.Delete("/complaints/{id}", s.handleDelete)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, fmt.Sprintf("unknown status %q", status), nil)
		return
	}
	all, err := s.repo.List(ctx, status)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if all == nil {
		all = []*Complaint{}
	}
	cerr.SetJSONResponse(ctx, all)
}

type createRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Customer    string `json:"customer"`
	AssignedTo  string `json:"assignedTo"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "subject is required", nil)
		return
	}
	now := time.Now()
	c := &Complaint{
		ID:          ulid.Make().String(),
		Subject:     req.Subject,
		Description: req.Description,
		Customer:    req.Customer,
		AssignedTo:  req.AssignedTo,
		Status:      StatusOffen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if s.bus != nil {
		s.bus.PublishNew(eventbus.EventTypeComplaintCreated, c.ID, c.Subject, nil)
	}
	cerr.SetJSONResponseStatus(ctx, http.StatusCreated, c)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, c)
}

type patchRequest struct {
	Subject     *string `json:"subject"`
	Description *string `json:"description"`
	Customer    *string `json:"customer"`
	AssignedTo  *string `json:"assignedTo"`
	Status      *Status `json:"status"`
	Resolution  *string `json:"resolution"`
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, fmt.Sprintf("unknown status %q", *req.Status), nil)
		return
	}
	c, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if req.Subject != nil {
		c.Subject = *req.Subject
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Customer != nil {
		c.Customer = *req.Customer
	}
	if req.AssignedTo != nil {
		c.AssignedTo = *req.AssignedTo
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Resolution != nil {
		c.Resolution = *req.Resolution
	}
	c.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, c); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, c)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repo.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, struct{}{})
}
