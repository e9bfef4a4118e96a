package task

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bueroportal/bueroportal/internal/identity"
	"github.com/bueroportal/bueroportal/pkg/cerr"
)

// Server exposes the task store, the workflow gate and the kanban board
// over HTTP. Response bodies and errors are staged into the request
// context and rendered by the JSON response middleware.
type Server struct {
	store *Store
	gate  *Gate
	board *Board
}

func NewServer(store *Store, gate *Gate, board *Board) *Server {
	return &Server{
		store: store,
		gate:  gate,
		board: board,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/tasks", s.handleList)
	r.Post("/tasks", s.handleCreate)
	r.Get("/tasks/{id}", s.handleGet)
	r.Patch("/tasks/{id}", s.handlePatch)
	r.Put("/tasks/{id}", s.handleReplace)
	r.Post("/tasks/{id}/advance", s.handleAdvance)
	r.Post("/tasks/{id}/approvals", s.handleRequestApproval)
	r.Post("/tasks/{id}/approvals/decision", s.handleDecideApproval)
	r.Get("/board", s.handleBoard)
	r.Post("/board/move", s.handleMove)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := filterFromQuery(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, s.store.List(filter))
}

type createRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       Priority `json:"priority"`
	AssignedTo     string   `json:"assignedTo"`
	DueDate        string   `json:"dueDate"`
	EstimatedHours float64  `json:"estimatedHours"`
}

func (req *createRequest) validate() error {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(req.AssignedTo) == "" {
		missing = append(missing, "assignedTo")
	}
	if strings.TrimSpace(req.DueDate) == "" {
		missing = append(missing, "dueDate")
	}
	if len(missing) > 0 {
		return cerr.NewError(cerr.InvalidArgument,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")), nil)
	}
	if _, err := time.Parse("2006-01-02", req.DueDate); err != nil {
		return cerr.NewError(cerr.InvalidArgument, "dueDate must be formatted as YYYY-MM-DD", err)
	}
	if req.EstimatedHours < 0 {
		return cerr.NewError(cerr.InvalidArgument, "estimatedHours must not be negative", nil)
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown priority %q", req.Priority), nil)
	}
	return nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if err := req.validate(); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.store.Create(ctx, CreateFields{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		AssignedTo:     req.AssignedTo,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseStatus(ctx, http.StatusCreated, t)
}

type detailResponse struct {
	Task       *Task    `json:"task"`
	WorkFields []string `json:"workFields"`
	CanAdvance bool     `json:"canAdvance"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, detailResponse{
		Task:       t,
		WorkFields: WorkFields(t.Status),
		CanAdvance: CanAdvance(t),
	})
}

type patchRequest struct {
	Patch
	ChangedBy string `json:"changedBy"`
	Action    string `json:"action"`
}

// UnmarshalJSON maps the flattened camelCase wire fields onto the patch.
func (p *patchRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title          *string   `json:"title"`
		Description    *string   `json:"description"`
		Priority       *Priority `json:"priority"`
		AssignedTo     *string   `json:"assignedTo"`
		DueDate        *string   `json:"dueDate"`
		EstimatedHours *float64  `json:"estimatedHours"`
		Status         *Status   `json:"status"`

		RequiredInfo          *string `json:"requiredInfo"`
		RequiredCollaboration *string `json:"requiredCollaboration"`
		IdeaCollection        *string `json:"ideaCollection"`
		Scheduling            *string `json:"scheduling"`

		Protocols        *[]Protocol        `json:"protocols"`
		MeetingProtocols *[]MeetingProtocol `json:"meetingProtocols"`
		Documents        *[]Document        `json:"documents"`
		Attachments      *[]Attachment      `json:"attachments"`

		InterimReport *string     `json:"interimReport"`
		Approvals     *[]Approval `json:"approvals"`
		FinalReport   *string     `json:"finalReport"`
		Summary       *string     `json:"summary"`

		ChangedBy string `json:"changedBy"`
		Action    string `json:"action"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Patch = Patch{
		Title:                 raw.Title,
		Description:           raw.Description,
		Priority:              raw.Priority,
		AssignedTo:            raw.AssignedTo,
		DueDate:               raw.DueDate,
		EstimatedHours:        raw.EstimatedHours,
		Status:                raw.Status,
		RequiredInfo:          raw.RequiredInfo,
		RequiredCollaboration: raw.RequiredCollaboration,
		IdeaCollection:        raw.IdeaCollection,
		Scheduling:            raw.Scheduling,
		Protocols:             raw.Protocols,
		MeetingProtocols:      raw.MeetingProtocols,
		Documents:             raw.Documents,
		Attachments:           raw.Attachments,
		InterimReport:         raw.InterimReport,
		Approvals:             raw.Approvals,
		FinalReport:           raw.FinalReport,
		Summary:               raw.Summary,
	}
	p.ChangedBy = raw.ChangedBy
	p.Action = raw.Action
	return nil
}

func (p *patchRequest) validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown status %q", *p.Status), nil)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown priority %q", *p.Priority), nil)
	}
	if p.DueDate != nil {
		if _, err := time.Parse("2006-01-02", *p.DueDate); err != nil {
			return cerr.NewError(cerr.InvalidArgument, "dueDate must be formatted as YYYY-MM-DD", err)
		}
	}
	if p.EstimatedHours != nil && *p.EstimatedHours < 0 {
		return cerr.NewError(cerr.InvalidArgument, "estimatedHours must not be negative", nil)
	}
	return nil
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if err := req.validate(); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	changedBy := req.ChangedBy
	if changedBy == "" && identity.FromContext(ctx) != identity.DefaultUser {
		changedBy = identity.FromContext(ctx)
	}
	t, err := s.store.Update(ctx, chi.URLParam(r, "id"), req.Patch, changedBy, req.Action)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var full Task
	if err := json.NewDecoder(r.Body).Decode(&full); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if !full.Status.Valid() {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, fmt.Sprintf("unknown status %q", full.Status), nil)
		return
	}
	t, err := s.store.Replace(ctx, chi.URLParam(r, "id"), &full)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.gate.Advance(ctx, chi.URLParam(r, "id"), nil, identity.FromContext(ctx))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

type approvalRequest struct {
	Approver string `json:"approver"`
}

func (s *Server) handleRequestApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	t, err := s.gate.RequestApproval(ctx, chi.URLParam(r, "id"), req.Approver)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

type approvalDecisionRequest struct {
	Approver string `json:"approver"`
	Approved bool   `json:"approved"`
	Comment  string `json:"comment"`
}

func (s *Server) handleDecideApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req approvalDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	t, err := s.gate.DecideApproval(ctx, chi.URLParam(r, "id"), req.Approver, req.Approved, req.Comment)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	priority := Priority(r.URL.Query().Get("priority"))
	if priority != "" && !priority.Valid() {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, fmt.Sprintf("unknown priority %q", priority), nil)
		return
	}
	cerr.SetJSONResponse(ctx, s.board.Columns(priority))
}

type moveRequest struct {
	TaskID    string `json:"taskId"`
	Status    Status `json:"status"`
	ChangedBy string `json:"changedBy"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	changedBy := req.ChangedBy
	if changedBy == "" && identity.FromContext(ctx) != identity.DefaultUser {
		changedBy = identity.FromContext(ctx)
	}
	t, err := s.board.Move(ctx, req.TaskID, req.Status, changedBy)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func filterFromQuery(r *http.Request) (Filter, error) {
	var f Filter
	if v := r.URL.Query().Get("status"); v != "" {
		status := Status(v)
		if !status.Valid() {
			return f, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown status %q", v), nil)
		}
		f.Status = status
	}
	if v := r.URL.Query().Get("priority"); v != "" {
		priority := Priority(v)
		if !priority.Valid() {
			return f, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown priority %q", v), nil)
		}
		f.Priority = priority
	}
	return f, nil
}
