package task

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bueroportal/bueroportal/internal/eventbus"
	"github.com/bueroportal/bueroportal/pkg/cerr"
)

// CreateFields are the caller-required fields for a new task. Presence
// validation happens at the HTTP boundary; the store only seeds defaults.
type CreateFields struct {
	Title          string
	Description    string
	Priority       Priority
	AssignedTo     string
	DueDate        string
	EstimatedHours float64
}

// Patch is a partial update. Nil fields are left untouched. StatusHistory
// is deliberately absent: history is only ever appended by the store.
type Patch struct {
	Title          *string
	Description    *string
	Priority       *Priority
	AssignedTo     *string
	DueDate        *string
	EstimatedHours *float64
	Status         *Status

	RequiredInfo          *string
	RequiredCollaboration *string
	IdeaCollection        *string
	Scheduling            *string

	Protocols        *[]Protocol
	MeetingProtocols *[]MeetingProtocol
	Documents        *[]Document
	Attachments      *[]Attachment

	InterimReport *string
	Approvals     *[]Approval
	FinalReport   *string
	Summary       *string
}

// Store holds the authoritative in-memory task list for the running
// portal session and is its sole sanctioned mutation entry point. Local
// mutations are synchronous; persistence to the repository is asynchronous
// and fire-and-forget, so a remote failure never rolls back local state.
type Store struct {
	mu     sync.RWMutex
	repo   Repository
	bus    *eventbus.Bus
	tasks  []*Task
	index  map[string]int
	logger *slog.Logger
}

func NewStore(repo Repository, bus *eventbus.Bus) *Store {
	return &Store{
		repo:   repo,
		bus:    bus,
		index:  make(map[string]int),
		logger: slog.Default(),
	}
}

// Load replaces the in-memory list with the repository contents, ordered
// by creation time (ULIDs sort chronologically, ties broken by ID).
func (s *Store) Load(ctx context.Context) error {
	all, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = all
	s.index = make(map[string]int, len(all))
	for i, t := range all {
		s.index[t.ID] = i
	}
	return nil
}

// Filter narrows List results. Zero values match everything; set fields
// are combined with AND.
type Filter struct {
	Status   Status
	Priority Priority
}

func (f Filter) matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// List returns a snapshot of matching tasks in insertion order.
func (s *Store) List(f Filter) []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (s *Store) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return s.tasks[i].Clone(), nil
}

// Create appends a new task with status Neu and the creation entry as the
// first history record.
func (s *Store) Create(ctx context.Context, fields CreateFields) (*Task, error) {
	now := time.Now()
	changedBy := fields.AssignedTo
	if changedBy == "" {
		changedBy = "System"
	}
	priority := fields.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	t := &Task{
		ID:             ulid.Make().String(),
		Title:          fields.Title,
		Description:    fields.Description,
		Priority:       priority,
		AssignedTo:     fields.AssignedTo,
		DueDate:        fields.DueDate,
		EstimatedHours: fields.EstimatedHours,
		Status:         StatusNeu,
		StatusHistory: []HistoryEntry{{
			Status:    StatusNeu,
			ChangedBy: changedBy,
			ChangedAt: now,
			Action:    "Aufgabe erstellt",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.index[t.ID] = len(s.tasks)
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	s.persist(t.Clone(), true)
	if s.bus != nil {
		s.bus.PublishNew(eventbus.EventTypeTaskCreated, t.ID, t.Title, map[string]string{
			"assigned_to": t.AssignedTo,
		})
	}
	return t.Clone(), nil
}

// Update merges patch into the task with the given id. Iff the patch
// changes the status, exactly one history entry is appended. changedBy
// defaults to the task's assignee or "System", action to
// "Status geändert zu {status}".
func (s *Store) Update(ctx context.Context, id string, patch Patch, changedBy, action string) (*Task, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	t := s.tasks[i]

	statusChanged := patch.Status != nil && *patch.Status != t.Status
	apply(t, patch)
	if statusChanged {
		if changedBy == "" {
			changedBy = t.AssignedTo
		}
		if changedBy == "" {
			changedBy = "System"
		}
		if action == "" {
			action = fmt.Sprintf("Status geändert zu %s", t.Status)
		}
		t.StatusHistory = append(t.StatusHistory, HistoryEntry{
			Status:    t.Status,
			ChangedBy: changedBy,
			ChangedAt: time.Now(),
			Action:    action,
		})
	}
	t.UpdatedAt = time.Now()
	result := t.Clone()
	s.mu.Unlock()

	s.persist(result.Clone(), false)
	if s.bus != nil {
		if statusChanged {
			s.bus.PublishNew(eventbus.EventTypeTaskStatusChanged, result.ID, result.Title, map[string]string{
				"status": string(result.Status),
				"action": action,
			})
		} else {
			s.bus.PublishNew(eventbus.EventTypeTaskUpdated, result.ID, result.Title, nil)
		}
	}
	return result, nil
}

// Replace overwrites all fields of the task with the given id. It appends
// no history; the caller (the detail editor) stages history itself.
func (s *Store) Replace(ctx context.Context, id string, full *Task) (*Task, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	replaced := full.Clone()
	replaced.ID = id
	replaced.CreatedAt = s.tasks[i].CreatedAt
	replaced.UpdatedAt = time.Now()
	s.tasks[i] = replaced
	result := replaced.Clone()
	s.mu.Unlock()

	s.persist(result.Clone(), false)
	if s.bus != nil {
		s.bus.PublishNew(eventbus.EventTypeTaskUpdated, result.ID, result.Title, nil)
	}
	return result, nil
}

// persist writes the task to the repository in the background. The portal
// keeps its optimistic local state even when the write fails; the failure
// only surfaces in the log.
func (s *Store) persist(t *Task, created bool) {
	if s.repo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var err error
		if created {
			err = s.repo.Create(ctx, t)
		} else {
			err = s.repo.Update(ctx, t)
		}
		if err != nil {
			s.logger.Error("failed to persist task", "task_id", t.ID, "error", err)
		}
	}()
}

func apply(t *Task, p Patch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.RequiredInfo != nil {
		t.RequiredInfo = *p.RequiredInfo
	}
	if p.RequiredCollaboration != nil {
		t.RequiredCollaboration = *p.RequiredCollaboration
	}
	if p.IdeaCollection != nil {
		t.IdeaCollection = *p.IdeaCollection
	}
	if p.Scheduling != nil {
		t.Scheduling = *p.Scheduling
	}
	if p.Protocols != nil {
		t.Protocols = append([]Protocol(nil), *p.Protocols...)
	}
	if p.MeetingProtocols != nil {
		t.MeetingProtocols = append([]MeetingProtocol(nil), *p.MeetingProtocols...)
	}
	if p.Documents != nil {
		t.Documents = append([]Document(nil), *p.Documents...)
	}
	if p.Attachments != nil {
		t.Attachments = append([]Attachment(nil), *p.Attachments...)
	}
	if p.InterimReport != nil {
		t.InterimReport = *p.InterimReport
	}
	if p.Approvals != nil {
		t.Approvals = append([]Approval(nil), *p.Approvals...)
	}
	if p.FinalReport != nil {
		t.FinalReport = *p.FinalReport
	}
	if p.Summary != nil {
		t.Summary = *p.Summary
	}
}
