package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bueroportal/bueroportal/pkg/cerr"
)

func newTestStore() *Store {
	return NewStore(nil, nil)
}

func TestCreateSeedsStatusAndHistory(t *testing.T) {
	s := newTestStore()

	created, err := s.Create(context.Background(), CreateFields{
		Title:          "Design",
		Description:    "Entwurf der Kampagne",
		Priority:       PriorityHoch,
		AssignedTo:     "Anna",
		DueDate:        "2025-02-01",
		EstimatedHours: 10,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Status != StatusNeu {
		t.Errorf("expected status Neu, got %s", created.Status)
	}
	if created.Priority != PriorityHoch {
		t.Errorf("expected priority Hoch, got %s", created.Priority)
	}
	if len(created.StatusHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(created.StatusHistory))
	}
	entry := created.StatusHistory[0]
	if entry.Action != "Aufgabe erstellt" {
		t.Errorf("expected action %q, got %q", "Aufgabe erstellt", entry.Action)
	}
	if entry.ChangedBy != "Anna" {
		t.Errorf("expected changedBy Anna, got %q", entry.ChangedBy)
	}
	if entry.Status != StatusNeu {
		t.Errorf("expected history status Neu, got %s", entry.Status)
	}
}

func TestCreateWithoutAssigneeLogsSystem(t *testing.T) {
	s := newTestStore()

	created, err := s.Create(context.Background(), CreateFields{Title: "Unassigned"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.StatusHistory[0].ChangedBy != "System" {
		t.Errorf("expected changedBy System, got %q", created.StatusHistory[0].ChangedBy)
	}
	if created.Priority != PriorityNormal {
		t.Errorf("expected default priority Normal, got %s", created.Priority)
	}
}

func TestUpdateStatusAppendsExactlyOneHistoryEntry(t *testing.T) {
	s := newTestStore()
	created, _ := s.Create(context.Background(), CreateFields{Title: "T", AssignedTo: "Anna"})

	status := StatusBearbeitung
	updated, err := s.Update(context.Background(), created.ID, Patch{Status: &status}, "", "")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(updated.StatusHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(updated.StatusHistory))
	}
	last := updated.StatusHistory[1]
	if last.Action != "Status geändert zu Bearbeitung" {
		t.Errorf("unexpected default action %q", last.Action)
	}
	if last.ChangedBy != "Anna" {
		t.Errorf("expected default changedBy Anna, got %q", last.ChangedBy)
	}

	// Same status again: no history growth.
	same := StatusBearbeitung
	updated, err = s.Update(context.Background(), created.ID, Patch{Status: &same}, "", "")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(updated.StatusHistory) != 2 {
		t.Errorf("expected history to stay at 2 entries, got %d", len(updated.StatusHistory))
	}
}

func TestUpdateWithoutStatusNeverTouchesHistory(t *testing.T) {
	s := newTestStore()
	created, _ := s.Create(context.Background(), CreateFields{Title: "T"})

	title := "Renamed"
	hours := 4.5
	updated, err := s.Update(context.Background(), created.ID, Patch{Title: &title, EstimatedHours: &hours}, "", "")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Renamed" || updated.EstimatedHours != 4.5 {
		t.Errorf("patch not applied: %+v", updated)
	}
	if len(updated.StatusHistory) != 1 {
		t.Errorf("expected history to stay at 1 entry, got %d", len(updated.StatusHistory))
	}
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	s := newTestStore()

	_, err := s.Update(context.Background(), "missing", Patch{}, "", "")
	if !cerr.IsCode(err, cerr.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestReplaceOverwritesWithoutAppendingHistory(t *testing.T) {
	s := newTestStore()
	created, _ := s.Create(context.Background(), CreateFields{Title: "T", AssignedTo: "Anna"})

	full := created.Clone()
	full.Title = "Edited"
	full.RequiredInfo = "Budget"
	replaced, err := s.Replace(context.Background(), created.ID, full)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if replaced.Title != "Edited" || replaced.RequiredInfo != "Budget" {
		t.Errorf("replace not applied: %+v", replaced)
	}
	if len(replaced.StatusHistory) != 1 {
		t.Errorf("Replace must not append history, got %d entries", len(replaced.StatusHistory))
	}
	if replaced.ID != created.ID {
		t.Errorf("Replace must keep the id, got %s", replaced.ID)
	}
}

func TestListPreservesInsertionOrderAndFilters(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	a, _ := s.Create(ctx, CreateFields{Title: "A", Priority: PriorityHoch})
	b, _ := s.Create(ctx, CreateFields{Title: "B", Priority: PriorityNiedrig})
	c, _ := s.Create(ctx, CreateFields{Title: "C", Priority: PriorityHoch})

	all := s.List(Filter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
	for i, want := range []string{a.ID, b.ID, c.ID} {
		if all[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, all[i].ID)
		}
	}

	status := StatusBearbeitung
	if _, err := s.Update(ctx, c.ID, Patch{Status: &status}, "", ""); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	filtered := s.List(Filter{Status: StatusBearbeitung, Priority: PriorityHoch})
	if len(filtered) != 1 || filtered[0].ID != c.ID {
		t.Errorf("conjunctive filter failed: %+v", filtered)
	}
	none := s.List(Filter{Status: StatusAbschluss})
	if len(none) != 0 {
		t.Errorf("expected no Abschluss tasks, got %d", len(none))
	}
}

func TestListReturnsIsolatedClones(t *testing.T) {
	s := newTestStore()
	created, _ := s.Create(context.Background(), CreateFields{Title: "T"})

	snapshot := s.List(Filter{})[0]
	snapshot.Title = "mutated"
	snapshot.StatusHistory[0].Action = "mutated"

	current, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if current.Title != "T" || current.StatusHistory[0].Action != "Aufgabe erstellt" {
		t.Error("mutating a snapshot leaked into the store")
	}
}

// recordingRepo signals every persisted write.
type recordingRepo struct {
	mu      sync.Mutex
	created []*Task
	updated []*Task
	ch      chan struct{}
}

func newRecordingRepo() *recordingRepo {
	return &recordingRepo{ch: make(chan struct{}, 16)}
}

func (r *recordingRepo) Create(_ context.Context, t *Task) error {
	r.mu.Lock()
	r.created = append(r.created, t)
	r.mu.Unlock()
	r.ch <- struct{}{}
	return nil
}

func (r *recordingRepo) Get(_ context.Context, id string) (*Task, error) { return nil, nil }
func (r *recordingRepo) List(_ context.Context) ([]*Task, error)         { return nil, nil }

func (r *recordingRepo) Update(_ context.Context, t *Task) error {
	r.mu.Lock()
	r.updated = append(r.updated, t)
	r.mu.Unlock()
	r.ch <- struct{}{}
	return nil
}

func TestMutationsPersistAsynchronously(t *testing.T) {
	repo := newRecordingRepo()
	s := NewStore(repo, nil)
	ctx := context.Background()

	created, err := s.Create(ctx, CreateFields{Title: "T"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	waitForWrite(t, repo.ch)

	status := StatusBearbeitung
	if _, err := s.Update(ctx, created.ID, Patch{Status: &status}, "", ""); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	waitForWrite(t, repo.ch)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.created) != 1 || len(repo.updated) != 1 {
		t.Errorf("expected 1 create and 1 update write, got %d/%d", len(repo.created), len(repo.updated))
	}
	if repo.updated[0].Status != StatusBearbeitung {
		t.Errorf("persisted task has status %s", repo.updated[0].Status)
	}
}

func waitForWrite(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async persistence")
	}
}
