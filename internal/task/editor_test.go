package task

import (
	"context"
	"testing"
)

func TestWorkFields(t *testing.T) {
	tests := []struct {
		status Status
		want   []string
	}{
		{StatusNeu, []string{"requiredInfo", "requiredCollaboration", "ideaCollection", "scheduling"}},
		{StatusBearbeitung, []string{"protocols", "meetingProtocols", "documents", "attachments"}},
		{StatusReview, []string{"interimReport", "approvals", "finalReport", "summary"}},
		{StatusAbschluss, nil},
	}
	for _, tt := range tests {
		got := WorkFields(tt.status)
		if len(got) != len(tt.want) {
			t.Errorf("WorkFields(%s) = %v, want %v", tt.status, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("WorkFields(%s)[%d] = %q, want %q", tt.status, i, got[i], tt.want[i])
			}
		}
	}
}

func TestEditorBufferIsIsolatedUntilSave(t *testing.T) {
	s := newTestStore()
	g := NewGate(s)
	ctx := context.Background()

	created, _ := s.Create(ctx, CreateFields{Title: "T"})
	e, err := NewEditor(s, g, created.ID)
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}

	e.Buffer().Title = "Bearbeitet"
	e.AddProtocol("Anna", "Kickoff-Notizen")
	e.AddDocument("entwurf.pdf", "pdf")

	stored, _ := s.Get(created.ID)
	if stored.Title != "T" || len(stored.Protocols) != 0 || len(stored.Documents) != 0 {
		t.Error("buffer edits leaked into the store before Save")
	}

	saved, err := e.Save(ctx)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.Title != "Bearbeitet" || len(saved.Protocols) != 1 || len(saved.Documents) != 1 {
		t.Errorf("Save did not persist buffer: %+v", saved)
	}
	if saved.Protocols[0].Author != "Anna" || saved.Protocols[0].Date.IsZero() {
		t.Errorf("protocol entry incomplete: %+v", saved.Protocols[0])
	}
}

func TestEditorDiscardResetsToStoredState(t *testing.T) {
	s := newTestStore()
	g := NewGate(s)
	ctx := context.Background()

	created, _ := s.Create(ctx, CreateFields{Title: "T"})
	e, _ := NewEditor(s, g, created.ID)
	e.Buffer().Title = "verworfen"
	e.AddMeetingProtocol("Jour fixe", "Notizen")

	if err := e.Discard(); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if e.Buffer().Title != "T" || len(e.Buffer().MeetingProtocols) != 0 {
		t.Errorf("Discard did not reset the buffer: %+v", e.Buffer())
	}
}

func TestEditorCanAdvanceSeesStagedEdits(t *testing.T) {
	s := newTestStore()
	g := NewGate(s)
	ctx := context.Background()

	created, _ := s.Create(ctx, CreateFields{Title: "T"})
	e, _ := NewEditor(s, g, created.ID)
	if e.CanAdvance() {
		t.Fatal("fresh task must not be advanceable")
	}

	b := e.Buffer()
	b.RequiredInfo = "Budget"
	b.RequiredCollaboration = "Grafik"
	b.IdeaCollection = "Plakate"
	b.Scheduling = "KW 10"
	if !e.CanAdvance() {
		t.Error("staged fields must satisfy the predicate before Save")
	}
}

func TestEditorSaveAndAdvance(t *testing.T) {
	s := newTestStore()
	g := NewGate(s)
	ctx := context.Background()

	created, _ := s.Create(ctx, CreateFields{Title: "T", AssignedTo: "Anna"})
	e, _ := NewEditor(s, g, created.ID)
	b := e.Buffer()
	b.RequiredInfo = "Budget"
	b.RequiredCollaboration = "Grafik"
	b.IdeaCollection = "Plakate"
	b.Scheduling = "KW 10"

	advanced, err := e.SaveAndAdvance(ctx, "Anna")
	if err != nil {
		t.Fatalf("SaveAndAdvance failed: %v", err)
	}
	if advanced.Status != StatusBearbeitung {
		t.Errorf("expected Bearbeitung, got %s", advanced.Status)
	}
	// Fields were saved, then the gated transition appended its entry.
	if advanced.RequiredInfo != "Budget" {
		t.Errorf("staged field lost: %+v", advanced)
	}
	if len(advanced.StatusHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(advanced.StatusHistory))
	}
	if advanced.StatusHistory[1].Action != "In Bearbeitung verschieben" {
		t.Errorf("unexpected action %q", advanced.StatusHistory[1].Action)
	}
	if e.Buffer().Status != StatusBearbeitung {
		t.Error("editor buffer not refreshed after advance")
	}
}

func TestEditorSaveAndAdvanceFailsWithoutTouchingStatus(t *testing.T) {
	s := newTestStore()
	g := NewGate(s)
	ctx := context.Background()

	created, _ := s.Create(ctx, CreateFields{Title: "T"})
	e, _ := NewEditor(s, g, created.ID)
	e.Buffer().Title = "trotzdem gespeichert"

	if _, err := e.SaveAndAdvance(ctx, ""); err == nil {
		t.Fatal("expected advance to fail on an incomplete task")
	}

	// Save succeeded, only the transition was refused.
	stored, _ := s.Get(created.ID)
	if stored.Title != "trotzdem gespeichert" {
		t.Error("buffer should have been saved before the gate refused")
	}
	if stored.Status != StatusNeu {
		t.Errorf("status must stay Neu, got %s", stored.Status)
	}
}

func TestNewEditorUnknownTask(t *testing.T) {
	s := newTestStore()
	g := NewGate(s)
	if _, err := NewEditor(s, g, "missing"); err == nil {
		t.Error("expected error for unknown task")
	}
}
