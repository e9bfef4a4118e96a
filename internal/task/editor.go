package task

import (
	"context"
	"time"
)

// WorkFields lists the auxiliary fields the detail editor's work tab
// exposes for a status. Title, description and priority are always
// editable and not listed here.
func WorkFields(s Status) []string {
	switch s {
	case StatusNeu:
		return []string{"requiredInfo", "requiredCollaboration", "ideaCollection", "scheduling"}
	case StatusBearbeitung:
		return []string{"protocols", "meetingProtocols", "documents", "attachments"}
	case StatusReview:
		return []string{"interimReport", "approvals", "finalReport", "summary"}
	default:
		return nil
	}
}

// Editor is the detail modal's edit buffer: an isolated copy of one task.
// Nothing reaches the store until Save; Discard throws the buffer away
// without touching the store.
type Editor struct {
	store  *Store
	gate   *Gate
	taskID string
	buffer *Task
}

func NewEditor(store *Store, gate *Gate, id string) (*Editor, error) {
	t, err := store.Get(id)
	if err != nil {
		return nil, err
	}
	return &Editor{
		store:  store,
		gate:   gate,
		taskID: id,
		buffer: t,
	}, nil
}

// Buffer exposes the in-progress copy for field edits. Mutations stay
// local until Save.
func (e *Editor) Buffer() *Task {
	return e.buffer
}

func (e *Editor) AddProtocol(author, content string) {
	e.buffer.Protocols = append(e.buffer.Protocols, Protocol{
		Author:  author,
		Content: content,
		Date:    time.Now(),
	})
}

func (e *Editor) AddMeetingProtocol(title, content string) {
	e.buffer.MeetingProtocols = append(e.buffer.MeetingProtocols, MeetingProtocol{
		Title:   title,
		Content: content,
		Date:    time.Now(),
	})
}

func (e *Editor) AddDocument(name, typ string) {
	e.buffer.Documents = append(e.buffer.Documents, Document{Name: name, Type: typ})
}

func (e *Editor) AddAttachment(name, typ string) {
	e.buffer.Attachments = append(e.buffer.Attachments, Attachment{Name: name, Type: typ})
}

// CanAdvance gates the advance control on the unsaved buffer, not the
// stored task, so fields staged in this session count.
func (e *Editor) CanAdvance() bool {
	return CanAdvance(e.buffer)
}

// Save persists the whole buffer via Replace. History entries staged in
// the buffer are written as-is; Replace appends nothing itself.
func (e *Editor) Save(ctx context.Context) (*Task, error) {
	saved, err := e.store.Replace(ctx, e.taskID, e.buffer)
	if err != nil {
		return nil, err
	}
	e.buffer = saved.Clone()
	return saved, nil
}

// SaveAndAdvance persists the staged buffer and then advances through the
// gate, mirroring the editor's advance button: save first, then the gated
// transition with its own history entry.
func (e *Editor) SaveAndAdvance(ctx context.Context, changedBy string) (*Task, error) {
	if _, err := e.Save(ctx); err != nil {
		return nil, err
	}
	advanced, err := e.gate.Advance(ctx, e.taskID, e.buffer, changedBy)
	if err != nil {
		return nil, err
	}
	e.buffer = advanced.Clone()
	return advanced, nil
}

// Discard resets the buffer to the stored state.
func (e *Editor) Discard() error {
	t, err := e.store.Get(e.taskID)
	if err != nil {
		return err
	}
	e.buffer = t
	return nil
}
