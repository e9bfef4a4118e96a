package task

import (
	"time"
)

// Priority of a task. Values are the German labels the portal renders.
type Priority string

const (
	PriorityNiedrig  Priority = "Niedrig"
	PriorityNormal   Priority = "Normal"
	PriorityHoch     Priority = "Hoch"
	PriorityKritisch Priority = "Kritisch"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNiedrig, PriorityNormal, PriorityHoch, PriorityKritisch:
		return true
	}
	return false
}

// Status is the lifecycle stage of a task. Transitions through the gate are
// strictly linear: Neu → Bearbeitung → Review → Abschluss.
type Status string

const (
	StatusNeu         Status = "Neu"
	StatusBearbeitung Status = "Bearbeitung"
	StatusReview      Status = "Review"
	StatusAbschluss   Status = "Abschluss"
)

// StatusOrder lists all statuses in lifecycle order. Kanban columns render
// in this order.
var StatusOrder = []Status{StatusNeu, StatusBearbeitung, StatusReview, StatusAbschluss}

func (s Status) Valid() bool {
	switch s {
	case StatusNeu, StatusBearbeitung, StatusReview, StatusAbschluss:
		return true
	}
	return false
}

// Next returns the following lifecycle stage. ok is false for Abschluss,
// which is terminal.
func (s Status) Next() (next Status, ok bool) {
	for i, st := range StatusOrder {
		if st == s && i+1 < len(StatusOrder) {
			return StatusOrder[i+1], true
		}
	}
	return "", false
}

// HistoryEntry is one append-only record of a status change. Entries are
// never mutated or removed.
type HistoryEntry struct {
	Status    Status    `json:"status" yaml:"status"`
	ChangedBy string    `json:"changedBy" yaml:"changed_by"`
	ChangedAt time.Time `json:"changedAt" yaml:"changed_at"`
	Action    string    `json:"action" yaml:"action"`
}

// Protocol is a work log entry written during Bearbeitung.
type Protocol struct {
	Author  string    `json:"author" yaml:"author"`
	Content string    `json:"content" yaml:"content"`
	Date    time.Time `json:"date" yaml:"date"`
}

// MeetingProtocol is a meeting note attached during Bearbeitung.
type MeetingProtocol struct {
	Title   string    `json:"title" yaml:"title"`
	Content string    `json:"content" yaml:"content"`
	Date    time.Time `json:"date" yaml:"date"`
}

type Document struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type Attachment struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Approval is one sign-off request inside the Review stage.
type Approval struct {
	Approver string         `json:"approver" yaml:"approver"`
	Status   ApprovalStatus `json:"status" yaml:"status"`
	Date     *time.Time     `json:"date,omitempty" yaml:"date,omitempty"`
	Comment  string         `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Task is a unit of tracked work with a four-stage lifecycle. The stage
// fields below the status are only meaningful while the task is in (or has
// passed through) the corresponding stage.
type Task struct {
	ID             string   `json:"id" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	Priority       Priority `json:"priority" yaml:"priority"`
	AssignedTo     string   `json:"assignedTo" yaml:"assigned_to"`
	DueDate        string   `json:"dueDate" yaml:"due_date"` // YYYY-MM-DD, no time component
	EstimatedHours float64  `json:"estimatedHours" yaml:"estimated_hours"`
	Status         Status   `json:"status" yaml:"status"`

	StatusHistory []HistoryEntry `json:"statusHistory" yaml:"status_history"`

	// Neu
	RequiredInfo          string `json:"requiredInfo,omitempty" yaml:"required_info,omitempty"`
	RequiredCollaboration string `json:"requiredCollaboration,omitempty" yaml:"required_collaboration,omitempty"`
	IdeaCollection        string `json:"ideaCollection,omitempty" yaml:"idea_collection,omitempty"`
	Scheduling            string `json:"scheduling,omitempty" yaml:"scheduling,omitempty"`

	// Bearbeitung
	Protocols        []Protocol        `json:"protocols,omitempty" yaml:"protocols,omitempty"`
	MeetingProtocols []MeetingProtocol `json:"meetingProtocols,omitempty" yaml:"meeting_protocols,omitempty"`
	Documents        []Document        `json:"documents,omitempty" yaml:"documents,omitempty"`
	Attachments      []Attachment      `json:"attachments,omitempty" yaml:"attachments,omitempty"`

	// Review
	InterimReport string     `json:"interimReport,omitempty" yaml:"interim_report,omitempty"`
	Approvals     []Approval `json:"approvals,omitempty" yaml:"approvals,omitempty"`
	FinalReport   string     `json:"finalReport,omitempty" yaml:"final_report,omitempty"`
	Summary       string     `json:"summary,omitempty" yaml:"summary,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// Clone returns a deep copy. The store hands out and accepts only clones so
// that callers can never mutate its records in place.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.StatusHistory = append([]HistoryEntry(nil), t.StatusHistory...)
	c.Protocols = append([]Protocol(nil), t.Protocols...)
	c.MeetingProtocols = append([]MeetingProtocol(nil), t.MeetingProtocols...)
	c.Documents = append([]Document(nil), t.Documents...)
	c.Attachments = append([]Attachment(nil), t.Attachments...)
	c.Approvals = make([]Approval, len(t.Approvals))
	for i, a := range t.Approvals {
		c.Approvals[i] = a
		if a.Date != nil {
			d := *a.Date
			c.Approvals[i].Date = &d
		}
	}
	return &c
}
