package complaint

import "time"

type Status string

const (
	StatusOffen         Status = "Offen"
	StatusInBearbeitung Status = "In Bearbeitung"
	StatusGeloest       Status = "Gelöst"
	StatusAbgelehnt     Status = "Abgelehnt"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOffen, StatusInBearbeitung, StatusGeloest, StatusAbgelehnt:
		return true
	}
	return false
}

// Complaint is one customer complaint record of the portal's complaint
// management screen. Plain CRUD, no workflow gating.
type Complaint struct {
	ID          string    `json:"id" yaml:"id"`
	Subject     string    `json:"subject" yaml:"subject"`
	Description string    `json:"description" yaml:"description"`
	Customer    string    `json:"customer" yaml:"customer"`
	AssignedTo  string    `json:"assignedTo" yaml:"assigned_to"`
	Status      Status    `json:"status" yaml:"status"`
	Resolution  string    `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`
}
