package meeting

import "time"

type AgendaItem struct {
	Topic       string `json:"topic" yaml:"topic"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Responsible string `json:"responsible,omitempty" yaml:"responsible,omitempty"`
}

// Meeting is one Jour-Fixe entry with its minutes.
type Meeting struct {
	ID           string       `json:"id" yaml:"id"`
	Title        string       `json:"title" yaml:"title"`
	Date         string       `json:"date" yaml:"date"` // YYYY-MM-DD
	Participants []string     `json:"participants,omitempty" yaml:"participants,omitempty"`
	Agenda       []AgendaItem `json:"agenda,omitempty" yaml:"agenda,omitempty"`
	Minutes      string       `json:"minutes,omitempty" yaml:"minutes,omitempty"`
	CreatedAt    time.Time    `json:"createdAt" yaml:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" yaml:"updated_at"`
}
