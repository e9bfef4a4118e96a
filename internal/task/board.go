package task

import (
	"context"
	"fmt"

	"github.com/bueroportal/bueroportal/pkg/cerr"
)

// Column is one kanban lane: all tasks currently in a status, in
// insertion order.
type Column struct {
	Status Status  `json:"status"`
	Tasks  []*Task `json:"tasks"`
}

// Board groups the store snapshot into the four status columns and
// translates drag-and-drop moves into raw store updates.
type Board struct {
	store *Store
}

func NewBoard(store *Store) *Board {
	return &Board{store: store}
}

// Columns returns all four lanes in lifecycle order. An optional priority
// filter narrows every lane; empty lanes stay present.
func (b *Board) Columns(priority Priority) []Column {
	tasks := b.store.List(Filter{Priority: priority})
	byStatus := make(map[Status][]*Task, len(StatusOrder))
	for _, t := range tasks {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}
	columns := make([]Column, len(StatusOrder))
	for i, st := range StatusOrder {
		tasksInLane := byStatus[st]
		if tasksInLane == nil {
			tasksInLane = []*Task{}
		}
		columns[i] = Column{Status: st, Tasks: tasksInLane}
	}
	return columns
}

// Move reassigns a dropped task to the target column. This is the gate
// bypass path: the completeness predicate is not consulted, any target
// status is accepted, and exactly one history entry is appended when the
// status actually changes.
func (b *Board) Move(ctx context.Context, id string, target Status, changedBy string) (*Task, error) {
	if !target.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown status %q", target), nil)
	}
	action := fmt.Sprintf("Status geändert zu %s (per Drag & Drop)", target)
	return b.store.Update(ctx, id, Patch{Status: &target}, changedBy, action)
}
