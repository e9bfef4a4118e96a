package task

import "context"

// Repository persists tasks as documents. Tasks are never deleted through
// the portal, so no Delete is defined.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
}
