package complaint

import "context"

type Repository interface {
	Create(ctx context.Context, c *Complaint) error
	Get(ctx context.Context, id string) (*Complaint, error)
	List(ctx context.Context, status Status) ([]*Complaint, error)
	Update(ctx context.Context, c *Complaint) error
	Delete(ctx context.Context, id string) error
}
