package repositoryimpl

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bueroportal/bueroportal/internal/complaint"
	"github.com/bueroportal/bueroportal/pkg/cerr"
	"github.com/bueroportal/bueroportal/pkg/storage"
)

const complaintsPrefix = "beschwerden"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", complaintsPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, c *complaint.Complaint) error {
	exists, err := r.storage.Exists(ctx, path(c.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("complaint", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "complaint already exists", nil)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal complaint: %w", err))
	}
	if err := r.storage.Write(ctx, path(c.ID), data); err != nil {
		return cerr.WrapStorageWriteError("complaint", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*complaint.Complaint, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("complaint", err)
	}
	var c complaint.Complaint
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal complaint: %w", err))
	}
	return &c, nil
}

func (r *YAMLRepository) List(ctx context.Context, status complaint.Status) ([]*complaint.Complaint, error) {
	paths, err := r.storage.List(ctx, complaintsPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("complaints", err)
	}

	sort.Strings(paths)

	var all []*complaint.Complaint
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var c complaint.Complaint
		if err := yaml.Unmarshal(data, &c); err != nil {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		all = append(all, &c)
	}
	return all, nil
}

func (r *YAMLRepository) Update(ctx context.Context, c *complaint.Complaint) error {
	exists, err := r.storage.Exists(ctx, path(c.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("complaint", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "complaint not found", nil)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal complaint: %w", err))
	}
	if err := r.storage.Write(ctx, path(c.ID), data); err != nil {
		return cerr.WrapStorageWriteError("complaint", err)
	}
	return nil
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	if err := r.storage.Delete(ctx, path(id)); err != nil {
		return cerr.WrapStorageDeleteError("complaint", err)
	}
	return nil
}
