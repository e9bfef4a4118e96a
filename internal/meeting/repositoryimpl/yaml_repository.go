package repositoryimpl

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bueroportal/bueroportal/internal/meeting"
	"github.com/bueroportal/bueroportal/pkg/cerr"
	"github.com/bueroportal/bueroportal/pkg/storage"
)

const meetingsPrefix = "jourfixe"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", meetingsPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, m *meeting.Meeting) error {
	exists, err := r.storage.Exists(ctx, path(m.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("meeting", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "meeting already exists", nil)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal meeting: %w", err))
	}
	if err := r.storage.Write(ctx, path(m.ID), data); err != nil {
		return cerr.WrapStorageWriteError("meeting", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*meeting.Meeting, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("meeting", err)
	}
	var m meeting.Meeting
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal meeting: %w", err))
	}
	return &m, nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*meeting.Meeting, error) {
	paths, err := r.storage.List(ctx, meetingsPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("meetings", err)
	}

	sort.Strings(paths)

	var all []*meeting.Meeting
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var m meeting.Meeting
		if err := yaml.Unmarshal(data, &m); err != nil {
			continue
		}
		all = append(all, &m)
	}
	return all, nil
}

func (r *YAMLRepository) Update(ctx context.Context, m *meeting.Meeting) error {
	exists, err := r.storage.Exists(ctx, path(m.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("meeting", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "meeting not found", nil)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal meeting: %w", err))
	}
	if err := r.storage.Write(ctx, path(m.ID), data); err != nil {
		return cerr.WrapStorageWriteError("meeting", err)
	}
	return nil
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	if err := r.storage.Delete(ctx, path(id)); err != nil {
		return cerr.WrapStorageDeleteError("meeting", err)
	}
	return nil
}
