package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Project groups conversations and belongs to exactly one user.
type Project struct {
	ID        int64
	UserID    string
	Name      string
	CreatedAt int64
}

// FindProject filters for ListProjects.
type FindProject struct {
	UserID string
	ID     *int64
}

// CreateProject creates a project owned by create.UserID.
func (s *Store) CreateProject(ctx context.Context, create *Project) (*Project, error) {
	if strings.TrimSpace(create.UserID) == "" {
		return nil, errors.Wrap(ErrValidation, "project requires an owner")
	}
	if create.CreatedAt == 0 {
		create.CreatedAt = time.Now().Unix()
	}
	project, err := s.driver.CreateProject(ctx, create)
	if err != nil {
		return nil, classify(err, "failed to create project")
	}
	return project, nil
}

// ListProjects lists the projects owned by find.UserID.
func (s *Store) ListProjects(ctx context.Context, find *FindProject) ([]*Project, error) {
	list, err := s.driver.ListProjects(ctx, find)
	if err != nil {
		return nil, classify(err, "failed to list projects")
	}
	if list == nil {
		list = []*Project{}
	}
	return list, nil
}
