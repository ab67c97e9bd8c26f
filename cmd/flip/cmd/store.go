package cmd

import (
	"context"
	"fmt"

	"github.com/templui/fliptrack/internal/repository"
	"github.com/templui/fliptrack/internal/seed"
)

type store struct {
	projects repository.ProjectRepository
	updates  repository.UpdateRepository
}

// openStore loads seed data from dir (bundled data when empty) into the in-memory repositories.
func openStore(dir string) (*store, error) {
	data, err := seed.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load seed data: %w", err)
	}
	return &store{
		projects: repository.NewProjectRepository(data.Projects, repository.NoLatency),
		updates:  repository.NewUpdateRepository(data.Updates, repository.NoLatency),
	}, nil
}

func (s *store) updateCount(ctx context.Context, projectID int) int {
	updates, err := s.updates.ByProject(ctx, projectID)
	if err != nil {
		return 0
	}
	return len(updates)
}
