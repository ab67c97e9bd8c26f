package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/templui/fliptrack/internal/model"
)

var (
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
)

type ProjectRepository interface {
	All(ctx context.Context) ([]model.Project, error)
	ByID(ctx context.Context, id int) (*model.Project, error)
	Create(ctx context.Context, project model.Project) (*model.Project, error)
	Update(ctx context.Context, id int, patch model.ProjectPatch) (*model.Project, error)
	Delete(ctx context.Context, id int) (*model.Project, error)
}

// projectRepository keeps projects in memory. Each call is atomic on its own,
// a read followed by a write is not.
type projectRepository struct {
	latency Latency

	mu       sync.Mutex
	projects []model.Project
}

func NewProjectRepository(seed []model.Project, latency Latency) ProjectRepository {
	projects := make([]model.Project, len(seed))
	for i, p := range seed {
		projects[i] = cloneProject(p)
	}
	return &projectRepository{
		latency:  latency,
		projects: projects,
	}
}

func (r *projectRepository) All(ctx context.Context) ([]model.Project, error) {
	if err := wait(ctx, r.latency.List); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Project, len(r.projects))
	for i, p := range r.projects {
		out[i] = cloneProject(p)
	}
	return out, nil
}

func (r *projectRepository) ByID(ctx context.Context, id int) (*model.Project, error) {
	if err := wait(ctx, r.latency.Read); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		return nil, ErrProjectNotFound
	}
	p := cloneProject(r.projects[idx])
	return &p, nil
}

// Create assigns the next id and stamps CreatedAt.
func (r *projectRepository) Create(ctx context.Context, project model.Project) (*model.Project, error) {
	if err := wait(ctx, r.latency.Create); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	maxID := 0
	for _, p := range r.projects {
		maxID = max(maxID, p.ID)
	}

	project = cloneProject(project)
	project.ID = maxID + 1
	project.CreatedAt = time.Now()
	r.projects = append(r.projects, project)

	out := cloneProject(project)
	return &out, nil
}

func (r *projectRepository) Update(ctx context.Context, id int, patch model.ProjectPatch) (*model.Project, error) {
	if err := wait(ctx, r.latency.Update); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		return nil, ErrProjectNotFound
	}

	p := &r.projects[idx]
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.PropertyType != nil {
		p.PropertyType = *patch.PropertyType
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.TargetDate != nil {
		p.TargetDate = *patch.TargetDate
	}
	if patch.AccessInstructions != nil {
		p.AccessInstructions = *patch.AccessInstructions
	}
	if patch.Budget != nil {
		p.Budget = ptr(*patch.Budget)
	}
	if patch.Spent != nil {
		p.Spent = ptr(*patch.Spent)
	}
	if patch.Progress != nil {
		p.Progress = ptr(*patch.Progress)
	}

	out := cloneProject(*p)
	return &out, nil
}

func (r *projectRepository) Delete(ctx context.Context, id int) (*model.Project, error) {
	if err := wait(ctx, r.latency.Delete); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		return nil, ErrProjectNotFound
	}

	removed := r.projects[idx]
	r.projects = append(r.projects[:idx], r.projects[idx+1:]...)
	return &removed, nil
}

func (r *projectRepository) index(id int) int {
	for i, p := range r.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneProject(p model.Project) model.Project {
	if p.Budget != nil {
		p.Budget = ptr(*p.Budget)
	}
	if p.Spent != nil {
		p.Spent = ptr(*p.Spent)
	}
	if p.Progress != nil {
		p.Progress = ptr(*p.Progress)
	}
	return p
}

func ptr[T any](v T) *T {
	return &v
}
