package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/templui/fliptrack/internal/model"
)

var (
	ErrUpdateNotFound = fmt.Errorf("update %w", ErrNotFound)
)

type UpdateRepository interface {
	// All returns every update, newest first.
	All(ctx context.Context) ([]model.Update, error)
	ByProject(ctx context.Context, projectID int) ([]model.Update, error)
	ByID(ctx context.Context, id int) (*model.Update, error)
	Create(ctx context.Context, update model.Update) (*model.Update, error)
	Update(ctx context.Context, id int, patch model.UpdatePatch) (*model.Update, error)
	Delete(ctx context.Context, id int) (*model.Update, error)
}

type updateRepository struct {
	latency Latency

	mu      sync.Mutex
	updates []model.Update
}

func NewUpdateRepository(seed []model.Update, latency Latency) UpdateRepository {
	updates := make([]model.Update, len(seed))
	for i, u := range seed {
		updates[i] = cloneUpdate(u)
	}
	return &updateRepository{
		latency: latency,
		updates: updates,
	}
}

func (r *updateRepository) All(ctx context.Context) ([]model.Update, error) {
	if err := wait(ctx, r.latency.List); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sorted(func(model.Update) bool { return true }), nil
}

func (r *updateRepository) ByProject(ctx context.Context, projectID int) ([]model.Update, error) {
	if err := wait(ctx, r.latency.List); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sorted(func(u model.Update) bool { return u.ProjectID == projectID }), nil
}

func (r *updateRepository) ByID(ctx context.Context, id int) (*model.Update, error) {
	if err := wait(ctx, r.latency.Read); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		return nil, ErrUpdateNotFound
	}
	u := cloneUpdate(r.updates[idx])
	return &u, nil
}

// Create assigns the next id and stamps Timestamp.
func (r *updateRepository) Create(ctx context.Context, update model.Update) (*model.Update, error) {
	if err := wait(ctx, r.latency.Create); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	maxID := 0
	for _, u := range r.updates {
		maxID = max(maxID, u.ID)
	}

	update = cloneUpdate(update)
	update.ID = maxID + 1
	update.Timestamp = time.Now()
	r.updates = append(r.updates, update)

	out := cloneUpdate(update)
	return &out, nil
}

func (r *updateRepository) Update(ctx context.Context, id int, patch model.UpdatePatch) (*model.Update, error) {
	if err := wait(ctx, r.latency.Update); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		return nil, ErrUpdateNotFound
	}

	u := &r.updates[idx]
	if patch.ProjectID != nil {
		u.ProjectID = *patch.ProjectID
	}
	if patch.Title != nil {
		u.Title = *patch.Title
	}
	if patch.Description != nil {
		u.Description = *patch.Description
	}
	if patch.Category != nil {
		u.Category = *patch.Category
	}
	if patch.Author != nil {
		u.Author = *patch.Author
	}
	if patch.Photos != nil {
		u.Photos = slices.Clone(*patch.Photos)
	}

	out := cloneUpdate(*u)
	return &out, nil
}

func (r *updateRepository) Delete(ctx context.Context, id int) (*model.Update, error) {
	if err := wait(ctx, r.latency.Delete); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		return nil, ErrUpdateNotFound
	}

	removed := r.updates[idx]
	r.updates = append(r.updates[:idx], r.updates[idx+1:]...)
	return &removed, nil
}

func (r *updateRepository) sorted(keep func(model.Update) bool) []model.Update {
	out := make([]model.Update, 0, len(r.updates))
	for _, u := range r.updates {
		if keep(u) {
			out = append(out, cloneUpdate(u))
		}
	}
	slices.SortStableFunc(out, func(a, b model.Update) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

func (r *updateRepository) index(id int) int {
	for i, u := range r.updates {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func cloneUpdate(u model.Update) model.Update {
	u.Photos = slices.Clone(u.Photos)
	return u
}
