package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/templui/fliptrack/internal/capture"
	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/repository"
	"github.com/templui/fliptrack/internal/validation"
)

const FilterAll = "all"

var (
	ErrNoPhotos        = errors.New("please add at least one photo")
	ErrProjectRequired = errors.New("please select a project")
	ErrInvalidCategory = errors.New("invalid update category")
)

// PostInput is the form data of a new update. Empty fields fall back to defaults.
type PostInput struct {
	ProjectID   int    `json:"projectId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Author      string `json:"author"`
}

type UpdateService struct {
	repo     repository.UpdateRepository
	projects repository.ProjectRepository
	photos   *PhotoService
}

func NewUpdateService(
	repo repository.UpdateRepository,
	projects repository.ProjectRepository,
	photos *PhotoService,
) *UpdateService {
	return &UpdateService{
		repo:     repo,
		projects: projects,
		photos:   photos,
	}
}

// Post stores the staged photos and creates the update. Stored photos are
// removed again if the update cannot be created.
func (s *UpdateService) Post(ctx context.Context, in PostInput, attachments []capture.Attachment) (*model.Update, error) {
	if in.ProjectID <= 0 {
		return nil, ErrProjectRequired
	}
	if len(attachments) == 0 {
		return nil, ErrNoPhotos
	}

	update, err := newUpdate(in)
	if err != nil {
		return nil, err
	}
	for _, a := range attachments {
		err = validation.ValidateCaption(a.Caption)
		if err != nil {
			return nil, err
		}
	}

	_, err = s.projects.ByID(ctx, in.ProjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectRequired
	}
	if err != nil {
		return nil, err
	}

	update.Photos, err = s.photos.Store(ctx, in.ProjectID, attachments)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, update)
	if err != nil {
		s.photos.Delete(context.WithoutCancel(ctx), update.Photos)
		return nil, fmt.Errorf("failed to create update: %w", err)
	}

	slog.Info("update posted", "update_id", created.ID, "project_id", created.ProjectID, "photos", len(created.Photos))
	return created, nil
}

// Timeline returns updates newest first, optionally filtered by category
// ("all", "progress", "issue", ...; case-insensitive).
func (s *UpdateService) Timeline(ctx context.Context, filter string) ([]model.Update, error) {
	category, err := ParseCategoryFilter(filter)
	if err != nil {
		return nil, err
	}

	updates, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return updates, nil
	}

	filtered := updates[:0]
	for _, u := range updates {
		if u.Category == category {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

func (s *UpdateService) ByProject(ctx context.Context, projectID int) ([]model.Update, error) {
	return s.repo.ByProject(ctx, projectID)
}

func (s *UpdateService) ByID(ctx context.Context, id int) (*model.Update, error) {
	return s.repo.ByID(ctx, id)
}

func (s *UpdateService) Update(ctx context.Context, id int, patch model.UpdatePatch) (*model.Update, error) {
	if patch.Category != nil && !model.IsValidCategory(*patch.Category) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, *patch.Category)
	}
	if patch.Title != nil {
		err := validation.ValidateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		err := validation.ValidateDescription(*patch.Description)
		if err != nil {
			return nil, err
		}
	}

	return s.repo.Update(ctx, id, patch)
}

// Delete removes the update and, best effort, its stored photos.
func (s *UpdateService) Delete(ctx context.Context, id int) (*model.Update, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.photos.Delete(ctx, removed.Photos)
	return removed, nil
}

// ParseCategoryFilter maps a filter value onto a category. "" and "all" mean no filter.
func ParseCategoryFilter(filter string) (string, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, FilterAll) {
		return "", nil
	}

	category := cases.Title(language.English).String(filter)
	if !model.IsValidCategory(category) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, filter)
	}
	return category, nil
}

func newUpdate(in PostInput) (model.Update, error) {
	u := model.Update{
		ProjectID:   in.ProjectID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Author:      strings.TrimSpace(in.Author),
	}

	if u.Title == "" {
		u.Title = model.DefaultUpdateTitle
	}
	if u.Category == "" {
		u.Category = model.CategoryProgress
	}
	if u.Author == "" {
		u.Author = model.DefaultUpdateAuthor
	}
	if !model.IsValidCategory(u.Category) {
		return model.Update{}, fmt.Errorf("%w: %q", ErrInvalidCategory, u.Category)
	}

	err := validation.ValidateTitle(u.Title)
	if err != nil {
		return model.Update{}, err
	}
	err = validation.ValidateDescription(u.Description)
	if err != nil {
		return model.Update{}, err
	}

	return u, nil
}
