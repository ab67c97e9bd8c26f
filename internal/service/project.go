package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/repository"
	"github.com/templui/fliptrack/internal/validation"
)

const DefaultCoverURL = "https://images.unsplash.com/photo-1582268611958-ebfd161ef9cf?w=400&h=300&fit=crop&crop=center"

var (
	ErrInvalidStatus = errors.New("invalid project status")
	ErrInvalidAmount = errors.New("budget and spent must not be negative")
)

// ProjectCard is the list presentation of a project.
type ProjectCard struct {
	model.Project
	ProgressPercent float64 `json:"progressPercent"`
	BudgetLabel     string  `json:"budgetLabel"`
	SpentLabel      string  `json:"spentLabel"`
	StartLabel      string  `json:"startLabel"`
	TargetLabel     string  `json:"targetLabel"`
	CoverURL        string  `json:"coverUrl"`
	UpdateCount     int     `json:"updateCount"`
}

type ProjectService struct {
	repo    repository.ProjectRepository
	updates repository.UpdateRepository
	prefs   repository.PreferenceRepository
	printer *message.Printer
}

func NewProjectService(
	repo repository.ProjectRepository,
	updates repository.UpdateRepository,
	prefs repository.PreferenceRepository,
) *ProjectService {
	return &ProjectService{
		repo:    repo,
		updates: updates,
		prefs:   prefs,
		printer: message.NewPrinter(language.AmericanEnglish),
	}
}

func (s *ProjectService) Projects(ctx context.Context) ([]model.Project, error) {
	return s.repo.All(ctx)
}

func (s *ProjectService) ByID(ctx context.Context, id int) (*model.Project, error) {
	return s.repo.ByID(ctx, id)
}

// Detail returns a project with its updates, newest first.
func (s *ProjectService) Detail(ctx context.Context, id int) (*model.Project, []model.Update, error) {
	project, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	updates, err := s.updates.ByProject(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return project, updates, nil
}

// Cards returns every project prepared for the project grid.
func (s *ProjectService) Cards(ctx context.Context) ([]ProjectCard, error) {
	projects, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	updates, err := s.updates.All(ctx)
	if err != nil {
		return nil, err
	}

	cards := make([]ProjectCard, len(projects))
	for i, p := range projects {
		cards[i] = s.card(p, updates)
	}
	return cards, nil
}

func (s *ProjectService) card(p model.Project, updates []model.Update) ProjectCard {
	card := ProjectCard{
		Project:         p,
		ProgressPercent: model.ClampProgress(p.Progress),
		BudgetLabel:     s.money(p.Budget),
		SpentLabel:      s.money(p.Spent),
		StartLabel:      shortDate(p.StartDate),
		TargetLabel:     shortDate(p.TargetDate),
		CoverURL:        DefaultCoverURL,
	}
	if card.Address == "" {
		card.Address = model.DefaultProjectAddress
	}
	if card.Status == "" {
		card.Status = model.ProjectStatusUnknown
	}

	// updates are newest first, the first photo found is the latest one
	for _, u := range updates {
		if u.ProjectID != p.ID {
			continue
		}
		card.UpdateCount++
		if card.CoverURL == DefaultCoverURL && len(u.Photos) > 0 {
			cover := u.Photos[0].ThumbnailURL
			if cover == "" {
				cover = u.Photos[0].URL
			}
			card.CoverURL = cover
		}
	}

	return card
}

func (s *ProjectService) Create(ctx context.Context, project model.Project) (*model.Project, error) {
	project.Address = strings.TrimSpace(project.Address)
	err := validation.ValidateAddress(project.Address)
	if err != nil {
		return nil, err
	}

	if project.Status == "" {
		project.Status = model.ProjectStatusPlanning
	}
	if !model.IsValidStatus(project.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, project.Status)
	}
	if negative(project.Budget) || negative(project.Spent) {
		return nil, ErrInvalidAmount
	}

	created, err := s.repo.Create(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	slog.Info("project created", "project_id", created.ID, "address", created.Address)
	return created, nil
}

func (s *ProjectService) Update(ctx context.Context, id int, patch model.ProjectPatch) (*model.Project, error) {
	if patch.Address != nil {
		address := strings.TrimSpace(*patch.Address)
		err := validation.ValidateAddress(address)
		if err != nil {
			return nil, err
		}
		patch.Address = &address
	}
	if patch.Status != nil && !model.IsValidStatus(*patch.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
	}
	if negative(patch.Budget) || negative(patch.Spent) {
		return nil, ErrInvalidAmount
	}

	return s.repo.Update(ctx, id, patch)
}

func (s *ProjectService) Delete(ctx context.Context, id int) (*model.Project, error) {
	last, selected := s.LastSelected(ctx)

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	if selected && last == id {
		err = s.prefs.Delete(ctx, model.PreferenceLastSelectedProject)
		if err != nil {
			slog.Warn("failed to clear selected project", "error", err, "project_id", id)
		}
	}

	return removed, nil
}

// Select remembers id as the project new updates are posted to.
func (s *ProjectService) Select(ctx context.Context, id int) error {
	_, err := s.repo.ByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.prefs.Set(ctx, model.PreferenceLastSelectedProject, strconv.Itoa(id))
	if err != nil {
		return fmt.Errorf("failed to save selected project: %w", err)
	}
	return nil
}

// LastSelected returns the remembered project id. The hint is ignored when it
// is missing, unreadable or points at a project that no longer exists.
func (s *ProjectService) LastSelected(ctx context.Context) (int, bool) {
	pref, err := s.prefs.Get(ctx, model.PreferenceLastSelectedProject)
	if err != nil {
		if !errors.Is(err, repository.ErrPreferenceNotFound) {
			slog.Warn("failed to read selected project", "error", err)
		}
		return 0, false
	}

	id, err := strconv.Atoi(pref.Value)
	if err != nil {
		return 0, false
	}

	_, err = s.repo.ByID(ctx, id)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *ProjectService) money(v *float64) string {
	if v == nil {
		return s.printer.Sprintf("$%.0f", 0.0)
	}
	return s.printer.Sprintf("$%.0f", *v)
}

func shortDate(t time.Time) string {
	if t.IsZero() {
		return model.DefaultProjectDate
	}
	return t.Format("Jan 2")
}

func negative(v *float64) bool {
	return v != nil && *v < 0
}
