package service

import (
	"context"
	"fmt"
	"time"

	"github.com/templui/fliptrack/internal/markdown"
	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/report"
	"github.com/templui/fliptrack/internal/repository"
)

type ReportService struct {
	projects repository.ProjectRepository
	updates  repository.UpdateRepository
	parser   *markdown.Parser
	delay    time.Duration
	loc      *time.Location
	now      func() time.Time
}

func NewReportService(
	projects repository.ProjectRepository,
	updates repository.UpdateRepository,
	parser *markdown.Parser,
	delay time.Duration,
	loc *time.Location,
) *ReportService {
	return &ReportService{
		projects: projects,
		updates:  updates,
		parser:   parser,
		delay:    delay,
		loc:      loc,
		now:      time.Now,
	}
}

// Generate builds a fresh report for a project. Reports are never cached.
func (s *ReportService) Generate(ctx context.Context, projectID int) (*model.Project, *model.Report, error) {
	project, err := s.projects.ByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	updates, err := s.updates.ByProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	err = sleep(ctx, s.delay)
	if err != nil {
		return nil, nil, err
	}

	r, err := report.Generate(*project, updates, s.now(), s.loc)
	if err != nil {
		return nil, nil, err
	}
	return project, r, nil
}

// Text returns the plain-text export and its download filename.
func (s *ReportService) Text(ctx context.Context, projectID int) (string, string, error) {
	project, r, err := s.Generate(ctx, projectID)
	if err != nil {
		return "", "", err
	}
	return report.Text(r), report.Filename(project.Address), nil
}

// HTML renders the report through markdown, returning the report, its HTML body
// and the frontmatter metadata.
func (s *ReportService) HTML(ctx context.Context, projectID int) (*model.Report, []byte, map[string]any, error) {
	_, r, err := s.Generate(ctx, projectID)
	if err != nil {
		return nil, nil, nil, err
	}

	src, err := report.Markdown(r)
	if err != nil {
		return nil, nil, nil, err
	}

	html, meta, err := s.parser.ParseWithFrontmatter(src)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to render report: %w", err)
	}
	return r, html, meta, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
