// Package report derives the chronological project report and its exports.
package report

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/templui/fliptrack/internal/model"
)

const (
	DateLayout     = "January 2, 2006"
	DateTimeLayout = "Jan 2, 2006 • 3:04 PM"
	NotSet         = "Not set"
)

var (
	ErrReportGenerationFailed = errors.New("failed to generate report")
	ErrMalformedTimestamp     = errors.New("malformed timestamp")
)

// Generate builds the report for project from updates, oldest first. Inputs are not modified.
// Times are rendered in loc, or UTC when loc is nil.
func Generate(project model.Project, updates []model.Update, now time.Time, loc *time.Location) (*model.Report, error) {
	if loc == nil {
		loc = time.UTC
	}

	sorted := slices.Clone(updates)
	for _, u := range sorted {
		if u.Timestamp.IsZero() {
			return nil, fmt.Errorf("%w: update %d: %w", ErrReportGenerationFailed, u.ID, ErrMalformedTimestamp)
		}
	}
	slices.SortStableFunc(sorted, func(a, b model.Update) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	r := &model.Report{
		Project: model.ReportProject{
			ID:           project.ID,
			Address:      project.Address,
			PropertyType: project.PropertyType,
			Status:       project.Status,
			StartDate:    formatDate(project.StartDate, loc),
			TargetDate:   formatDate(project.TargetDate, loc),
			CreatedAt:    formatDate(project.CreatedAt, loc),
		},
		Updates:      make([]model.ReportUpdate, 0, len(sorted)),
		GeneratedAt:  now.In(loc).Format(DateTimeLayout),
		TotalUpdates: len(sorted),
	}

	for _, u := range sorted {
		switch u.Category {
		case model.CategoryProgress:
			r.Summary.ProgressUpdates++
		case model.CategoryMilestone:
			r.Summary.Milestones++
		case model.CategoryIssue:
			r.Summary.Issues++
		}
		r.Summary.TotalPhotos += len(u.Photos)

		photos := make([]model.ReportPhoto, len(u.Photos))
		for i, p := range u.Photos {
			photos[i] = model.ReportPhoto{
				ID:      p.ID,
				Caption: p.Caption,
				TakenAt: formatDateTime(p.TakenAt, loc),
			}
		}

		r.Updates = append(r.Updates, model.ReportUpdate{
			ID:          u.ID,
			Title:       u.Title,
			Description: u.Description,
			Category:    u.Category,
			Timestamp:   u.Timestamp.In(loc).Format(DateTimeLayout),
			Author:      u.Author,
			PhotoCount:  len(u.Photos),
			Photos:      photos,
		})
	}

	return r, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename is the download name of the text export for a project address.
func Filename(address string) string {
	return unsafeFilenameChars.ReplaceAllString(address, "_") + "_Report.txt"
}

func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return NotSet
	}
	return t.In(loc).Format(DateLayout)
}

func formatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(DateTimeLayout)
}
