package report

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/templui/fliptrack/internal/model"
)

const rule = "====================================="

// Text renders the plain-text export.
func Text(r *model.Report) string {
	var b strings.Builder

	b.WriteString("PROJECT REPORT\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Property Address: %s\n", r.Project.Address)
	fmt.Fprintf(&b, "Property Type: %s\n", r.Project.PropertyType)
	fmt.Fprintf(&b, "Status: %s\n", r.Project.Status)
	fmt.Fprintf(&b, "Start Date: %s\n", r.Project.StartDate)
	fmt.Fprintf(&b, "Target Date: %s\n", r.Project.TargetDate)
	fmt.Fprintf(&b, "Report Generated: %s\n\n", r.GeneratedAt)

	b.WriteString("PROJECT SUMMARY\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total Updates: %d\n", r.TotalUpdates)
	fmt.Fprintf(&b, "Progress Updates: %d\n", r.Summary.ProgressUpdates)
	fmt.Fprintf(&b, "Milestones: %d\n", r.Summary.Milestones)
	fmt.Fprintf(&b, "Issues: %d\n", r.Summary.Issues)
	fmt.Fprintf(&b, "Total Photos: %d\n\n", r.Summary.TotalPhotos)

	b.WriteString("CHRONOLOGICAL TIMELINE\n")
	b.WriteString(rule + "\n\n")

	for i, u := range r.Updates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, u.Title)
		fmt.Fprintf(&b, "   Date: %s\n", u.Timestamp)
		fmt.Fprintf(&b, "   Category: %s\n", u.Category)
		fmt.Fprintf(&b, "   Author: %s\n", u.Author)
		fmt.Fprintf(&b, "   Description: %s\n", u.Description)
		if u.PhotoCount > 0 {
			fmt.Fprintf(&b, "   Photos: %d attached\n", u.PhotoCount)
		}
		b.WriteString("\n")
	}

	return b.String()
}

type frontmatter struct {
	Title        string `yaml:"title"`
	ProjectID    int    `yaml:"project_id"`
	Address      string `yaml:"address"`
	Status       string `yaml:"status"`
	GeneratedAt  string `yaml:"generated_at"`
	TotalUpdates int    `yaml:"total_updates"`
	TotalPhotos  int    `yaml:"total_photos"`
}

// Markdown renders the report as markdown with YAML frontmatter, for the HTML view.
func Markdown(r *model.Report) ([]byte, error) {
	meta, err := yaml.Marshal(frontmatter{
		Title:        "Project Report - " + r.Project.Address,
		ProjectID:    r.Project.ID,
		Address:      r.Project.Address,
		Status:       r.Project.Status,
		GeneratedAt:  r.GeneratedAt,
		TotalUpdates: r.TotalUpdates,
		TotalPhotos:  r.Summary.TotalPhotos,
	})
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", r.Project.Address)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Property Type | %s |\n", cell(r.Project.PropertyType))
	fmt.Fprintf(&b, "| Status | %s |\n", cell(r.Project.Status))
	fmt.Fprintf(&b, "| Start Date | %s |\n", r.Project.StartDate)
	fmt.Fprintf(&b, "| Target Date | %s |\n", r.Project.TargetDate)
	fmt.Fprintf(&b, "| Report Generated | %s |\n\n", r.GeneratedAt)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Total updates: %d\n", r.TotalUpdates)
	fmt.Fprintf(&b, "- Progress updates: %d\n", r.Summary.ProgressUpdates)
	fmt.Fprintf(&b, "- Milestones: %d\n", r.Summary.Milestones)
	fmt.Fprintf(&b, "- Issues: %d\n", r.Summary.Issues)
	fmt.Fprintf(&b, "- Total photos: %d\n\n", r.Summary.TotalPhotos)

	b.WriteString("## Chronological Timeline\n\n")
	if len(r.Updates) == 0 {
		b.WriteString("No updates yet.\n")
	}
	for i, u := range r.Updates {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, u.Title)
		fmt.Fprintf(&b, "*%s* · **%s** · %s\n\n", u.Timestamp, u.Category, u.Author)
		if u.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", u.Description)
		}
		for _, p := range u.Photos {
			caption := p.Caption
			if caption == "" {
				caption = "Untitled photo"
			}
			fmt.Fprintf(&b, "- %s", caption)
			if p.TakenAt != "" {
				fmt.Fprintf(&b, " (%s)", p.TakenAt)
			}
			b.WriteString("\n")
		}
		if len(u.Photos) > 0 {
			b.WriteString("\n")
		}
	}

	return b.Bytes(), nil
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
