package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/templui/fliptrack/internal/model"
)

var reportStyles = `body{font-family:system-ui,sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;color:#1f2937}
table{border-collapse:collapse}td,th{border:1px solid #e5e7eb;padding:.25rem .5rem;text-align:left}
.badges{display:flex;flex-wrap:wrap;gap:.5rem;margin:1rem 0}` + badgeCSS()

// ReportPage renders the HTML view of a report. body is the rendered report markdown.
func ReportPage(appName string, r *model.Report, body []byte) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := "Project Report - " + r.Project.Address

		_, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"/><title>%s | %s</title>`+
			`<style nonce="%s">%s</style></head><body>`,
			templ.EscapeString(title), templ.EscapeString(appName),
			templ.EscapeString(templ.GetNonce(ctx)), reportStyles)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(w, `<div class="badges"><span class="%s">%s</span>`,
			templ.EscapeString(StatusBadge(r.Project.Status)), templ.EscapeString(statusLabel(r.Project.Status)))
		if err != nil {
			return err
		}
		for _, c := range reportCategories(r) {
			_, err = fmt.Fprintf(w, `<span class="%s">%s</span>`,
				templ.EscapeString(CategoryBadge(c)), templ.EscapeString(c))
			if err != nil {
				return err
			}
		}

		_, err = fmt.Fprintf(w, `</div><main>%s</main></body></html>`, body)
		return err
	})
}

func statusLabel(status string) string {
	if status == "" {
		return model.ProjectStatusUnknown
	}
	return status
}

// reportCategories lists each category used in the report once, in timeline order.
func reportCategories(r *model.Report) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range r.Updates {
		if u.Category == "" || seen[u.Category] {
			continue
		}
		seen[u.Category] = true
		out = append(out, u.Category)
	}
	return out
}
