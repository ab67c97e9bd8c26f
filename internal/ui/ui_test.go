package ui

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/fliptrack/internal/model"
)

func TestBadges(t *testing.T) {
	assert.Contains(t, CategoryBadge(model.CategoryIssue), "bg-red-100")
	assert.NotContains(t, CategoryBadge(model.CategoryIssue), "bg-gray-100")

	// unknown values keep the neutral treatment
	assert.Contains(t, CategoryBadge("Gossip"), "bg-gray-100")
	assert.Contains(t, StatusBadge("Haunted"), "bg-gray-100")

	assert.Contains(t, StatusBadge(model.ProjectStatusSold, "px-4"), "px-4")
	assert.NotContains(t, StatusBadge(model.ProjectStatusSold, "px-4"), "px-2.5")
}

func TestReportPage(t *testing.T) {
	r := &model.Report{
		Project: model.ReportProject{Address: `12 Oak <Street>`, Status: model.ProjectStatusDemo},
		Updates: []model.ReportUpdate{
			{Title: "a", Category: model.CategoryIssue},
			{Title: "b", Category: "Gossip"},
			{Title: "c", Category: model.CategoryIssue},
		},
	}

	ctx := templ.WithNonce(context.Background(), "n0nce")
	var buf bytes.Buffer
	require.NoError(t, ReportPage("FlipTrack", r, []byte("<h1>body</h1>")).Render(ctx, &buf))

	html := buf.String()
	assert.Contains(t, html, `<style nonce="n0nce">`)
	assert.Contains(t, html, "12 Oak &lt;Street&gt;")
	assert.Contains(t, html, "<h1>body</h1>")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(">Issue</span>")))
	assert.Contains(t, html, ">Gossip</span>")
}

func TestReportStylesCoverBadges(t *testing.T) {
	classes := strings.Fields(badgeBase)
	for _, v := range categoryClasses {
		classes = append(classes, strings.Fields(v)...)
	}
	for _, v := range statusClasses {
		classes = append(classes, strings.Fields(v)...)
	}

	for _, class := range classes {
		selector := "." + strings.ReplaceAll(class, ".", `\.`) + "{"
		assert.Contains(t, reportStyles, selector, "no rule for %s", class)
	}

	r := &model.Report{Project: model.ReportProject{Address: "1 Elm", Status: model.ProjectStatusDemo}}
	var buf bytes.Buffer
	require.NoError(t, ReportPage("FlipTrack", r, nil).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), ".bg-orange-100{background-color:#ffedd5}")
	assert.Contains(t, buf.String(), `class="`+StatusBadge(model.ProjectStatusDemo)+`"`)
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
}
