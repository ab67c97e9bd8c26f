package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/templui/fliptrack/internal/capture"
	"github.com/templui/fliptrack/internal/db"
	"github.com/templui/fliptrack/internal/imaging"
	"github.com/templui/fliptrack/internal/markdown"
	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/repository"
	"github.com/templui/fliptrack/internal/storage"
)

type testServices struct {
	store    *storage.MemoryStorage
	projects *ProjectService
	updates  *UpdateService
	photos   *PhotoService
	reports  *ReportService
	share    *ShareService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	conn, err := db.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) })
	require.NoError(t, db.RunMigrations(context.Background(), conn.DB, "sqlite"))

	budget, spent, progress := 50000.0, 12500.0, 40.0
	projectRepo := repository.NewProjectRepository([]model.Project{
		{
			ID:           1,
			Address:      "12 Oak Street",
			PropertyType: "Single Family",
			Status:       model.ProjectStatusDemo,
			StartDate:    time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			Budget:       &budget,
			Spent:        &spent,
			Progress:     &progress,
			CreatedAt:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{ID: 2, Address: "9 Pine Court", Status: model.ProjectStatusSold},
	}, repository.NoLatency)

	updateRepo := repository.NewUpdateRepository([]model.Update{
		{
			ID: 1, ProjectID: 1, Title: "Demo started", Category: model.CategoryProgress,
			Timestamp: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
			Photos:    []model.Photo{{ID: "p1", URL: "https://example.com/p1.jpg"}},
		},
		{
			ID: 2, ProjectID: 1, Title: "Mold found", Category: model.CategoryIssue,
			Timestamp: time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC),
		},
		{
			ID: 3, ProjectID: 2, Title: "Closed", Category: model.CategoryMilestone,
			Timestamp: time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC),
		},
	}, repository.NoLatency)

	store := storage.NewMemoryStorage("http://localhost:8090/files")
	photos := NewPhotoService(store)
	reports := NewReportService(projectRepo, updateRepo, markdown.NewParser(), 0, time.UTC)
	email := NewEmailService("", "reports@example.com", "FlipTrack", true)

	return &testServices{
		store:    store,
		projects: NewProjectService(projectRepo, updateRepo, repository.NewPreferenceRepository(conn)),
		updates:  NewUpdateService(updateRepo, projectRepo, photos),
		photos:   photos,
		reports:  reports,
		share:    NewShareService(reports, email, "test-secret", time.Hour, "http://localhost:8090/"),
	}
}

func testAttachment(t *testing.T, caption string) capture.Attachment {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for x := 0; x < 80; x++ {
		for y := 0; y < 60; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 4), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	compressed, err := imaging.Compress(model.Image{Data: buf.Bytes(), MimeType: "image/png", SourceName: "room.png"}, imaging.DefaultOptions())
	require.NoError(t, err)

	return capture.Attachment{
		ID:      "a-" + caption,
		Caption: caption,
		Source:  capture.SourceFile,
		TakenAt: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC),
		Image:   compressed,
	}
}
