package routes

import (
	"net/http"
	"time"

	"github.com/templui/fliptrack/internal/app"
	"github.com/templui/fliptrack/internal/handler"
	"github.com/templui/fliptrack/internal/middleware"
	"github.com/templui/fliptrack/internal/storage"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler()
	seo := handler.NewSEOHandler()
	project := handler.NewProjectHandler(app.ProjectService, app.ReportService, app.ShareService)
	update := handler.NewUpdateHandler(app.UpdateService)
	capture := handler.NewCaptureHandler(app.Capture, app.UpdateService, app.ProjectService, app.Cfg.UploadMaxSize)
	permission := handler.NewPermissionHandler(app.Gateway)
	share := handler.NewShareHandler(app.ShareService, app.ReportService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /{$}", home.Index)
	mux.HandleFunc("GET /robots.txt", seo.Robots)

	// Signed report links
	mux.HandleFunc("GET /share/{token}", share.Report)

	// Display URLs of staged photos
	mux.HandleFunc("GET /blobs/{sid}/{bid}", capture.Blob)

	// Stored photos (memory driver only, S3 serves its own)
	if memory, ok := app.Storage.(*storage.MemoryStorage); ok {
		files := handler.NewFilesHandler(memory)
		mux.HandleFunc("GET /files/{path...}", files.Serve)
	}

	// ============================================================================
	// APP ROUTES (/app/*)
	// ============================================================================

	uploadLimiter := middleware.RateLimit(60, time.Minute)
	shareLimiter := middleware.RateLimit(10, 15*time.Minute)

	// Projects
	mux.HandleFunc("GET /app/projects", project.List)
	mux.HandleFunc("POST /app/projects", project.Create)
	mux.HandleFunc("GET /app/projects/selected", project.Selected)
	mux.HandleFunc("PUT /app/projects/selected", project.Select)
	mux.HandleFunc("GET /app/projects/{id}", project.Show)
	mux.HandleFunc("PATCH /app/projects/{id}", project.Update)
	mux.HandleFunc("DELETE /app/projects/{id}", project.Delete)

	// Reports
	mux.HandleFunc("GET /app/projects/{id}/report", project.Report)
	mux.HandleFunc("GET /app/projects/{id}/report.txt", project.ReportText)
	mux.HandleFunc("GET /app/projects/{id}/report.html", project.ReportHTML)
	mux.HandleFunc("POST /app/projects/{id}/report/share", shareLimiter(project.Share))

	// Updates
	mux.HandleFunc("GET /app/updates", update.Timeline)
	mux.HandleFunc("GET /app/updates/{id}", update.Show)
	mux.HandleFunc("PATCH /app/updates/{id}", update.Update)
	mux.HandleFunc("DELETE /app/updates/{id}", update.Delete)

	// Capture sessions
	mux.HandleFunc("POST /app/capture", capture.Start)
	mux.HandleFunc("GET /app/capture/{sid}", capture.Show)
	mux.HandleFunc("DELETE /app/capture/{sid}", capture.End)
	mux.HandleFunc("POST /app/capture/{sid}/camera", capture.OpenCamera)
	mux.HandleFunc("POST /app/capture/{sid}/camera/shot", uploadLimiter(capture.Capture))
	mux.HandleFunc("DELETE /app/capture/{sid}/camera", capture.CloseCamera)
	mux.HandleFunc("POST /app/capture/{sid}/files", uploadLimiter(capture.Files))
	mux.HandleFunc("POST /app/capture/{sid}/drag", capture.Drag)
	mux.HandleFunc("DELETE /app/capture/{sid}/photos/{pid}", capture.RemovePhoto)
	mux.HandleFunc("PATCH /app/capture/{sid}/photos/{pid}", capture.Caption)
	mux.HandleFunc("POST /app/capture/{sid}/submit", capture.Submit)

	// Permissions
	mux.HandleFunc("GET /app/permissions", permission.Grants)
	mux.HandleFunc("POST /app/permissions/{capability}", permission.Request)

	// Device relay (client that owns the camera)
	if app.Relay != nil {
		device := handler.NewDeviceHandler(app.Relay)
		mux.HandleFunc("POST /app/device/{capability}/report", device.Report)
		mux.HandleFunc("POST /app/device/camera/frame", device.Frame)
	}

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", home.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (needed by SecurityHeaders for S3 endpoint)
		middleware.RequestID,
		middleware.NonceMiddleware, // Generate CSP nonce for each request (must be before SecurityHeaders)
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
	)

	return handler
}
