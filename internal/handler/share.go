package handler

import (
	"log/slog"
	"net/http"

	"github.com/templui/fliptrack/internal/service"
)

type ShareHandler struct {
	shareService  *service.ShareService
	reportService *service.ReportService
}

func NewShareHandler(shareService *service.ShareService, reportService *service.ReportService) *ShareHandler {
	return &ShareHandler{
		shareService:  shareService,
		reportService: reportService,
	}
}

// Report serves the text report behind a signed share link.
func (h *ShareHandler) Report(w http.ResponseWriter, r *http.Request) {
	projectID, err := h.shareService.Resolve(r.PathValue("token"))
	if err != nil {
		slog.Warn("share link rejected", "error", err)
		writeError(w, r, err, "Invalid share link")
		return
	}

	text, filename, err := h.reportService.Text(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err, "Failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "inline; filename=\""+filename+"\"")
	w.Header().Set("Cache-Control", "no-store")
	_, err = w.Write([]byte(text))
	if err != nil {
		slog.Error("failed to write shared report", "error", err, "project_id", projectID)
	}
}
