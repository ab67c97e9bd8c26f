package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/templui/fliptrack/internal/ctxkeys"
	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/service"
	"github.com/templui/fliptrack/internal/ui"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	reportService  *service.ReportService
	shareService   *service.ShareService
}

func NewProjectHandler(projectService *service.ProjectService, reportService *service.ReportService, shareService *service.ShareService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		reportService:  reportService,
		shareService:   shareService,
	}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.projectService.Cards(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to load projects")
		return
	}
	ui.JSON(w, r, http.StatusOK, cards)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var project model.Project
	err := decodeJSON(w, r, &project)
	if err != nil {
		writeError(w, r, err, "Failed to create project")
		return
	}

	created, err := h.projectService.Create(r.Context(), project)
	if err != nil {
		writeError(w, r, err, "Failed to create project")
		return
	}
	ui.JSON(w, r, http.StatusCreated, created)
}

type projectDetail struct {
	Project *model.Project `json:"project"`
	Updates []model.Update `json:"updates"`
}

func (h *ProjectHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, "Failed to load project")
		return
	}

	project, updates, err := h.projectService.Detail(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to load project")
		return
	}
	ui.JSON(w, r, http.StatusOK, projectDetail{Project: project, Updates: updates})
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, "Failed to update project")
		return
	}

	var patch model.ProjectPatch
	err = decodeJSON(w, r, &patch)
	if err != nil {
		writeError(w, r, err, "Failed to update project")
		return
	}

	project, err := h.projectService.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err, "Failed to update project")
		return
	}
	ui.JSON(w, r, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, "Failed to delete project")
		return
	}

	removed, err := h.projectService.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to delete project")
		return
	}
	ui.JSON(w, r, http.StatusOK, removed)
}

type selection struct {
	ProjectID int  `json:"projectId"`
	Selected  bool `json:"selected"`
}

func (h *ProjectHandler) Selected(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectService.LastSelected(r.Context())
	ui.JSON(w, r, http.StatusOK, selection{ProjectID: id, Selected: ok})
}

func (h *ProjectHandler) Select(w http.ResponseWriter, r *http.Request) {
	var in selection
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err, "Failed to select project")
		return
	}

	err = h.projectService.Select(r.Context(), in.ProjectID)
	if err != nil {
		writeError(w, r, err, "Failed to select project")
		return
	}
	ui.JSON(w, r, http.StatusOK, selection{ProjectID: in.ProjectID, Selected: true})
}

func (h *ProjectHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, "Failed to generate report")
		return
	}

	_, report, err := h.reportService.Generate(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to generate report")
		return
	}
	ui.JSON(w, r, http.StatusOK, report)
}

func (h *ProjectHandler) ReportText(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, "Failed to generate report")
		return
	}

	text, filename, err := h.reportService.Text(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, err = w.Write([]byte(text))
	if err != nil {
		slog.Error("failed to write report", "error", err, "project_id", id)
	}
}

func (h *ProjectHandler) ReportHTML(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, "Failed to generate report")
		return
	}

	report, body, _, err := h.reportService.HTML(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to generate report")
		return
	}

	appName := "FlipTrack"
	if cfg := ctxkeys.Config(r.Context()); cfg != nil {
		appName = cfg.AppName
	}
	ui.Render(w, r, ui.ReportPage(appName, report, body))
}

type shareRequest struct {
	Recipient string `json:"recipient"`
	Attach    bool   `json:"attach"`
}

func (h *ProjectHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, "Failed to share report")
		return
	}

	var in shareRequest
	err = decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err, "Failed to share report")
		return
	}

	res, err := h.shareService.Share(r.Context(), id, in.Recipient, in.Attach)
	if err != nil {
		if errors.Is(err, service.ErrShareCancelled) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, r, err, "Failed to share report")
		return
	}
	ui.JSON(w, r, http.StatusOK, res)
}
