package handler

import (
	"net/http"

	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/service"
	"github.com/templui/fliptrack/internal/ui"
)

type UpdateHandler struct {
	updateService *service.UpdateService
}

func NewUpdateHandler(updateService *service.UpdateService) *UpdateHandler {
	return &UpdateHandler{
		updateService: updateService,
	}
}

func (h *UpdateHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	updates, err := h.updateService.Timeline(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err, "Failed to load updates")
		return
	}
	ui.JSON(w, r, http.StatusOK, updates)
}

func (h *UpdateHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, "Failed to load update")
		return
	}

	update, err := h.updateService.ByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to load update")
		return
	}
	ui.JSON(w, r, http.StatusOK, update)
}

func (h *UpdateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, "Failed to save update")
		return
	}

	var patch model.UpdatePatch
	err = decodeJSON(w, r, &patch)
	if err != nil {
		writeError(w, r, err, "Failed to save update")
		return
	}

	update, err := h.updateService.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err, "Failed to save update")
		return
	}
	ui.JSON(w, r, http.StatusOK, update)
}

func (h *UpdateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, "Failed to delete update")
		return
	}

	removed, err := h.updateService.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to delete update")
		return
	}
	ui.JSON(w, r, http.StatusOK, removed)
}
