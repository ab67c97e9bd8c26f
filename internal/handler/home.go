package handler

import (
	"net/http"

	"github.com/templui/fliptrack/internal/ctxkeys"
	"github.com/templui/fliptrack/internal/ui"
)

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

type status struct {
	Name   string `json:"name"`
	Env    string `json:"env"`
	Status string `json:"status"`
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	s := status{Name: "FlipTrack", Status: "ok"}
	if cfg := ctxkeys.Config(r.Context()); cfg != nil {
		s.Name = cfg.AppName
		s.Env = cfg.AppEnv
	}
	ui.JSON(w, r, http.StatusOK, s)
}

func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	ui.JSON(w, r, http.StatusNotFound, errorResponse{Error: "not found"})
}
