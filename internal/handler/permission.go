package handler

import (
	"net/http"

	"github.com/templui/fliptrack/internal/device"
	"github.com/templui/fliptrack/internal/permission"
	"github.com/templui/fliptrack/internal/ui"
)

type PermissionHandler struct {
	gateway *permission.Gateway
}

func NewPermissionHandler(gateway *permission.Gateway) *PermissionHandler {
	return &PermissionHandler{
		gateway: gateway,
	}
}

func (h *PermissionHandler) Grants(w http.ResponseWriter, r *http.Request) {
	ui.JSON(w, r, http.StatusOK, h.gateway.Grants())
}

// Request probes a capability. Denials are results, not errors.
func (h *PermissionHandler) Request(w http.ResponseWriter, r *http.Request) {
	c, ok := device.ParseCapability(r.PathValue("capability"))
	if !ok {
		ui.JSON(w, r, http.StatusBadRequest, errorResponse{Error: "unknown capability"})
		return
	}

	ui.JSON(w, r, http.StatusOK, h.gateway.Request(r.Context(), c))
}
