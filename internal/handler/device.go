package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/templui/fliptrack/internal/device"
	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/ui"
)

const maxFrameSize = 8 << 20

// DeviceHandler receives the media outcome and preview frames of the client
// that owns the camera.
type DeviceHandler struct {
	relay *device.Relay
}

func NewDeviceHandler(relay *device.Relay) *DeviceHandler {
	return &DeviceHandler{
		relay: relay,
	}
}

type deviceReport struct {
	// Error is the raw failure name, e.g. NotAllowedError. Empty means access was granted.
	Error string `json:"error"`
}

func (h *DeviceHandler) Report(w http.ResponseWriter, r *http.Request) {
	c, ok := device.ParseCapability(r.PathValue("capability"))
	if !ok {
		ui.JSON(w, r, http.StatusBadRequest, errorResponse{Error: "unknown capability"})
		return
	}

	var in deviceReport
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err, "Failed to record device report")
		return
	}

	h.relay.Report(c, in.Error)
	w.WriteHeader(http.StatusNoContent)
}

// Frame replaces the preview frame. The body is the raw image.
func (h *DeviceHandler) Frame(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFrameSize))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), "Failed to read frame")
		return
	}

	img := model.Image{
		Data:      data,
		MimeType:  r.Header.Get("Content-Type"),
		CreatedAt: time.Now(),
	}
	if img.IsEmpty() || !img.DeclaredImage() {
		ui.JSON(w, r, http.StatusBadRequest, errorResponse{Error: "frame must be image data"})
		return
	}

	h.relay.PushFrame(img)
	w.WriteHeader(http.StatusNoContent)
}
