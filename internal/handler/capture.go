package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/templui/fliptrack/internal/capture"
	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/permission"
	"github.com/templui/fliptrack/internal/service"
	"github.com/templui/fliptrack/internal/ui"
	"github.com/templui/fliptrack/internal/validation"
)

const maxFilesPerRequest = 20

var errSessionNotFound = errors.New("capture session not found")

type CaptureHandler struct {
	manager        *capture.Manager
	updateService  *service.UpdateService
	projectService *service.ProjectService
	maxUploadSize  int64
}

func NewCaptureHandler(
	manager *capture.Manager,
	updateService *service.UpdateService,
	projectService *service.ProjectService,
	maxUploadSize int64,
) *CaptureHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = validation.DefaultMaxImageSize
	}
	return &CaptureHandler{
		manager:        manager,
		updateService:  updateService,
		projectService: projectService,
		maxUploadSize:  maxUploadSize,
	}
}

// sessionView is the client-visible state of a capture session. Notices are
// drained, each one is delivered once.
type sessionView struct {
	ID                string               `json:"id"`
	State             capture.State        `json:"state"`
	Attachments       []capture.Attachment `json:"attachments"`
	SessionCount      int                  `json:"sessionCount"`
	PermissionMessage string               `json:"permissionMessage,omitempty"`
	Highlighted       bool                 `json:"highlighted"`
	Notices           []capture.Notice     `json:"notices"`
}

func view(s *capture.Session) sessionView {
	p := s.Pipeline
	return sessionView{
		ID:                s.ID,
		State:             p.State(),
		Attachments:       p.Attachments(),
		SessionCount:      p.SessionCount(),
		PermissionMessage: p.PermissionMessage(),
		Highlighted:       p.Highlighted(),
		Notices:           s.Notices.Drain(),
	}
}

func (h *CaptureHandler) session(w http.ResponseWriter, r *http.Request) (*capture.Session, bool) {
	s, ok := h.manager.Get(r.PathValue("sid"))
	if !ok {
		ui.JSON(w, r, http.StatusNotFound, errorResponse{Error: errSessionNotFound.Error()})
		return nil, false
	}
	return s, true
}

func (h *CaptureHandler) Start(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Start()
	slog.Debug("capture session started", "session_id", s.ID)
	ui.JSON(w, r, http.StatusCreated, view(s))
}

func (h *CaptureHandler) Show(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	ui.JSON(w, r, http.StatusOK, view(s))
}

func (h *CaptureHandler) End(w http.ResponseWriter, r *http.Request) {
	if !h.manager.End(r.PathValue("sid")) {
		ui.JSON(w, r, http.StatusNotFound, errorResponse{Error: errSessionNotFound.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cameraResponse struct {
	Permission     permission.Result `json:"permission"`
	PermissionHelp bool              `json:"permissionHelp"`
	Session        sessionView       `json:"session"`
}

// OpenCamera answers 200 for a denial too; the client shows the permission help.
func (h *CaptureHandler) OpenCamera(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	res, err := s.Pipeline.OpenCamera(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to open camera")
		return
	}

	ui.JSON(w, r, http.StatusOK, cameraResponse{
		Permission:     res,
		PermissionHelp: !res.Success,
		Session:        view(s),
	})
}

type shotResponse struct {
	Attachment capture.Attachment `json:"attachment"`
	Session    sessionView        `json:"session"`
}

func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	a, err := s.Pipeline.Capture(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to capture photo")
		return
	}
	ui.JSON(w, r, http.StatusCreated, shotResponse{Attachment: a, Session: view(s)})
}

type closeResponse struct {
	Captured int         `json:"captured"`
	Session  sessionView `json:"session"`
}

func (h *CaptureHandler) CloseCamera(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	n, err := s.Pipeline.CloseCamera()
	if err != nil {
		writeError(w, r, err, "Failed to close camera")
		return
	}
	ui.JSON(w, r, http.StatusOK, closeResponse{Captured: n, Session: view(s)})
}

type filesResponse struct {
	capture.SelectResult
	Session sessionView `json:"session"`
}

// Files takes a multipart batch in the "files" field. drop=true marks a drag and drop.
func (h *CaptureHandler) Files(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	limit := h.maxUploadSize*maxFilesPerRequest + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), "Failed to read upload")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, r, fmt.Errorf("%w: no files", errBadRequest), "Failed to read upload")
		return
	}
	if len(headers) > maxFilesPerRequest {
		writeError(w, r, fmt.Errorf("%w: at most %d files per upload", errBadRequest, maxFilesPerRequest), "Failed to read upload")
		return
	}

	files := make([]model.Image, 0, len(headers))
	for _, fh := range headers {
		img, err := h.readFile(fh)
		if err != nil {
			writeError(w, r, err, "Failed to read upload")
			return
		}
		files = append(files, img)
	}

	var res capture.SelectResult
	if drop, _ := strconv.ParseBool(r.FormValue("drop")); drop {
		res, err = s.Pipeline.Drop(r.Context(), files)
	} else {
		res, err = s.Pipeline.SelectFiles(r.Context(), files)
	}
	if err != nil {
		writeError(w, r, err, "Failed to process files")
		return
	}

	status := http.StatusOK
	if len(res.Added) > 0 {
		status = http.StatusCreated
	}
	ui.JSON(w, r, status, filesResponse{SelectResult: res, Session: view(s)})
}

// readFile reads at most one byte over the limit so that oversized files are
// reported by validation with the proper message.
func (h *CaptureHandler) readFile(fh *multipart.FileHeader) (model.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return model.Image{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadSize+1))
	if err != nil {
		return model.Image{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}

	return model.Image{
		Data:       data,
		MimeType:   fh.Header.Get("Content-Type"),
		CreatedAt:  time.Now(),
		SourceName: fh.Filename,
	}, nil
}

type dragRequest struct {
	State string `json:"state"`
}

func (h *CaptureHandler) Drag(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var in dragRequest
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err, "Failed to update drop zone")
		return
	}

	switch in.State {
	case "enter":
		s.Pipeline.DragEnter()
	case "leave":
		s.Pipeline.DragLeave()
	default:
		writeError(w, r, fmt.Errorf("%w: state must be enter or leave", errBadRequest), "Failed to update drop zone")
		return
	}
	ui.JSON(w, r, http.StatusOK, view(s))
}

func (h *CaptureHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if !s.Pipeline.RemovePhoto(r.PathValue("pid")) {
		ui.JSON(w, r, http.StatusNotFound, errorResponse{Error: "photo not found"})
		return
	}
	ui.JSON(w, r, http.StatusOK, view(s))
}

type captionRequest struct {
	Caption string `json:"caption"`
}

func (h *CaptureHandler) Caption(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var in captionRequest
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err, "Failed to save caption")
		return
	}
	err = validation.ValidateCaption(in.Caption)
	if err != nil {
		writeError(w, r, err, "Failed to save caption")
		return
	}

	if !s.Pipeline.SetCaption(r.PathValue("pid"), in.Caption) {
		ui.JSON(w, r, http.StatusNotFound, errorResponse{Error: "photo not found"})
		return
	}
	ui.JSON(w, r, http.StatusOK, view(s))
}

// Submit posts the staged photos as a new update. Without a project id the last
// selected project is used, and the chosen project is remembered. Photos added
// while the update is being posted stay staged.
func (h *CaptureHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var in service.PostInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err, "Failed to post update")
		return
	}
	if in.ProjectID == 0 {
		in.ProjectID, _ = h.projectService.LastSelected(r.Context())
	}

	var update *model.Update
	err = s.Pipeline.Submit(r.Context(), func(ctx context.Context, staged []capture.Attachment) error {
		posted, err := h.updateService.Post(ctx, in, staged)
		update = posted
		return err
	})
	if err != nil {
		writeError(w, r, err, "Failed to post update")
		return
	}

	err = h.projectService.Select(r.Context(), update.ProjectID)
	if err != nil {
		slog.Warn("failed to remember selected project", "error", err, "project_id", update.ProjectID)
	}

	ui.JSON(w, r, http.StatusCreated, update)
}

// Blob serves the bytes behind a display URL while it is held.
func (h *CaptureHandler) Blob(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(r.PathValue("sid"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	img, ok := s.Pipeline.Registry().Open(r.PathValue("bid"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, err := w.Write(img.Data)
	if err != nil {
		slog.Debug("failed to write blob", "error", err)
	}
}
