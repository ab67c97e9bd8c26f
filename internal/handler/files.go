package handler

import (
	"net/http"
	"path"
	"time"

	"github.com/templui/fliptrack/internal/storage"
)

// FilesHandler serves photos kept by the in-memory storage driver.
type FilesHandler struct {
	store *storage.MemoryStorage
}

func NewFilesHandler(store *storage.MemoryStorage) *FilesHandler {
	return &FilesHandler{
		store: store,
	}
}

func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := path.Clean(r.PathValue("path"))

	body, contentType, err := h.store.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, path.Base(name), time.Time{}, body)
}
