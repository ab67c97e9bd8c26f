package handler

import (
	"log/slog"
	"net/http"
)

const robots = `User-agent: *
Disallow: /app/
Disallow: /share/
Disallow: /blobs/
Disallow: /files/
`

type SEOHandler struct{}

func NewSEOHandler() *SEOHandler {
	return &SEOHandler{}
}

// Robots keeps crawlers away from project data and share links.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(robots))
	if err != nil {
		slog.Debug("failed to write robots.txt", "error", err)
	}
}
