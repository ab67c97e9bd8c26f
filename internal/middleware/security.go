package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/templui/fliptrack/internal/ctxkeys"
)

// SecurityHeaders sets the standard hardening headers and a nonce based CSP.
// Photos may live on the configured S3 endpoint, so it is allowed as an image source.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(self), microphone=(self), geolocation=()")

		imgSrc := []string{"'self'", "data:", "blob:", "https://images.unsplash.com"}
		cfg := ctxkeys.Config(r.Context())
		if cfg != nil && cfg.S3Endpoint != "" {
			imgSrc = append(imgSrc, cfg.S3Endpoint)
		}

		nonce := GetNonce(r.Context())
		src := "'self'"
		if nonce != "" {
			src = fmt.Sprintf("'self' 'nonce-%s'", nonce)
		}

		h.Set("Content-Security-Policy", fmt.Sprintf(
			"default-src 'self'; script-src %s; style-src %s; img-src %s; frame-ancestors 'none'; base-uri 'self'",
			src, src, strings.Join(imgSrc, " "),
		))

		if cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
