// Package device abstracts the media environment (camera, microphone) the app captures from.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/templui/fliptrack/internal/model"
)

type Capability string

const (
	Camera     Capability = "camera"
	Microphone Capability = "microphone"
)

var Capabilities = []Capability{Camera, Microphone}

type State string

const (
	StateGranted State = "granted"
	StateDenied  State = "denied"
	StatePrompt  State = "prompt"
)

// Raw failure names as reported by the capture environment (browser DOMException names).
const (
	NameNotAllowed      = "NotAllowedError"
	NameNotFound        = "NotFoundError"
	NameNotReadable     = "NotReadableError"
	NameNotSupported    = "NotSupportedError"
	NameOverconstrained = "OverconstrainedError"
	NameSecurity        = "SecurityError"
	NameAbort           = "AbortError"
)

var (
	ErrStatusUnavailable = errors.New("permission status unavailable")
	ErrStreamClosed      = errors.New("stream closed")
	ErrNoFrame           = errors.New("no frame available")
)

// Error is a raw failure reported by the environment. Name identifies the failure kind.
type Error struct {
	Name    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// MediaDevices is the capture environment.
type MediaDevices interface {
	// Query reports the permission state without prompting.
	Query(ctx context.Context, c Capability) (State, error)

	// Open acquires a live stream. Callers must Close it.
	Open(ctx context.Context, c Capability) (Stream, error)
}

// Stream is a live media stream.
type Stream interface {
	// Frame grabs one still frame.
	Frame(ctx context.Context) (model.Image, error)

	// Close releases the stream. Closing twice is a no-op.
	Close() error
}

func ParseCapability(s string) (Capability, bool) {
	for _, c := range Capabilities {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
