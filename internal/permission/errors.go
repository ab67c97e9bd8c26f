package permission

import (
	"context"
	"errors"

	"github.com/templui/fliptrack/internal/device"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrDeviceBusy       = errors.New("device busy")
	ErrUnsupported      = errors.New("capability not supported")
)

// ErrorTable maps raw environment failure names onto the closed set of categories above.
type ErrorTable map[string]error

var DefaultErrorTable = ErrorTable{
	device.NameNotAllowed:      ErrPermissionDenied,
	device.NameSecurity:        ErrPermissionDenied,
	"PermissionDeniedError":    ErrPermissionDenied,
	device.NameNotFound:        ErrDeviceNotFound,
	device.NameOverconstrained: ErrDeviceNotFound,
	"DevicesNotFoundError":     ErrDeviceNotFound,
	device.NameNotReadable:     ErrDeviceBusy,
	device.NameAbort:           ErrDeviceBusy,
	"TrackStartError":          ErrDeviceBusy,
	device.NameNotSupported:    ErrUnsupported,
}

// Classify returns the category for a failure from MediaDevices.Open.
// Unknown names fall back to ErrPermissionDenied.
func (t ErrorTable) Classify(err error) error {
	var raw *device.Error
	if errors.As(err, &raw) {
		if category, ok := t[raw.Name]; ok {
			return category
		}
		return ErrPermissionDenied
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrDeviceBusy
	}
	return ErrPermissionDenied
}

var messages = map[device.Capability]map[error]string{
	device.Camera: {
		ErrPermissionDenied: "Camera permission denied. Please enable camera access in your browser settings.",
		ErrDeviceNotFound:   "No camera found on this device.",
		ErrDeviceBusy:       "Camera is already in use by another application.",
		ErrUnsupported:      "Camera not supported on this device.",
	},
	device.Microphone: {
		ErrPermissionDenied: "Microphone permission denied. Please enable microphone access in your browser settings.",
		ErrDeviceNotFound:   "No microphone found on this device.",
		ErrDeviceBusy:       "Microphone is already in use by another application.",
		ErrUnsupported:      "Microphone not supported on this device.",
	},
}

// Message returns the user-facing message for a category.
func Message(c device.Capability, category error) string {
	if msg, ok := messages[c][category]; ok {
		return msg
	}
	switch c {
	case device.Camera:
		return "Camera access denied"
	case device.Microphone:
		return "Microphone access denied"
	}
	return "Access denied"
}
