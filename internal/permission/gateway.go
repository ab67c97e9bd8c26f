// Package permission mediates camera and microphone access so that a denial
// becomes a recoverable result instead of a failure.
package permission

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/templui/fliptrack/internal/device"
)

const initProbeTimeout = 2 * time.Second

// Result is the outcome of a request. Err is one of the category errors when Success is false.
type Result struct {
	Capability device.Capability `json:"capability"`
	Success    bool              `json:"success"`
	Err        error             `json:"-"`
	Message    string            `json:"error,omitempty"`
}

type Gateway struct {
	devices device.MediaDevices
	table   ErrorTable

	mu     sync.RWMutex
	grants map[device.Capability]device.State
	errors map[device.Capability]string
}

type Option func(*Gateway)

// WithErrorTable swaps the raw-name mapping.
func WithErrorTable(t ErrorTable) Option {
	return func(g *Gateway) {
		g.table = t
	}
}

// NewGateway creates a gateway. devices may be nil when the environment has no media support.
func NewGateway(devices device.MediaDevices, opts ...Option) *Gateway {
	g := &Gateway{
		devices: devices,
		table:   DefaultErrorTable,
		grants:  make(map[device.Capability]device.State),
		errors:  make(map[device.Capability]string),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Init seeds the grant map from non-intrusive status queries. It is best effort
// and bounded by a short timeout so it never holds up startup.
func (g *Gateway) Init(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, initProbeTimeout)
	defer cancel()

	for _, c := range device.Capabilities {
		state := g.CheckStatus(ctx, c)
		g.mu.Lock()
		g.grants[c] = state
		g.mu.Unlock()
	}

	slog.Debug("permission states initialized", "grants", g.Grants())
}

func (g *Gateway) RequestCamera(ctx context.Context) Result {
	return g.Request(ctx, device.Camera)
}

func (g *Gateway) RequestMicrophone(ctx context.Context) Result {
	return g.Request(ctx, device.Microphone)
}

// Request probes access by acquiring a stream and releasing it immediately.
func (g *Gateway) Request(ctx context.Context, c device.Capability) Result {
	if g.devices == nil {
		return g.deny(c, ErrUnsupported)
	}

	stream, err := g.devices.Open(ctx, c)
	if err != nil {
		category := g.table.Classify(err)
		slog.Warn("media access failed", "capability", c, "error", err, "category", category)
		return g.deny(c, category)
	}

	closeErr := stream.Close()
	if closeErr != nil {
		slog.Warn("failed to release probe stream", "capability", c, "error", closeErr)
	}

	g.mu.Lock()
	g.grants[c] = device.StateGranted
	delete(g.errors, c)
	g.mu.Unlock()

	return Result{Capability: c, Success: true}
}

// CheckStatus queries the environment without prompting. It reports prompt when
// the environment cannot tell.
func (g *Gateway) CheckStatus(ctx context.Context, c device.Capability) device.State {
	if g.devices == nil {
		return device.StatePrompt
	}

	state, err := g.devices.Query(ctx, c)
	if err != nil {
		slog.Debug("could not check permission", "capability", c, "error", err)
		return device.StatePrompt
	}

	switch state {
	case device.StateGranted, device.StateDenied:
		return state
	}
	return device.StatePrompt
}

// State returns the last known grant state.
func (g *Gateway) State(c device.Capability) device.State {
	g.mu.RLock()
	defer g.mu.RUnlock()

	state, ok := g.grants[c]
	if !ok {
		return device.StatePrompt
	}
	return state
}

// LastError returns the message of the last failed request, if any.
func (g *Gateway) LastError(c device.Capability) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.errors[c]
}

func (g *Gateway) Grants() map[device.Capability]device.State {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[device.Capability]device.State, len(device.Capabilities))
	for _, c := range device.Capabilities {
		state, ok := g.grants[c]
		if !ok {
			state = device.StatePrompt
		}
		out[c] = state
	}
	return out
}

func (g *Gateway) deny(c device.Capability, category error) Result {
	msg := Message(c, category)

	g.mu.Lock()
	g.grants[c] = device.StateDenied
	g.errors[c] = msg
	g.mu.Unlock()

	return Result{Capability: c, Success: false, Err: category, Message: msg}
}
