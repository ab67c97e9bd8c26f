package device

import (
	"context"
	"sync"
	"time"

	"github.com/templui/fliptrack/internal/model"
)

// Relay is fed by a remote client that owns the real hardware. The client reports
// the outcome of its own media request and pushes preview frames; Relay replays them.
type Relay struct {
	mu       sync.Mutex
	outcomes map[Capability]string // raw failure name, "" when access succeeded
	frame    *model.Image
	open     int
}

func NewRelay() *Relay {
	return &Relay{
		outcomes: make(map[Capability]string),
	}
}

// Report records the client's media request outcome. An empty name means access was granted.
func (r *Relay) Report(c Capability, failureName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[c] = failureName
}

// PushFrame replaces the latest preview frame.
func (r *Relay) PushFrame(img model.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now()
	}
	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	img.Data = data
	r.frame = &img
}

func (r *Relay) Query(ctx context.Context, c Capability) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcome, ok := r.outcomes[c]
	switch {
	case !ok:
		return "", ErrStatusUnavailable
	case outcome == "":
		return StateGranted, nil
	case outcome == NameNotAllowed || outcome == NameSecurity:
		return StateDenied, nil
	}
	return StatePrompt, nil
}

func (r *Relay) Open(ctx context.Context, c Capability) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	outcome, ok := r.outcomes[c]
	if !ok {
		return nil, &Error{Name: NameNotFound, Message: "no media client connected"}
	}
	if outcome != "" {
		return nil, &Error{Name: outcome}
	}

	r.open++
	return &relayStream{relay: r}, nil
}

// OpenStreams reports how many streams are currently held.
func (r *Relay) OpenStreams() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

type relayStream struct {
	relay  *Relay
	closed bool
}

func (s *relayStream) Frame(ctx context.Context) (model.Image, error) {
	if err := ctx.Err(); err != nil {
		return model.Image{}, err
	}

	s.relay.mu.Lock()
	defer s.relay.mu.Unlock()

	if s.closed {
		return model.Image{}, ErrStreamClosed
	}
	if s.relay.frame == nil {
		return model.Image{}, ErrNoFrame
	}

	frame := *s.relay.frame
	frame.Data = append([]byte(nil), frame.Data...)
	return frame, nil
}

func (s *relayStream) Close() error {
	s.relay.mu.Lock()
	defer s.relay.mu.Unlock()

	if !s.closed {
		s.closed = true
		s.relay.open--
	}
	return nil
}
