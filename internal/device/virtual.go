package device

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/templui/fliptrack/internal/model"
)

// Virtual is a synthetic camera producing test-pattern frames. Failures and
// permission states can be scripted for development and tests.
type Virtual struct {
	Width  int
	Height int

	mu                sync.Mutex
	failures          map[Capability]string
	states            map[Capability]State
	statusUnavailable bool
	open              int
	opened            int
	frames            int
}

func NewVirtual() *Virtual {
	return &Virtual{
		Width:    640,
		Height:   480,
		failures: make(map[Capability]string),
		states:   make(map[Capability]State),
	}
}

// Fail makes Open for c fail with the given raw name. An empty name clears the failure.
func (v *Virtual) Fail(c Capability, name string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if name == "" {
		delete(v.failures, c)
		return
	}
	v.failures[c] = name
}

func (v *Virtual) SetState(c Capability, s State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.states[c] = s
}

// HideStatus makes Query fail as if the environment had no permission API.
func (v *Virtual) HideStatus() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statusUnavailable = true
}

func (v *Virtual) Query(ctx context.Context, c Capability) (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.statusUnavailable {
		return "", ErrStatusUnavailable
	}
	s, ok := v.states[c]
	if !ok {
		return StatePrompt, nil
	}
	return s, nil
}

func (v *Virtual) Open(ctx context.Context, c Capability) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if name, ok := v.failures[c]; ok {
		return nil, &Error{Name: name}
	}

	v.open++
	v.opened++
	return &virtualStream{device: v}, nil
}

// OpenStreams reports how many streams are currently held.
func (v *Virtual) OpenStreams() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

// Opened reports how many streams were ever acquired.
func (v *Virtual) Opened() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.opened
}

type virtualStream struct {
	device *Virtual
	closed bool
}

func (s *virtualStream) Frame(ctx context.Context) (model.Image, error) {
	if err := ctx.Err(); err != nil {
		return model.Image{}, err
	}

	s.device.mu.Lock()
	if s.closed {
		s.device.mu.Unlock()
		return model.Image{}, ErrStreamClosed
	}
	s.device.frames++
	n := s.device.frames
	w, h := s.device.Width, s.device.Height
	s.device.mu.Unlock()

	data, err := testPattern(w, h, n)
	if err != nil {
		return model.Image{}, fmt.Errorf("render test pattern: %w", err)
	}

	return model.Image{
		Data:      data,
		MimeType:  "image/png",
		CreatedAt: time.Now(),
	}, nil
}

func (s *virtualStream) Close() error {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()

	if !s.closed {
		s.closed = true
		s.device.open--
	}
	return nil
}

// testPattern draws vertical colour bars shifted by the frame number.
func testPattern(w, h, frame int) ([]byte, error) {
	bars := []color.RGBA{
		{255, 255, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
		{0, 255, 0, 255},
		{255, 0, 255, 255},
		{255, 0, 0, 255},
		{0, 0, 255, 255},
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	barWidth := max(1, w/len(bars))
	for x := 0; x < w; x++ {
		c := bars[(x/barWidth+frame)%len(bars)]
		for y := 0; y < h; y++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
