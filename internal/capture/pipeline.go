// Package capture stages photos for an update: camera sessions, file selection,
// drag and drop, and the caption-editable attachment list.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/templui/fliptrack/internal/device"
	"github.com/templui/fliptrack/internal/imaging"
	"github.com/templui/fliptrack/internal/model"
	"github.com/templui/fliptrack/internal/permission"
)

type State string

const (
	StateIdle           State = "idle"
	StateCameraOpen     State = "camera_open"
	StatePermissionHelp State = "permission_help"
)

type Source string

const (
	SourceCamera Source = "camera"
	SourceFile   Source = "file"
)

var (
	ErrCameraNotOpen = errors.New("camera is not open")
	ErrClosed        = errors.New("capture pipeline closed")
	// ErrSubmitInProgress is returned by Submit while another submission runs.
	ErrSubmitInProgress = errors.New("a submission is already in progress")
)

type Options struct {
	// SingleShot returns to idle after each capture instead of keeping the camera open.
	SingleShot  bool
	Codec       imaging.Options
	MaxFileSize int64
	// URLPrefix is prepended to display URLs.
	URLPrefix string
}

// Attachment is a staged photo. Image holds the compressed data, URL its display URL.
type Attachment struct {
	ID      string      `json:"id"`
	URL     string      `json:"url"`
	Caption string      `json:"caption"`
	Source  Source      `json:"source"`
	TakenAt time.Time   `json:"takenAt"`
	Image   model.Image `json:"-"`
}

type Rejection struct {
	Name   string   `json:"name"`
	Errors []string `json:"errors"`
}

type SelectResult struct {
	Added    []Attachment `json:"added"`
	Rejected []Rejection  `json:"rejected"`
}

type Pipeline struct {
	gateway  *permission.Gateway
	devices  device.MediaDevices
	notifier Notifier
	registry *Registry
	opts     Options

	mu          sync.Mutex
	state       State
	stream      device.Stream
	attachments []Attachment
	session     int
	permMessage string
	highlighted bool
	submitting  bool
	closed      bool
}

func New(gateway *permission.Gateway, devices device.MediaDevices, notifier Notifier, opts Options) *Pipeline {
	if notifier == nil {
		notifier = discard{}
	}
	return &Pipeline{
		gateway:  gateway,
		devices:  devices,
		notifier: notifier,
		registry: NewRegistry(opts.URLPrefix),
		opts:     opts,
		state:    StateIdle,
	}
}

// OpenCamera probes camera permission and starts a live session. A denial is not
// an error: the pipeline moves to the permission help state and the result carries the message.
func (p *Pipeline) OpenCamera(ctx context.Context) (permission.Result, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return permission.Result{}, ErrClosed
	}
	if p.state == StateCameraOpen {
		p.mu.Unlock()
		return permission.Result{Capability: device.Camera, Success: true}, nil
	}
	p.permMessage = ""
	p.mu.Unlock()

	res := p.gateway.RequestCamera(ctx)
	if !res.Success {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return permission.Result{}, ErrClosed
		}
		p.state = StatePermissionHelp
		p.permMessage = res.Message
		p.mu.Unlock()

		p.notifier.Notify(Notice{Level: LevelError, Message: res.Message})
		return res, nil
	}

	stream, err := p.devices.Open(ctx, device.Camera)
	if err != nil {
		p.notifier.Notify(Notice{Level: LevelError, Message: "Failed to open camera"})
		return permission.Result{}, fmt.Errorf("open camera: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.state == StateCameraOpen {
		closeStream(stream)
		if p.closed {
			return permission.Result{}, ErrClosed
		}
		return res, nil
	}
	p.stream = stream
	p.state = StateCameraOpen
	p.session = 0
	return res, nil
}

// Capture grabs one frame from the live session, compresses it and appends it.
func (p *Pipeline) Capture(ctx context.Context) (Attachment, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Attachment{}, ErrClosed
	}
	if p.state != StateCameraOpen {
		p.mu.Unlock()
		return Attachment{}, ErrCameraNotOpen
	}
	stream := p.stream
	p.mu.Unlock()

	frame, err := stream.Frame(ctx)
	if err != nil {
		p.notifier.Notify(Notice{Level: LevelError, Message: "Failed to capture photo. Please try again."})
		return Attachment{}, fmt.Errorf("grab frame: %w", err)
	}
	if frame.SourceName == "" {
		frame.SourceName = fmt.Sprintf("capture-%d.jpg", time.Now().UnixMilli())
	}

	compressed, err := imaging.Compress(frame, p.opts.Codec)
	if err != nil {
		p.notifier.Notify(Notice{Level: LevelError, Message: "Failed to capture photo. Please try again."})
		return Attachment{}, fmt.Errorf("compress frame: %w", err)
	}

	url := p.registry.Acquire(compressed)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.registry.Release(url)
		return Attachment{}, ErrClosed
	}
	a := p.appendLocked(compressed, url, SourceCamera)
	if p.stream == stream && p.state == StateCameraOpen {
		p.session++
		if p.opts.SingleShot {
			p.stopLocked()
		}
	}
	p.mu.Unlock()

	if p.opts.SingleShot {
		p.notifier.Notify(Notice{Level: LevelSuccess, Message: "Photo captured successfully!"})
	}
	return a, nil
}

// CloseCamera ends the live session and returns how many photos it produced.
// Leaving the permission help state is also allowed.
func (p *Pipeline) CloseCamera() (int, error) {
	p.mu.Lock()
	switch p.state {
	case StatePermissionHelp:
		p.state = StateIdle
		p.mu.Unlock()
		return 0, nil
	case StateCameraOpen:
	default:
		p.mu.Unlock()
		return 0, ErrCameraNotOpen
	}

	n := p.session
	p.stopLocked()
	p.session = 0
	p.mu.Unlock()

	if n > 0 {
		p.notifier.Notify(Notice{Level: LevelSuccess, Message: pluralize(n, "photo") + " captured"})
	}
	return n, nil
}

// SelectFiles validates, compresses and appends each file in order. Invalid
// files are reported individually and never abort the batch.
func (p *Pipeline) SelectFiles(ctx context.Context, files []model.Image) (SelectResult, error) {
	var res SelectResult

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return res, ErrClosed
	}

	for i, f := range files {
		name := f.SourceName
		if name == "" {
			name = fmt.Sprintf("file %d", i+1)
		}

		if err := ctx.Err(); err != nil {
			res.Rejected = append(res.Rejected, Rejection{Name: name, Errors: []string{"Upload cancelled."}})
			continue
		}

		v := imaging.Validate(f, p.opts.MaxFileSize)
		if !v.Valid {
			res.Rejected = append(res.Rejected, Rejection{Name: name, Errors: v.Errors})
			p.notifier.Notify(Notice{Level: LevelError, Message: name + ": " + strings.Join(v.Errors, " ")})
			continue
		}

		compressed, err := imaging.Compress(f, p.opts.Codec)
		if err != nil {
			slog.Warn("failed to compress selected file", "name", name, "error", err)
			msg := "Error processing image. Please try again."
			res.Rejected = append(res.Rejected, Rejection{Name: name, Errors: []string{msg}})
			p.notifier.Notify(Notice{Level: LevelError, Message: name + ": " + msg})
			continue
		}

		url := p.registry.Acquire(compressed)

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			p.registry.Release(url)
			return res, ErrClosed
		}
		a := p.appendLocked(compressed, url, SourceFile)
		p.mu.Unlock()

		res.Added = append(res.Added, a)
	}

	switch n := len(res.Added); {
	case n == 1:
		p.notifier.Notify(Notice{Level: LevelSuccess, Message: "Image uploaded successfully!"})
	case n > 1:
		p.notifier.Notify(Notice{Level: LevelSuccess, Message: fmt.Sprintf("%d images uploaded successfully!", n)})
	}
	return res, nil
}

// RemovePhoto drops the attachment and releases its display URL.
func (p *Pipeline) RemovePhoto(id string) bool {
	p.mu.Lock()
	idx := p.indexLocked(id)
	if idx < 0 {
		p.mu.Unlock()
		return false
	}
	url := p.attachments[idx].URL
	p.attachments = append(p.attachments[:idx], p.attachments[idx+1:]...)
	p.mu.Unlock()

	p.registry.Release(url)
	p.notifier.Notify(Notice{Level: LevelInfo, Message: "Photo removed"})
	return true
}

func (p *Pipeline) SetCaption(id, caption string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.indexLocked(id)
	if idx < 0 {
		return false
	}
	p.attachments[idx].Caption = caption
	return true
}

func (p *Pipeline) DragEnter() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.highlighted = true
}

func (p *Pipeline) DragLeave() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.highlighted = false
}

// Drop clears the drop zone highlight and selects the dropped files.
func (p *Pipeline) Drop(ctx context.Context, files []model.Image) (SelectResult, error) {
	p.DragLeave()
	return p.SelectFiles(ctx, files)
}

// Clear empties the attachment list, releasing every display URL. It is used after
// the attachments were submitted.
func (p *Pipeline) Clear() int {
	p.mu.Lock()
	staged := p.attachments
	p.attachments = nil
	p.mu.Unlock()

	for _, a := range staged {
		p.registry.Release(a.URL)
	}
	return len(staged)
}

// Take removes the attachments with the given ids and releases their display
// URLs. Attachments staged after the ids were read are left in place.
func (p *Pipeline) Take(ids []string) []Attachment {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	p.mu.Lock()
	var taken []Attachment
	kept := p.attachments[:0]
	for _, a := range p.attachments {
		if want[a.ID] {
			taken = append(taken, a)
			continue
		}
		kept = append(kept, a)
	}
	clear(p.attachments[len(kept):])
	p.attachments = kept
	p.mu.Unlock()

	for _, a := range taken {
		p.registry.Release(a.URL)
	}
	return taken
}

// Submit hands the staged attachments to post and, once post succeeds, removes
// exactly those attachments. Photos staged while post runs stay for the next
// update. A failed post keeps everything. Only one Submit runs at a time.
func (p *Pipeline) Submit(ctx context.Context, post func(context.Context, []Attachment) error) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.submitting {
		p.mu.Unlock()
		return ErrSubmitInProgress
	}
	p.submitting = true
	staged := make([]Attachment, len(p.attachments))
	copy(staged, p.attachments)
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.submitting = false
		p.mu.Unlock()
	}()

	err := post(ctx, staged)
	if err != nil {
		return err
	}

	ids := make([]string, len(staged))
	for i, a := range staged {
		ids[i] = a.ID
	}
	p.Take(ids)
	return nil
}

// Close stops the camera and releases every outstanding display URL. Results
// that arrive afterwards are discarded.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.stopLocked()
	p.attachments = nil
	p.mu.Unlock()

	p.registry.ReleaseAll()
}

// Attachments returns the staged photos in order.
func (p *Pipeline) Attachments() []Attachment {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Attachment, len(p.attachments))
	copy(out, p.attachments)
	return out
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SessionCount is the number of photos taken since the camera was opened.
func (p *Pipeline) SessionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// PermissionMessage is the denial shown in the permission help state.
func (p *Pipeline) PermissionMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permMessage
}

func (p *Pipeline) Highlighted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.highlighted
}

func (p *Pipeline) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Pipeline) Registry() *Registry {
	return p.registry
}

func (p *Pipeline) appendLocked(img model.Image, url string, source Source) Attachment {
	a := Attachment{
		ID:      uuid.NewString(),
		URL:     url,
		Source:  source,
		TakenAt: img.CreatedAt,
		Image:   img,
	}
	if a.TakenAt.IsZero() {
		a.TakenAt = time.Now()
	}
	p.attachments = append(p.attachments, a)
	return a
}

func (p *Pipeline) indexLocked(id string) int {
	for i, a := range p.attachments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (p *Pipeline) stopLocked() {
	if p.stream != nil {
		closeStream(p.stream)
		p.stream = nil
	}
	p.state = StateIdle
}

func closeStream(s device.Stream) {
	if err := s.Close(); err != nil {
		slog.Warn("failed to release camera stream", "error", err)
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
