package capture

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/templui/fliptrack/internal/model"
)

// Registry hands out display URLs for in-memory image data. Every Acquire must be
// paired with exactly one Release; ReleaseAll drops whatever is still outstanding.
type Registry struct {
	prefix string

	mu       sync.Mutex
	blobs    map[string]model.Image
	acquired int
	released int
}

func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		blobs:  make(map[string]model.Image),
	}
}

// Acquire stores img and returns the URL it is served under.
func (r *Registry) Acquire(img model.Image) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.blobs[id] = img
	r.acquired++
	return r.prefix + id
}

// Release invalidates url. It reports false if the URL is unknown or already released.
func (r *Registry) Release(url string) bool {
	id, ok := strings.CutPrefix(url, r.prefix)
	if !ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blobs[id]; !ok {
		return false
	}
	delete(r.blobs, id)
	r.released++
	return true
}

// Open returns the image behind a blob id.
func (r *Registry) Open(id string) (model.Image, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	img, ok := r.blobs[id]
	return img, ok
}

// ReleaseAll releases every outstanding URL and returns how many there were.
func (r *Registry) ReleaseAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.blobs)
	r.blobs = make(map[string]model.Image)
	r.released += n
	return n
}

func (r *Registry) Acquired() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acquired
}

func (r *Registry) Released() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

func (r *Registry) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blobs)
}
