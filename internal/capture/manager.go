package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/templui/fliptrack/internal/device"
	"github.com/templui/fliptrack/internal/permission"
)

// Session is one pipeline plus the notices it produced.
type Session struct {
	ID        string
	Pipeline  *Pipeline
	Notices   *NoticeLog
	CreatedAt time.Time

	lastSeen time.Time
}

// Manager keeps the live pipelines of the HTTP surface, keyed by session id.
type Manager struct {
	gateway *permission.Gateway
	devices device.MediaDevices
	opts    Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager. opts.URLPrefix is the route prefix under which
// each session's display URLs are served.
func NewManager(gateway *permission.Gateway, devices device.MediaDevices, opts Options) *Manager {
	if opts.URLPrefix == "" {
		opts.URLPrefix = "/blobs/"
	}
	return &Manager{
		gateway:  gateway,
		devices:  devices,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Start() *Session {
	id := uuid.NewString()
	notices := &NoticeLog{}

	opts := m.opts
	opts.URLPrefix = m.opts.URLPrefix + id + "/"

	now := time.Now()
	s := &Session{
		ID:        id,
		Pipeline:  New(m.gateway, m.devices, notices, opts),
		Notices:   notices,
		CreatedAt: now,
		lastSeen:  now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if ok {
		s.lastSeen = time.Now()
	}
	return s, ok
}

// End closes and forgets a session.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Pipeline.Close()
	}
	return ok
}

// Prune ends sessions not seen within idle and returns how many were ended.
func (m *Manager) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Pipeline.Close()
	}
	return len(stale)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll ends every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Pipeline.Close()
	}
}
