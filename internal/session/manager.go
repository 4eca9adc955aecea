package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutricionista-backend/internal/logger"
)

const minEvictionInterval = time.Minute

// Manager hands out one Controller per session and drops controllers that sit idle.
type Manager struct {
	backend Backend
	opts    Options
	idleTTL time.Duration

	mu          sync.Mutex
	controllers map[uuid.UUID]*Controller
	stopChan    chan struct{}
}

func NewManager(backend Backend, opts Options, idleTTL time.Duration) *Manager {
	return &Manager{
		backend:     backend,
		opts:        opts,
		idleTTL:     idleTTL,
		controllers: make(map[uuid.UUID]*Controller),
		stopChan:    make(chan struct{}),
	}
}

// Get returns the session's controller, creating it on first use. Handing out a
// controller counts as use for idle eviction.
func (m *Manager) Get(id uuid.UUID) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.controllers[id]
	if !ok {
		c = NewController(id, m.backend, m.opts)
		m.controllers[id] = c
	} else {
		c.touch()
	}
	return c
}

// Do runs fn against the session's live controller. If the controller fn received
// was evicted in the meantime, fn runs again against its replacement.
func (m *Manager) Do(id uuid.UUID, fn func(c *Controller) error) error {
	for {
		err := fn(m.Get(id))
		if !errors.Is(err, ErrRetired) {
			return err
		}
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.controllers)
}

// EvictIdle retires and drops controllers unused since now-idleTTL. Controllers with
// a call in flight are kept. Returns how many were dropped.
func (m *Manager) EvictIdle(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, c := range m.controllers {
		if !c.retireIfIdle(now.Add(-m.idleTTL)) {
			continue
		}
		delete(m.controllers, id)
		evicted++
	}
	return evicted
}

func (m *Manager) Start() {
	if m.idleTTL <= 0 {
		return
	}

	interval := m.idleTTL / 4
	if interval < minEvictionInterval {
		interval = minEvictionInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopChan:
				return
			case now := <-ticker.C:
				if n := m.EvictIdle(now); n > 0 {
					logger.Info("evicted idle sessions", "count", n, "remaining", m.Len())
				}
			}
		}
	}()
}

func (m *Manager) Stop() {
	select {
	case <-m.stopChan:
		return
	default:
		close(m.stopChan)
	}
}
