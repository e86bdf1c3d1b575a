package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/halcyonlab/twin/internal/events"
	"github.com/halcyonlab/twin/internal/profile"
	"github.com/halcyonlab/twin/internal/storage"
)

// Manager holds the open form sessions for one user, one per section.
// Unlike an individual FormSession, Manager is safe for concurrent use.
type Manager struct {
	userID string
	store  storage.Storage
	sink   events.Sink
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[profile.Section]*FormSession

	// saveConcurrency caps parallel section saves in SaveAll
	saveConcurrency int64
}

// NewManager creates a session manager for a user.
func NewManager(userID string, store storage.Storage, sink events.Sink, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Manager{
		userID:          userID,
		store:           store,
		sink:            sink,
		logger:          logger,
		sessions:        make(map[profile.Section]*FormSession),
		saveConcurrency: 3,
	}
}

// Open returns the session for a section, creating it on first use.
func (m *Manager) Open(ctx context.Context, section profile.Section) (*FormSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[section]; ok {
		return s, nil
	}

	s, err := Open(ctx, Config{
		UserID:  m.userID,
		Section: section,
		Store:   m.store,
		Sink:    m.sink,
		Logger:  m.logger,
	})
	if err != nil {
		return nil, err
	}
	m.sessions[section] = s
	return s, nil
}

// Get returns the open session for a section, or nil if none is open.
func (m *Manager) Get(section profile.Section) *FormSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[section]
}

// OpenSections lists the sections with open sessions, sorted.
func (m *Manager) OpenSections() []profile.Section {
	m.mu.Lock()
	defer m.mu.Unlock()

	sections := make([]profile.Section, 0, len(m.sessions))
	for section := range m.sessions {
		sections = append(sections, section)
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i] < sections[j] })
	return sections
}

// SaveAll saves every open dirty session, a few sections at a time.
// Clean sessions are skipped. The first error is returned but remaining
// saves still run: one invalid tab should not strand the others.
func (m *Manager) SaveAll(ctx context.Context) error {
	m.mu.Lock()
	dirtySessions := make([]*FormSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.Status().Dirty.IsDirty {
			dirtySessions = append(dirtySessions, s)
		}
	}
	m.mu.Unlock()

	if len(dirtySessions) == 0 {
		return nil
	}

	sem := semaphore.NewWeighted(m.saveConcurrency)
	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	for _, s := range dirtySessions {
		if err := sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("save cancelled: %w", err)
		}
		wg.Add(1)
		go func(s *FormSession) {
			defer wg.Done()
			defer sem.Release(1)
			if err := s.Save(ctx); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				m.logger.Warn("section save failed",
					zap.String("section", string(s.Section())),
					zap.Error(err))
			}
		}(s)
	}
	wg.Wait()

	return firstErr
}

// Close closes every open session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for section, s := range m.sessions {
		s.Close()
		delete(m.sessions, section)
	}
}
