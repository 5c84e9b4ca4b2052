package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/hairizuan-noorazman/ui-bdd/logger"
)

// Manager owns one browser session per worker. A session is only ever
// returned to the worker it was created for.
type Manager struct {
	mu       sync.Mutex
	sessions map[WorkerID]Session

	launcher Launcher
	options  Options
	logger   logger.Logger
}

// NewManager creates a manager that starts sessions through launcher.
func NewManager(launcher Launcher, opts Options, log logger.Logger) *Manager {
	return &Manager{
		sessions: make(map[WorkerID]Session),
		launcher: launcher,
		options:  opts,
		logger:   log.WithField("driver_backend", launcher.Name()),
	}
}

// InitializeDriver starts a browser of the named kind for worker. Any session
// the worker already holds is released first. An unknown browser name fails
// with ErrUnsupportedBrowser before anything is launched or released.
func (m *Manager) InitializeDriver(ctx context.Context, worker WorkerID, browser string) (Session, error) {
	kind, err := ParseKind(browser)
	if err != nil {
		return nil, err
	}

	m.QuitDriver(ctx, worker)

	m.logger.Info(ctx, "initializing driver", map[string]interface{}{
		"worker":  string(worker),
		"browser": string(kind),
	})

	session, err := m.launcher.Launch(ctx, kind, m.options.ForKind(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", kind, err)
	}

	m.mu.Lock()
	previous, raced := m.sessions[worker]
	m.sessions[worker] = session
	m.mu.Unlock()

	if raced {
		m.close(ctx, worker, previous)
	}

	m.logger.Info(ctx, "driver initialized", map[string]interface{}{
		"worker":  string(worker),
		"browser": string(kind),
	})
	return session, nil
}

// GetDriver returns the session held by worker.
func (m *Manager) GetDriver(worker WorkerID) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[worker]
	return s, ok
}

// QuitDriver closes and forgets the worker's session. It is a no-op when the
// worker holds none. Close errors are logged only.
func (m *Manager) QuitDriver(ctx context.Context, worker WorkerID) {
	m.mu.Lock()
	s, ok := m.sessions[worker]
	delete(m.sessions, worker)
	m.mu.Unlock()

	if !ok {
		return
	}
	m.close(ctx, worker, s)
}

// QuitAll releases every remaining session.
func (m *Manager) QuitAll(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[WorkerID]Session)
	m.mu.Unlock()

	for worker, s := range sessions {
		m.close(ctx, worker, s)
	}
	if len(sessions) > 0 {
		m.logger.Info(ctx, "released remaining drivers", map[string]interface{}{
			"count": len(sessions),
		})
	}
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) close(ctx context.Context, worker WorkerID, s Session) {
	if err := s.Close(); err != nil {
		m.logger.Warn(ctx, "failed to quit driver", map[string]interface{}{
			"worker": string(worker),
			"error":  err.Error(),
		})
		return
	}
	m.logger.Info(ctx, "driver quit", map[string]interface{}{
		"worker": string(worker),
	})
}
