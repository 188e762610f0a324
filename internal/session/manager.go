package session

import (
	"sync"
	"time"

	"netvisor/internal/domain"
)

// DefaultCleanupAge is the max-age threshold cleanup_old_sessions uses when
// the caller doesn't specify one.
const DefaultCleanupAge = 24 * time.Hour

// Publisher is the SSE fan-out collaborator; internal/hub.Hub satisfies
// this with its Broadcast method.
type Publisher interface {
	Broadcast(event interface{})
}

// Update carries a progress or terminal-status change for one session,
// both the wire shape this package broadcasts over SSE and the argument to
// UpdateSession.
type Update struct {
	SessionID    string               `json:"session_id"`
	DaemonID     string               `json:"daemon_id"`
	Status       domain.SessionStatus `json:"status"`
	Progress     *domain.Progress     `json:"progress,omitempty"`
	ErrorMessage *string              `json:"error_message,omitempty"`
}

// Manager is the Discovery Session Manager (§4.4): at most one Running
// session per daemon, tracked under sessions and daemon_sessions, with
// every mutation broadcast to SSE subscribers.
type Manager struct {
	publisher Publisher

	mu             sync.RWMutex
	sessions       map[string]*domain.DiscoverySession
	daemonSessions map[string]string // daemon_id -> session_id
}

// NewManager builds an empty Manager publishing through pub.
func NewManager(pub Publisher) *Manager {
	return &Manager{
		publisher:      pub,
		sessions:       make(map[string]*domain.DiscoverySession),
		daemonSessions: make(map[string]string),
	}
}

// CreateSession starts a new Running session for daemonID. It fails with
// domain.ErrSessionActive if that daemon already has a session in flight —
// the "at most one session per discovery_type in flight per daemon"
// invariant, simplified per spec's Open Question decision to one session
// per daemon regardless of discovery_type (see DESIGN.md).
func (m *Manager) CreateSession(sessionID, daemonID string, discoveryType domain.DiscoveryType) (*domain.DiscoverySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, active := m.daemonSessions[daemonID]; active {
		return nil, domain.ErrSessionActive
	}

	s := domain.NewDiscoverySession(sessionID, daemonID, discoveryType)
	m.sessions[sessionID] = s
	m.daemonSessions[daemonID] = sessionID

	m.publish(Update{SessionID: s.SessionID, DaemonID: s.DaemonID, Status: s.Status})
	return s, nil
}

// UpdateSession applies a progress or status change and broadcasts it.
// Reaching a terminal status releases the daemon's session slot so a new
// discovery can be requested.
func (m *Manager) UpdateSession(update Update) error {
	m.mu.Lock()
	s, ok := m.sessions[update.SessionID]
	if !ok {
		m.mu.Unlock()
		return domain.ErrSessionNotFound
	}

	if update.Progress != nil {
		s.Progress = update.Progress
		s.ScannedCount = update.Progress.ScannedCount
		s.DiscoveredCount = update.Progress.DiscoveredCount
	}
	if update.Status != "" {
		s.Status = update.Status
	}
	if update.ErrorMessage != nil {
		s.ErrorMessage = update.ErrorMessage
	}
	if s.Status.Terminal() && s.CompletedAt == nil {
		now := time.Now()
		s.CompletedAt = &now
		delete(m.daemonSessions, s.DaemonID)
	}
	m.mu.Unlock()

	m.publish(Update{
		SessionID:    s.SessionID,
		DaemonID:     s.DaemonID,
		Status:       s.Status,
		Progress:     s.Progress,
		ErrorMessage: s.ErrorMessage,
	})
	return nil
}

// CancelSession marks a session Cancelled, releases its daemon slot, and
// returns the daemon id so the caller can forward the cancellation to the
// daemon itself.
func (m *Manager) CancelSession(sessionID string) (daemonID string, err error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return "", domain.ErrSessionNotFound
	}

	if !s.Status.Terminal() {
		s.Status = domain.SessionCancelled
		now := time.Now()
		s.CompletedAt = &now
	}
	delete(m.daemonSessions, s.DaemonID)
	daemonID = s.DaemonID
	m.mu.Unlock()

	m.publish(Update{SessionID: s.SessionID, DaemonID: s.DaemonID, Status: s.Status, Progress: s.Progress})
	return daemonID, nil
}

// GetSession returns the session, if known.
func (m *Manager) GetSession(sessionID string) (*domain.DiscoverySession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// IsDaemonDiscovering reports whether daemonID currently has a Running
// session.
func (m *Manager) IsDaemonDiscovering(daemonID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.daemonSessions[daemonID]
	return ok
}

// CleanupOldSessions removes terminal sessions completed more than maxAge
// ago, returning the number removed. A non-positive maxAge uses
// DefaultCleanupAge.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = DefaultCleanupAge
	}
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.Status.Terminal() && s.CompletedAt != nil && s.CompletedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) publish(u Update) {
	if m.publisher != nil {
		m.publisher.Broadcast(u)
	}
}
