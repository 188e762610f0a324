package domain

import "time"

// SessionStatus is the lifecycle state of a DiscoverySession.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionCancelled SessionStatus = "cancelled"
)

// Terminal reports whether this status is one of the three terminal states.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionFailed || s == SessionCancelled
}

// Phase is the current scanning phase carried on a progress update.
type Phase string

const (
	PhaseScanning Phase = "scanning"
)

// Progress is a scanned/discovered counter pair shared with the scanner.
// ScannedCount and DiscoveredCount are monotonic for the life of a session.
type Progress struct {
	Phase           Phase `json:"phase"`
	ScannedCount    int   `json:"scanned"`
	Total           int   `json:"total"`
	DiscoveredCount int   `json:"discovered"`
}

// DiscoverySession tracks one bounded discovery run. At most one Running
// session may exist per daemon — enforced by internal/session, not here.
type DiscoverySession struct {
	SessionID      string        `json:"session_id"`
	DaemonID       string        `json:"daemon_id"`
	DiscoveryType  DiscoveryType `json:"discovery_type"`
	Status         SessionStatus `json:"status"`
	Progress       *Progress     `json:"progress,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	ErrorMessage   *string       `json:"error_message,omitempty"`
	ScannedCount   int           `json:"scanned_count"`
	DiscoveredCount int          `json:"discovered_count"`
}

// NewDiscoverySession starts a session in the Running state.
func NewDiscoverySession(sessionID, daemonID string, discoveryType DiscoveryType) *DiscoverySession {
	return &DiscoverySession{
		SessionID:     sessionID,
		DaemonID:      daemonID,
		DiscoveryType: discoveryType,
		Status:        SessionRunning,
		StartedAt:     time.Now(),
	}
}

// Daemon is a discovery agent's registration record (§6.1 register).
// The relationship between a daemon and its network is treated as
// one-to-one per spec §9's Open Question decision.
type Daemon struct {
	ID             string     `json:"id"`
	HostID         string     `json:"host_id,omitempty"`
	NetworkID      string     `json:"network_id"`
	IP             string     `json:"daemon_ip"`
	Port           int        `json:"daemon_port"`
	Name           string     `json:"name"`
	LastHeartbeat  *time.Time `json:"last_heartbeat,omitempty"`
	RegisteredAt   time.Time  `json:"registered_at"`
}

// Touch updates the daemon's last-heartbeat timestamp.
func (d *Daemon) Touch() {
	now := time.Now()
	d.LastHeartbeat = &now
}
