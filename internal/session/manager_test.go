package session

import (
	"testing"
	"time"

	"netvisor/internal/domain"
)

type fakePublisher struct {
	events []interface{}
}

func (f *fakePublisher) Broadcast(event interface{}) {
	f.events = append(f.events, event)
}

func TestCreateSessionRejectsConcurrentDaemonSession(t *testing.T) {
	pub := &fakePublisher{}
	m := NewManager(pub)

	if _, err := m.CreateSession("sess-1", "daemon-1", domain.DiscoveryTypeNetwork); err != nil {
		t.Fatalf("unexpected error creating first session: %v", err)
	}

	_, err := m.CreateSession("sess-2", "daemon-1", domain.DiscoveryTypeNetwork)
	if err != domain.ErrSessionActive {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}

	if !m.IsDaemonDiscovering("daemon-1") {
		t.Error("expected daemon-1 to be marked discovering")
	}
	if len(pub.events) != 1 {
		t.Errorf("expected exactly one broadcast from session creation, got %d", len(pub.events))
	}
}

func TestUpdateSessionReleasesDaemonOnTerminalStatus(t *testing.T) {
	pub := &fakePublisher{}
	m := NewManager(pub)
	m.CreateSession("sess-1", "daemon-1", domain.DiscoveryTypeNetwork)

	err := m.UpdateSession(Update{
		SessionID: "sess-1",
		Status:    domain.SessionCompleted,
		Progress:  &domain.Progress{Phase: domain.PhaseScanning, ScannedCount: 10, Total: 10, DiscoveredCount: 4},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.IsDaemonDiscovering("daemon-1") {
		t.Error("expected daemon-1 to be released after a terminal update")
	}

	s, ok := m.GetSession("sess-1")
	if !ok {
		t.Fatal("expected session to still be retrievable after completion")
	}
	if s.Status != domain.SessionCompleted || s.CompletedAt == nil {
		t.Errorf("expected completed session with CompletedAt set, got %+v", s)
	}

	// Daemon should now be able to start a new session.
	if _, err := m.CreateSession("sess-2", "daemon-1", domain.DiscoveryTypeNetwork); err != nil {
		t.Fatalf("expected new session to be creatable after release, got %v", err)
	}
}

func TestUpdateSessionUnknownID(t *testing.T) {
	m := NewManager(nil)
	if err := m.UpdateSession(Update{SessionID: "missing"}); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCancelSessionReturnsDaemonAndReleasesSlot(t *testing.T) {
	m := NewManager(nil)
	m.CreateSession("sess-1", "daemon-1", domain.DiscoveryTypeNetwork)

	daemonID, err := m.CancelSession("sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if daemonID != "daemon-1" {
		t.Errorf("expected daemon-1, got %s", daemonID)
	}
	if m.IsDaemonDiscovering("daemon-1") {
		t.Error("expected daemon-1 to be released after cancel")
	}

	s, _ := m.GetSession("sess-1")
	if s.Status != domain.SessionCancelled {
		t.Errorf("expected Cancelled status, got %s", s.Status)
	}
}

func TestCleanupOldSessionsRemovesOnlyStaleTerminalSessions(t *testing.T) {
	m := NewManager(nil)
	m.CreateSession("old", "daemon-1", domain.DiscoveryTypeNetwork)
	m.CreateSession("fresh", "daemon-2", domain.DiscoveryTypeNetwork)
	m.CreateSession("running", "daemon-3", domain.DiscoveryTypeNetwork)

	m.UpdateSession(Update{SessionID: "old", Status: domain.SessionCompleted})
	m.UpdateSession(Update{SessionID: "fresh", Status: domain.SessionCompleted})

	// Backdate "old" past the cleanup threshold.
	old, _ := m.GetSession("old")
	past := time.Now().Add(-48 * time.Hour)
	old.CompletedAt = &past

	removed := m.CleanupOldSessions(24 * time.Hour)
	if removed != 1 {
		t.Fatalf("expected exactly 1 session removed, got %d", removed)
	}
	if _, ok := m.GetSession("old"); ok {
		t.Error("expected old completed session to be removed")
	}
	if _, ok := m.GetSession("fresh"); !ok {
		t.Error("expected fresh completed session to survive cleanup")
	}
	if _, ok := m.GetSession("running"); !ok {
		t.Error("expected running session to survive cleanup regardless of age")
	}
}
