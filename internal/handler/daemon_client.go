package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"netvisor/internal/domain"
)

// HTTPDaemonClient implements DaemonClient by calling a daemon's own HTTP
// surface (§6.2) at its registered daemon_ip:daemon_port.
type HTTPDaemonClient struct {
	client *http.Client
}

// NewHTTPDaemonClient builds a client with a bounded per-request timeout —
// long enough for a daemon under load to accept the request, short enough
// that a dead daemon doesn't stall the server's handler goroutine.
func NewHTTPDaemonClient() *HTTPDaemonClient {
	return &HTTPDaemonClient{client: &http.Client{Timeout: 5 * time.Second}}
}

func daemonBaseURL(d *domain.Daemon) string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.Port)
}

// RequestDiscovery POSTs /discover on the daemon.
func (c *HTTPDaemonClient) RequestDiscovery(ctx context.Context, d *domain.Daemon, sessionID string, discoveryType domain.DiscoveryType) error {
	body, err := json.Marshal(discoverRequest{SessionID: sessionID, DiscoveryType: discoveryType})
	if err != nil {
		return fmt.Errorf("marshal discover request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, daemonBaseURL(d)+"/discover", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build discover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call daemon /discover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("daemon /discover returned %s", resp.Status)
	}
	return nil
}

// CancelDiscovery POSTs /cancel/{session_id} on the daemon.
func (c *HTTPDaemonClient) CancelDiscovery(ctx context.Context, d *domain.Daemon, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, daemonBaseURL(d)+"/cancel/"+sessionID, nil)
	if err != nil {
		return fmt.Errorf("build cancel request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call daemon /cancel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("daemon /cancel returned %s", resp.Status)
	}
	return nil
}
