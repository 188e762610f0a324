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

// HTTPReporter implements internal/daemon.Reporter by POSTing to the
// server's /api/discovery/update endpoint, one call per fragment or
// progress update exactly as the pipeline produces them.
type HTTPReporter struct {
	client      *http.Client
	serverBase  string // e.g. "http://192.168.1.10:60072"
}

// NewHTTPReporter builds a reporter posting to serverBase.
func NewHTTPReporter(serverBase string) *HTTPReporter {
	return &HTTPReporter{
		client:     &http.Client{Timeout: 10 * time.Second},
		serverBase: serverBase,
	}
}

func (r *HTTPReporter) post(ctx context.Context, body discoveryUpdateRequest) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal discovery update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.serverBase+"/api/discovery/update", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build discovery update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("post discovery update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("discovery update rejected: %s", resp.Status)
	}
	return nil
}

// ReportFragment posts a newly discovered fragment for reconciliation.
func (r *HTTPReporter) ReportFragment(ctx context.Context, sessionID string, fragment *domain.DiscoveryFragment) error {
	return r.post(ctx, discoveryUpdateRequest{SessionID: sessionID, Fragment: fragment})
}

// ReportProgress posts a scanned/discovered counter update.
func (r *HTTPReporter) ReportProgress(ctx context.Context, sessionID string, progress domain.Progress) error {
	p := progress
	return r.post(ctx, discoveryUpdateRequest{SessionID: sessionID, Status: domain.SessionRunning, Progress: &p})
}

// ReportTerminal posts the session's final status (Completed, Failed, or
// Cancelled), with an error message for the latter two. finish_discovery's
// terminal-update requirement (§4.1 step 2) sits outside the Reporter
// interface proper since it fires once per session rather than once per
// probe result, so DaemonHandler calls it directly after Pipeline.Run
// returns instead of through the pipeline's own Reporter field.
func (r *HTTPReporter) ReportTerminal(ctx context.Context, sessionID string, status domain.SessionStatus, errMessage *string) error {
	return r.post(ctx, discoveryUpdateRequest{SessionID: sessionID, Status: status, ErrorMessage: errMessage})
}
