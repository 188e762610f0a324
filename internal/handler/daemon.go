package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"netvisor/internal/daemon"
	"netvisor/internal/domain"
)

// DaemonHandler implements the daemon-side HTTP surface (§6.2): the server
// calls these endpoints to drive one daemon's discovery pipeline.
type DaemonHandler struct {
	pipeline  *daemon.Pipeline
	reporter  *HTTPReporter
	daemonID  string
	networkID string

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewDaemonHandler builds a DaemonHandler running pipeline's scans against
// networkID — the single network this daemon instance belongs to — under
// daemonID, its own registered identity. reporter is used to post the
// session's terminal status once Run returns; it is typically the same
// instance wired into pipeline.Reporter.
func NewDaemonHandler(pipeline *daemon.Pipeline, reporter *HTTPReporter, daemonID, networkID string) *DaemonHandler {
	return &DaemonHandler{
		pipeline:  pipeline,
		reporter:  reporter,
		daemonID:  daemonID,
		networkID: networkID,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Health handles GET /health.
func (h *DaemonHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Daemon is healthy"))
}

type discoverRequest struct {
	SessionID     string              `json:"session_id"`
	DiscoveryType domain.DiscoveryType `json:"discovery_type"`
}

type discoverResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Discover handles POST /discover: it starts the pipeline in the
// background and returns immediately, matching §6.2's "scan proceeds
// asynchronously."
func (h *DaemonHandler) Discover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DiscoveryType == "" {
		req.DiscoveryType = domain.DiscoveryTypeNetwork
	}

	session := domain.NewDiscoverySession(req.SessionID, h.daemonID, req.DiscoveryType)

	ctx, cancel := context.WithCancel(context.Background())
	h.mu.Lock()
	h.cancels[req.SessionID] = cancel
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.cancels, req.SessionID)
			h.mu.Unlock()
			cancel()
		}()

		err := h.pipeline.Run(ctx, session, h.networkID)
		status, errMessage := terminalStatus(err)
		if err != nil {
			log.Printf("daemon: discovery session %s ended: %v", req.SessionID, err)
		}
		if h.reporter != nil {
			if rerr := h.reporter.ReportTerminal(context.Background(), req.SessionID, status, errMessage); rerr != nil {
				log.Printf("daemon: failed to report terminal status for %s: %v", req.SessionID, rerr)
			}
		}
	}()

	writeJSONRaw(w, discoverResponse{Success: true, SessionID: req.SessionID, Message: "discovery started"}, http.StatusOK)
}

// ExecuteTest handles POST /execute_test — a single-host diagnostic probe,
// not core to discovery itself (§6.2).
func (h *DaemonHandler) ExecuteTest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Target    string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSONRaw(w, discoverResponse{Success: true, SessionID: req.SessionID, Message: "test execution not yet implemented"}, http.StatusNotImplemented)
}

// Cancel handles POST /cancel/{session_id}.
func (h *DaemonHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	h.mu.Lock()
	cancel, ok := h.cancels[sessionID]
	h.mu.Unlock()

	if !ok {
		writeError(w, "no active session with that id", http.StatusNotFound)
		return
	}
	cancel()
	writeJSONRaw(w, discoverResponse{Success: true, SessionID: sessionID, Message: "cancellation requested"}, http.StatusOK)
}

// terminalStatus maps a Pipeline.Run result to the session status and
// optional message the terminal update carries (§4.1 step 2).
func terminalStatus(err error) (domain.SessionStatus, *string) {
	if err == nil {
		return domain.SessionCompleted, nil
	}
	if errors.Is(err, domain.ErrCancelled) {
		return domain.SessionCancelled, nil
	}
	msg := err.Error()
	return domain.SessionFailed, &msg
}

// writeJSONRaw writes data as-is without the {success,data} envelope, for
// the handful of §6.2 responses that are already shaped with their own
// top-level "success" field.
func writeJSONRaw(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("handler: failed to encode response: %v", err)
	}
}
