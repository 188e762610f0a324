package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"netvisor/internal/domain"
	"netvisor/internal/reconcile"
	"netvisor/internal/session"
	"netvisor/internal/topology"
)

// Store is what ServerHandler needs beyond reconcile.Store itself: the
// network-scoped list queries the topology layout and CRUD endpoints need,
// which the reconciliation engine never calls.
type Store interface {
	reconcile.Store
	ListSubnetsByNetwork(ctx context.Context, networkID string) ([]*domain.Subnet, error)
	ListHostsByNetwork(ctx context.Context, networkID string) ([]*domain.Host, error)
	ListServicesByNetwork(ctx context.Context, networkID string) ([]*domain.Service, error)
}

// DaemonRegistry is the daemon registration/heartbeat persistence
// ServerHandler drives; internal/repository/sqlite.Store satisfies it.
type DaemonRegistry interface {
	RegisterDaemon(ctx context.Context, d *domain.Daemon) (*domain.Daemon, error)
	Heartbeat(ctx context.Context, daemonID string) error
	GetDaemon(ctx context.Context, daemonID string) (*domain.Daemon, error)
	ListDaemons(ctx context.Context, networkID string) ([]*domain.Daemon, error)
}

// DaemonClient is the server's outbound channel to a daemon's own HTTP
// surface (§6.2): requesting discovery and forwarding cancellation.
type DaemonClient interface {
	RequestDiscovery(ctx context.Context, daemon *domain.Daemon, sessionID string, discoveryType domain.DiscoveryType) error
	CancelDiscovery(ctx context.Context, daemon *domain.Daemon, sessionID string) error
}

// ServerHandler implements the server-side HTTP surface of §6.1. It holds
// no state of its own beyond its collaborators, matching the teacher's
// GraphHandler shape (a thin adapter over injected services).
type ServerHandler struct {
	store            Store
	daemons          DaemonRegistry
	engine           *reconcile.Engine
	sessions         *session.Manager
	daemonClient     DaemonClient
	defaultNetworkID string
}

// NewServerHandler constructs a ServerHandler. defaultNetworkID is the
// single network every daemon reports into, per this project's Open
// Question decision to treat daemon:network as 1:1 (see DESIGN.md).
func NewServerHandler(store Store, daemons DaemonRegistry, engine *reconcile.Engine, sessions *session.Manager, client DaemonClient, defaultNetworkID string) *ServerHandler {
	return &ServerHandler{
		store:            store,
		daemons:          daemons,
		engine:           engine,
		sessions:         sessions,
		daemonClient:     client,
		defaultNetworkID: defaultNetworkID,
	}
}

type registerDaemonRequest struct {
	DaemonID   string `json:"daemon_id"`
	HostID     string `json:"host_id"`
	NetworkID  string `json:"network_id"`
	DaemonIP   string `json:"daemon_ip"`
	DaemonPort int    `json:"daemon_port"`
}

// RegisterDaemon handles POST /api/daemons/register.
func (h *ServerHandler) RegisterDaemon(w http.ResponseWriter, r *http.Request) {
	var req registerDaemonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DaemonID == "" || req.DaemonIP == "" {
		writeError(w, "daemon_id and daemon_ip are required", http.StatusBadRequest)
		return
	}
	networkID := req.NetworkID
	if networkID == "" {
		networkID = h.defaultNetworkID
	}

	d, err := h.daemons.RegisterDaemon(r.Context(), &domain.Daemon{
		ID:        req.DaemonID,
		HostID:    req.HostID,
		NetworkID: networkID,
		IP:        req.DaemonIP,
		Port:      req.DaemonPort,
	})
	if err != nil {
		log.Printf("handler: register daemon failed: %v", err)
		writeError(w, "failed to register daemon", http.StatusInternalServerError)
		return
	}
	writeJSON(w, d, http.StatusOK)
}

// Heartbeat handles PUT /api/daemons/{daemon_id}/heartbeat.
func (h *ServerHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	daemonID := r.PathValue("daemon_id")
	if err := h.daemons.Heartbeat(r.Context(), daemonID); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"daemon_id": daemonID}, http.StatusOK)
}

type initiateDiscoveryRequest struct {
	DaemonID      string              `json:"daemon_id"`
	DiscoveryType domain.DiscoveryType `json:"discovery_type,omitempty"`
}

// InitiateDiscovery handles POST /api/discovery/initiate: the server mints
// a session id, asks the Session Manager to reserve it, POSTs the request
// to the daemon, and returns the initial session state.
func (h *ServerHandler) InitiateDiscovery(w http.ResponseWriter, r *http.Request) {
	var req initiateDiscoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DiscoveryType == "" {
		req.DiscoveryType = domain.DiscoveryTypeNetwork
	}

	daemon, err := h.daemons.GetDaemon(r.Context(), req.DaemonID)
	if err != nil || daemon == nil {
		writeError(w, "unknown daemon_id", http.StatusNotFound)
		return
	}

	sessionID := uuid.NewString()
	s, err := h.sessions.CreateSession(sessionID, req.DaemonID, req.DiscoveryType)
	if err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	if err := h.daemonClient.RequestDiscovery(r.Context(), daemon, sessionID, req.DiscoveryType); err != nil {
		msg := fmt.Sprintf("failed to reach daemon: %v", err)
		_ = h.sessions.UpdateSession(session.Update{SessionID: sessionID, DaemonID: req.DaemonID, Status: domain.SessionFailed, ErrorMessage: &msg})
		writeError(w, msg, http.StatusBadGateway)
		return
	}

	writeJSON(w, s, http.StatusOK)
}

// DaemonInitiate handles POST /api/discovery/daemon-initiate: the daemon
// already minted its own session id and is just registering it with the
// server's Session Manager, so no outbound POST back to the daemon happens
// here.
func (h *ServerHandler) DaemonInitiate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DaemonID      string              `json:"daemon_id"`
		SessionID     string              `json:"session_id"`
		DiscoveryType domain.DiscoveryType `json:"discovery_type,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.DiscoveryType == "" {
		req.DiscoveryType = domain.DiscoveryTypeNetwork
	}

	s, err := h.sessions.CreateSession(req.SessionID, req.DaemonID, req.DiscoveryType)
	if err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, s, http.StatusOK)
}

// CancelDiscovery handles POST /api/discovery/{session_id}/cancel.
func (h *ServerHandler) CancelDiscovery(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	daemonID, err := h.sessions.CancelSession(sessionID)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	if daemon, derr := h.daemons.GetDaemon(r.Context(), daemonID); derr == nil && daemon != nil {
		if err := h.daemonClient.CancelDiscovery(r.Context(), daemon, sessionID); err != nil {
			log.Printf("handler: forwarding cancel to daemon %s failed: %v", daemonID, err)
		}
	}
	writeJSON(w, map[string]string{"session_id": sessionID}, http.StatusOK)
}

// discoveryUpdateRequest is the daemon->server progress/fragment payload
// posted to /api/discovery/update. A single update carries at most one of
// a fragment (new entities to reconcile) or a status/progress change; the
// daemon's Reporter posts the two kinds separately (ReportFragment,
// ReportProgress) matching internal/daemon.Reporter's split interface.
type discoveryUpdateRequest struct {
	SessionID    string                   `json:"session_id"`
	Status       domain.SessionStatus     `json:"status,omitempty"`
	Progress     *domain.Progress         `json:"progress,omitempty"`
	Fragment     *domain.DiscoveryFragment `json:"fragment,omitempty"`
	ErrorMessage *string                  `json:"error_message,omitempty"`
}

// Update handles POST /api/discovery/update.
func (h *ServerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req discoveryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Fragment != nil && !req.Fragment.Empty() {
		if err := h.engine.ApplyFragment(r.Context(), h.defaultNetworkID, req.Fragment); err != nil {
			log.Printf("handler: apply fragment failed: %v", err)
			writeError(w, "failed to reconcile fragment", http.StatusInternalServerError)
			return
		}
	}

	s, ok := h.sessions.GetSession(req.SessionID)
	if !ok {
		writeError(w, "unknown session_id", http.StatusNotFound)
		return
	}
	if err := h.sessions.UpdateSession(session.Update{
		SessionID:    req.SessionID,
		DaemonID:     s.DaemonID,
		Status:       req.Status,
		Progress:     req.Progress,
		ErrorMessage: req.ErrorMessage,
	}); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"session_id": req.SessionID}, http.StatusOK)
}

type networkInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultNetwork handles GET /api/networks/default.
func (h *ServerHandler) DefaultNetwork(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, networkInfo{ID: h.defaultNetworkID, Name: "default"}, http.StatusOK)
}

// ListHosts handles GET /api/hosts (not core, CRUD per §6.1).
func (h *ServerHandler) ListHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := h.store.ListHostsByNetwork(r.Context(), h.defaultNetworkID)
	if err != nil {
		writeError(w, "failed to list hosts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, hosts, http.StatusOK)
}

// GetHost handles GET /api/hosts/{id}.
func (h *ServerHandler) GetHost(w http.ResponseWriter, r *http.Request) {
	host, err := h.store.GetHost(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "failed to get host", http.StatusInternalServerError)
		return
	}
	if host == nil {
		writeError(w, "host not found", http.StatusNotFound)
		return
	}
	writeJSON(w, host, http.StatusOK)
}

type deleteHostRequest struct {
	DeleteServices bool `json:"delete_services"`
}

// DeleteHost handles DELETE /api/hosts/{id}.
func (h *ServerHandler) DeleteHost(w http.ResponseWriter, r *http.Request) {
	var req deleteHostRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // a body is optional; default false

	id := r.PathValue("id")
	if err := h.engine.DeleteHost(r.Context(), h.defaultNetworkID, id, req.DeleteServices); err != nil {
		writeError(w, "failed to delete host", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"id": id}, http.StatusOK)
}

// ListServices handles GET /api/services.
func (h *ServerHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.store.ListServicesByNetwork(r.Context(), h.defaultNetworkID)
	if err != nil {
		writeError(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	writeJSON(w, services, http.StatusOK)
}

// GetService handles GET /api/services/{id}.
func (h *ServerHandler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.store.GetService(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "failed to get service", http.StatusInternalServerError)
		return
	}
	if svc == nil {
		writeError(w, "service not found", http.StatusNotFound)
		return
	}
	writeJSON(w, svc, http.StatusOK)
}

// ListSubnets handles GET /api/subnets.
func (h *ServerHandler) ListSubnets(w http.ResponseWriter, r *http.Request) {
	subnets, err := h.store.ListSubnetsByNetwork(r.Context(), h.defaultNetworkID)
	if err != nil {
		writeError(w, "failed to list subnets", http.StatusInternalServerError)
		return
	}
	writeJSON(w, subnets, http.StatusOK)
}

// GetSubnet handles GET /api/subnets/{id}.
func (h *ServerHandler) GetSubnet(w http.ResponseWriter, r *http.Request) {
	subnet, err := h.store.GetSubnet(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "failed to get subnet", http.StatusInternalServerError)
		return
	}
	if subnet == nil {
		writeError(w, "subnet not found", http.StatusNotFound)
		return
	}
	writeJSON(w, subnet, http.StatusOK)
}

// Topology handles GET /api/topology: builds a fresh layout from the
// default network's current entities (§4.3). Nothing here is cached.
func (h *ServerHandler) Topology(w http.ResponseWriter, r *http.Request) {
	subnets, err := h.store.ListSubnetsByNetwork(r.Context(), h.defaultNetworkID)
	if err != nil {
		writeError(w, "failed to load subnets", http.StatusInternalServerError)
		return
	}
	hosts, err := h.store.ListHostsByNetwork(r.Context(), h.defaultNetworkID)
	if err != nil {
		writeError(w, "failed to load hosts", http.StatusInternalServerError)
		return
	}
	services, err := h.store.ListServicesByNetwork(r.Context(), h.defaultNetworkID)
	if err != nil {
		writeError(w, "failed to load services", http.StatusInternalServerError)
		return
	}
	groups, err := h.store.AllHostGroups(r.Context(), h.defaultNetworkID)
	if err != nil {
		writeError(w, "failed to load host groups", http.StatusInternalServerError)
		return
	}

	graph := topology.Build(topology.Inputs{
		Subnets:    subnets,
		Hosts:      hosts,
		Services:   services,
		HostGroups: groups,
	})
	writeJSON(w, graph, http.StatusOK)
}
