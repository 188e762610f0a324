package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"netvisor/internal/config"
)

type registerRequest struct {
	DaemonID   string `json:"daemon_id"`
	HostID     string `json:"host_id"`
	NetworkID  string `json:"network_id"`
	DaemonIP   string `json:"daemon_ip"`
	DaemonPort int    `json:"daemon_port"`
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

// registerWithServer posts this daemon's identity and address to the
// server's daemon registry (§6.1 POST /api/daemons/register), so the
// server's HTTPDaemonClient knows where to reach it for /discover and
// /cancel requests.
func registerWithServer(ctx context.Context, serverBase string, cfg *config.DaemonConfig) error {
	daemonIP := cfg.BindAddress
	if daemonIP == "" || daemonIP == "0.0.0.0" {
		if ip := outboundIP(); ip != "" {
			daemonIP = ip
		}
	}

	body, err := json.Marshal(registerRequest{
		DaemonID:   cfg.ID,
		HostID:     cfg.HostID,
		NetworkID:  defaultNetworkID,
		DaemonIP:   daemonIP,
		DaemonPort: int(cfg.DaemonPort),
	})
	if err != nil {
		return fmt.Errorf("marshal register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverBase+"/api/daemons/register", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call server register: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("server register returned %s", resp.Status)
	}
	log.Printf("Registered with server as daemon %s", cfg.ID)
	return nil
}

// heartbeatLoop periodically notifies the server this daemon is still
// alive (§6.1 PUT /api/daemons/{daemon_id}/heartbeat), at cfg's configured
// interval, until ctx is cancelled.
func heartbeatLoop(ctx context.Context, serverBase string, cfg *config.DaemonConfig) {
	ticker := time.NewTicker(cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sendHeartbeat(ctx, serverBase, cfg.ID); err != nil {
				log.Printf("heartbeat failed: %v", err)
			}
		}
	}
}

// outboundIP finds the local address this host would use to reach the
// network, without actually sending anything (the UDP dial never hits the
// wire). Used as the daemon_ip the server calls back on when BindAddress
// is a listen-anywhere address like 0.0.0.0.
func outboundIP() string {
	conn, err := net.Dial("udp", "1.1.1.1:80")
	if err != nil {
		return ""
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return ""
	}
	return addr.IP.String()
}

func sendHeartbeat(ctx context.Context, serverBase, daemonID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, serverBase+"/api/daemons/"+daemonID+"/heartbeat", nil)
	if err != nil {
		return fmt.Errorf("build heartbeat request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call server heartbeat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("server heartbeat returned %s", resp.Status)
	}
	return nil
}
