package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"netvisor/internal/domain"
)

// RegisterDaemon upserts a daemon registration, refreshing its address in
// case the daemon re-registers after a restart with a new IP (§6.1 POST
// /api/daemons/register).
func (s *Store) RegisterDaemon(ctx context.Context, d *domain.Daemon) (*domain.Daemon, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daemons (daemon_id, host_id, network_id, daemon_ip, daemon_port)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(daemon_id) DO UPDATE SET
			host_id = excluded.host_id,
			network_id = excluded.network_id,
			daemon_ip = excluded.daemon_ip,
			daemon_port = excluded.daemon_port
	`, d.ID, d.HostID, d.NetworkID, d.IP, d.Port)
	if err != nil {
		return nil, fmt.Errorf("register daemon: %w", err)
	}
	return s.GetDaemon(ctx, d.ID)
}

// Heartbeat stamps a daemon's last_heartbeat with the current time.
func (s *Store) Heartbeat(ctx context.Context, daemonID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE daemons SET last_heartbeat = CURRENT_TIMESTAMP WHERE daemon_id = ?`, daemonID)
	if err != nil {
		return fmt.Errorf("heartbeat daemon: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("heartbeat rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("heartbeat: daemon %s not registered", daemonID)
	}
	return nil
}

// GetDaemon returns one daemon's registration.
func (s *Store) GetDaemon(ctx context.Context, daemonID string) (*domain.Daemon, error) {
	d := &domain.Daemon{Name: "netvisor-daemon"}
	var lastHeartbeat sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT daemon_id, host_id, network_id, daemon_ip, daemon_port, registered_at, last_heartbeat
		FROM daemons WHERE daemon_id = ?
	`, daemonID).Scan(&d.ID, &d.HostID, &d.NetworkID, &d.IP, &d.Port, &d.RegisteredAt, &lastHeartbeat)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daemon: %w", err)
	}
	if lastHeartbeat.Valid {
		d.LastHeartbeat = &lastHeartbeat.Time
	}
	return d, nil
}

// ListDaemons returns every registered daemon on networkID.
func (s *Store) ListDaemons(ctx context.Context, networkID string) ([]*domain.Daemon, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT daemon_id, host_id, network_id, daemon_ip, daemon_port, registered_at, last_heartbeat
		FROM daemons WHERE network_id = ?
	`, networkID)
	if err != nil {
		return nil, fmt.Errorf("list daemons: %w", err)
	}
	defer rows.Close()

	var out []*domain.Daemon
	for rows.Next() {
		d := &domain.Daemon{Name: "netvisor-daemon"}
		var lastHeartbeat sql.NullTime
		if err := rows.Scan(&d.ID, &d.HostID, &d.NetworkID, &d.IP, &d.Port, &d.RegisteredAt, &lastHeartbeat); err != nil {
			return nil, fmt.Errorf("scan daemon: %w", err)
		}
		if lastHeartbeat.Valid {
			d.LastHeartbeat = &lastHeartbeat.Time
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
