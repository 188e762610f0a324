// Package sqlite implements reconcile.Store against a pure-Go SQLite
// driver, and additionally persists daemon registrations — state the
// reconciliation engine itself never touches but the server's HTTP surface
// needs across restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"netvisor/internal/domain"

	_ "modernc.org/sqlite"
)

// Store implements reconcile.Store. Each entity is stored as a JSON blob
// alongside the indexed columns the store's own queries need, mirroring
// the teacher's data+indexed-column split in its original sqlite
// repository.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at path and applies the
// schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS subnets (
		id TEXT PRIMARY KEY,
		network_id TEXT NOT NULL,
		cidr TEXT NOT NULL,
		subnet_type TEXT NOT NULL,
		data JSON NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_subnets_network_cidr ON subnets(network_id, cidr);

	CREATE TABLE IF NOT EXISTS hosts (
		id TEXT PRIMARY KEY,
		data JSON NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS host_interfaces (
		host_id TEXT NOT NULL,
		subnet_id TEXT NOT NULL,
		ip_address TEXT NOT NULL,
		network_id TEXT NOT NULL,
		PRIMARY KEY (host_id, subnet_id, ip_address),
		FOREIGN KEY (host_id) REFERENCES hosts(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_host_interfaces_lookup ON host_interfaces(network_id, subnet_id, ip_address);

	CREATE TABLE IF NOT EXISTS services (
		id TEXT PRIMARY KEY,
		host_id TEXT NOT NULL,
		data JSON NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (host_id) REFERENCES hosts(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_services_host ON services(host_id);

	CREATE TABLE IF NOT EXISTS host_groups (
		id TEXT PRIMARY KEY,
		network_id TEXT NOT NULL,
		data JSON NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_host_groups_network ON host_groups(network_id);

	CREATE TABLE IF NOT EXISTS daemons (
		daemon_id TEXT PRIMARY KEY,
		host_id TEXT NOT NULL,
		network_id TEXT NOT NULL,
		daemon_ip TEXT NOT NULL,
		daemon_port INTEGER NOT NULL,
		registered_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_heartbeat DATETIME
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// FindSubnetsByCIDR returns every subnet in networkID sharing cidr; §4.2.1
// dedup decides among them (including the same-Docker-host exception).
func (s *Store) FindSubnetsByCIDR(ctx context.Context, networkID, cidr string) ([]*domain.Subnet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM subnets WHERE network_id = ? AND cidr = ?`, networkID, cidr)
	if err != nil {
		return nil, fmt.Errorf("query subnets by cidr: %w", err)
	}
	defer rows.Close()
	return scanSubnets(rows)
}

// GetSubnet returns the subnet by id, or nil if not found.
func (s *Store) GetSubnet(ctx context.Context, id string) (*domain.Subnet, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM subnets WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query subnet: %w", err)
	}
	var subnet domain.Subnet
	if err := json.Unmarshal(data, &subnet); err != nil {
		return nil, fmt.Errorf("unmarshal subnet: %w", err)
	}
	return &subnet, nil
}

// PutSubnet upserts a subnet.
func (s *Store) PutSubnet(ctx context.Context, subnet *domain.Subnet) error {
	data, err := json.Marshal(subnet)
	if err != nil {
		return fmt.Errorf("marshal subnet: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO subnets (id, network_id, cidr, subnet_type, data, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			network_id = excluded.network_id,
			cidr = excluded.cidr,
			subnet_type = excluded.subnet_type,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, subnet.ID, subnet.NetworkID, subnet.CIDR, string(subnet.SubnetType), data)
	if err != nil {
		return fmt.Errorf("upsert subnet: %w", err)
	}
	return nil
}

// FindHostsIntersecting returns every host in networkID sharing at least
// one (subnet_id, ip_address) interface with candidate — the host dedup
// key (§4.2.2). The interface table lets this run as an indexed lookup
// rather than a full scan-and-compare over every host's JSON blob.
func (s *Store) FindHostsIntersecting(ctx context.Context, networkID string, candidate *domain.Host) ([]*domain.Host, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, iface := range candidate.Interfaces {
		rows, err := s.db.QueryContext(ctx, `
			SELECT DISTINCT host_id FROM host_interfaces
			WHERE network_id = ? AND subnet_id = ? AND ip_address = ?
		`, networkID, iface.SubnetID, iface.IPAddress)
		if err != nil {
			return nil, fmt.Errorf("query intersecting hosts: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan host id: %w", err)
			}
			if id != candidate.ID && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		rows.Close()
	}

	hosts := make([]*domain.Host, 0, len(ids))
	for _, id := range ids {
		h, err := s.GetHost(ctx, id)
		if err != nil {
			return nil, err
		}
		if h != nil {
			hosts = append(hosts, h)
		}
	}
	return hosts, nil
}

// GetHost returns the host by id, or nil if not found.
func (s *Store) GetHost(ctx context.Context, id string) (*domain.Host, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM hosts WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query host: %w", err)
	}
	var host domain.Host
	if err := json.Unmarshal(data, &host); err != nil {
		return nil, fmt.Errorf("unmarshal host: %w", err)
	}
	return &host, nil
}

// PutHost upserts a host and rebuilds its host_interfaces index rows. The
// network_id column on host_interfaces is resolved from each interface's
// subnet so FindHostsIntersecting can scope its lookup without a join.
func (s *Store) PutHost(ctx context.Context, host *domain.Host) error {
	data, err := json.Marshal(host)
	if err != nil {
		return fmt.Errorf("marshal host: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO hosts (id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, host.ID, data)
	if err != nil {
		return fmt.Errorf("upsert host: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM host_interfaces WHERE host_id = ?`, host.ID); err != nil {
		return fmt.Errorf("clear host interfaces: %w", err)
	}

	for _, iface := range host.Interfaces {
		var networkID string
		row := tx.QueryRowContext(ctx, `SELECT network_id FROM subnets WHERE id = ?`, iface.SubnetID)
		if err := row.Scan(&networkID); err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("resolve interface network: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO host_interfaces (host_id, subnet_id, ip_address, network_id)
			VALUES (?, ?, ?, ?)
		`, host.ID, iface.SubnetID, iface.IPAddress, networkID); err != nil {
			return fmt.Errorf("insert host interface: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit host upsert: %w", err)
	}
	return nil
}

// DeleteHost removes a host; its interfaces and services cascade.
func (s *Store) DeleteHost(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hosts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete host: %w", err)
	}
	return nil
}

// FindServicesForHost returns every service owned by hostID.
func (s *Store) FindServicesForHost(ctx context.Context, hostID string) ([]*domain.Service, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM services WHERE host_id = ?`, hostID)
	if err != nil {
		return nil, fmt.Errorf("query services for host: %w", err)
	}
	defer rows.Close()
	return scanServices(rows)
}

// GetService returns the service by id, or nil if not found.
func (s *Store) GetService(ctx context.Context, id string) (*domain.Service, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM services WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query service: %w", err)
	}
	var svc domain.Service
	if err := json.Unmarshal(data, &svc); err != nil {
		return nil, fmt.Errorf("unmarshal service: %w", err)
	}
	return &svc, nil
}

// PutService upserts a service.
func (s *Store) PutService(ctx context.Context, svc *domain.Service) error {
	data, err := json.Marshal(svc)
	if err != nil {
		return fmt.Errorf("marshal service: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO services (id, host_id, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET host_id = excluded.host_id, data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, svc.ID, svc.HostID, data)
	if err != nil {
		return fmt.Errorf("upsert service: %w", err)
	}
	return nil
}

// DeleteServicesForHost removes every service owned by hostID, used when a
// host is dropped during reconciliation (§4.2.5).
func (s *Store) DeleteServicesForHost(ctx context.Context, hostID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM services WHERE host_id = ?`, hostID); err != nil {
		return fmt.Errorf("delete services for host: %w", err)
	}
	return nil
}

// SubnetsForHost returns every subnet one of hostID's interfaces belongs to.
func (s *Store) SubnetsForHost(ctx context.Context, hostID string) ([]*domain.Subnet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT s.data FROM subnets s
		JOIN host_interfaces hi ON hi.subnet_id = s.id
		WHERE hi.host_id = ?
	`, hostID)
	if err != nil {
		return nil, fmt.Errorf("query subnets for host: %w", err)
	}
	defer rows.Close()
	return scanSubnets(rows)
}

// AllHostGroups returns every host group defined in networkID.
func (s *Store) AllHostGroups(ctx context.Context, networkID string) ([]*domain.HostGroup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM host_groups WHERE network_id = ?`, networkID)
	if err != nil {
		return nil, fmt.Errorf("query host groups: %w", err)
	}
	defer rows.Close()

	var groups []*domain.HostGroup
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan host group: %w", err)
		}
		var g domain.HostGroup
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("unmarshal host group: %w", err)
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

// PutHostGroup upserts a host group. Its network_id is resolved from the
// network of its first member host's interfaces, since HostGroup itself
// carries no network_id field; a group with no members yet is stored
// against network_id "" and will surface once AllHostGroups is asked about
// that network or once it gains a member and is re-put.
func (s *Store) PutHostGroup(ctx context.Context, group *domain.HostGroup) error {
	data, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("marshal host group: %w", err)
	}

	networkID, err := s.resolveGroupNetwork(ctx, group)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO host_groups (id, network_id, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET network_id = excluded.network_id, data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, group.ID, networkID, data)
	if err != nil {
		return fmt.Errorf("upsert host group: %w", err)
	}
	return nil
}

func (s *Store) resolveGroupNetwork(ctx context.Context, group *domain.HostGroup) (string, error) {
	for _, hostID := range group.MemberHostIDs {
		var networkID string
		row := s.db.QueryRowContext(ctx, `SELECT network_id FROM host_interfaces WHERE host_id = ? LIMIT 1`, hostID)
		if err := row.Scan(&networkID); err == nil && networkID != "" {
			return networkID, nil
		} else if err != nil && err != sql.ErrNoRows {
			return "", fmt.Errorf("resolve host group network: %w", err)
		}
	}
	return "", nil
}

func scanSubnets(rows *sql.Rows) ([]*domain.Subnet, error) {
	var out []*domain.Subnet
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan subnet: %w", err)
		}
		var subnet domain.Subnet
		if err := json.Unmarshal(data, &subnet); err != nil {
			return nil, fmt.Errorf("unmarshal subnet: %w", err)
		}
		out = append(out, &subnet)
	}
	return out, rows.Err()
}

func scanServices(rows *sql.Rows) ([]*domain.Service, error) {
	var out []*domain.Service
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		var svc domain.Service
		if err := json.Unmarshal(data, &svc); err != nil {
			return nil, fmt.Errorf("unmarshal service: %w", err)
		}
		out = append(out, &svc)
	}
	return out, rows.Err()
}

// ListSubnetsByNetwork returns every subnet in networkID, used to assemble
// the topology graph and serve subnet listing endpoints.
func (s *Store) ListSubnetsByNetwork(ctx context.Context, networkID string) ([]*domain.Subnet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM subnets WHERE network_id = ?`, networkID)
	if err != nil {
		return nil, fmt.Errorf("list subnets: %w", err)
	}
	defer rows.Close()
	return scanSubnets(rows)
}

// ListHostsByNetwork returns every host with at least one interface in
// networkID.
func (s *Store) ListHostsByNetwork(ctx context.Context, networkID string) ([]*domain.Host, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT h.data FROM hosts h
		JOIN host_interfaces hi ON hi.host_id = h.id
		WHERE hi.network_id = ?
	`, networkID)
	if err != nil {
		return nil, fmt.Errorf("list hosts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Host
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan host: %w", err)
		}
		var h domain.Host
		if err := json.Unmarshal(data, &h); err != nil {
			return nil, fmt.Errorf("unmarshal host: %w", err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

// ListServicesByNetwork returns every service owned by a host in networkID.
func (s *Store) ListServicesByNetwork(ctx context.Context, networkID string) ([]*domain.Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT sv.data FROM services sv
		JOIN host_interfaces hi ON hi.host_id = sv.host_id
		WHERE hi.network_id = ?
	`, networkID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()
	return scanServices(rows)
}
