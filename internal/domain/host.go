package domain

import "time"

// TargetKind selects how downstream diagnostics address a host.
type TargetKind string

const (
	TargetHostname       TargetKind = "hostname"
	TargetIPAddress      TargetKind = "ip_address"
	TargetServiceBinding TargetKind = "service_binding"
	TargetNone           TargetKind = "none"
)

// Target is the polymorphic addressing tag a Host carries.
type Target struct {
	Kind      TargetKind `json:"kind"`
	Hostname  string     `json:"hostname,omitempty"`
	IP        string     `json:"ip,omitempty"`
	ServiceID string     `json:"service_id,omitempty"`
}

// Host is (id, name, hostname, target, interfaces, ports, services,
// virtualization, source, description). A host exclusively owns its
// interfaces and ports; it references services by id.
//
// Equality between hosts is by the set intersection of their interfaces
// (see internal/reconcile). This invariant, like Subnet's back-references,
// is maintained exclusively by internal/reconcile.
type Host struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Hostname       *string     `json:"hostname,omitempty"`
	Target         Target      `json:"target"`
	Interfaces     []Interface `json:"interfaces"`
	Ports          []Port      `json:"ports"`
	Services       []string    `json:"services"`
	Virtualization *string     `json:"virtualization,omitempty"`
	Source         Source      `json:"source"`
	Description    *string     `json:"description,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewHost constructs a Host with empty owned collections.
func NewHost(id, name string, source Source) *Host {
	now := time.Now()
	return &Host{
		ID:         id,
		Name:       name,
		Target:     Target{Kind: TargetNone},
		Interfaces: []Interface{},
		Ports:      []Port{},
		Services:   []string{},
		Source:     source,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IntersectsInterfaces reports whether h and other share at least one
// (subnet_id, ip_address) interface — the host dedup key (§4.2.2).
func (h *Host) IntersectsInterfaces(other *Host) bool {
	for _, a := range h.Interfaces {
		for _, b := range other.Interfaces {
			if a.Equal(b) {
				return true
			}
		}
	}
	return false
}

// HasInterfaceInSubnet reports whether the host has at least one interface
// whose subnet_id matches subnetID.
func (h *Host) HasInterfaceInSubnet(subnetID string) bool {
	for _, iface := range h.Interfaces {
		if iface.SubnetID == subnetID {
			return true
		}
	}
	return false
}

// FindInterface returns the interface matching the dedup key, if present.
func (h *Host) FindInterface(subnetID, ip string) (Interface, bool) {
	for _, iface := range h.Interfaces {
		if iface.SubnetID == subnetID && iface.IPAddress == ip {
			return iface, true
		}
	}
	return Interface{}, false
}

// FindPort returns the port matching (number, protocol), if present.
func (h *Host) FindPort(number int, protocol Protocol) (Port, bool) {
	for _, p := range h.Ports {
		if p.Number == number && p.Protocol == protocol {
			return p, true
		}
	}
	return Port{}, false
}

// AddServiceID appends a service id if not already present.
func (h *Host) AddServiceID(id string) {
	h.Services = addID(h.Services, id)
}

// RemoveServiceID removes a service id if present.
func (h *Host) RemoveServiceID(id string) {
	h.Services = removeID(h.Services, id)
}
