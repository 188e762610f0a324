package domain

import "time"

// ServiceDefinitionKind is the tag of a service definition drawn from the
// fixed catalogue (§4.2.6). Each carries whether it is an infrastructure
// service (DNS/gateway/proxy), which affects subnet back-references and
// topology anchor constraints.
type ServiceDefinitionKind string

const (
	ServiceDefDNSServer     ServiceDefinitionKind = "dns_server"
	ServiceDefGateway       ServiceDefinitionKind = "gateway"
	ServiceDefReverseProxy  ServiceDefinitionKind = "reverse_proxy"
	ServiceDefWebService    ServiceDefinitionKind = "web_service"
	ServiceDefNetVisorAgent ServiceDefinitionKind = "netvisor_daemon"
	ServiceDefSSH           ServiceDefinitionKind = "ssh"
	ServiceDefSNMPAgent     ServiceDefinitionKind = "snmp_agent"
	ServiceDefNTPServer     ServiceDefinitionKind = "ntp_server"
	ServiceDefDHCPServer    ServiceDefinitionKind = "dhcp_server"
	ServiceDefUnknownClient ServiceDefinitionKind = "client"
)

// IsInfra reports whether this kind is an infrastructure service: one that
// affects subnet dns_resolvers/gateways/reverse_proxies back-references and
// topology anchor constraints (§4.2.3, §4.3.2).
func (k ServiceDefinitionKind) IsInfra() bool {
	switch k {
	case ServiceDefDNSServer, ServiceDefGateway, ServiceDefReverseProxy:
		return true
	default:
		return false
	}
}

// BindingKind distinguishes the two binding shapes a Service exposes.
type BindingKind string

const (
	BindingL4 BindingKind = "l4"
)

// Binding is either L4(port_id, interface_id?) — interface_id empty means
// "all interfaces" — or a higher-level form (reserved for future kinds; the
// catalogue in this repository only produces L4 bindings).
type Binding struct {
	ID          string      `json:"id"`
	Kind        BindingKind `json:"kind"`
	PortID      string      `json:"port_id"`
	InterfaceID string      `json:"interface_id,omitempty"`
}

// AppliesToAllInterfaces reports whether this binding has no specific
// interface restriction.
func (b Binding) AppliesToAllInterfaces() bool { return b.InterfaceID == "" }

// Service is (id, host_id, name, service_definition, bindings,
// virtualization, containers, vms).
type Service struct {
	ID                string                `json:"id"`
	HostID            string                `json:"host_id"`
	Name              string                `json:"name"`
	ServiceDefinition ServiceDefinitionKind `json:"service_definition"`
	Bindings          []Binding             `json:"bindings"`
	Virtualization    *string               `json:"virtualization,omitempty"`
	Containers        []string              `json:"containers,omitempty"`
	VMs               []string              `json:"vms,omitempty"`
	Source            Source                `json:"source"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// NewService constructs a Service with no bindings.
func NewService(id, hostID, name string, def ServiceDefinitionKind, source Source) *Service {
	now := time.Now()
	return &Service{
		ID:                id,
		HostID:            hostID,
		Name:              name,
		ServiceDefinition: def,
		Bindings:          []Binding{},
		Source:            source,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// SharesPort reports whether s and other have at least one L4 binding to
// the same port id — half of the service dedup key (§4.2.3).
func (s *Service) SharesPort(other *Service) bool {
	for _, a := range s.Bindings {
		for _, b := range other.Bindings {
			if a.PortID == b.PortID {
				return true
			}
		}
	}
	return false
}

// PrimaryInterfaceID returns the interface id of the service's first
// interface-scoped binding, used as a group edge endpoint (§4.3.1).
func (s *Service) PrimaryInterfaceID() (string, bool) {
	for _, b := range s.Bindings {
		if b.InterfaceID != "" {
			return b.InterfaceID, true
		}
	}
	return "", false
}

// AddBinding unions a binding in by id.
func (s *Service) AddBinding(b Binding) {
	for _, existing := range s.Bindings {
		if existing.ID == b.ID {
			return
		}
	}
	s.Bindings = append(s.Bindings, b)
}

// HostGroup is a user-defined logical connection: an ordered sequence of
// service bindings. Consecutive entries become Group edges (§4.3.1).
type HostGroup struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	ServiceSequence  []string `json:"service_sequence"`
	MemberHostIDs    []string `json:"member_host_ids,omitempty"`
}

// RemoveHostReferences strips a host id from the group's membership list
// (§4.2.5 step 3).
func (g *HostGroup) RemoveHostReferences(hostID string) {
	g.MemberHostIDs = removeID(g.MemberHostIDs, hostID)
}
