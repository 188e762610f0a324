package domain

import (
	"strings"
	"time"
)

// SubnetType classifies a subnet's role, inferred from the interface name
// that first reported it. It drives topology layering (§4.3.2) and service
// matching (§4.2.6).
type SubnetType string

const (
	SubnetTypeInternet      SubnetType = "internet"
	SubnetTypeRemote        SubnetType = "remote"
	SubnetTypeGateway       SubnetType = "gateway"
	SubnetTypeVpnTunnel     SubnetType = "vpn_tunnel"
	SubnetTypeDmz           SubnetType = "dmz"
	SubnetTypeLan           SubnetType = "lan"
	SubnetTypeWiFi          SubnetType = "wifi"
	SubnetTypeIoT           SubnetType = "iot"
	SubnetTypeGuest         SubnetType = "guest"
	SubnetTypeDockerBridge  SubnetType = "docker_bridge"
	SubnetTypeManagement    SubnetType = "management"
	SubnetTypeStorage       SubnetType = "storage"
	SubnetTypeUnknown       SubnetType = "unknown"
	SubnetTypeNone          SubnetType = "none"
)

// InferSubnetType derives a SubnetType from the local interface name that
// discovered it (e.g. "tun0", "docker0", "wlan0", "eth0").
func InferSubnetType(interfaceName string) SubnetType {
	name := strings.ToLower(interfaceName)
	switch {
	case strings.HasPrefix(name, "tun"), strings.HasPrefix(name, "utun"), strings.HasPrefix(name, "wg"):
		return SubnetTypeVpnTunnel
	case strings.HasPrefix(name, "docker"), strings.HasPrefix(name, "br-"):
		return SubnetTypeDockerBridge
	case strings.HasPrefix(name, "wlan"), strings.HasPrefix(name, "wifi"), strings.HasPrefix(name, "wl"):
		return SubnetTypeWiFi
	case strings.HasPrefix(name, "eth"), strings.HasPrefix(name, "en"), strings.HasPrefix(name, "eno"):
		return SubnetTypeLan
	default:
		return SubnetTypeUnknown
	}
}

// defaultLayer returns the vertical topology layer for a subnet type; lower
// values sort toward the top of the layout.
func (t SubnetType) defaultLayer() int {
	switch t {
	case SubnetTypeInternet:
		return 0
	case SubnetTypeGateway, SubnetTypeVpnTunnel, SubnetTypeRemote:
		return 1
	case SubnetTypeDmz:
		return 2
	case SubnetTypeLan, SubnetTypeWiFi, SubnetTypeGuest:
		return 3
	case SubnetTypeIoT:
		return 4
	case SubnetTypeDockerBridge, SubnetTypeManagement, SubnetTypeStorage:
		return 5
	default:
		return 6
	}
}

// layerPriority breaks ties within a layer for left-to-right ordering.
func (t SubnetType) layerPriority() int {
	order := []SubnetType{
		SubnetTypeInternet, SubnetTypeGateway, SubnetTypeVpnTunnel, SubnetTypeRemote,
		SubnetTypeDmz, SubnetTypeLan, SubnetTypeWiFi, SubnetTypeGuest, SubnetTypeIoT,
		SubnetTypeDockerBridge, SubnetTypeManagement, SubnetTypeStorage,
		SubnetTypeUnknown, SubnetTypeNone,
	}
	for i, st := range order {
		if st == t {
			return i
		}
	}
	return len(order)
}

// IsForContainers reports whether the subnet type is container-oriented;
// used to skip interface edges into/out of container bridges (§4.3.1).
func (t SubnetType) IsForContainers() bool {
	return t == SubnetTypeDockerBridge
}

// SourceKind tags the origin of a discovered entity.
type SourceKind string

const (
	SourceManual    SourceKind = "manual"
	SourceSystem    SourceKind = "system"
	SourceDiscovery SourceKind = "discovery"
)

// DiscoveryType is the kind of scan that produced a discovery event.
type DiscoveryType string

const (
	DiscoveryTypeNetwork    DiscoveryType = "network"
	DiscoveryTypeDocker     DiscoveryType = "docker"
	DiscoveryTypeSelfReport DiscoveryType = "self_report"
)

// DiscoveryMetadata records one discovery event that touched an entity.
// Multiple events on the same entity append metadata rather than replace it.
type DiscoveryMetadata struct {
	DiscoveryType DiscoveryType `json:"discovery_type"`
	DaemonID      string        `json:"daemon_id"`
	// HostID is set only when DiscoveryType is Docker, identifying which
	// host's bridge network this subnet was observed on.
	HostID        string    `json:"host_id,omitempty"`
	DiscoveredAt  time.Time `json:"discovered_at"`
}

// Source is the DiscoveredEntitySource every subnet/host/service carries.
type Source struct {
	Kind     SourceKind          `json:"kind"`
	Metadata []DiscoveryMetadata `json:"metadata,omitempty"`
}

// ManualSource returns a Source for manually-entered entities.
func ManualSource() Source { return Source{Kind: SourceManual} }

// SystemSource returns a Source for entities synthesised by the server itself.
func SystemSource() Source { return Source{Kind: SourceSystem} }

// DiscoverySource returns a Source carrying a single discovery event.
func DiscoverySource(discoveryType DiscoveryType, daemonID string, hostID string, at time.Time) Source {
	return Source{
		Kind: SourceDiscovery,
		Metadata: []DiscoveryMetadata{{
			DiscoveryType: discoveryType,
			DaemonID:      daemonID,
			HostID:        hostID,
			DiscoveredAt:  at,
		}},
	}
}

// AppendMetadata records an additional discovery event on an existing Source.
func (s *Source) AppendMetadata(discoveryType DiscoveryType, daemonID, hostID string, at time.Time) {
	s.Kind = SourceDiscovery
	s.Metadata = append(s.Metadata, DiscoveryMetadata{
		DiscoveryType: discoveryType,
		DaemonID:      daemonID,
		HostID:        hostID,
		DiscoveredAt:  at,
	})
}

// dockerHostID returns the host_id of the first Docker-discovery metadata
// entry, if any, and whether one was found.
func (s Source) dockerHostID() (string, bool) {
	for _, m := range s.Metadata {
		if m.DiscoveryType == DiscoveryTypeDocker {
			return m.HostID, true
		}
	}
	return "", false
}

// Subnet is (id, cidr, subnet_type, source, name, description, hosts,
// gateways, dns_resolvers, reverse_proxies). Equality is by (cidr, network_id).
//
// Invariant: hosts/gateways/dns_resolvers/reverse_proxies contain only ids
// of hosts that currently have an interface whose subnet_id = self.id. This
// invariant is maintained exclusively by internal/reconcile; nothing outside
// that package may mutate these slices directly.
type Subnet struct {
	ID             string     `json:"id"`
	CIDR           string     `json:"cidr"`
	NetworkID      string     `json:"network_id"`
	SubnetType     SubnetType `json:"subnet_type"`
	Source         Source     `json:"source"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	Hosts          []string   `json:"hosts"`
	Gateways       []string   `json:"gateways"`
	DNSResolvers   []string   `json:"dns_resolvers"`
	ReverseProxies []string   `json:"reverse_proxies"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewSubnet constructs a Subnet with empty back-reference slices.
func NewSubnet(id, cidr, networkID string, subnetType SubnetType, source Source, name string) *Subnet {
	now := time.Now()
	return &Subnet{
		ID:             id,
		CIDR:           cidr,
		NetworkID:      networkID,
		SubnetType:     subnetType,
		Source:         source,
		Name:           name,
		Hosts:          []string{},
		Gateways:       []string{},
		DNSResolvers:   []string{},
		ReverseProxies: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// DedupKey returns the (cidr, network_id) pair subnets are deduplicated on.
func (s *Subnet) DedupKey() (string, string) { return s.CIDR, s.NetworkID }

// SameDockerHost reports whether both subnets carry Docker discovery
// metadata for the same host_id — the one case where subnets sharing a
// dedup key are nonetheless kept distinct (§4.2.1).
func SameDockerHost(a, b *Subnet) (same bool, bothDocker bool) {
	hostA, okA := a.Source.dockerHostID()
	hostB, okB := b.Source.dockerHostID()
	if a.Source.Kind != SourceDiscovery || b.Source.Kind != SourceDiscovery || !okA || !okB {
		return false, false
	}
	return hostA == hostB, true
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func addID(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// RemoveHostReferences strips a host id from every back-reference slice.
func (s *Subnet) RemoveHostReferences(hostID string) {
	s.Hosts = removeID(s.Hosts, hostID)
	s.Gateways = removeID(s.Gateways, hostID)
	s.DNSResolvers = removeID(s.DNSResolvers, hostID)
	s.ReverseProxies = removeID(s.ReverseProxies, hostID)
}
