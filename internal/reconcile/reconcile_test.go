package reconcile

import (
	"context"
	"testing"
	"time"

	"netvisor/internal/domain"
)

// fakeStore is a minimal in-memory Store for exercising the engine's
// decision logic without a real persistence backend.
type fakeStore struct {
	subnets  map[string]*domain.Subnet
	hosts    map[string]*domain.Host
	services map[string]*domain.Service
	groups   map[string]*domain.HostGroup
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subnets:  make(map[string]*domain.Subnet),
		hosts:    make(map[string]*domain.Host),
		services: make(map[string]*domain.Service),
		groups:   make(map[string]*domain.HostGroup),
	}
}

func (s *fakeStore) FindSubnetsByCIDR(ctx context.Context, networkID, cidr string) ([]*domain.Subnet, error) {
	var out []*domain.Subnet
	for _, sub := range s.subnets {
		if sub.NetworkID == networkID && sub.CIDR == cidr {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *fakeStore) GetSubnet(ctx context.Context, id string) (*domain.Subnet, error) {
	return s.subnets[id], nil
}

func (s *fakeStore) PutSubnet(ctx context.Context, subnet *domain.Subnet) error {
	s.subnets[subnet.ID] = subnet
	return nil
}

func (s *fakeStore) FindHostsIntersecting(ctx context.Context, networkID string, host *domain.Host) ([]*domain.Host, error) {
	var out []*domain.Host
	for _, h := range s.hosts {
		if h.IntersectsInterfaces(host) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *fakeStore) GetHost(ctx context.Context, id string) (*domain.Host, error) {
	return s.hosts[id], nil
}

func (s *fakeStore) PutHost(ctx context.Context, host *domain.Host) error {
	s.hosts[host.ID] = host
	return nil
}

func (s *fakeStore) DeleteHost(ctx context.Context, id string) error {
	delete(s.hosts, id)
	return nil
}

func (s *fakeStore) FindServicesForHost(ctx context.Context, hostID string) ([]*domain.Service, error) {
	var out []*domain.Service
	for _, svc := range s.services {
		if svc.HostID == hostID {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (s *fakeStore) GetService(ctx context.Context, id string) (*domain.Service, error) {
	return s.services[id], nil
}

func (s *fakeStore) PutService(ctx context.Context, svc *domain.Service) error {
	s.services[svc.ID] = svc
	return nil
}

func (s *fakeStore) DeleteServicesForHost(ctx context.Context, hostID string) error {
	for id, svc := range s.services {
		if svc.HostID == hostID {
			delete(s.services, id)
		}
	}
	return nil
}

func (s *fakeStore) SubnetsForHost(ctx context.Context, hostID string) ([]*domain.Subnet, error) {
	var out []*domain.Subnet
	for _, sub := range s.subnets {
		out = append(out, sub)
	}
	return out, nil
}

func (s *fakeStore) AllHostGroups(ctx context.Context, networkID string) ([]*domain.HostGroup, error) {
	var out []*domain.HostGroup
	for _, g := range s.groups {
		out = append(out, g)
	}
	return out, nil
}

func (s *fakeStore) PutHostGroup(ctx context.Context, group *domain.HostGroup) error {
	s.groups[group.ID] = group
	return nil
}

func TestReconcileSubnetInsertsNew(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, nil)

	s := domain.NewSubnet("s1", "10.0.0.0/24", "net1", domain.SubnetTypeLan, domain.SystemSource(), "lan")

	got, err := e.ReconcileSubnet(context.Background(), s)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.ID != "s1" {
		t.Errorf("expected new subnet to be kept as-is, got %s", got.ID)
	}
	if len(store.subnets) != 1 {
		t.Errorf("expected 1 subnet stored, got %d", len(store.subnets))
	}
}

func TestReconcileSubnetMergesDuplicate(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, nil)
	ctx := context.Background()

	existing := domain.NewSubnet("s1", "10.0.0.0/24", "net1", domain.SubnetTypeLan, domain.SystemSource(), "lan")
	store.PutSubnet(ctx, existing)

	incoming := domain.NewSubnet("s2", "10.0.0.0/24", "net1", domain.SubnetTypeLan,
		domain.DiscoverySource(domain.DiscoveryTypeNetwork, "daemon1", "", time.Now()), "lan")

	got, err := e.ReconcileSubnet(ctx, incoming)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.ID != "s1" {
		t.Errorf("expected existing subnet to be returned, got %s", got.ID)
	}
	if len(got.Source.Metadata) != 1 {
		t.Errorf("expected discovery metadata appended, got %d entries", len(got.Source.Metadata))
	}
	if len(store.subnets) != 1 {
		t.Errorf("expected no duplicate subnet row, got %d", len(store.subnets))
	}
}

func TestReconcileSubnetKeepsDistinctDockerBridges(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, nil)
	ctx := context.Background()
	now := time.Now()

	existing := domain.NewSubnet("s1", "172.17.0.0/16", "net1", domain.SubnetTypeDockerBridge,
		domain.DiscoverySource(domain.DiscoveryTypeDocker, "daemon1", "hostA", now), "docker0")
	store.PutSubnet(ctx, existing)

	incoming := domain.NewSubnet("s2", "172.17.0.0/16", "net1", domain.SubnetTypeDockerBridge,
		domain.DiscoverySource(domain.DiscoveryTypeDocker, "daemon1", "hostB", now), "docker0")

	got, err := e.ReconcileSubnet(ctx, incoming)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.ID != "s2" {
		t.Errorf("expected a distinct subnet for a different docker host, got %s", got.ID)
	}
	if len(store.subnets) != 2 {
		t.Errorf("expected 2 distinct subnets, got %d", len(store.subnets))
	}
}

func TestReconcileHostUpsertMerges(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, nil)
	ctx := context.Background()

	existing := domain.NewHost("h1", "box", domain.SystemSource())
	existing.Interfaces = append(existing.Interfaces, domain.NewInterface("s1", "10.0.0.5"))
	existing.Ports = append(existing.Ports, domain.NewPort(22, domain.ProtocolTCP))
	store.PutHost(ctx, existing)

	incoming := domain.NewHost("h2", "box", domain.SystemSource())
	incoming.Interfaces = append(incoming.Interfaces, domain.NewInterface("s1", "10.0.0.5"))
	incoming.Ports = append(incoming.Ports, domain.NewPort(80, domain.ProtocolTCP))
	hostname := "box.lan"
	incoming.Hostname = &hostname

	got, err := e.ReconcileHost(ctx, "net1", incoming)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.ID != "h1" {
		t.Errorf("expected the existing host to survive the merge, got %s", got.ID)
	}
	if len(got.Ports) != 2 {
		t.Errorf("expected ports unioned to 2, got %d", len(got.Ports))
	}
	if got.Hostname == nil || *got.Hostname != "box.lan" {
		t.Errorf("expected hostname filled from incoming, got %v", got.Hostname)
	}
	if len(store.hosts) != 1 {
		t.Errorf("expected no duplicate host row, got %d", len(store.hosts))
	}
}

func TestReconcileHostRecomputesSubnetBackReferences(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, nil)
	ctx := context.Background()

	sub := domain.NewSubnet("s1", "10.0.0.0/24", "net1", domain.SubnetTypeLan, domain.SystemSource(), "lan")
	store.PutSubnet(ctx, sub)

	host := domain.NewHost("h1", "box", domain.SystemSource())
	host.Interfaces = append(host.Interfaces, domain.NewInterface("s1", "10.0.0.5"))

	if _, err := e.ReconcileHost(ctx, "net1", host); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	got, _ := store.GetSubnet(ctx, "s1")
	if len(got.Hosts) != 1 || got.Hosts[0] != "h1" {
		t.Errorf("expected subnet to list h1 as a host, got %v", got.Hosts)
	}
}

func TestDeleteHostStripsReferences(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, nil)
	ctx := context.Background()

	sub := domain.NewSubnet("s1", "10.0.0.0/24", "net1", domain.SubnetTypeLan, domain.SystemSource(), "lan")
	sub.Hosts = append(sub.Hosts, "h1")
	store.PutSubnet(ctx, sub)

	host := domain.NewHost("h1", "box", domain.SystemSource())
	store.PutHost(ctx, host)

	svc := domain.NewService("svc1", "h1", "ssh", domain.ServiceDefSSH, domain.SystemSource())
	store.PutService(ctx, svc)

	group := &domain.HostGroup{ID: "g1", Name: "stack", MemberHostIDs: []string{"h1"}}
	store.PutHostGroup(ctx, group)

	if err := e.DeleteHost(ctx, "net1", "h1", true); err != nil {
		t.Fatalf("delete host: %v", err)
	}

	if _, ok := store.hosts["h1"]; ok {
		t.Error("expected host row deleted")
	}
	if _, ok := store.services["svc1"]; ok {
		t.Error("expected services deleted when delete_services is true")
	}
	gotSubnet, _ := store.GetSubnet(ctx, "s1")
	if len(gotSubnet.Hosts) != 0 {
		t.Errorf("expected host reference stripped from subnet, got %v", gotSubnet.Hosts)
	}
	if len(store.groups["g1"].MemberHostIDs) != 0 {
		t.Errorf("expected host stripped from group membership, got %v", store.groups["g1"].MemberHostIDs)
	}
}

func TestMatchServiceDefinitionsFallsBackToUnknownClient(t *testing.T) {
	host := domain.NewHost("h1", "box", domain.SystemSource())
	iface := domain.NewInterface("s1", "10.0.0.50")

	evidence := domain.Evidence{IP: "10.0.0.50"}

	matched := MatchServiceDefinitions(DefaultCatalogue, host, iface, evidence)
	if len(matched) != 1 || matched[0].ServiceDefinition != domain.ServiceDefUnknownClient {
		t.Errorf("expected a single UnknownClient fallback, got %+v", matched)
	}
}

func TestMatchServiceDefinitionsMatchesSSH(t *testing.T) {
	host := domain.NewHost("h1", "box", domain.SystemSource())
	iface := domain.NewInterface("s1", "10.0.0.50")

	evidence := domain.Evidence{IP: "10.0.0.50", OpenPorts: []domain.Port{domain.NewPort(22, domain.ProtocolTCP)}}

	matched := MatchServiceDefinitions(DefaultCatalogue, host, iface, evidence)

	found := false
	for _, svc := range matched {
		if svc.ServiceDefinition == domain.ServiceDefSSH {
			found = true
			if len(svc.Bindings) != 1 || svc.Bindings[0].PortID != "22/tcp" {
				t.Errorf("expected ssh service bound to 22/tcp, got %+v", svc.Bindings)
			}
		}
	}
	if !found {
		t.Error("expected an SSH service match")
	}
}
