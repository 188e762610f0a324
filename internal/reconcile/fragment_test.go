package reconcile

import (
	"context"
	"testing"

	"netvisor/internal/domain"
)

func TestApplyFragmentReconcilesInDependencyOrder(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, nil)
	ctx := context.Background()

	subnet := domain.NewSubnet("net1/10.0.0.0/24", "10.0.0.0/24", "net1", domain.SubnetTypeLan, domain.SystemSource(), "LAN")
	host := domain.NewHost("h1", "host-one", domain.SystemSource())
	host.Interfaces = []domain.Interface{domain.NewInterface(subnet.ID, "10.0.0.5")}
	svc := domain.NewService("svc1", host.ID, "Web", domain.ServiceDefWebService, domain.SystemSource())

	fragment := domain.NewDiscoveryFragment()
	fragment.Subnets = append(fragment.Subnets, subnet)
	fragment.Hosts = append(fragment.Hosts, host)
	fragment.Services = append(fragment.Services, svc)

	if err := e.ApplyFragment(ctx, "net1", fragment); err != nil {
		t.Fatalf("apply fragment: %v", err)
	}

	if _, ok := store.subnets[subnet.ID]; !ok {
		t.Errorf("expected subnet %s to be stored", subnet.ID)
	}
	storedHost, ok := store.hosts[host.ID]
	if !ok {
		t.Fatalf("expected host %s to be stored", host.ID)
	}
	if len(storedHost.Services) != 1 || storedHost.Services[0] != svc.ID {
		t.Errorf("expected host to reference the reconciled service, got %+v", storedHost.Services)
	}
	if _, ok := store.services[svc.ID]; !ok {
		t.Errorf("expected service %s to be stored", svc.ID)
	}
}

// TestApplyFragmentRewritesSubnetIDOnDedupMatch covers the case where a
// candidate subnet dedups against an existing one under a different id: the
// host's interface must be rewritten to the canonical id before the host
// itself is reconciled, or FindHostsIntersecting would never see it again.
func TestApplyFragmentRewritesSubnetIDOnDedupMatch(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, nil)
	ctx := context.Background()

	existing := domain.NewSubnet("canonical-subnet", "10.0.0.0/24", "net1", domain.SubnetTypeLan, domain.SystemSource(), "LAN")
	if err := store.PutSubnet(ctx, existing); err != nil {
		t.Fatalf("seed subnet: %v", err)
	}

	candidateSubnet := domain.NewSubnet("candidate-subnet", "10.0.0.0/24", "net1", domain.SubnetTypeLan, domain.SystemSource(), "LAN")
	host := domain.NewHost("h1", "host-one", domain.SystemSource())
	host.Interfaces = []domain.Interface{domain.NewInterface(candidateSubnet.ID, "10.0.0.5")}

	fragment := domain.NewDiscoveryFragment()
	fragment.Subnets = append(fragment.Subnets, candidateSubnet)
	fragment.Hosts = append(fragment.Hosts, host)

	if err := e.ApplyFragment(ctx, "net1", fragment); err != nil {
		t.Fatalf("apply fragment: %v", err)
	}

	if _, ok := store.subnets["candidate-subnet"]; ok {
		t.Error("candidate subnet id should never be persisted once it dedups to an existing one")
	}
	storedHost := store.hosts["h1"]
	if storedHost == nil {
		t.Fatal("expected host to be stored")
	}
	if storedHost.Interfaces[0].SubnetID != "canonical-subnet" {
		t.Errorf("expected host interface to reference canonical subnet id, got %s", storedHost.Interfaces[0].SubnetID)
	}
}

func TestApplyFragmentSkipsServiceForMissingHost(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, nil)
	ctx := context.Background()

	svc := domain.NewService("svc1", "ghost-host", "Web", domain.ServiceDefWebService, domain.SystemSource())
	fragment := domain.NewDiscoveryFragment()
	fragment.Services = append(fragment.Services, svc)

	if err := e.ApplyFragment(ctx, "net1", fragment); err != nil {
		t.Fatalf("apply fragment: %v", err)
	}
	if _, ok := store.services[svc.ID]; ok {
		t.Error("expected the orphaned service to be dropped, not stored")
	}
}
