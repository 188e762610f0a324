package reconcile

import (
	"context"
	"testing"

	"netvisor/internal/domain"
)

func TestConsolidateHostsTransfersServices(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, nil)
	ctx := context.Background()

	destIface := domain.NewInterface("s1", "10.0.0.5")
	destination := domain.NewHost("dest", "box", domain.SystemSource())
	destination.Interfaces = append(destination.Interfaces, destIface)
	store.PutHost(ctx, destination)

	otherIface := domain.NewInterface("s1", "10.0.0.6")
	other := domain.NewHost("other", "box-vm", domain.SystemSource())
	other.Interfaces = append(other.Interfaces, otherIface)
	store.PutHost(ctx, other)

	svc := domain.NewService("svc1", "other", "ssh", domain.ServiceDefSSH, domain.SystemSource())
	svc.AddBinding(domain.Binding{ID: "b1", Kind: domain.BindingL4, PortID: "22/tcp", InterfaceID: otherIface.ID})
	store.PutService(ctx, svc)
	other.AddServiceID(svc.ID)
	store.PutHost(ctx, other)

	got, err := e.ConsolidateHosts(ctx, "net1", "dest", "other")
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	if got.ID != "dest" {
		t.Errorf("expected destination host returned, got %s", got.ID)
	}

	if _, ok := store.hosts["other"]; ok {
		t.Error("expected other host deleted after consolidation")
	}

	moved, ok := store.services["svc1"]
	if !ok {
		t.Fatal("expected service to survive consolidation")
	}
	if moved.HostID != "dest" {
		t.Errorf("expected service host_id rewritten to dest, got %s", moved.HostID)
	}

	found := false
	for _, id := range got.Services {
		if id == "svc1" {
			found = true
		}
	}
	if !found {
		t.Error("expected destination host to list the moved service")
	}
}
