package domain

import "testing"

func TestNewSubnetNode(t *testing.T) {
	s := NewSubnet("s1", "10.0.0.0/24", "net1", SubnetTypeLan, SystemSource(), "lan")

	n := NewSubnetNode(s)

	if n.ID != s.ID {
		t.Errorf("expected node ID %s, got %s", s.ID, n.ID)
	}
	if n.Kind != NodeKindSubnet {
		t.Errorf("expected NodeKindSubnet, got %s", n.Kind)
	}
	if n.Layer != SubnetTypeLan.defaultLayer() {
		t.Errorf("expected layer %d, got %d", SubnetTypeLan.defaultLayer(), n.Layer)
	}
}

func TestNewHostNode(t *testing.T) {
	h := NewHost("h1", "box", SystemSource())
	iface := NewInterface("s1", "10.0.0.5")

	n := NewHostNode(h, iface, true)

	if n.ID != iface.ID {
		t.Errorf("expected node ID to be the interface id %s, got %s", iface.ID, n.ID)
	}
	if n.Kind != NodeKindHost {
		t.Errorf("expected NodeKindHost, got %s", n.Kind)
	}
	if n.HostID != h.ID {
		t.Errorf("expected HostID %s, got %s", h.ID, n.HostID)
	}
	if n.SubnetID != iface.SubnetID {
		t.Errorf("expected SubnetID %s, got %s", iface.SubnetID, n.SubnetID)
	}
	if !n.IsInfra {
		t.Error("expected IsInfra to be true")
	}
}
