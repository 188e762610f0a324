package domain

import "testing"

func TestHostIntersectsInterfaces(t *testing.T) {
	t.Run("shares an interface", func(t *testing.T) {
		a := NewHost("h1", "box-a", SystemSource())
		a.Interfaces = append(a.Interfaces, NewInterface("s1", "10.0.0.5"))

		b := NewHost("h2", "box-b", SystemSource())
		b.Interfaces = append(b.Interfaces, NewInterface("s1", "10.0.0.5"))

		if !a.IntersectsInterfaces(b) {
			t.Error("expected hosts sharing an interface to intersect")
		}
	})

	t.Run("disjoint interfaces do not intersect", func(t *testing.T) {
		a := NewHost("h1", "box-a", SystemSource())
		a.Interfaces = append(a.Interfaces, NewInterface("s1", "10.0.0.5"))

		b := NewHost("h2", "box-b", SystemSource())
		b.Interfaces = append(b.Interfaces, NewInterface("s1", "10.0.0.6"))

		if a.IntersectsInterfaces(b) {
			t.Error("expected no intersection for disjoint interfaces")
		}
	})
}

func TestHostFindInterfaceAndPort(t *testing.T) {
	h := NewHost("h1", "box", SystemSource())
	h.Interfaces = append(h.Interfaces, NewInterface("s1", "10.0.0.5"))
	h.Ports = append(h.Ports, NewPort(22, ProtocolTCP))

	t.Run("finds a matching interface", func(t *testing.T) {
		if _, ok := h.FindInterface("s1", "10.0.0.5"); !ok {
			t.Error("expected to find interface")
		}
		if _, ok := h.FindInterface("s1", "10.0.0.6"); ok {
			t.Error("expected no match for a different ip")
		}
	})

	t.Run("finds a matching port", func(t *testing.T) {
		if _, ok := h.FindPort(22, ProtocolTCP); !ok {
			t.Error("expected to find port 22/tcp")
		}
		if _, ok := h.FindPort(22, ProtocolUDP); ok {
			t.Error("expected no match for a different protocol")
		}
	})
}

func TestHostServiceIDs(t *testing.T) {
	h := NewHost("h1", "box", SystemSource())

	h.AddServiceID("svc1")
	h.AddServiceID("svc1")

	if len(h.Services) != 1 {
		t.Errorf("expected AddServiceID to dedup, got %d", len(h.Services))
	}

	h.RemoveServiceID("svc1")
	if len(h.Services) != 0 {
		t.Errorf("expected RemoveServiceID to clear the id, got %v", h.Services)
	}
}

func TestHostHasInterfaceInSubnet(t *testing.T) {
	h := NewHost("h1", "box", SystemSource())
	h.Interfaces = append(h.Interfaces, NewInterface("s1", "10.0.0.5"))

	if !h.HasInterfaceInSubnet("s1") {
		t.Error("expected subnet s1 to be present")
	}
	if h.HasInterfaceInSubnet("s2") {
		t.Error("expected subnet s2 to be absent")
	}
}
