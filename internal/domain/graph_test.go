package domain

import "testing"

func TestTopologyGraphAddAndLookup(t *testing.T) {
	g := NewTopologyGraph()

	s := NewSubnet("s1", "10.0.0.0/24", "net1", SubnetTypeLan, SystemSource(), "lan")
	subnetNode := NewSubnetNode(s)
	g.AddNode(subnetNode)

	h := NewHost("h1", "box", SystemSource())
	iface := NewInterface("s1", "10.0.0.5")
	hostNode := NewHostNode(h, iface, false)
	g.AddNode(hostNode)

	g.AddEdge(Edge{
		SourceID: hostNode.ID,
		TargetID: subnetNode.ID,
		EdgeType: EdgeTypeInterface,
	})

	if len(g.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}

	t.Run("finds existing node by id", func(t *testing.T) {
		found, ok := g.NodeByID(subnetNode.ID)
		if !ok {
			t.Fatal("expected subnet node to be found")
		}
		if found.Kind != NodeKindSubnet {
			t.Errorf("expected NodeKindSubnet, got %s", found.Kind)
		}
	})

	t.Run("reports missing node", func(t *testing.T) {
		_, ok := g.NodeByID("does-not-exist")
		if ok {
			t.Error("expected lookup to fail for unknown id")
		}
	})
}
