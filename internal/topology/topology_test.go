package topology

import (
	"testing"

	"netvisor/internal/domain"
)

func twoSubnetHostSetup() Inputs {
	lan := domain.NewSubnet("lan", "10.0.0.0/24", "net1", domain.SubnetTypeLan, domain.SystemSource(), "lan")
	internet := domain.NewSubnet("internet", "0.0.0.0/0", "net1", domain.SubnetTypeInternet, domain.SystemSource(), "internet")

	gw := domain.NewHost("gw", "router", domain.SystemSource())
	gwLan := domain.NewInterface("lan", "10.0.0.1")
	gwWan := domain.NewInterface("internet", "1.2.3.4")
	gw.Interfaces = append(gw.Interfaces, gwLan, gwWan)

	client := domain.NewHost("client", "laptop", domain.SystemSource())
	clientIface := domain.NewInterface("lan", "10.0.0.50")
	client.Interfaces = append(client.Interfaces, clientIface)

	return Inputs{
		Subnets: []*domain.Subnet{lan, internet},
		Hosts:   []*domain.Host{gw, client},
	}
}

func TestBuildConstructsNodesAndEdges(t *testing.T) {
	g := Build(twoSubnetHostSetup())

	subnetNodes, hostNodes := 0, 0
	for _, n := range g.Nodes {
		if n.Kind == domain.NodeKindSubnet {
			subnetNodes++
		} else {
			hostNodes++
		}
	}
	if subnetNodes != 2 {
		t.Errorf("expected 2 subnet nodes, got %d", subnetNodes)
	}
	if hostNodes != 3 {
		t.Errorf("expected 3 host nodes (gw has 2 interfaces, client 1), got %d", hostNodes)
	}

	foundInterfaceEdge := false
	for _, e := range g.Edges {
		if e.EdgeType == domain.EdgeTypeInterface {
			foundInterfaceEdge = true
		}
	}
	if !foundInterfaceEdge {
		t.Error("expected an interface edge for the gateway's two interfaces")
	}
}

func TestBuildAssignsNonZeroSizes(t *testing.T) {
	g := Build(twoSubnetHostSetup())

	for _, n := range g.Nodes {
		if n.Kind == domain.NodeKindHost && (n.Size.X == 0 || n.Size.Y == 0) {
			t.Errorf("expected host node %s to have a nonzero size", n.ID)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	in := twoSubnetHostSetup()

	a := Build(in)
	b := Build(in)

	if len(a.Nodes) != len(b.Nodes) || len(a.Edges) != len(b.Edges) {
		t.Fatal("expected identical node/edge counts across repeated builds")
	}
	for i := range a.Nodes {
		if a.Nodes[i].Position != b.Nodes[i].Position {
			t.Errorf("expected deterministic positions, node %d differs: %+v vs %+v", i, a.Nodes[i].Position, b.Nodes[i].Position)
		}
	}
}

func TestSegmentsIntersect(t *testing.T) {
	t.Run("crossing segments intersect", func(t *testing.T) {
		if !segmentsIntersect(domain.XY{X: 0, Y: 0}, domain.XY{X: 10, Y: 10}, domain.XY{X: 0, Y: 10}, domain.XY{X: 10, Y: 0}) {
			t.Error("expected crossing diagonals to intersect")
		}
	})

	t.Run("parallel segments do not intersect", func(t *testing.T) {
		if segmentsIntersect(domain.XY{X: 0, Y: 0}, domain.XY{X: 10, Y: 0}, domain.XY{X: 0, Y: 5}, domain.XY{X: 10, Y: 5}) {
			t.Error("expected parallel segments to not intersect")
		}
	})
}

func TestGridDimensions(t *testing.T) {
	cases := []struct {
		n          int
		wantW      int
		wantH      int
	}{
		{1, 1, 1},
		{4, 2, 2},
		{5, 3, 2},
		{9, 3, 3},
	}
	for _, c := range cases {
		w, h := gridDimensions(c.n)
		if w != c.wantW || h != c.wantH {
			t.Errorf("gridDimensions(%d) = (%d, %d), want (%d, %d)", c.n, w, h, c.wantW, c.wantH)
		}
	}
}
