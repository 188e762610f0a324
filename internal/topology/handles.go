package topology

import "netvisor/internal/domain"

// assignInitialHandles picks (source_handle, target_handle) for every edge
// via domain.FromSubnetLayers (§4.3.2).
func assignInitialHandles(g *domain.TopologyGraph, in Inputs) {
	subnetOf := subnetIndex(g)
	subnetByID := make(map[string]*domain.Subnet, len(in.Subnets))
	for _, s := range in.Subnets {
		subnetByID[s.ID] = s
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		sourceNode, okS := g.NodeByID(e.SourceID)
		targetNode, okT := g.NodeByID(e.TargetID)
		if !okS || !okT {
			continue
		}
		sourceSubnet, okS := subnetByID[subnetOf[sourceNode.ID]]
		targetSubnet, okT := subnetByID[subnetOf[targetNode.ID]]
		if !okS || !okT {
			continue
		}
		e.SourceHandle, e.TargetHandle = domain.FromSubnetLayers(sourceSubnet, targetSubnet, sourceNode.IsInfra, targetNode.IsInfra)
	}
}

// subnetIndex maps every node id to its subnet id (a SubnetNode maps to
// itself).
func subnetIndex(g *domain.TopologyGraph) map[string]string {
	idx := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		idx[n.ID] = n.SubnetID
	}
	return idx
}

// planAnchors applies §4.3.3 per interface node: count edges by handle,
// identify opposing pairs, and override to a single handle when the
// subnet is crowded enough and a vertical (or horizontal) crossing would
// occur.
func planAnchors(g *domain.TopologyGraph) {
	subnetInterfaceCount := make(map[string]int)
	for _, n := range g.Nodes {
		if n.Kind == domain.NodeKindHost {
			subnetInterfaceCount[n.SubnetID]++
		}
	}

	edgesByNode := make(map[string][]int) // node id -> edge indices where it is an endpoint, excluding intra-subnet edges
	for i, e := range g.Edges {
		sourceNode, okS := g.NodeByID(e.SourceID)
		targetNode, okT := g.NodeByID(e.TargetID)
		if !okS || !okT || sourceNode.SubnetID == targetNode.SubnetID {
			continue
		}
		edgesByNode[e.SourceID] = append(edgesByNode[e.SourceID], i)
		edgesByNode[e.TargetID] = append(edgesByNode[e.TargetID], i)
	}

	for _, n := range g.Nodes {
		if n.Kind != domain.NodeKindHost {
			continue
		}
		indices := edgesByNode[n.ID]
		if len(indices) == 0 {
			continue
		}

		counts := map[domain.EdgeHandle]int{}
		for _, idx := range indices {
			counts[handleForNode(g.Edges[idx], n.ID)]++
		}

		hasUp, hasDown := false, false
		for _, idx := range indices {
			e := g.Edges[idx]
			h := handleForNode(e, n.ID)
			if h != domain.HandleTop && h != domain.HandleBottom {
				continue
			}
			other, ok := g.NodeByID(otherEndpoint(e, n.ID))
			if !ok {
				continue
			}
			if crossesUpward(g, &n, other) {
				hasUp = true
			} else {
				hasDown = true
			}
		}

		opposingVertical := counts[domain.HandleTop] > 0 && counts[domain.HandleBottom] > 0
		opposingHorizontal := counts[domain.HandleLeft] > 0 && counts[domain.HandleRight] > 0
		crowded := subnetInterfaceCount[n.SubnetID] >= 3

		var override domain.EdgeHandle
		switch {
		case crowded && opposingVertical && hasUp && hasDown:
			if n.IsInfra {
				override = domain.HandleLeft
			} else {
				override = domain.HandleRight
			}
		case crowded && opposingHorizontal && hasUp && hasDown:
			if counts[domain.HandleBottom] >= counts[domain.HandleTop] {
				override = domain.HandleBottom
			} else {
				override = domain.HandleTop
			}
		default:
			continue
		}

		for _, idx := range indices {
			setHandleForNode(&g.Edges[idx], n.ID, override)
		}
	}
}

func handleForNode(e domain.Edge, nodeID string) domain.EdgeHandle {
	if e.SourceID == nodeID {
		return e.SourceHandle
	}
	return e.TargetHandle
}

func setHandleForNode(e *domain.Edge, nodeID string, handle domain.EdgeHandle) {
	if e.SourceID == nodeID {
		e.SourceHandle = handle
	} else {
		e.TargetHandle = handle
	}
}

func otherEndpoint(e domain.Edge, nodeID string) string {
	if e.SourceID == nodeID {
		return e.TargetID
	}
	return e.SourceID
}

// crossesUpward reports whether the edge from node to other runs toward a
// lower-layer (upward, toward the Internet) subnet — used by
// would_vertical_edges_cross_middle's up/down test.
func crossesUpward(g *domain.TopologyGraph, node, other *domain.Node) bool {
	return other.Layer < node.Layer
}
