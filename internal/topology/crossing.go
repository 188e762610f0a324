package topology

import "netvisor/internal/domain"

const maxCrossingReductionIterations = 10

// reduceCrossings runs the bounded pairwise local-swap algorithm (§4.3.4):
// group host nodes sharing (subnet_id, is_infra, primary_handle), then
// within each group try swapping node pairs' positions, keeping the swap
// iff it strictly reduces the count of crossing inter-subnet edges.
func reduceCrossings(g *domain.TopologyGraph, in Inputs) {
	interSubnet := interSubnetEdgeIndices(g)
	if len(interSubnet) == 0 {
		return
	}

	for iteration := 0; iteration < maxCrossingReductionIterations; iteration++ {
		improved := false
		groups := groupNodesByHandle(g, interSubnet)

		for _, nodeIDs := range groups {
			if len(nodeIDs) < 2 {
				continue
			}
			for i := 0; i < len(nodeIDs); i++ {
				for j := i + 1; j < len(nodeIDs); j++ {
					if trySwap(g, interSubnet, nodeIDs[i], nodeIDs[j]) {
						improved = true
					}
				}
			}
		}

		if !improved {
			break
		}
	}
}

// interSubnetEdgeIndices returns the indices of edges whose endpoints lie
// in different subnets.
func interSubnetEdgeIndices(g *domain.TopologyGraph) []int {
	var out []int
	for i, e := range g.Edges {
		sourceNode, okS := g.NodeByID(e.SourceID)
		targetNode, okT := g.NodeByID(e.TargetID)
		if okS && okT && sourceNode.SubnetID != targetNode.SubnetID {
			out = append(out, i)
		}
	}
	return out
}

// groupNodesByHandle buckets host node ids by (subnet_id, is_infra,
// primary_handle), where primary_handle is the most-frequent handle among
// a node's incident inter-subnet edges.
func groupNodesByHandle(g *domain.TopologyGraph, interSubnet []int) map[groupKey][]string {
	counts := make(map[string]map[domain.EdgeHandle]int)
	for _, idx := range interSubnet {
		e := g.Edges[idx]
		if counts[e.SourceID] == nil {
			counts[e.SourceID] = map[domain.EdgeHandle]int{}
		}
		if counts[e.TargetID] == nil {
			counts[e.TargetID] = map[domain.EdgeHandle]int{}
		}
		counts[e.SourceID][e.SourceHandle]++
		counts[e.TargetID][e.TargetHandle]++
	}

	groups := make(map[groupKey][]string)
	for _, n := range g.Nodes {
		if n.Kind != domain.NodeKindHost {
			continue
		}
		handleCounts, ok := counts[n.ID]
		if !ok {
			continue
		}
		primary := primaryHandle(handleCounts)
		key := groupKey{subnetID: n.SubnetID, isInfra: n.IsInfra, handle: primary}
		groups[key] = append(groups[key], n.ID)
	}
	return groups
}

type groupKey struct {
	subnetID string
	isInfra  bool
	handle   domain.EdgeHandle
}

func primaryHandle(counts map[domain.EdgeHandle]int) domain.EdgeHandle {
	var best domain.EdgeHandle
	bestCount := -1
	// Iterate in LayoutPriority order for determinism on ties.
	for _, h := range []domain.EdgeHandle{domain.HandleTop, domain.HandleBottom, domain.HandleLeft, domain.HandleRight} {
		if counts[h] > bestCount {
			bestCount = counts[h]
			best = h
		}
	}
	return best
}

// trySwap swaps the Position of node a and node b, keeps the swap iff it
// strictly reduces the number of crossing inter-subnet edges, and reverts
// otherwise.
func trySwap(g *domain.TopologyGraph, interSubnet []int, aID, bID string) bool {
	a, okA := g.NodeByID(aID)
	b, okB := g.NodeByID(bID)
	if !okA || !okB {
		return false
	}

	before := countCrossings(g, interSubnet)

	a.Position, b.Position = b.Position, a.Position

	after := countCrossings(g, interSubnet)
	if after < before {
		return true
	}

	a.Position, b.Position = b.Position, a.Position
	return false
}

// countCrossings counts pairwise segment intersections among inter-subnet
// edges, using each endpoint's absolute centre (position + size/2 +
// subnet offset).
func countCrossings(g *domain.TopologyGraph, interSubnet []int) int {
	segments := make([][2]domain.XY, 0, len(interSubnet))
	for _, idx := range interSubnet {
		e := g.Edges[idx]
		sourceNode, okS := g.NodeByID(e.SourceID)
		targetNode, okT := g.NodeByID(e.TargetID)
		if !okS || !okT {
			continue
		}
		segments = append(segments, [2]domain.XY{absoluteCentre(g, sourceNode), absoluteCentre(g, targetNode)})
	}

	count := 0
	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			if segmentsIntersect(segments[i][0], segments[i][1], segments[j][0], segments[j][1]) {
				count++
			}
		}
	}
	return count
}

// absoluteCentre returns a node's centre point: its subnet's position plus
// its own position plus half its size.
func absoluteCentre(g *domain.TopologyGraph, n *domain.Node) domain.XY {
	offset := domain.XY{}
	if subnet, ok := g.NodeByID(n.SubnetID); ok && subnet.Kind == domain.NodeKindSubnet {
		offset = subnet.Position
	}
	return domain.XY{
		X: offset.X + n.Position.X + n.Size.X/2,
		Y: offset.Y + n.Position.Y + n.Size.Y/2,
	}
}

// segmentsIntersect is the standard 4-direction test with a collinear-
// on-segment fallback (§4.3.4).
func segmentsIntersect(p1, p2, p3, p4 domain.XY) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func direction(a, b, c domain.XY) float64 {
	return (c.X-a.X)*(b.Y-a.Y) - (c.Y-a.Y)*(b.X-a.X)
}

func onSegment(a, b, p domain.XY) bool {
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}
