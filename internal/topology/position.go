package topology

import (
	"math"
	"sort"

	"netvisor/internal/domain"
)

const (
	maxSubnetPositioningIterations = 20
	subnetGridSnap                 = 25.0
	maxSubnetMovePerPass           = 200.0
	subnetRowPadding               = 50.0
)

// positionSubnets lays subnets out row-by-row by layer, then runs an
// iterative horizontal optimiser (≤20 passes) minimising total inter-subnet
// edge length (§4.3.6).
func positionSubnets(g *domain.TopologyGraph, in Inputs) {
	rows := groupSubnetsByLayer(g)
	assignInitialRowPositions(g, rows)

	interSubnet := interSubnetEdgeIndices(g)
	if len(interSubnet) == 0 {
		return
	}

	currentLength := totalEdgeLength(g, interSubnet)

	for pass := 0; pass < maxSubnetPositioningIterations; pass++ {
		snapshot := snapshotPositions(g)

		for _, row := range rows {
			for _, subnetID := range row {
				proposeSubnetMove(g, subnetID, interSubnet)
				enforceNonOverlap(g, row, subnetID)
			}
		}

		newLength := totalEdgeLength(g, interSubnet)
		if newLength < currentLength {
			currentLength = newLength
			continue
		}

		restorePositions(g, snapshot)
		break
	}
}

// groupSubnetsByLayer returns subnet node ids grouped by layer, ordered by
// layer ascending.
func groupSubnetsByLayer(g *domain.TopologyGraph) [][]string {
	byLayer := make(map[int][]string)
	var layers []int
	for _, n := range g.Nodes {
		if n.Kind != domain.NodeKindSubnet {
			continue
		}
		if _, ok := byLayer[n.Layer]; !ok {
			layers = append(layers, n.Layer)
		}
		byLayer[n.Layer] = append(byLayer[n.Layer], n.ID)
	}
	sort.Ints(layers)

	rows := make([][]string, 0, len(layers))
	for _, l := range layers {
		ids := byLayer[l]
		sort.Strings(ids)
		rows = append(rows, ids)
	}
	return rows
}

// assignInitialRowPositions lays out each row left to right with a fixed
// horizontal gap, and each row below the previous with a fixed vertical gap.
func assignInitialRowPositions(g *domain.TopologyGraph, rows [][]string) {
	const rowGapY = 200.0
	y := 0.0
	for _, row := range rows {
		x := 0.0
		for _, id := range row {
			node, ok := g.NodeByID(id)
			if !ok {
				continue
			}
			node.Position = domain.XY{X: x, Y: y}
			x += node.Size.X + subnetRowPadding
		}
		y += rowGapY
	}
}

func totalEdgeLength(g *domain.TopologyGraph, interSubnet []int) float64 {
	total := 0.0
	for _, idx := range interSubnet {
		e := g.Edges[idx]
		sourceNode, okS := g.NodeByID(e.SourceID)
		targetNode, okT := g.NodeByID(e.TargetID)
		if !okS || !okT {
			continue
		}
		a := absoluteCentre(g, sourceNode)
		b := absoluteCentre(g, targetNode)
		total += math.Hypot(a.X-b.X, a.Y-b.Y)
	}
	return total
}

// proposeSubnetMove computes the median-based horizontal move for one
// subnet and applies it, snapped to a 25px grid and clamped to 200px.
func proposeSubnetMove(g *domain.TopologyGraph, subnetID string, interSubnet []int) {
	subnet, ok := g.NodeByID(subnetID)
	if !ok {
		return
	}

	var internalXs, remoteXs []float64
	for _, idx := range interSubnet {
		e := g.Edges[idx]
		sourceNode, okS := g.NodeByID(e.SourceID)
		targetNode, okT := g.NodeByID(e.TargetID)
		if !okS || !okT {
			continue
		}
		if sourceNode.SubnetID == subnetID {
			internalXs = append(internalXs, absoluteCentre(g, sourceNode).X)
			remoteXs = append(remoteXs, absoluteCentre(g, targetNode).X)
		} else if targetNode.SubnetID == subnetID {
			internalXs = append(internalXs, absoluteCentre(g, targetNode).X)
			remoteXs = append(remoteXs, absoluteCentre(g, sourceNode).X)
		}
	}
	if len(internalXs) == 0 {
		return
	}

	move := median(remoteXs) - median(internalXs)
	move = snapToGrid(move, subnetGridSnap)
	if move > maxSubnetMovePerPass {
		move = maxSubnetMovePerPass
	} else if move < -maxSubnetMovePerPass {
		move = -maxSubnetMovePerPass
	}

	subnet.Position.X += move
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func snapToGrid(v, grid float64) float64 {
	return math.Round(v/grid) * grid
}

// enforceNonOverlap nudges subnetID away from any same-row subnet it now
// overlaps, preferring the side matching its current relative position.
func enforceNonOverlap(g *domain.TopologyGraph, row []string, subnetID string) {
	subnet, ok := g.NodeByID(subnetID)
	if !ok {
		return
	}

	for _, otherID := range row {
		if otherID == subnetID {
			continue
		}
		other, ok := g.NodeByID(otherID)
		if !ok {
			continue
		}

		left, right := subnet.Position.X, subnet.Position.X+subnet.Size.X
		oLeft, oRight := other.Position.X, other.Position.X+other.Size.X
		overlap := left < oRight+subnetRowPadding && right+subnetRowPadding > oLeft
		if !overlap {
			continue
		}

		if subnet.Position.X <= other.Position.X {
			subnet.Position.X = other.Position.X - subnet.Size.X - subnetRowPadding
		} else {
			subnet.Position.X = other.Position.X + other.Size.X + subnetRowPadding
		}
	}
}

func snapshotPositions(g *domain.TopologyGraph) map[string]domain.XY {
	snap := make(map[string]domain.XY, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Kind == domain.NodeKindSubnet {
			snap[n.ID] = n.Position
		}
	}
	return snap
}

func restorePositions(g *domain.TopologyGraph, snap map[string]domain.XY) {
	for i := range g.Nodes {
		if pos, ok := snap[g.Nodes[i].ID]; ok {
			g.Nodes[i].Position = pos
		}
	}
}
