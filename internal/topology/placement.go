package topology

import (
	"math"
	"sort"

	"netvisor/internal/domain"
)

// Default child size and padding inside a subnet container, matching the
// teacher's layout constants.
const (
	childWidth  = 160.0
	childHeight = 60.0
	paddingX    = 24.0
	paddingY    = 24.0
)

// placeChildNodes runs §4.3.5 per subnet: compute a force vector per
// child from its outgoing inter-subnet edges, sort by force magnitude, map
// each to an ideal grid cell, then spiral-search for the nearest free cell.
func placeChildNodes(g *domain.TopologyGraph, in Inputs) {
	interSubnet := interSubnetEdgeIndices(g)

	childrenBySubnet := make(map[string][]string)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Kind != domain.NodeKindHost {
			continue
		}
		n.Size = domain.XY{X: childWidth, Y: childHeight}
		childrenBySubnet[n.SubnetID] = append(childrenBySubnet[n.SubnetID], n.ID)
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Kind != domain.NodeKindSubnet {
			continue
		}
		children := childrenBySubnet[n.ID]
		if len(children) == 0 {
			continue
		}
		placeChildrenInSubnet(g, children, interSubnet)
		n.Size = containerSize(len(children))
	}
}

// containerSize computes a subnet node's own size from its child grid
// dimensions, matching the teacher's TopologyUtils sizing helper.
func containerSize(n int) domain.XY {
	w, h := gridDimensions(n)
	return domain.XY{
		X: paddingX*2 + float64(w)*(childWidth+paddingX) - paddingX,
		Y: paddingY*2 + float64(h)*(childHeight+paddingY) - paddingY,
	}
}

func gridDimensions(n int) (w, h int) {
	w = int(math.Ceil(math.Sqrt(float64(n))))
	if w == 0 {
		w = 1
	}
	h = int(math.Ceil(float64(n) / float64(w)))
	return w, h
}

// placeChildrenInSubnet assigns each child node a grid cell and an (x,y)
// relative to the subnet's own padding origin.
func placeChildrenInSubnet(g *domain.TopologyGraph, childIDs []string, interSubnet []int) {
	forces := make(map[string]domain.XY, len(childIDs))
	for _, idx := range interSubnet {
		e := g.Edges[idx]
		if contains(childIDs, e.SourceID) {
			forces[e.SourceID] = addXY(forces[e.SourceID], e.SourceHandle.Direction())
		}
		if contains(childIDs, e.TargetID) {
			forces[e.TargetID] = addXY(forces[e.TargetID], e.TargetHandle.Direction())
		}
	}

	maxAbsX, maxAbsY := 0.0, 0.0
	for _, f := range forces {
		maxAbsX = math.Max(maxAbsX, math.Abs(f.X))
		maxAbsY = math.Max(maxAbsY, math.Abs(f.Y))
	}

	normalized := make(map[string]domain.XY, len(childIDs))
	for _, id := range childIDs {
		f := forces[id]
		nx, ny := 0.0, 0.0
		if maxAbsX > 0 {
			nx = f.X / maxAbsX
		}
		if maxAbsY > 0 {
			ny = f.Y / maxAbsY
		}
		normalized[id] = domain.XY{X: nx, Y: ny}
	}

	sorted := append([]string(nil), childIDs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		fi, fj := normalized[sorted[i]], normalized[sorted[j]]
		return math.Max(math.Abs(fi.X), math.Abs(fi.Y)) > math.Max(math.Abs(fj.X), math.Abs(fj.Y))
	})

	w, h := gridDimensions(len(sorted))
	occupied := make(map[[2]int]string)
	cellOf := make(map[string][2]int, len(sorted))

	for _, id := range sorted {
		f := normalized[id]
		idealCol := int(math.Round(f.X * float64(w-1)))
		idealRow := int(math.Round((1 - f.Y) * float64(h-1)))
		col, row := spiralNearestFreeCell(occupied, idealCol, idealRow, w, h)
		occupied[[2]int{col, row}] = id
		cellOf[id] = [2]int{col, row}
	}

	colWidths := make([]float64, w)
	rowHeights := make([]float64, h)
	for _, cell := range cellOf {
		colWidths[cell[0]] = childWidth
		rowHeights[cell[1]] = childHeight
	}

	colX := make([]float64, w)
	x := paddingX
	for c := 0; c < w; c++ {
		colX[c] = x
		x += colWidths[c] + paddingX
	}
	rowY := make([]float64, h)
	y := paddingY
	for r := 0; r < h; r++ {
		rowY[r] = y
		y += rowHeights[r] + paddingY
	}

	for _, id := range sorted {
		cell := cellOf[id]
		node, ok := g.NodeByID(id)
		if !ok {
			continue
		}
		node.Position = domain.XY{X: colX[cell[0]], Y: rowY[cell[1]]}
	}
}

// spiralNearestFreeCell finds the closest unoccupied cell to (col, row)
// within the grid by expanding a square ring outward, clamping to the
// grid's bounds.
func spiralNearestFreeCell(occupied map[[2]int]string, col, row, w, h int) (int, int) {
	col = clampInt(col, 0, w-1)
	row = clampInt(row, 0, h-1)

	if _, taken := occupied[[2]int{col, row}]; !taken {
		return col, row
	}

	maxRadius := w + h
	for radius := 1; radius <= maxRadius; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if abs(dx) != radius && abs(dy) != radius {
					continue
				}
				c, r := clampInt(col+dx, 0, w-1), clampInt(row+dy, 0, h-1)
				if _, taken := occupied[[2]int{c, r}]; !taken {
					return c, r
				}
			}
		}
	}
	return col, row
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func addXY(a, b domain.XY) domain.XY {
	return domain.XY{X: a.X + b.X, Y: a.Y + b.Y}
}
