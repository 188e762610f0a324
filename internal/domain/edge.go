package domain

// EdgeType is the kind of topology connection.
type EdgeType string

const (
	EdgeTypeInterface         EdgeType = "interface"
	EdgeTypeGroup             EdgeType = "group"
	EdgeTypeServiceVirtualize EdgeType = "service_virtualization"
)

// EdgeHandle is the side of a node an edge emerges from.
type EdgeHandle string

const (
	HandleTop    EdgeHandle = "top"
	HandleBottom EdgeHandle = "bottom"
	HandleLeft   EdgeHandle = "left"
	HandleRight  EdgeHandle = "right"
)

// LayoutPriority orders handles for deterministic grouping during child
// placement (§4.3.5): Top, Bottom, Left, Right.
func (h EdgeHandle) LayoutPriority() int {
	switch h {
	case HandleTop:
		return 0
	case HandleBottom:
		return 1
	case HandleLeft:
		return 2
	case HandleRight:
		return 3
	default:
		return 255
	}
}

// Direction returns the unit force vector a handle contributes during
// child-node placement (§4.3.5): Top=(0,1), Bottom=(0,-1), Left=(-1,0),
// Right=(1,0).
func (h EdgeHandle) Direction() XY {
	switch h {
	case HandleTop:
		return XY{X: 0, Y: 1}
	case HandleBottom:
		return XY{X: 0, Y: -1}
	case HandleLeft:
		return XY{X: -1, Y: 0}
	case HandleRight:
		return XY{X: 1, Y: 0}
	default:
		return XY{}
	}
}

// Opposite returns the handle on the opposing side.
func (h EdgeHandle) Opposite() EdgeHandle {
	switch h {
	case HandleTop:
		return HandleBottom
	case HandleBottom:
		return HandleTop
	case HandleLeft:
		return HandleRight
	case HandleRight:
		return HandleLeft
	default:
		return h
	}
}

// Edge connects two interface-bearing Nodes by their interface ids.
type Edge struct {
	SourceID     string     `json:"source_id"`
	TargetID     string     `json:"target_id"`
	EdgeType     EdgeType   `json:"edge_type"`
	Label        string     `json:"label"`
	SourceHandle EdgeHandle `json:"source_handle"`
	TargetHandle EdgeHandle `json:"target_handle"`
}

// FromSubnetLayers picks (source_handle, target_handle) for an edge
// crossing (or staying within) subnets, per §4.3.2.
func FromSubnetLayers(sourceSubnet, targetSubnet *Subnet, sourceIsInfra, targetIsInfra bool) (EdgeHandle, EdgeHandle) {
	if sourceSubnet.ID == targetSubnet.ID {
		// Neutral default for intra-subnet edges; anchor planning (§4.3.3)
		// overrides this once the node's full edge set is known.
		return HandleTop, HandleTop
	}

	sourceLayer := sourceSubnet.SubnetType.defaultLayer()
	targetLayer := targetSubnet.SubnetType.defaultLayer()

	switch {
	case sourceLayer < targetLayer:
		return HandleBottom, HandleTop
	case sourceLayer > targetLayer:
		return HandleTop, HandleBottom
	}

	sourcePriority := sourceSubnet.SubnetType.layerPriority()
	targetPriority := targetSubnet.SubnetType.layerPriority()

	flowsRight := sourcePriority <= targetPriority
	sourceHandle := HandleRight
	targetHandle := HandleLeft
	if !flowsRight {
		sourceHandle, targetHandle = HandleLeft, HandleRight
	}
	if sourceIsInfra {
		sourceHandle = HandleBottom
	}
	if targetIsInfra {
		targetHandle = HandleBottom
	}
	return sourceHandle, targetHandle
}
