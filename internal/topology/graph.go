// Package topology builds a deterministic (nodes, edges) layout from a
// network's subnets, hosts, services, and host-groups (§4.3). Nothing here
// is stored: a fresh TopologyGraph is computed on every layout request.
package topology

import "netvisor/internal/domain"

// Inputs is the full set of entities a layout request needs.
type Inputs struct {
	Subnets    []*domain.Subnet
	Hosts      []*domain.Host
	Services   []*domain.Service
	HostGroups []*domain.HostGroup
}

// Build runs the full layout pipeline (§4.3.1 through §4.3.6) and returns
// the positioned graph.
func Build(in Inputs) *domain.TopologyGraph {
	g := constructGraph(in)
	assignInitialHandles(g, in)
	planAnchors(g)
	reduceCrossings(g, in)
	placeChildNodes(g, in)
	positionSubnets(g, in)
	return g
}

// constructGraph emits SubnetNodes and HostNodes and the three edge kinds
// (§4.3.1), leaving every edge's handles unset — handle assignment happens
// in a later pass.
func constructGraph(in Inputs) *domain.TopologyGraph {
	g := domain.NewTopologyGraph()

	subnetByID := make(map[string]*domain.Subnet, len(in.Subnets))
	for _, s := range in.Subnets {
		subnetByID[s.ID] = s
		g.AddNode(domain.NewSubnetNode(s))
	}

	infraByHostSubnet := infraFlags(in)

	for _, h := range in.Hosts {
		for _, iface := range h.Interfaces {
			if _, ok := subnetByID[iface.SubnetID]; !ok {
				continue
			}
			isInfra := infraByHostSubnet[hostSubnetKey{h.ID, iface.SubnetID}]
			g.AddNode(domain.NewHostNode(h, iface, isInfra))
		}
	}

	addInterfaceEdges(g, in, subnetByID)
	addGroupEdges(g, in)
	addContainerizedServiceEdges(g, in, subnetByID)

	return g
}

type hostSubnetKey struct {
	hostID, subnetID string
}

// infraFlags computes, for every (host, subnet) pair, whether the host has
// at least one infra service (DNS/gateway/proxy) bound to an interface in
// that subnet.
func infraFlags(in Inputs) map[hostSubnetKey]bool {
	ifaceSubnet := make(map[string]string) // interface id -> subnet id
	hostByIface := make(map[string]string) // interface id -> host id
	for _, h := range in.Hosts {
		for _, iface := range h.Interfaces {
			ifaceSubnet[iface.ID] = iface.SubnetID
			hostByIface[iface.ID] = h.ID
		}
	}

	flags := make(map[hostSubnetKey]bool)
	for _, svc := range in.Services {
		if !svc.ServiceDefinition.IsInfra() {
			continue
		}
		for _, b := range svc.Bindings {
			if b.InterfaceID == "" {
				// Applies to every interface of the owning host.
				for _, h := range in.Hosts {
					if h.ID != svc.HostID {
						continue
					}
					for _, iface := range h.Interfaces {
						flags[hostSubnetKey{h.ID, iface.SubnetID}] = true
					}
				}
				continue
			}
			subnetID, ok := ifaceSubnet[b.InterfaceID]
			if !ok {
				continue
			}
			flags[hostSubnetKey{svc.HostID, subnetID}] = true
		}
	}
	return flags
}

// addInterfaceEdges emits, for each host with ≥2 interfaces, edges between
// the first interface and each other interface, skipping any endpoint in a
// container-oriented subnet.
func addInterfaceEdges(g *domain.TopologyGraph, in Inputs, subnetByID map[string]*domain.Subnet) {
	for _, h := range in.Hosts {
		if len(h.Interfaces) < 2 {
			continue
		}
		first := h.Interfaces[0]
		firstSubnet, ok := subnetByID[first.SubnetID]
		if !ok || firstSubnet.SubnetType.IsForContainers() {
			continue
		}
		for _, other := range h.Interfaces[1:] {
			otherSubnet, ok := subnetByID[other.SubnetID]
			if !ok || otherSubnet.SubnetType.IsForContainers() {
				continue
			}
			g.AddEdge(domain.Edge{
				SourceID: first.ID,
				TargetID: other.ID,
				EdgeType: domain.EdgeTypeInterface,
				Label:    h.Name,
			})
		}
	}
}

// addGroupEdges emits, per host-group, edges between consecutive services'
// primary interfaces, labelled with the group's name.
func addGroupEdges(g *domain.TopologyGraph, in Inputs) {
	svcByID := make(map[string]*domain.Service, len(in.Services))
	for _, svc := range in.Services {
		svcByID[svc.ID] = svc
	}

	for _, group := range in.HostGroups {
		for i := 0; i+1 < len(group.ServiceSequence); i++ {
			a, okA := svcByID[group.ServiceSequence[i]]
			b, okB := svcByID[group.ServiceSequence[i+1]]
			if !okA || !okB {
				continue
			}
			sourceIface, okA := a.PrimaryInterfaceID()
			targetIface, okB := b.PrimaryInterfaceID()
			if !okA || !okB {
				continue
			}
			g.AddEdge(domain.Edge{
				SourceID: sourceIface,
				TargetID: targetIface,
				EdgeType: domain.EdgeTypeGroup,
				Label:    group.Name,
			})
		}
	}
}

// addContainerizedServiceEdges emits, for each service with containers, an
// edge from the owning host's first interface to the service's binding
// interface within a container subnet of the same host.
func addContainerizedServiceEdges(g *domain.TopologyGraph, in Inputs, subnetByID map[string]*domain.Subnet) {
	hostByID := make(map[string]*domain.Host, len(in.Hosts))
	for _, h := range in.Hosts {
		hostByID[h.ID] = h
	}

	for _, svc := range in.Services {
		if len(svc.Containers) == 0 {
			continue
		}
		host, ok := hostByID[svc.HostID]
		if !ok || len(host.Interfaces) == 0 {
			continue
		}
		first := host.Interfaces[0]

		ifaceID, ok := svc.PrimaryInterfaceID()
		if !ok {
			continue
		}
		var bindingSubnet *domain.Subnet
		for _, iface := range host.Interfaces {
			if iface.ID == ifaceID {
				bindingSubnet = subnetByID[iface.SubnetID]
				break
			}
		}
		if bindingSubnet == nil || !bindingSubnet.SubnetType.IsForContainers() {
			continue
		}

		g.AddEdge(domain.Edge{
			SourceID: first.ID,
			TargetID: ifaceID,
			EdgeType: domain.EdgeTypeServiceVirtualize,
			Label:    svc.Name,
		})
	}
}
