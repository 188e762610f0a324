package reconcile

import (
	"context"
	"fmt"

	"netvisor/internal/domain"
)

// ReconcileHost applies §4.2.2: insert if no existing host's interface set
// intersects the candidate's; otherwise upsert-merge interfaces (union by
// subnet_id+ip), ports (union by number+protocol), and service id lists,
// filling hostname/description only when the existing value is empty, then
// recompute subnet back-references for the host's current interface set.
func (e *Engine) ReconcileHost(ctx context.Context, networkID string, candidate *domain.Host) (*domain.Host, error) {
	matches, err := e.store.FindHostsIntersecting(ctx, networkID, candidate)
	if err != nil {
		return nil, fmt.Errorf("find intersecting hosts: %w", err)
	}

	var result *domain.Host
	if len(matches) == 0 {
		result = candidate
	} else {
		result = matches[0]
		mergeHost(result, candidate)
	}

	if err := e.store.PutHost(ctx, result); err != nil {
		return nil, fmt.Errorf("put host: %w", err)
	}

	if err := e.recomputeSubnetBackReferences(ctx, result, domain.ServiceDefUnknownClient, nil); err != nil {
		return nil, fmt.Errorf("recompute subnet back-references: %w", err)
	}

	return result, nil
}

// mergeHost applies the upsert-merge rule onto existing in place.
func mergeHost(existing, incoming *domain.Host) {
	for _, iface := range incoming.Interfaces {
		if _, ok := existing.FindInterface(iface.SubnetID, iface.IPAddress); !ok {
			existing.Interfaces = append(existing.Interfaces, iface)
		}
	}
	for _, port := range incoming.Ports {
		if _, ok := existing.FindPort(port.Number, port.Protocol); !ok {
			existing.Ports = append(existing.Ports, port)
		}
	}
	for _, svcID := range incoming.Services {
		existing.AddServiceID(svcID)
	}
	if existing.Hostname == nil || *existing.Hostname == "" {
		existing.Hostname = incoming.Hostname
	}
	if existing.Description == nil || *existing.Description == "" {
		existing.Description = incoming.Description
	}
	existing.Source.Metadata = append(existing.Source.Metadata, incoming.Source.Metadata...)
	existing.UpdatedAt = incoming.UpdatedAt
}

// recomputeSubnetBackReferences walks the subnets the store returns from
// SubnetsForHost: it strips the host's references from any of them it no
// longer has an interface in, lists it under Hosts in the rest, and, when
// def is DNS server, gateway or reverse proxy, adds it to or removes it from
// that role's slice according to boundSubnetIDs. Host upsert and
// consolidation pass ServiceDefUnknownClient, so no role slice is touched;
// service upsert passes the service's definition (§4.2.2, §4.2.3).
func (e *Engine) recomputeSubnetBackReferences(ctx context.Context, host *domain.Host, def domain.ServiceDefinitionKind, boundSubnetIDs map[string]bool) error {
	subnets, err := e.store.SubnetsForHost(ctx, host.ID)
	if err != nil {
		return fmt.Errorf("subnets for host: %w", err)
	}

	for _, subnet := range subnets {
		hasInterface := host.HasInterfaceInSubnet(subnet.ID)

		if !hasInterface {
			subnet.RemoveHostReferences(host.ID)
			if err := e.store.PutSubnet(ctx, subnet); err != nil {
				return fmt.Errorf("put subnet: %w", err)
			}
			continue
		}

		subnet.Hosts = addIDUnlessPresent(subnet.Hosts, host.ID)

		bound := boundSubnetIDs != nil && boundSubnetIDs[subnet.ID]
		switch {
		case def == domain.ServiceDefDNSServer:
			subnet.DNSResolvers = toggleID(subnet.DNSResolvers, host.ID, bound)
		case def == domain.ServiceDefGateway:
			subnet.Gateways = toggleID(subnet.Gateways, host.ID, bound)
		case def == domain.ServiceDefReverseProxy:
			subnet.ReverseProxies = toggleID(subnet.ReverseProxies, host.ID, bound)
		}

		if err := e.store.PutSubnet(ctx, subnet); err != nil {
			return fmt.Errorf("put subnet: %w", err)
		}
	}
	return nil
}

func addIDUnlessPresent(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func toggleID(ids []string, id string, present bool) []string {
	without := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			without = append(without, existing)
		}
	}
	if present {
		return append(without, id)
	}
	return without
}

// DeleteHost applies §4.2.5: strip the host id from every subnet's back
// references, optionally remove its services, strip it from host-group
// membership, then delete the row.
func (e *Engine) DeleteHost(ctx context.Context, networkID, hostID string, deleteServices bool) error {
	subnets, err := e.store.SubnetsForHost(ctx, hostID)
	if err != nil {
		return fmt.Errorf("subnets for host: %w", err)
	}
	for _, subnet := range subnets {
		subnet.RemoveHostReferences(hostID)
		if err := e.store.PutSubnet(ctx, subnet); err != nil {
			return fmt.Errorf("put subnet: %w", err)
		}
	}

	if deleteServices {
		if err := e.store.DeleteServicesForHost(ctx, hostID); err != nil {
			return fmt.Errorf("delete services for host: %w", err)
		}
	}

	groups, err := e.store.AllHostGroups(ctx, networkID)
	if err != nil {
		return fmt.Errorf("list host groups: %w", err)
	}
	for _, group := range groups {
		before := len(group.MemberHostIDs)
		group.RemoveHostReferences(hostID)
		if len(group.MemberHostIDs) != before {
			if err := e.store.PutHostGroup(ctx, group); err != nil {
				return fmt.Errorf("put host group: %w", err)
			}
		}
	}

	if err := e.store.DeleteHost(ctx, hostID); err != nil {
		return fmt.Errorf("delete host: %w", err)
	}
	e.logger.Printf("deleted host %s (delete_services=%v)", hostID, deleteServices)
	return nil
}
