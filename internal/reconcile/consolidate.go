package reconcile

import (
	"context"
	"fmt"

	"netvisor/internal/domain"
)

// ConsolidateHosts applies §4.2.4: transfer every service from other onto
// destination, rewriting each service's bindings to reference destination's
// structurally-matching interfaces and ports, merge other into destination
// via the ordinary host upsert rule, then delete other without touching its
// (already-moved) services.
func (e *Engine) ConsolidateHosts(ctx context.Context, networkID, destinationID, otherID string) (*domain.Host, error) {
	destination, err := e.store.GetHost(ctx, destinationID)
	if err != nil {
		return nil, fmt.Errorf("get destination host: %w", err)
	}
	other, err := e.store.GetHost(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("get other host: %w", err)
	}
	if destination == nil || other == nil {
		return nil, domain.ErrNotFound
	}

	svcs, err := e.store.FindServicesForHost(ctx, other.ID)
	if err != nil {
		return nil, fmt.Errorf("find services for other host: %w", err)
	}

	for _, svc := range svcs {
		rebindServiceOntoHost(svc, other, destination)
		svc.HostID = destination.ID
		if err := e.store.PutService(ctx, svc); err != nil {
			return nil, fmt.Errorf("put service: %w", err)
		}
		other.RemoveServiceID(svc.ID)
		destination.AddServiceID(svc.ID)
	}

	mergeHost(destination, other)
	if err := e.store.PutHost(ctx, destination); err != nil {
		return nil, fmt.Errorf("put destination host: %w", err)
	}

	if err := e.recomputeSubnetBackReferences(ctx, destination, domain.ServiceDefUnknownClient, nil); err != nil {
		return nil, fmt.Errorf("recompute subnet back-references: %w", err)
	}

	if err := e.DeleteHost(ctx, networkID, other.ID, false); err != nil {
		return nil, fmt.Errorf("delete consolidated host: %w", err)
	}

	e.logger.Printf("consolidated host %s into %s (%d services moved)", other.ID, destination.ID, len(svcs))
	return destination, nil
}

// rebindServiceOntoHost rewrites a service's interface/port bindings from
// other's structure onto destination's, matching each binding's interface
// by (subnet_id, ip_address). Port ids are derived from (number, protocol),
// so each binding keeps its port id unchanged and ports are not looked up
// on destination. A binding whose source interface has no structural match
// on destination is widened to apply to all interfaces.
func rebindServiceOntoHost(svc *domain.Service, other, destination *domain.Host) {
	for i, b := range svc.Bindings {
		if b.InterfaceID == "" {
			continue
		}
		var sourceIface domain.Interface
		found := false
		for _, iface := range other.Interfaces {
			if iface.ID == b.InterfaceID {
				sourceIface = iface
				found = true
				break
			}
		}
		if !found {
			continue
		}
		if destIface, ok := destination.FindInterface(sourceIface.SubnetID, sourceIface.IPAddress); ok {
			svc.Bindings[i].InterfaceID = destIface.ID
		} else {
			svc.Bindings[i].InterfaceID = ""
		}
	}
}
