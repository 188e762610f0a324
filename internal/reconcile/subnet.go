package reconcile

import (
	"context"
	"fmt"

	"netvisor/internal/domain"
)

// ReconcileSubnet applies §4.2.1: insert if no existing subnet shares the
// dedup key (cidr, network_id); otherwise return the existing subnet,
// appending discovery metadata, unless both sides are Docker-bridge
// discoveries on different hosts, in which case the new subnet is kept
// distinct.
func (e *Engine) ReconcileSubnet(ctx context.Context, candidate *domain.Subnet) (*domain.Subnet, error) {
	cidr, networkID := candidate.DedupKey()

	existing, err := e.store.FindSubnetsByCIDR(ctx, networkID, cidr)
	if err != nil {
		return nil, fmt.Errorf("find subnets by cidr: %w", err)
	}

	for _, other := range existing {
		same, bothDocker := domain.SameDockerHost(other, candidate)
		if bothDocker && !same {
			continue // distinct docker bridges on different hosts, keep separate
		}

		other.Source.Metadata = append(other.Source.Metadata, candidate.Source.Metadata...)
		if err := e.store.PutSubnet(ctx, other); err != nil {
			return nil, fmt.Errorf("put subnet: %w", err)
		}
		return other, nil
	}

	if err := e.store.PutSubnet(ctx, candidate); err != nil {
		return nil, fmt.Errorf("put subnet: %w", err)
	}
	return candidate, nil
}
