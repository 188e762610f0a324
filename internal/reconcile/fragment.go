package reconcile

import (
	"context"
	"fmt"

	"netvisor/internal/domain"
)

// ApplyFragment reconciles one DiscoveryFragment in dependency order:
// subnets first (hosts reference them by id), then hosts (services
// reference them by id), then services. Subnet and host ids are
// content-derived by the daemon (networkID+cidr, and the probe's interface
// key respectively), so a dedup match almost always returns the same id the
// candidate already carried — but when it doesn't (the same-Docker-host
// exception in ReconcileSubnet, or an interface-intersection merge in
// ReconcileHost), every downstream reference within the fragment is
// rewritten to the canonical id before being reconciled itself.
func (e *Engine) ApplyFragment(ctx context.Context, networkID string, fragment *domain.DiscoveryFragment) error {
	subnetIDs := make(map[string]string, len(fragment.Subnets))
	for _, subnet := range fragment.Subnets {
		canonical, err := e.ReconcileSubnet(ctx, subnet)
		if err != nil {
			return fmt.Errorf("reconcile subnet %s: %w", subnet.ID, err)
		}
		subnetIDs[subnet.ID] = canonical.ID
	}

	hostIDs := make(map[string]string, len(fragment.Hosts))
	canonicalHosts := make(map[string]*domain.Host, len(fragment.Hosts))
	for _, host := range fragment.Hosts {
		originalID := host.ID
		for i, iface := range host.Interfaces {
			if canonical, ok := subnetIDs[iface.SubnetID]; ok {
				host.Interfaces[i].SubnetID = canonical
			}
		}

		canonical, err := e.ReconcileHost(ctx, networkID, host)
		if err != nil {
			return fmt.Errorf("reconcile host %s: %w", originalID, err)
		}
		hostIDs[originalID] = canonical.ID
		canonicalHosts[canonical.ID] = canonical
	}

	for _, svc := range fragment.Services {
		hostID, ok := hostIDs[svc.HostID]
		if !ok {
			hostID = svc.HostID
		}
		host := canonicalHosts[hostID]
		if host == nil {
			var err error
			host, err = e.hostByID(ctx, hostID)
			if err != nil {
				return fmt.Errorf("load host %s for service %s: %w", hostID, svc.ID, err)
			}
			if host == nil {
				e.logger.Printf("reconcile: dropping service %s: host %s not found", svc.ID, hostID)
				continue
			}
		}
		svc.HostID = host.ID

		if _, err := e.ReconcileService(ctx, host, svc); err != nil {
			return fmt.Errorf("reconcile service %s: %w", svc.ID, err)
		}
	}

	return nil
}

func (e *Engine) hostByID(ctx context.Context, id string) (*domain.Host, error) {
	return e.store.GetHost(ctx, id)
}
