package reconcile

import (
	"context"
	"fmt"

	"netvisor/internal/domain"
)

// ReconcileService applies §4.2.3: two services on the same host are equal
// iff their service_definition matches and they share a bound port;
// matching services are merged by unioning bindings, then subnet back
// references for infra service kinds are recomputed against the host's
// current bindings.
func (e *Engine) ReconcileService(ctx context.Context, host *domain.Host, candidate *domain.Service) (*domain.Service, error) {
	existingSvcs, err := e.store.FindServicesForHost(ctx, host.ID)
	if err != nil {
		return nil, fmt.Errorf("find services for host: %w", err)
	}

	var result *domain.Service
	for _, existing := range existingSvcs {
		if existing.ServiceDefinition == candidate.ServiceDefinition && existing.SharesPort(candidate) {
			for _, b := range candidate.Bindings {
				existing.AddBinding(b)
			}
			existing.UpdatedAt = candidate.UpdatedAt
			result = existing
			break
		}
	}
	if result == nil {
		result = candidate
	}

	if err := e.store.PutService(ctx, result); err != nil {
		return nil, fmt.Errorf("put service: %w", err)
	}

	host.AddServiceID(result.ID)
	if err := e.store.PutHost(ctx, host); err != nil {
		return nil, fmt.Errorf("put host: %w", err)
	}

	if result.ServiceDefinition.IsInfra() {
		boundSubnetIDs := boundSubnetsForService(host, result)
		if err := e.recomputeSubnetBackReferences(ctx, host, result.ServiceDefinition, boundSubnetIDs); err != nil {
			return nil, fmt.Errorf("recompute subnet back-references: %w", err)
		}
	}

	return result, nil
}

// boundSubnetsForService resolves a service's bindings to the set of subnet
// ids the service is reachable from: an interface-scoped binding resolves
// to that interface's subnet; a binding with no interface restriction
// applies to every subnet the host has an interface in.
func boundSubnetsForService(host *domain.Host, svc *domain.Service) map[string]bool {
	bound := make(map[string]bool)
	for _, b := range svc.Bindings {
		if b.AppliesToAllInterfaces() {
			for _, iface := range host.Interfaces {
				bound[iface.SubnetID] = true
			}
			continue
		}
		for _, iface := range host.Interfaces {
			if iface.ID == b.InterfaceID {
				bound[iface.SubnetID] = true
			}
		}
	}
	return bound
}

// MatchServiceDefinitions evaluates every pattern in the catalogue against
// a host's probe evidence (§4.2.6) and returns the services the matching
// definitions produce, bound to the interface+port the evidence was
// gathered on.
func MatchServiceDefinitions(catalogue []ServiceCatalogueEntry, host *domain.Host, iface domain.Interface, evidence domain.Evidence) []*domain.Service {
	var matched []*domain.Service
	for _, entry := range catalogue {
		if !entry.Pattern.Match(evidence) {
			continue
		}
		svc := domain.NewService(
			fmt.Sprintf("%s/%s", host.ID, entry.Kind),
			host.ID,
			entry.Name,
			entry.Kind,
			host.Source,
		)
		for _, port := range entry.BindPorts(evidence) {
			svc.AddBinding(domain.Binding{
				ID:          fmt.Sprintf("%s/%s", iface.ID, port.ID),
				Kind:        domain.BindingL4,
				PortID:      port.ID,
				InterfaceID: iface.ID,
			})
		}
		matched = append(matched, svc)
	}
	if len(matched) == 0 {
		matched = append(matched, domain.NewService(
			fmt.Sprintf("%s/%s", host.ID, domain.ServiceDefUnknownClient),
			host.ID,
			"Unknown Client",
			domain.ServiceDefUnknownClient,
			host.Source,
		))
	}
	return matched
}

// ServiceCatalogueEntry is one row of the fixed service-definition
// catalogue (§4.2.6): a named kind, its matching pattern, and the ports a
// match should bind to.
type ServiceCatalogueEntry struct {
	Kind    domain.ServiceDefinitionKind
	Name    string
	Pattern domain.Pattern
	// BindPorts selects which of the evidence's open ports this
	// definition should bind to when it matches; most definitions bind to
	// every port the pattern itself matched against.
	BindPorts func(evidence domain.Evidence) []domain.Port
}
