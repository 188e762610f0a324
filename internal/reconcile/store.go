// Package reconcile implements the entity reconciliation engine: merging
// newly discovered subnets, hosts, and services into the canonical store
// while preserving dedup keys and back-reference invariants (§4.2 of the
// system design).
package reconcile

import (
	"context"

	"netvisor/internal/domain"
)

// Store is the persistence collaborator the reconciliation engine drives.
// Implementations (in-memory or SQLite-backed) are responsible only for
// storage; every dedup decision and invariant is enforced here.
type Store interface {
	FindSubnetsByCIDR(ctx context.Context, networkID, cidr string) ([]*domain.Subnet, error)
	GetSubnet(ctx context.Context, id string) (*domain.Subnet, error)
	PutSubnet(ctx context.Context, subnet *domain.Subnet) error

	FindHostsIntersecting(ctx context.Context, networkID string, host *domain.Host) ([]*domain.Host, error)
	GetHost(ctx context.Context, id string) (*domain.Host, error)
	PutHost(ctx context.Context, host *domain.Host) error
	DeleteHost(ctx context.Context, id string) error

	FindServicesForHost(ctx context.Context, hostID string) ([]*domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	PutService(ctx context.Context, svc *domain.Service) error
	DeleteServicesForHost(ctx context.Context, hostID string) error

	SubnetsForHost(ctx context.Context, hostID string) ([]*domain.Subnet, error)
	AllHostGroups(ctx context.Context, networkID string) ([]*domain.HostGroup, error)
	PutHostGroup(ctx context.Context, group *domain.HostGroup) error
}
