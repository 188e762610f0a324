// Package domain defines the core entities of the NetVisor network
// inventory system.
//
// # Core Types
//
// Subnet, Host, and Service are the canonical inventory entities: a Host
// has Interfaces placing it in one or more Subnets, and Services bind to
// a Host's ports. Dedup keys on each type (Subnet.DedupKey,
// Host.IntersectsInterfaces, Service.SharesPort) drive reconciliation when
// daemons report overlapping discoveries.
//
// # Topology
//
// Node and Edge are derived, not stored: TopologyGraph is rebuilt from the
// current Subnet/Host/Service set on every layout request. EdgeHandle and
// FromSubnetLayers encode which side of a node an edge attaches to.
//
// # Service matching
//
// Pattern is a small matcher algebra (AnyPort, AllPort, AnyResponse,
// WebService, MacVendor, AnyOf/AllOf, and infra-role patterns like
// IsGatewayIP) evaluated against Evidence gathered for a host. Capability
// aggregates ProbeEvidence from multiple probes into a single confidence
// score.
//
// # Sessions
//
// DiscoverySession and Daemon track one bounded discovery run and the
// daemon that reported it.
//
// # Design principles
//
// - No database or transport dependencies.
// - Dedup and matching logic lives on the types themselves; reconciliation
// orchestration lives in internal/reconcile.
package domain
