package daemon

import (
	"net"
	"sort"

	"netvisor/internal/domain"
)

// Target is one address the pipeline will probe, carrying enough context to
// build an Interface and select probe behavior (ARP is skipped on VPN
// tunnels, for instance).
type Target struct {
	IP         string
	SubnetID   string
	SubnetCIDR string
	SubnetType domain.SubnetType
}

// infraOctets are liveness-priority positions 10-15, assigned in the fixed
// order the octets are listed: router/infra addresses administrators
// conventionally place early in a subnet.
var infraOctets = map[int]int{
	2:   10,
	3:   11,
	10:  12,
	100: 13,
	252: 14,
	253: 15,
}

// livenessPriority scores an address by how likely it is to be a live,
// interesting host, lowest first. It drives scan emission order only —
// probes still run concurrently, so completion order is not guaranteed to
// follow it.
func livenessPriority(ip string) int {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return 9999
	}
	v4 := parsed.To4()
	if v4 == nil {
		return 9999 // IPv6: lowest priority, probed last
	}

	octet := int(v4[3])
	switch {
	case octet == 1:
		return 1
	case octet == 254:
		return 2
	case octet == 0 || octet == 255:
		return 9998 // network/broadcast address: never live, skip near-last
	}
	if p, ok := infraOctets[octet]; ok {
		return p
	}
	switch {
	case octet >= 4 && octet <= 9:
		return 20 + octet
	case octet >= 11 && octet <= 20:
		return 30 + octet
	case octet >= 21 && octet <= 30:
		return 50 + octet
	case octet >= 31 && octet <= 50:
		return 100 + octet
	case octet >= 51 && octet <= 100:
		return 200 + octet
	case octet >= 101 && octet <= 150:
		return 400 + octet
	case octet >= 151 && octet <= 200:
		return 600 + octet
	case octet >= 201 && octet <= 251:
		return 800 + octet
	default:
		return 9997
	}
}

// sortByScanOrder orders targets by livenessPriority, breaking ties by the
// natural (byte) ordering of the address so the order is reproducible.
func sortByScanOrder(targets []Target) {
	sort.Slice(targets, func(i, j int) bool {
		pi, pj := livenessPriority(targets[i].IP), livenessPriority(targets[j].IP)
		if pi != pj {
			return pi < pj
		}
		return natAddrLess(targets[i].IP, targets[j].IP)
	})
}

// natAddrLess compares two addresses by their parsed byte representation,
// falling back to a plain string compare for anything net.ParseIP rejects.
func natAddrLess(a, b string) bool {
	ia, ib := net.ParseIP(a), net.ParseIP(b)
	if ia == nil || ib == nil {
		return a < b
	}
	a4, b4 := ia.To4(), ib.To4()
	if a4 != nil && b4 != nil {
		for i := range a4 {
			if a4[i] != b4[i] {
				return a4[i] < b4[i]
			}
		}
		return false
	}
	return a < b
}
