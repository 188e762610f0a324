package daemon

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"

	"netvisor/internal/domain"
)

// maxSubnetTargets caps a single subnet's expansion, grounded in the
// teacher's scanner.expandCIDR safety valve: a misconfigured /8 must not
// turn one discovery session into an unbounded scan.
const maxSubnetTargets = 1024

// EnumerateTargets builds the scan-ordered target list for one discovery
// run (§4.1 target enumeration). Network discovery walks the daemon's own
// non-loopback IPv4 interfaces; Docker discovery walks the address ranges of
// the Docker bridge subnets; self-report scans only the daemon's own
// interfaces.
func EnumerateTargets(discoveryType domain.DiscoveryType, networkID string) ([]Target, error) {
	var targets []Target
	var err error

	switch discoveryType {
	case domain.DiscoveryTypeDocker:
		targets, err = enumerateDockerTargets(networkID)
	case domain.DiscoveryTypeSelfReport:
		targets, err = enumerateSelfTargets(networkID)
	default:
		targets, err = enumerateNetworkTargets(networkID)
	}
	if err != nil {
		return nil, err
	}

	sortByScanOrder(targets)
	return targets, nil
}

// enumerateNetworkTargets walks every up, non-loopback, non-virtual IPv4
// interface and expands its subnet into individual addresses. VPN tunnel
// interfaces (point-to-point /32s) are widened to a /24 so the far side of
// the tunnel actually gets scanned, matching the teacher's interface
// detection in core/bootstrap but widened for the VPN special case.
func enumerateNetworkTargets(networkID string) ([]Target, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSubnetEnumeration, err)
	}

	var targets []Target
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if isVirtualInterfaceName(iface.Name) {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		subnetType := domain.InferSubnetType(iface.Name)
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}

			network := ipnet
			ones, bits := ipnet.Mask.Size()
			if subnetType == domain.SubnetTypeVpnTunnel && ones == 32 && bits == 32 {
				network = widenToSlash24(ipnet)
			}

			cidr := network.String()
			subnetID := fmt.Sprintf("%s/%s", networkID, cidr)
			expanded, err := expandCIDR(network)
			if err != nil {
				return nil, err
			}
			for _, ip := range expanded {
				targets = append(targets, Target{
					IP:         ip,
					SubnetID:   subnetID,
					SubnetCIDR: cidr,
					SubnetType: subnetType,
				})
			}
		}
	}
	return targets, nil
}

// enumerateSelfTargets scans only the daemon's own interfaces, used for the
// self-report discovery type where the daemon publishes its own host
// record without sweeping the rest of the subnet.
func enumerateSelfTargets(networkID string) ([]Target, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSubnetEnumeration, err)
	}

	var targets []Target
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if isVirtualInterfaceName(iface.Name) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		subnetType := domain.InferSubnetType(iface.Name)
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			cidr := ipnet.String()
			targets = append(targets, Target{
				IP:         ipnet.IP.String(),
				SubnetID:   fmt.Sprintf("%s/%s", networkID, cidr),
				SubnetCIDR: cidr,
				SubnetType: subnetType,
			})
		}
	}
	return targets, nil
}

// enumerateDockerTargets expands the subnet of every up docker0-family
// ("docker*", "br-*") bridge interface into its individual addresses, using
// the interface table only — no docker socket is queried, so the targets are
// every address in the bridge subnet rather than the containers actually
// attached. A bridge subnet larger than maxSubnetTargets fails enumeration
// (see expandCIDR).
func enumerateDockerTargets(networkID string) ([]Target, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSubnetEnumeration, err)
	}

	var targets []Target
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if !strings.HasPrefix(iface.Name, "docker") && !strings.HasPrefix(iface.Name, "br-") {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			cidr := ipnet.String()
			subnetID := fmt.Sprintf("%s/%s", networkID, cidr)
			expanded, err := expandCIDR(ipnet)
			if err != nil {
				return nil, err
			}
			for _, ip := range expanded {
				targets = append(targets, Target{
					IP:         ip,
					SubnetID:   subnetID,
					SubnetCIDR: cidr,
					SubnetType: domain.SubnetTypeDockerBridge,
				})
			}
		}
	}
	return targets, nil
}

func isVirtualInterfaceName(name string) bool {
	switch {
	case strings.HasPrefix(name, "veth"),
		strings.HasPrefix(name, "docker"),
		strings.HasPrefix(name, "br-"),
		strings.HasPrefix(name, "cni"),
		strings.HasPrefix(name, "flannel"):
		return true
	default:
		return false
	}
}

// widenToSlash24 replaces a /32 point-to-point address with the /24 network
// containing it, so a VPN tunnel's far side gets a real subnet to scan.
func widenToSlash24(ipnet *net.IPNet) *net.IPNet {
	ip4 := ipnet.IP.To4()
	mask := net.CIDRMask(24, 32)
	return &net.IPNet{IP: ip4.Mask(mask), Mask: mask}
}

// expandCIDR returns every usable host address in network, skipping the
// network and broadcast addresses whenever the subnet has more than a
// single usable address. Grounded in the teacher's scanner.expandCIDR,
// with the same 1024-address safety cap.
func expandCIDR(network *net.IPNet) ([]string, error) {
	ones, bits := network.Mask.Size()
	if bits != 32 {
		return nil, fmt.Errorf("%w: only IPv4 subnets are expanded", domain.ErrSubnetEnumeration)
	}

	hostBits := bits - ones
	if hostBits > 10 {
		return nil, fmt.Errorf("%w: %s exceeds the %d address scan cap", domain.ErrSubnetEnumeration, network.String(), maxSubnetTargets)
	}

	base := binary.BigEndian.Uint32(network.IP.To4())
	count := uint32(1) << uint(hostBits)

	var out []string
	skipEnds := hostBits > 1
	for i := uint32(0); i < count; i++ {
		if skipEnds && (i == 0 || i == count-1) {
			continue
		}
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], base+i)
		out = append(out, net.IP(b[:]).String())
	}
	return out, nil
}

