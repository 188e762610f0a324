package daemon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"netvisor/internal/domain"
	"netvisor/internal/reconcile"
)

// connectTimeout is the default per-connect deadline for the TCP catalogue
// probe (§5 timeouts).
const connectTimeout = 2000 * time.Millisecond

// maxBodyFingerprint bounds how much of an HTTP response body is kept for
// pattern matching; service definitions only need a prefix to recognize a
// login page or API banner.
const maxBodyFingerprint = 512

// tcpCatalogue is the fixed set of well-known ports probed by TCP connect,
// grounded in the teacher's scanner.DefaultScannerConfig.ScanPorts plus the
// daemon's own listening port.
var tcpCatalogue = []domain.Port{
	domain.NewPort(21, domain.ProtocolTCP),
	domain.NewPort(22, domain.ProtocolTCP),
	domain.NewPort(23, domain.ProtocolTCP),
	domain.NewPort(25, domain.ProtocolTCP),
	domain.NewPort(53, domain.ProtocolTCP),
	domain.NewPort(80, domain.ProtocolTCP),
	domain.NewPort(110, domain.ProtocolTCP),
	domain.NewPort(143, domain.ProtocolTCP),
	domain.NewPort(443, domain.ProtocolTCP),
	domain.NewPort(445, domain.ProtocolTCP),
	domain.NewPort(993, domain.ProtocolTCP),
	domain.NewPort(995, domain.ProtocolTCP),
	domain.NewPort(2375, domain.ProtocolTCP),
	domain.NewPort(2376, domain.ProtocolTCP),
	domain.NewPort(3306, domain.ProtocolTCP),
	domain.NewPort(3389, domain.ProtocolTCP),
	domain.NewPort(5432, domain.ProtocolTCP),
	domain.NewPort(5900, domain.ProtocolTCP),
	domain.NewPort(6443, domain.ProtocolTCP),
	domain.NewPort(8080, domain.ProtocolTCP),
	domain.NewPort(8443, domain.ProtocolTCP),
	domain.NewPort(9100, domain.ProtocolTCP),
	domain.NewPort(60073, domain.ProtocolTCP),
}

// udpCatalogue is the fixed set of UDP services protocol-probed per host
// (§4.1, §6.4).
var udpCatalogue = []domain.Port{
	domain.NewPort(53, domain.ProtocolUDP),
	domain.NewPort(67, domain.ProtocolUDP),
	domain.NewPort(123, domain.ProtocolUDP),
	domain.NewPort(161, domain.ProtocolUDP),
}

// webPorts are the TCP ports a responsive connect triggers an HTTP/HTTPS
// GET fingerprint against.
var webPorts = map[int]bool{80: true, 443: true, 8080: true, 8443: true}

// dockerAPIPorts mark a host as running an exposed Docker API, the
// host_has_docker_client signal step 4 checks alongside ports/responses.
var dockerAPIPorts = map[int]bool{2375: true, 2376: true}

// ScanOutcome is the terminal result of probing one target address.
type ScanOutcome struct {
	Cancelled bool
	NoHost    bool // no open port, no response, no docker marker
	Host      *domain.Host
	Iface     domain.Interface
	Services  []*domain.Service
}

// scanHost runs the full per-host probe (§4.1 steps 1-5): a cancellation
// fast-fail, the TCP/UDP/HTTP sweep, the no-host short-circuit, then
// hostname/MAC resolution and service assembly.
func scanHost(ctx context.Context, target Target, daemonID string, catalogue []reconcile.ServiceCatalogueEntry) (ScanOutcome, error) {
	if ctx.Err() != nil {
		return ScanOutcome{Cancelled: true}, domain.ErrCancelled
	}

	openPorts, bodies, hasDocker, err := scanPortsAndEndpoints(ctx, target.IP)
	if err != nil {
		return ScanOutcome{}, err
	}

	if ctx.Err() != nil {
		return ScanOutcome{Cancelled: true}, domain.ErrCancelled
	}

	if len(openPorts) == 0 && len(bodies) == 0 && !hasDocker {
		return ScanOutcome{NoHost: true}, nil
	}

	evidence := domain.Evidence{
		IP:              target.IP,
		OpenPorts:       openPorts,
		EndpointBodies:  bodies,
		SubnetType:      target.SubnetType,
		HasDockerClient: hasDocker,
	}

	hostname := reverseDNS(target.IP)
	var mac string
	if target.SubnetType != domain.SubnetTypeVpnTunnel {
		mac = arpLookup(target.IP)
	}
	evidence.MACAddress = mac

	iface := domain.NewInterface(target.SubnetID, target.IP)
	if mac != "" {
		iface.MACAddress = &mac
	}

	source := domain.DiscoverySource(discoveryTypeForSubnet(target.SubnetType), daemonID, "", time.Now())
	host := domain.NewHost(fmt.Sprintf("host/%s", iface.ID), hostnameOrIP(hostname, target.IP), source)
	if hostname != "" {
		host.Hostname = &hostname
	}
	host.Interfaces = append(host.Interfaces, iface)
	host.Ports = openPorts

	services := reconcile.MatchServiceDefinitions(catalogue, host, iface, evidence)

	return ScanOutcome{Host: host, Iface: iface, Services: services}, nil
}

func hostnameOrIP(hostname, ip string) string {
	if hostname != "" {
		return hostname
	}
	return ip
}

func discoveryTypeForSubnet(t domain.SubnetType) domain.DiscoveryType {
	if t == domain.SubnetTypeDockerBridge {
		return domain.DiscoveryTypeDocker
	}
	return domain.DiscoveryTypeNetwork
}

// scanPortsAndEndpoints is step 2 of the per-host probe: a TCP connect
// sweep of the well-known port catalogue, followed by an HTTP/HTTPS GET on
// any port that answered and is conventionally a web port. Grounded in the
// teacher's scanner.scanHost/probePort/grabBanner, reworked to capture body
// fingerprints instead of banner strings.
func scanPortsAndEndpoints(ctx context.Context, ip string) ([]domain.Port, map[domain.Port]string, bool, error) {
	var open []domain.Port
	bodies := make(map[domain.Port]string)
	hasDocker := false

	for _, port := range tcpCatalogue {
		if ctx.Err() != nil {
			return open, bodies, hasDocker, domain.ErrCancelled
		}
		if !probeTCP(ctx, ip, port.Number) {
			continue
		}
		open = append(open, port)
		if dockerAPIPorts[port.Number] {
			hasDocker = true
		}
		if webPorts[port.Number] {
			if body, ok := fetchBody(ip, port.Number); ok {
				bodies[port] = body
			}
		}
	}

	for _, port := range udpCatalogue {
		if ctx.Err() != nil {
			return open, bodies, hasDocker, domain.ErrCancelled
		}
		if probeUDPService(ctx, ip, port.Number) {
			open = append(open, port)
		}
	}

	return open, bodies, hasDocker, nil
}

// probeTCP attempts a single TCP connect with the default deadline.
func probeTCP(ctx context.Context, ip string, port int) bool {
	dialer := net.Dialer{Timeout: connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", ip, port))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// fetchBody issues a GET against "/" on the given port, over HTTPS for
// 443/8443 and over HTTP otherwise, and returns a truncated body fingerprint.
func fetchBody(ip string, port int) (string, bool) {
	scheme := "http"
	if port == 443 || port == 8443 {
		scheme = "https"
	}

	client := &http.Client{Timeout: connectTimeout}
	resp, err := client.Get(fmt.Sprintf("%s://%s:%d/", scheme, ip, port))
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyFingerprint))
	return string(body), true
}

// reverseDNS resolves a PTR record for ip, returning "" on any failure —
// absence of a hostname is not an error, just missing evidence.
func reverseDNS(ip string) string {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	names, err := net.DefaultResolver.LookupAddr(ctx, ip)
	if err != nil || len(names) == 0 {
		return ""
	}
	return strings.TrimSuffix(names[0], ".")
}

// arpLookup reads /proc/net/arp for ip's resolved MAC address. Grounded in
// the teacher's arpLookup stub (which deferred to DHCP for MAC discovery);
// this reads the kernel's own ARP cache instead, populated as a side effect
// of the TCP connect attempts just made against the same address.
func arpLookup(ip string) string {
	f, err := os.Open("/proc/net/arp")
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Scan() // header
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		if fields[0] == ip && fields[3] != "00:00:00:00:00:00" {
			return fields[3]
		}
	}
	return ""
}
