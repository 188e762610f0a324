package reconcile

import "netvisor/internal/domain"

// DefaultCatalogue is the fixed set of service definitions evaluated
// against every discovered host's evidence (§4.2.6). Order matters only in
// that a host may match several entries; each match produces its own
// Service.
var DefaultCatalogue = []ServiceCatalogueEntry{
	{
		Kind:    domain.ServiceDefDNSServer,
		Name:    "DNS Server",
		Pattern: domain.AnyPortPattern(domain.NewPort(53, domain.ProtocolTCP), domain.NewPort(53, domain.ProtocolUDP)),
		BindPorts: func(e domain.Evidence) []domain.Port {
			return matchedPorts(e, domain.NewPort(53, domain.ProtocolTCP), domain.NewPort(53, domain.ProtocolUDP))
		},
	},
	{
		Kind: domain.ServiceDefGateway,
		Name: "Gateway",
		Pattern: domain.AnyOfPattern(
			domain.IsGatewayIPPattern(),
			domain.IsVpnSubnetGatewayPattern(),
		),
		BindPorts: func(e domain.Evidence) []domain.Port { return nil },
	},
	{
		Kind:    domain.ServiceDefReverseProxy,
		Name:    "Reverse Proxy",
		Pattern: domain.WebServicePattern("/", ""),
		BindPorts: func(e domain.Evidence) []domain.Port {
			return matchedPorts(e, domain.NewPort(80, domain.ProtocolTCP), domain.NewPort(443, domain.ProtocolTCP),
				domain.NewPort(8080, domain.ProtocolTCP), domain.NewPort(8443, domain.ProtocolTCP))
		},
	},
	{
		Kind:    domain.ServiceDefWebService,
		Name:    "Web Service",
		Pattern: domain.AnyPortPattern(domain.NewPort(80, domain.ProtocolTCP), domain.NewPort(443, domain.ProtocolTCP), domain.NewPort(8080, domain.ProtocolTCP), domain.NewPort(8443, domain.ProtocolTCP)),
		BindPorts: func(e domain.Evidence) []domain.Port {
			return matchedPorts(e, domain.NewPort(80, domain.ProtocolTCP), domain.NewPort(443, domain.ProtocolTCP),
				domain.NewPort(8080, domain.ProtocolTCP), domain.NewPort(8443, domain.ProtocolTCP))
		},
	},
	{
		Kind:    domain.ServiceDefNetVisorAgent,
		Name:    "NetVisor Daemon",
		Pattern: domain.AnyPortPattern(domain.NewPort(60073, domain.ProtocolTCP)),
		BindPorts: func(e domain.Evidence) []domain.Port {
			return matchedPorts(e, domain.NewPort(60073, domain.ProtocolTCP))
		},
	},
	{
		Kind:    domain.ServiceDefSSH,
		Name:    "SSH",
		Pattern: domain.AnyPortPattern(domain.NewPort(22, domain.ProtocolTCP)),
		BindPorts: func(e domain.Evidence) []domain.Port {
			return matchedPorts(e, domain.NewPort(22, domain.ProtocolTCP))
		},
	},
	{
		Kind:    domain.ServiceDefSNMPAgent,
		Name:    "SNMP Agent",
		Pattern: domain.AnyPortPattern(domain.NewPort(161, domain.ProtocolUDP)),
		BindPorts: func(e domain.Evidence) []domain.Port {
			return matchedPorts(e, domain.NewPort(161, domain.ProtocolUDP))
		},
	},
	{
		Kind:    domain.ServiceDefNTPServer,
		Name:    "NTP Server",
		Pattern: domain.AnyPortPattern(domain.NewPort(123, domain.ProtocolUDP)),
		BindPorts: func(e domain.Evidence) []domain.Port {
			return matchedPorts(e, domain.NewPort(123, domain.ProtocolUDP))
		},
	},
	{
		Kind:    domain.ServiceDefDHCPServer,
		Name:    "DHCP Server",
		Pattern: domain.AnyPortPattern(domain.NewPort(67, domain.ProtocolUDP)),
		BindPorts: func(e domain.Evidence) []domain.Port {
			return matchedPorts(e, domain.NewPort(67, domain.ProtocolUDP))
		},
	},
}

// matchedPorts returns the subset of candidates present in the evidence's
// open-port set.
func matchedPorts(e domain.Evidence, candidates ...domain.Port) []domain.Port {
	var out []domain.Port
	for _, p := range candidates {
		if e.HasPort(p.Number, p.Protocol) {
			out = append(out, p)
		}
	}
	return out
}
