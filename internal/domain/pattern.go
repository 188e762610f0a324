package domain

import "strings"

// Evidence is what a Pattern evaluates against: everything the daemon's
// probe gathered about one candidate host (§4.1 step 2, §4.2.6).
type Evidence struct {
	IP               string
	OpenPorts        []Port
	EndpointBodies   map[Port]string // port -> response body fragment
	SubnetType       SubnetType
	MACAddress       string
	HasDockerClient  bool
}

// HasPort reports whether the given port was observed open.
func (e Evidence) HasPort(number int, protocol Protocol) bool {
	for _, p := range e.OpenPorts {
		if p.Number == number && p.Protocol == protocol {
			return true
		}
	}
	return false
}

// IsGatewayIP reports whether the evidence's address is the conventional
// gateway position within its /24 (last octet 1 or 254).
func (e Evidence) IsGatewayIP() bool {
	last := lastOctet(e.IP)
	return last == 1 || last == 254
}

func lastOctet(ip string) int {
	idx := strings.LastIndex(ip, ".")
	if idx < 0 || idx == len(ip)-1 {
		return -1
	}
	n := 0
	for _, c := range ip[idx+1:] {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// Pattern is the small, total matcher algebra service definitions declare
// over a host's evidence (§4.2.6). Exactly one concrete shape is populated
// per value, selected by Kind.
type Pattern struct {
	Kind PatternKind

	Ports           []Port    // AnyPort / AllPort
	ResponsePorts   []Port    // AnyResponse: ports whose endpoint response counts as a match
	WebPath         string    // WebService
	WebBodyContains string    // WebService
	MacPrefixes     []string  // MacVendor
	Children        []Pattern // AnyOf / AllOf
}

// PatternKind selects which Pattern field set is meaningful.
type PatternKind string

const (
	PatternAnyPort            PatternKind = "any_port"
	PatternAllPort            PatternKind = "all_port"
	PatternAnyResponse        PatternKind = "any_response"
	PatternWebService         PatternKind = "web_service"
	PatternIsGatewayIP        PatternKind = "is_gateway_ip"
	PatternIsVpnSubnetGateway PatternKind = "is_vpn_subnet_gateway"
	PatternIsDockerHost       PatternKind = "is_docker_host"
	PatternMacVendor          PatternKind = "mac_vendor"
	PatternAnyOf              PatternKind = "any_of"
	PatternAllOf              PatternKind = "all_of"
	PatternNone               PatternKind = "none"
)

// standardWebPorts is the fixed set WebService probes GET against.
var standardWebPorts = []Port{
	NewPort(80, ProtocolTCP),
	NewPort(443, ProtocolTCP),
	NewPort(8080, ProtocolTCP),
	NewPort(8443, ProtocolTCP),
}

// AnyPortPattern matches if any of the given ports is open.
func AnyPortPattern(ports ...Port) Pattern { return Pattern{Kind: PatternAnyPort, Ports: ports} }

// AllPortPattern matches if every given port is open.
func AllPortPattern(ports ...Port) Pattern { return Pattern{Kind: PatternAllPort, Ports: ports} }

// AnyResponsePattern matches if an endpoint response was captured on any of
// the given ports.
func AnyResponsePattern(ports ...Port) Pattern {
	return Pattern{Kind: PatternAnyResponse, ResponsePorts: ports}
}

// WebServicePattern matches a GET on the standard HTTP/HTTPS ports whose
// body contains bodyContains (empty bodyContains matches any response).
func WebServicePattern(path, bodyContains string) Pattern {
	return Pattern{Kind: PatternWebService, WebPath: path, WebBodyContains: bodyContains}
}

// MacVendorPattern matches if the evidence's MAC address starts with any
// of the given vendor prefixes (case-insensitive).
func MacVendorPattern(prefixes ...string) Pattern {
	return Pattern{Kind: PatternMacVendor, MacPrefixes: prefixes}
}

// AnyOfPattern matches if any child pattern matches.
func AnyOfPattern(children ...Pattern) Pattern { return Pattern{Kind: PatternAnyOf, Children: children} }

// AllOfPattern matches if every child pattern matches.
func AllOfPattern(children ...Pattern) Pattern { return Pattern{Kind: PatternAllOf, Children: children} }

var (
	isGatewayIPPattern        = Pattern{Kind: PatternIsGatewayIP}
	isVpnSubnetGatewayPattern = Pattern{Kind: PatternIsVpnSubnetGateway}
	isDockerHostPattern       = Pattern{Kind: PatternIsDockerHost}
	nonePattern               = Pattern{Kind: PatternNone}
)

// IsGatewayIPPattern matches hosts whose address sits in the conventional
// gateway position.
func IsGatewayIPPattern() Pattern { return isGatewayIPPattern }

// IsVpnSubnetGatewayPattern matches the gateway-position host of a VPN
// tunnel subnet specifically.
func IsVpnSubnetGatewayPattern() Pattern { return isVpnSubnetGatewayPattern }

// IsDockerHostPattern matches hosts that responded with a Docker client marker.
func IsDockerHostPattern() Pattern { return isDockerHostPattern }

// NonePattern never matches; the total, explicit bottom of the algebra.
func NonePattern() Pattern { return nonePattern }

// Match evaluates the pattern against a host's evidence. The algebra is
// total: every Pattern value, however constructed, evaluates without panic.
func (p Pattern) Match(e Evidence) bool {
	switch p.Kind {
	case PatternAnyPort:
		for _, port := range p.Ports {
			if e.HasPort(port.Number, port.Protocol) {
				return true
			}
		}
		return false
	case PatternAllPort:
		if len(p.Ports) == 0 {
			return false
		}
		for _, port := range p.Ports {
			if !e.HasPort(port.Number, port.Protocol) {
				return false
			}
		}
		return true
	case PatternAnyResponse:
		for _, port := range p.ResponsePorts {
			if _, ok := e.EndpointBodies[port]; ok {
				return true
			}
		}
		return false
	case PatternWebService:
		for _, port := range standardWebPorts {
			body, ok := e.EndpointBodies[port]
			if !ok {
				continue
			}
			if p.WebBodyContains == "" || strings.Contains(body, p.WebBodyContains) {
				return true
			}
		}
		return false
	case PatternIsGatewayIP:
		return e.IsGatewayIP()
	case PatternIsVpnSubnetGateway:
		return e.SubnetType == SubnetTypeVpnTunnel && e.IsGatewayIP()
	case PatternIsDockerHost:
		return e.HasDockerClient
	case PatternMacVendor:
		mac := strings.ToLower(e.MACAddress)
		for _, prefix := range p.MacPrefixes {
			if mac != "" && strings.HasPrefix(mac, strings.ToLower(prefix)) {
				return true
			}
		}
		return false
	case PatternAnyOf:
		for _, child := range p.Children {
			if child.Match(e) {
				return true
			}
		}
		return false
	case PatternAllOf:
		if len(p.Children) == 0 {
			return false
		}
		for _, child := range p.Children {
			if !child.Match(e) {
				return false
			}
		}
		return true
	case PatternNone:
		return false
	default:
		return false
	}
}
