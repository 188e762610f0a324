package domain

import (
	"encoding/json"
	"fmt"
)

// Protocol is the transport protocol a Port is reachable over.
type Protocol string

const (
	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"
)

// Port is a (number, protocol) pair. Equality and hashing are on both
// fields; a fixed catalogue of well-known ports is recognised by name, and
// any unlisted pair is reported as Custom.
type Port struct {
	ID       string   `json:"id"`
	Number   int      `json:"number"`
	Protocol Protocol `json:"protocol"`
}

// wellKnownPort names a catalogue entry keyed by (number, protocol).
type wellKnownPort struct {
	number   int
	protocol Protocol
	name     string
}

// catalogue is the fixed set of ports NetVisor recognises by name. Ports
// that serve double duty over both TCP and UDP (like DNS) get two entries
// sharing a name.
var catalogue = []wellKnownPort{
	{22, ProtocolTCP, "SSH"},
	{53, ProtocolTCP, "DNS"},
	{53, ProtocolUDP, "DNS"},
	{67, ProtocolUDP, "DHCP"},
	{68, ProtocolUDP, "DHCP"},
	{80, ProtocolTCP, "HTTP"},
	{123, ProtocolUDP, "NTP"},
	{161, ProtocolUDP, "SNMP"},
	{162, ProtocolUDP, "SNMP"},
	{443, ProtocolTCP, "HTTPS"},
	{445, ProtocolTCP, "SMB"},
	{3389, ProtocolTCP, "RDP"},
	{5900, ProtocolTCP, "VNC"},
	{6443, ProtocolTCP, "Kubernetes"},
	{60073, ProtocolTCP, "NetVisorDaemon"},
	{8080, ProtocolTCP, "HTTP"},
	{8443, ProtocolTCP, "HTTPS"},
}

// NewPort constructs a Port, deriving its id from (number, protocol).
func NewPort(number int, protocol Protocol) Port {
	return Port{
		ID:       fmt.Sprintf("%d/%s", number, protocol),
		Number:   number,
		Protocol: protocol,
	}
}

// TypeName returns the catalogue name for this port, or "Custom" if the
// (number, protocol) pair is not in the fixed catalogue.
func (p Port) TypeName() string {
	for _, wk := range catalogue {
		if wk.number == p.Number && wk.protocol == p.Protocol {
			return wk.name
		}
	}
	return "Custom"
}

// Equal reports whether two ports share the same (number, protocol).
func (p Port) Equal(other Port) bool {
	return p.Number == other.Number && p.Protocol == other.Protocol
}

// portJSON is the flat wire representation: {id, number, protocol, type}.
type portJSON struct {
	ID       string   `json:"id"`
	Number   int      `json:"number"`
	Protocol Protocol `json:"protocol"`
	Type     string   `json:"type"`
}

// MarshalJSON emits the flat {id, number, protocol, type} shape the spec
// requires, with type set to the catalogue name or "Custom".
func (p Port) MarshalJSON() ([]byte, error) {
	return json.Marshal(portJSON{
		ID:       p.ID,
		Number:   p.Number,
		Protocol: p.Protocol,
		Type:     p.TypeName(),
	})
}

// UnmarshalJSON accepts the flat shape and recomputes the id so that
// round-tripping does not depend on the wire id being trusted verbatim.
func (p *Port) UnmarshalJSON(data []byte) error {
	var raw portJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Number = raw.Number
	p.Protocol = raw.Protocol
	p.ID = fmt.Sprintf("%d/%s", raw.Number, raw.Protocol)
	return nil
}
