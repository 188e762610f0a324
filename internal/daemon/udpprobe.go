package daemon

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

// udpProbeTimeout is the default per-protocol deadline for UDP service
// probes (§5: "1000-2000ms per protocol").
const udpProbeTimeout = 2000 * time.Millisecond

// probeUDPService dispatches to the protocol-specific probe for a known
// port, falling back to a bare send-one-byte-wait-for-any-datagram probe
// for anything else (§4.1 UDP/protocol probe catalogue).
func probeUDPService(ctx context.Context, ip string, port int) bool {
	switch port {
	case 53:
		return probeDNS(ctx, ip)
	case 67:
		return probeDHCP(ctx, ip)
	case 123:
		return probeNTP(ctx, ip)
	case 161:
		return probeSNMP(ctx, ip)
	default:
		return probeGenericUDP(ctx, ip, port)
	}
}

// probeDNS asks the candidate server to resolve google.com; any answer
// (success or not) within the deadline confirms a live resolver.
func probeDNS(ctx context.Context, ip string) bool {
	resolver := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: udpProbeTimeout}
			return d.DialContext(ctx, network, net.JoinHostPort(ip, "53"))
		},
	}

	qctx, cancel := context.WithTimeout(ctx, udpProbeTimeout)
	defer cancel()

	_, err := resolver.LookupHost(qctx, "google.com")
	// A DNS server that returns NXDOMAIN still answered; only a transport
	// failure (timeout, connection refused, no route) means "not a DNS server".
	if err == nil {
		return true
	}
	if dnsErr, ok := err.(*net.DNSError); ok {
		return !dnsErr.IsTimeout && !dnsErr.IsTemporary
	}
	return false
}

// probeNTP sends a minimal SNTP client request and accepts the reply only
// if it carries a positive transmit timestamp (§6.4 is silent on NTP wire
// detail beyond "synchronize"; this follows RFC 5905's client/server mode).
func probeNTP(ctx context.Context, ip string) bool {
	conn, err := dialUDP(ctx, ip, 123)
	if err != nil {
		return false
	}
	defer conn.Close()

	packet := make([]byte, 48)
	packet[0] = 0x1B // LI=0, VN=3, Mode=3 (client)

	conn.SetDeadline(time.Now().Add(udpProbeTimeout))
	if _, err := conn.Write(packet); err != nil {
		return false
	}

	resp := make([]byte, 48)
	n, err := conn.Read(resp)
	if err != nil || n < 48 {
		return false
	}

	transmitSeconds := binary.BigEndian.Uint32(resp[40:44])
	return transmitSeconds > 0
}

// snmpSysDescrOID is 1.3.6.1.2.1.1.1.0 BER-encoded.
var snmpSysDescrOID = []byte{0x2b, 0x06, 0x01, 0x02, 0x01, 0x01, 0x01, 0x00}

// probeSNMP sends a hand-built SNMPv2c GET of sysDescr against the
// community "public" and accepts any well-formed GetResponse varbind
// within the deadline (§6.4). No third-party SNMP client is grounded in
// the retrieval pack, so this is a minimal, purpose-built BER encoder
// rather than a general client.
func probeSNMP(ctx context.Context, ip string) bool {
	conn, err := dialUDP(ctx, ip, 161)
	if err != nil {
		return false
	}
	defer conn.Close()

	reqID := randomUint32()
	packet := encodeSNMPGetRequest("public", reqID, snmpSysDescrOID)

	conn.SetDeadline(time.Now().Add(udpProbeTimeout))
	if _, err := conn.Write(packet); err != nil {
		return false
	}

	resp := make([]byte, 1500)
	n, err := conn.Read(resp)
	if err != nil || n == 0 {
		return false
	}
	return isSNMPGetResponse(resp[:n])
}

// probeDHCP sends a DHCPDISCOVER and accepts a reply only if it parses
// as DHCPOFFER or DHCPACK (§4.1, §6.4). The discover is addressed directly
// to the candidate host's port 67 with the broadcast flag set, so a server
// bound to that address replies without requiring this probe to bind the
// privileged client port 68 or a raw/broadcast socket.
func probeDHCP(ctx context.Context, ip string) bool {
	conn, err := dialUDP(ctx, ip, 67)
	if err != nil {
		return false
	}
	defer conn.Close()

	xid := randomUint32()
	mac := randomMAC()
	packet := encodeDHCPDiscover(xid, mac)

	conn.SetDeadline(time.Now().Add(udpProbeTimeout))
	if _, err := conn.Write(packet); err != nil {
		return false
	}

	resp := make([]byte, 576)
	n, err := conn.Read(resp)
	if err != nil || n < 240 {
		return false
	}
	return dhcpMessageType(resp[:n], xid) == dhcpOffer || dhcpMessageType(resp[:n], xid) == dhcpAck
}

// probeGenericUDP sends a single byte and accepts any reply at all as
// evidence of a live UDP service, the catch-all in the protocol catalogue.
func probeGenericUDP(ctx context.Context, ip string, port int) bool {
	conn, err := dialUDP(ctx, ip, port)
	if err != nil {
		return false
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(udpProbeTimeout))
	if _, err := conn.Write([]byte{0}); err != nil {
		return false
	}

	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	return err == nil
}

func dialUDP(ctx context.Context, ip string, port int) (net.Conn, error) {
	d := net.Dialer{Timeout: udpProbeTimeout}
	return d.DialContext(ctx, "udp4", fmt.Sprintf("%s:%d", ip, port))
}

func randomUint32() uint32 {
	var b [4]byte
	rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:])
}

func randomMAC() [6]byte {
	var mac [6]byte
	rand.Read(mac[:])
	mac[0] = (mac[0] | 0x02) & 0xfe // locally administered, unicast
	return mac
}

// --- SNMP v2c GET encoding (minimal BER, GET of a single OID) ---

func encodeSNMPGetRequest(community string, requestID uint32, oid []byte) []byte {
	varbind := berSequence(append(berOID(oid), berNull()...))
	varbindList := berSequence(varbind)
	pdu := berContext(0xA0, append(berInteger(int64(requestID)), append(berInteger(0), append(berInteger(0), varbindList...)...)...))
	message := berSequence(append(berInteger(1), append(berOctetString([]byte(community)), pdu...)...))
	return message
}

// isSNMPGetResponse reports whether data looks like an SNMP GetResponse: a
// top-level SEQUENCE that contains the GetResponse PDU tag (0xA2). This
// does not fully decode varbind values; a well-formed response is itself
// sufficient evidence of a live SNMP agent.
func isSNMPGetResponse(data []byte) bool {
	if len(data) < 2 || data[0] != 0x30 {
		return false
	}
	for _, b := range data[1:] {
		if b == 0xA2 {
			return true
		}
	}
	return false
}

func berSequence(content []byte) []byte {
	return append([]byte{0x30}, berLengthPrefixed(content)...)
}

func berContext(tag byte, content []byte) []byte {
	return append([]byte{tag}, berLengthPrefixed(content)...)
}

func berLengthPrefixed(content []byte) []byte {
	return append(berLength(len(content)), content...)
}

func berLength(n int) []byte {
	if n < 128 {
		return []byte{byte(n)}
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte(n & 0xff)}, b...)
		n >>= 8
	}
	return append([]byte{0x80 | byte(len(b))}, b...)
}

func berInteger(v int64) []byte {
	if v == 0 {
		return []byte{0x02, 0x01, 0x00}
	}
	var b []byte
	for v > 0 {
		b = append([]byte{byte(v & 0xff)}, b...)
		v >>= 8
	}
	if b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	return append([]byte{0x02, byte(len(b))}, b...)
}

func berOctetString(s []byte) []byte {
	return append([]byte{0x04, byte(len(s))}, s...)
}

func berNull() []byte {
	return []byte{0x05, 0x00}
}

func berOID(encoded []byte) []byte {
	return append([]byte{0x06, byte(len(encoded))}, encoded...)
}

// --- DHCP DISCOVER encoding (BOOTREQUEST, minimal options) ---

type dhcpMsgType byte

const (
	dhcpDiscover dhcpMsgType = 1
	dhcpOffer    dhcpMsgType = 2
	dhcpAck      dhcpMsgType = 5
)

const dhcpMagicCookie = 0x63825363

func encodeDHCPDiscover(xid uint32, mac [6]byte) []byte {
	packet := make([]byte, 240)
	packet[0] = 1  // BOOTREQUEST
	packet[1] = 1  // htype: Ethernet
	packet[2] = 6  // hlen
	binary.BigEndian.PutUint32(packet[4:8], xid)
	packet[10] = 0x80 // broadcast flag
	copy(packet[28:34], mac[:])
	binary.BigEndian.PutUint32(packet[236:240], dhcpMagicCookie)

	options := []byte{53, 1, byte(dhcpDiscover), 255} // option 53 = message type DISCOVER, then END
	return append(packet, options...)
}

// dhcpMessageType parses a DHCP reply and returns its option-53 message
// type, or 0 if the packet doesn't parse or doesn't match xid.
func dhcpMessageType(data []byte, xid uint32) dhcpMsgType {
	if len(data) < 240 {
		return 0
	}
	if binary.BigEndian.Uint32(data[4:8]) != xid {
		return 0
	}
	if binary.BigEndian.Uint32(data[236:240]) != dhcpMagicCookie {
		return 0
	}

	opts := data[240:]
	for i := 0; i < len(opts); {
		tag := opts[i]
		if tag == 0xff {
			break
		}
		if tag == 0 {
			i++
			continue
		}
		if i+1 >= len(opts) {
			break
		}
		length := int(opts[i+1])
		if i+2+length > len(opts) {
			break
		}
		if tag == 53 && length == 1 {
			return dhcpMsgType(opts[i+2])
		}
		i += 2 + length
	}
	return 0
}
