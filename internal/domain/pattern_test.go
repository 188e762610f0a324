package domain

import "testing"

func evidenceWithPorts(ports ...Port) Evidence {
	return Evidence{OpenPorts: ports}
}

func TestPatternAnyPort(t *testing.T) {
	p := AnyPortPattern(NewPort(22, ProtocolTCP), NewPort(80, ProtocolTCP))

	if !p.Match(evidenceWithPorts(NewPort(80, ProtocolTCP))) {
		t.Error("expected match on one of the listed ports")
	}
	if p.Match(evidenceWithPorts(NewPort(443, ProtocolTCP))) {
		t.Error("expected no match when none of the ports are open")
	}
}

func TestPatternAllPort(t *testing.T) {
	p := AllPortPattern(NewPort(22, ProtocolTCP), NewPort(80, ProtocolTCP))

	t.Run("matches when every port is open", func(t *testing.T) {
		e := evidenceWithPorts(NewPort(22, ProtocolTCP), NewPort(80, ProtocolTCP))
		if !p.Match(e) {
			t.Error("expected match")
		}
	})

	t.Run("fails when one port is missing", func(t *testing.T) {
		e := evidenceWithPorts(NewPort(22, ProtocolTCP))
		if p.Match(e) {
			t.Error("expected no match")
		}
	})

	t.Run("empty pattern never matches", func(t *testing.T) {
		empty := AllPortPattern()
		if empty.Match(evidenceWithPorts()) {
			t.Error("expected empty AllPort to never match")
		}
	})
}

func TestPatternWebService(t *testing.T) {
	httpPort := NewPort(80, ProtocolTCP)

	t.Run("matches body substring on a standard web port", func(t *testing.T) {
		e := Evidence{EndpointBodies: map[Port]string{httpPort: "<title>pfSense</title>"}}
		p := WebServicePattern("/", "pfSense")

		if !p.Match(e) {
			t.Error("expected match on body substring")
		}
	})

	t.Run("empty bodyContains matches any response", func(t *testing.T) {
		e := Evidence{EndpointBodies: map[Port]string{httpPort: "anything"}}
		p := WebServicePattern("/", "")

		if !p.Match(e) {
			t.Error("expected empty bodyContains to match any response")
		}
	})

	t.Run("no response on any standard port never matches", func(t *testing.T) {
		p := WebServicePattern("/", "pfSense")
		if p.Match(Evidence{}) {
			t.Error("expected no match with no endpoint bodies")
		}
	})
}

func TestPatternIsGatewayIP(t *testing.T) {
	p := IsGatewayIPPattern()

	if !p.Match(Evidence{IP: "192.168.1.1"}) {
		t.Error("expected .1 to match gateway position")
	}
	if !p.Match(Evidence{IP: "192.168.1.254"}) {
		t.Error("expected .254 to match gateway position")
	}
	if p.Match(Evidence{IP: "192.168.1.50"}) {
		t.Error("expected .50 to not match gateway position")
	}
}

func TestPatternIsVpnSubnetGateway(t *testing.T) {
	p := IsVpnSubnetGatewayPattern()

	if !p.Match(Evidence{IP: "10.8.0.1", SubnetType: SubnetTypeVpnTunnel}) {
		t.Error("expected vpn tunnel gateway to match")
	}
	if p.Match(Evidence{IP: "10.8.0.1", SubnetType: SubnetTypeLan}) {
		t.Error("expected non-vpn subnet to not match even at gateway position")
	}
}

func TestPatternMacVendor(t *testing.T) {
	p := MacVendorPattern("AA:BB:CC")

	if !p.Match(Evidence{MACAddress: "aa:bb:cc:11:22:33"}) {
		t.Error("expected case-insensitive prefix match")
	}
	if p.Match(Evidence{MACAddress: "11:22:33:aa:bb:cc"}) {
		t.Error("expected no match when prefix is not at the start")
	}
}

func TestPatternAnyOfAllOf(t *testing.T) {
	ssh := AnyPortPattern(NewPort(22, ProtocolTCP))
	docker := IsDockerHostPattern()

	t.Run("AnyOf matches if one child matches", func(t *testing.T) {
		p := AnyOfPattern(ssh, docker)
		e := evidenceWithPorts(NewPort(22, ProtocolTCP))

		if !p.Match(e) {
			t.Error("expected AnyOf to match via ssh child")
		}
	})

	t.Run("AllOf requires every child", func(t *testing.T) {
		p := AllOfPattern(ssh, docker)
		e := Evidence{OpenPorts: []Port{NewPort(22, ProtocolTCP)}, HasDockerClient: false}

		if p.Match(e) {
			t.Error("expected AllOf to fail when one child does not match")
		}
	})
}

func TestPatternNoneNeverMatches(t *testing.T) {
	p := NonePattern()

	if p.Match(Evidence{IP: "1.2.3.4", HasDockerClient: true}) {
		t.Error("expected NonePattern to never match")
	}
}
