package domain

import (
	"testing"
	"time"
)

func TestInferSubnetType(t *testing.T) {
	cases := []struct {
		iface string
		want  SubnetType
	}{
		{"tun0", SubnetTypeVpnTunnel},
		{"utun3", SubnetTypeVpnTunnel},
		{"wg0", SubnetTypeVpnTunnel},
		{"docker0", SubnetTypeDockerBridge},
		{"br-abc123", SubnetTypeDockerBridge},
		{"wlan0", SubnetTypeWiFi},
		{"eth0", SubnetTypeLan},
		{"en0", SubnetTypeLan},
		{"ppp0", SubnetTypeUnknown},
	}

	for _, c := range cases {
		if got := InferSubnetType(c.iface); got != c.want {
			t.Errorf("InferSubnetType(%s) = %s, want %s", c.iface, got, c.want)
		}
	}
}

func TestSubnetDedupKey(t *testing.T) {
	s := NewSubnet("s1", "10.0.0.0/24", "net1", SubnetTypeLan, SystemSource(), "lan")

	cidr, networkID := s.DedupKey()
	if cidr != "10.0.0.0/24" || networkID != "net1" {
		t.Errorf("got (%s, %s), want (10.0.0.0/24, net1)", cidr, networkID)
	}
}

func TestSameDockerHost(t *testing.T) {
	now := time.Now()

	t.Run("docker metadata on different hosts is not a match", func(t *testing.T) {
		a := NewSubnet("s1", "172.17.0.0/16", "net1", SubnetTypeDockerBridge, DiscoverySource(DiscoveryTypeDocker, "daemon1", "host1", now), "docker0")
		b := NewSubnet("s2", "172.17.0.0/16", "net1", SubnetTypeDockerBridge, DiscoverySource(DiscoveryTypeDocker, "daemon1", "host2", now), "docker0")

		same, bothDocker := SameDockerHost(a, b)
		if !bothDocker {
			t.Fatal("expected both subnets to be recognised as docker discoveries")
		}
		if same {
			t.Error("expected different host_id to not match")
		}
	})

	t.Run("same host_id matches", func(t *testing.T) {
		a := NewSubnet("s1", "172.17.0.0/16", "net1", SubnetTypeDockerBridge, DiscoverySource(DiscoveryTypeDocker, "daemon1", "host1", now), "docker0")
		b := NewSubnet("s2", "172.17.0.0/16", "net1", SubnetTypeDockerBridge, DiscoverySource(DiscoveryTypeDocker, "daemon1", "host1", now), "docker0")

		same, bothDocker := SameDockerHost(a, b)
		if !bothDocker || !same {
			t.Error("expected matching host_id to report same=true")
		}
	})

	t.Run("non-docker sources never match", func(t *testing.T) {
		a := NewSubnet("s1", "10.0.0.0/24", "net1", SubnetTypeLan, SystemSource(), "lan")
		b := NewSubnet("s2", "10.0.0.0/24", "net1", SubnetTypeLan, SystemSource(), "lan")

		_, bothDocker := SameDockerHost(a, b)
		if bothDocker {
			t.Error("expected non-discovery sources to report bothDocker=false")
		}
	})
}

func TestSubnetRemoveHostReferences(t *testing.T) {
	s := NewSubnet("s1", "10.0.0.0/24", "net1", SubnetTypeLan, SystemSource(), "lan")
	s.Hosts = addID(s.Hosts, "h1")
	s.Gateways = addID(s.Gateways, "h1")

	s.RemoveHostReferences("h1")

	if len(s.Hosts) != 0 || len(s.Gateways) != 0 {
		t.Errorf("expected all references to h1 removed, got hosts=%v gateways=%v", s.Hosts, s.Gateways)
	}
}
