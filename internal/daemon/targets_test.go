package daemon

import (
	"net"
	"testing"
)

func TestExpandCIDRSkipsNetworkAndBroadcast(t *testing.T) {
	_, network, err := net.ParseCIDR("10.0.0.0/30")
	if err != nil {
		t.Fatal(err)
	}

	ips, err := expandCIDR(network)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"10.0.0.1", "10.0.0.2"}
	if len(ips) != len(want) {
		t.Fatalf("expected %v, got %v", want, ips)
	}
	for i, ip := range want {
		if ips[i] != ip {
			t.Errorf("index %d: expected %s, got %s", i, ip, ips[i])
		}
	}
}

func TestExpandCIDRRejectsOversizedSubnet(t *testing.T) {
	_, network, err := net.ParseCIDR("10.0.0.0/8")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := expandCIDR(network); err == nil {
		t.Fatal("expected an error expanding a /8")
	}
}

func TestWidenToSlash24(t *testing.T) {
	_, ipnet, err := net.ParseCIDR("10.8.0.2/32")
	if err != nil {
		t.Fatal(err)
	}

	widened := widenToSlash24(ipnet)
	if widened.String() != "10.8.0.0/24" {
		t.Errorf("expected 10.8.0.0/24, got %s", widened.String())
	}
}

func TestIsVirtualInterfaceName(t *testing.T) {
	virtual := []string{"veth1234", "docker0", "br-abc123", "cni0", "flannel.1"}
	for _, name := range virtual {
		if !isVirtualInterfaceName(name) {
			t.Errorf("expected %s to be treated as virtual", name)
		}
	}

	real := []string{"eth0", "wlan0", "en0", "tun0"}
	for _, name := range real {
		if isVirtualInterfaceName(name) {
			t.Errorf("expected %s to not be treated as virtual", name)
		}
	}
}
