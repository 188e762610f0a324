package domain

import "testing"

func TestEdgeHandleOpposite(t *testing.T) {
	cases := []struct {
		handle EdgeHandle
		want   EdgeHandle
	}{
		{HandleTop, HandleBottom},
		{HandleBottom, HandleTop},
		{HandleLeft, HandleRight},
		{HandleRight, HandleLeft},
	}

	for _, c := range cases {
		if got := c.handle.Opposite(); got != c.want {
			t.Errorf("Opposite(%s) = %s, want %s", c.handle, got, c.want)
		}
	}
}

func TestEdgeHandleLayoutPriority(t *testing.T) {
	if HandleTop.LayoutPriority() >= HandleBottom.LayoutPriority() {
		t.Error("expected Top to sort before Bottom")
	}
	if HandleBottom.LayoutPriority() >= HandleLeft.LayoutPriority() {
		t.Error("expected Bottom to sort before Left")
	}
	if HandleLeft.LayoutPriority() >= HandleRight.LayoutPriority() {
		t.Error("expected Left to sort before Right")
	}
}

func TestFromSubnetLayers(t *testing.T) {
	lan := NewSubnet("s1", "10.0.0.0/24", "net1", SubnetTypeLan, SystemSource(), "lan")
	internet := NewSubnet("s2", "0.0.0.0/0", "net1", SubnetTypeInternet, SystemSource(), "internet")
	wifi := NewSubnet("s3", "10.0.1.0/24", "net1", SubnetTypeWiFi, SystemSource(), "wifi")

	t.Run("same subnet defaults to top/top", func(t *testing.T) {
		source, target := FromSubnetLayers(lan, lan, false, false)
		if source != HandleTop || target != HandleTop {
			t.Errorf("got (%s, %s), want (top, top)", source, target)
		}
	})

	t.Run("lower layer source connects bottom to top", func(t *testing.T) {
		source, target := FromSubnetLayers(internet, lan, false, false)
		if source != HandleBottom || target != HandleTop {
			t.Errorf("got (%s, %s), want (bottom, top)", source, target)
		}
	})

	t.Run("higher layer source connects top to bottom", func(t *testing.T) {
		source, target := FromSubnetLayers(lan, internet, false, false)
		if source != HandleTop || target != HandleBottom {
			t.Errorf("got (%s, %s), want (top, bottom)", source, target)
		}
	})

	t.Run("same layer flows left to right by priority", func(t *testing.T) {
		source, target := FromSubnetLayers(lan, wifi, false, false)
		if source != HandleRight || target != HandleLeft {
			t.Errorf("got (%s, %s), want (right, left)", source, target)
		}
	})

	t.Run("infra side is forced to bottom within a layer", func(t *testing.T) {
		source, target := FromSubnetLayers(lan, wifi, true, false)
		if source != HandleBottom {
			t.Errorf("expected infra source forced to bottom, got %s", source)
		}
		if target != HandleLeft {
			t.Errorf("expected non-infra target to keep left, got %s", target)
		}
	})
}
