package domain

import (
	"encoding/json"
	"testing"
)

func TestNewPort(t *testing.T) {
	t.Run("derives id from number and protocol", func(t *testing.T) {
		p := NewPort(22, ProtocolTCP)

		if p.ID != "22/tcp" {
			t.Errorf("expected ID '22/tcp', got %s", p.ID)
		}
	})

	t.Run("same number and protocol produce equal ports", func(t *testing.T) {
		a := NewPort(443, ProtocolTCP)
		b := NewPort(443, ProtocolTCP)

		if !a.Equal(b) {
			t.Error("expected equal ports")
		}
	})

	t.Run("different protocol on same number is not equal", func(t *testing.T) {
		a := NewPort(53, ProtocolTCP)
		b := NewPort(53, ProtocolUDP)

		if a.Equal(b) {
			t.Error("expected TCP/53 and UDP/53 to be distinct")
		}
	})
}

func TestPortTypeName(t *testing.T) {
	cases := []struct {
		number   int
		protocol Protocol
		want     string
	}{
		{22, ProtocolTCP, "SSH"},
		{53, ProtocolUDP, "DNS"},
		{161, ProtocolUDP, "SNMP"},
		{9999, ProtocolTCP, "Custom"},
	}

	for _, c := range cases {
		p := NewPort(c.number, c.protocol)
		if got := p.TypeName(); got != c.want {
			t.Errorf("TypeName(%d/%s) = %s, want %s", c.number, c.protocol, got, c.want)
		}
	}
}

func TestPortJSONRoundTrip(t *testing.T) {
	t.Run("marshals the flat wire shape", func(t *testing.T) {
		p := NewPort(80, ProtocolTCP)

		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("unmarshal raw: %v", err)
		}
		if raw["type"] != "HTTP" {
			t.Errorf("expected type HTTP, got %v", raw["type"])
		}
	})

	t.Run("round trips through marshal and unmarshal", func(t *testing.T) {
		want := NewPort(8443, ProtocolTCP)

		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var got Port
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !got.Equal(want) || got.ID != want.ID {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
		}
	})
}
