package daemon

import "testing"

func TestLivenessPriorityOrdering(t *testing.T) {
	cases := []struct {
		ip   string
		want int
	}{
		{"10.0.0.1", 1},
		{"10.0.0.254", 2},
		{"10.0.0.2", 10},
		{"10.0.0.100", 13},
		{"10.0.0.5", 25},
		{"10.0.0.15", 45},
		{"10.0.0.25", 75},
		{"10.0.0.40", 140},
		{"10.0.0.75", 275},
		{"10.0.0.125", 525},
		{"10.0.0.175", 775},
		{"10.0.0.225", 1025},
		{"10.0.0.0", 9998},
		{"10.0.0.255", 9998},
		{"::1", 9999},
	}

	for _, c := range cases {
		if got := livenessPriority(c.ip); got != c.want {
			t.Errorf("livenessPriority(%s) = %d, want %d", c.ip, got, c.want)
		}
	}
}

func TestSortByScanOrderBreaksTiesByAddress(t *testing.T) {
	targets := []Target{
		{IP: "10.0.1.4"},
		{IP: "10.0.0.4"},
		{IP: "10.0.0.1"},
	}
	sortByScanOrder(targets)

	if targets[0].IP != "10.0.0.1" {
		t.Fatalf("expected gateway-position address first, got %s", targets[0].IP)
	}
	if targets[1].IP != "10.0.0.4" || targets[2].IP != "10.0.1.4" {
		t.Errorf("expected ascending address order between equal priorities, got %v", targets)
	}
}

func TestSortByScanOrderSkipsNetworkAndBroadcastLast(t *testing.T) {
	targets := []Target{
		{IP: "10.0.0.255"},
		{IP: "10.0.0.1"},
		{IP: "10.0.0.0"},
	}
	sortByScanOrder(targets)

	if targets[0].IP != "10.0.0.1" {
		t.Fatalf("expected gateway address first, got %v", targets)
	}
	if targets[1].IP == "10.0.0.1" {
		t.Fatalf("unexpected duplicate at front: %v", targets)
	}
}
