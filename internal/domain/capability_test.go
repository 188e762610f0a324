package domain

import (
	"testing"
	"time"
)

func TestCapabilityAddEvidence(t *testing.T) {
	t.Run("single evidence sets confidence to its own value", func(t *testing.T) {
		c := &Capability{Type: CapabilitySSH}
		c.AddEvidence(ProbeEvidence{Source: ProbeSourceSSH, Confidence: ProbeSourceSSH.BaseConfidence(), ObservedAt: time.Now()})

		if c.Confidence != ProbeSourceSSH.BaseConfidence() {
			t.Errorf("expected confidence %v, got %v", ProbeSourceSSH.BaseConfidence(), c.Confidence)
		}
	})

	t.Run("corroborating evidence raises confidence above the max alone", func(t *testing.T) {
		c := &Capability{Type: CapabilitySNMP}
		c.AddEvidence(ProbeEvidence{Source: ProbeSourceSNMP, Confidence: ProbeSourceSNMP.BaseConfidence(), ObservedAt: time.Now()})
		afterFirst := c.Confidence

		c.AddEvidence(ProbeEvidence{Source: ProbeSourcePortScan, Confidence: ProbeSourcePortScan.BaseConfidence(), ObservedAt: time.Now()})

		if c.Confidence <= afterFirst {
			t.Errorf("expected corroboration to raise confidence above %v, got %v", afterFirst, c.Confidence)
		}
	})

	t.Run("confidence never exceeds 1.0", func(t *testing.T) {
		c := &Capability{Type: CapabilityDocker}
		for i := 0; i < 10; i++ {
			c.AddEvidence(ProbeEvidence{Source: ProbeSourceDocker, Confidence: 0.99, ObservedAt: time.Now()})
		}

		if c.Confidence > 1.0 {
			t.Errorf("expected confidence capped at 1.0, got %v", c.Confidence)
		}
	})

	t.Run("no evidence means zero confidence", func(t *testing.T) {
		c := &Capability{Type: CapabilitySSH}

		if c.Confidence != 0 {
			t.Errorf("expected zero confidence with no evidence, got %v", c.Confidence)
		}
	})
}
