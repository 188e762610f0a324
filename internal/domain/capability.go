package domain

import "time"

// CapabilityType identifies a class of capability a host might have. This
// is additive evidence (SPEC_FULL §3) that strengthens service matching
// beyond the bare port/response check the core algebra uses.
type CapabilityType string

const (
	CapabilitySSH    CapabilityType = "ssh"
	CapabilitySNMP   CapabilityType = "snmp"
	CapabilityDocker CapabilityType = "docker"
)

// ProbeEvidenceSource identifies how a piece of capability evidence was
// gathered.
type ProbeEvidenceSource string

const (
	ProbeSourcePortScan ProbeEvidenceSource = "port_scan"
	ProbeSourceBanner   ProbeEvidenceSource = "banner"
	ProbeSourceSSH      ProbeEvidenceSource = "ssh_probe"
	ProbeSourceSNMP     ProbeEvidenceSource = "snmp_probe"
	ProbeSourceDocker   ProbeEvidenceSource = "docker_marker"
)

// probeEvidenceConfidence maps sources to base confidence levels, grounded
// in the teacher's EvidenceConfidence table.
var probeEvidenceConfidence = map[ProbeEvidenceSource]float64{
	ProbeSourceSSH:      0.90,
	ProbeSourceSNMP:     0.80,
	ProbeSourceDocker:   0.75,
	ProbeSourceBanner:   0.70,
	ProbeSourcePortScan: 0.50,
}

// BaseConfidence returns the default confidence level for a source.
func (s ProbeEvidenceSource) BaseConfidence() float64 {
	return probeEvidenceConfidence[s]
}

// ProbeEvidence is a single piece of capability evidence gathered during
// fingerprinting.
type ProbeEvidence struct {
	Source     ProbeEvidenceSource `json:"source"`
	Confidence float64             `json:"confidence"`
	ObservedAt time.Time           `json:"observed_at"`
}

// Capability is a detected capability with its supporting evidence,
// aggregated via a max-plus-corroboration-bonus rule.
type Capability struct {
	Type       CapabilityType  `json:"type"`
	Confidence float64         `json:"confidence"`
	Evidence   []ProbeEvidence `json:"evidence,omitempty"`
}

// AddEvidence appends a piece of evidence and recalculates confidence.
func (c *Capability) AddEvidence(e ProbeEvidence) {
	c.Evidence = append(c.Evidence, e)
	c.recalculateConfidence()
}

// recalculateConfidence uses the highest evidence confidence plus a small,
// diminishing bonus per corroborating piece of evidence.
func (c *Capability) recalculateConfidence() {
	if len(c.Evidence) == 0 {
		c.Confidence = 0
		return
	}

	maxConf := 0.0
	for _, e := range c.Evidence {
		if e.Confidence > maxConf {
			maxConf = e.Confidence
		}
	}

	bonus := 0.0
	for _, e := range c.Evidence {
		if e.Confidence < maxConf && maxConf > 0 {
			bonus += (1.0 - maxConf) * 0.05 * (e.Confidence / maxConf)
		}
	}

	conf := maxConf + bonus
	if conf > 1.0 {
		conf = 1.0
	}
	c.Confidence = conf
}
