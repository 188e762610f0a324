package domain

import "time"

// SecretType categorizes a credential usable during capability probing
// (SPEC_FULL §3 added Evidence/Capability subsystem): an SSH key/password
// for SSH-probe evidence, or an SNMP community string for the SNMP probe
// (§4.1, §6.4) when something stronger than the default "public" community
// is configured.
type SecretType string

const (
	SecretTypeSSHKey        SecretType = "ssh_key"
	SecretTypeSSHPassword   SecretType = "ssh_password"
	SecretTypeSNMPCommunity SecretType = "snmp_community"
)

// Secret holds a credential used only to strengthen discovery evidence; it
// is never required for the core discovery pipeline, which works with the
// default SNMP community and no SSH credential at all.
type Secret struct {
	ID        string            `json:"id"`
	Type      SecretType        `json:"type"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
