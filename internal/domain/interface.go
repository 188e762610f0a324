package domain

import "fmt"

// Interface is owned by exactly one host and references a subnet by id.
// Equality is by (subnet_id, ip_address).
type Interface struct {
	ID         string  `json:"id"`
	SubnetID   string  `json:"subnet_id"`
	IPAddress  string  `json:"ip_address"`
	MACAddress *string `json:"mac_address,omitempty"`
	Name       *string `json:"name,omitempty"`
}

// NewInterface constructs an Interface with an id derived from its dedup key.
func NewInterface(subnetID, ipAddress string) Interface {
	return Interface{
		ID:        fmt.Sprintf("%s@%s", ipAddress, subnetID),
		SubnetID:  subnetID,
		IPAddress: ipAddress,
	}
}

// Equal reports whether two interfaces share the same (subnet_id, ip_address).
func (i Interface) Equal(other Interface) bool {
	return i.SubnetID == other.SubnetID && i.IPAddress == other.IPAddress
}
