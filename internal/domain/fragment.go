package domain

// DiscoveryFragment is the bundle a daemon POSTs to the server for one
// discovered (or self-reported) host: the host record itself plus any new
// subnets and services the probe produced. The reconciliation engine
// consumes fragments one at a time; fragments never carry entity ids that
// already resolve on the server — those are assigned during reconcile.
type DiscoveryFragment struct {
	Subnets  []*Subnet  `json:"subnets"`
	Hosts    []*Host    `json:"hosts"`
	Services []*Service `json:"services"`
}

// NewDiscoveryFragment returns an empty fragment.
func NewDiscoveryFragment() *DiscoveryFragment {
	return &DiscoveryFragment{
		Subnets:  make([]*Subnet, 0),
		Hosts:    make([]*Host, 0),
		Services: make([]*Service, 0),
	}
}

// Empty reports whether the fragment carries nothing worth reconciling.
func (f *DiscoveryFragment) Empty() bool {
	return len(f.Subnets) == 0 && len(f.Hosts) == 0 && len(f.Services) == 0
}
