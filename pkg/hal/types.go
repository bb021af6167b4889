package hal

import "github.com/veesix-networks/vlanhal/pkg/southbound"

// GroupState is the structured form of one bridge group's diagnostic dump.
type GroupState struct {
	Name string `json:"name"`
	// Present reports whether the bridge device exists on the dataplane.
	// A cached config entry can outlive its bridge (drift).
	Present bool `json:"present"`
	Up      bool `json:"up"`
	// DefaultVLANID is the VLAN ID recorded for the group in the config
	// cache, "" when no entry exists.
	DefaultVLANID string                `json:"default_vlan_id,omitempty"`
	Ports         []southbound.PortInfo `json:"ports,omitempty"`
}

// OpStats counts attempts and failures for one API operation.
type OpStats struct {
	Op       string `json:"op"`
	Attempts uint64 `json:"attempts"`
	Errors   uint64 `json:"errors"`
}

// Stats is a point-in-time snapshot of the HAL's operation counters.
type Stats struct {
	Ops       []OpStats `json:"ops"`
	LastError string    `json:"last_error,omitempty"`
}
