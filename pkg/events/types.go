package events

type GroupAction string

const (
	GroupCreated GroupAction = "create"
	// GroupAdopted marks a bridge that already existed on the dataplane
	// and was taken under management.
	GroupAdopted GroupAction = "adopt"
	GroupDeleted GroupAction = "delete"
)

type InterfaceAction string

const (
	InterfaceAdded    InterfaceAction = "add"
	InterfaceRemoved  InterfaceAction = "remove"
	InterfacesFlushed InterfaceAction = "flush"
)

// GroupEvent reports a bridge group coming into or out of existence.
type GroupEvent struct {
	Action GroupAction `json:"action"`
	Group  string      `json:"group"`
	VLANID string      `json:"vlan_id,omitempty"`
}

// InterfaceEvent reports a membership change on one bridge group. For a
// flush the Interface field is empty and Removed carries the port names.
type InterfaceEvent struct {
	Action    InterfaceAction `json:"action"`
	Group     string          `json:"group"`
	Interface string          `json:"interface,omitempty"`
	VLANID    string          `json:"vlan_id,omitempty"`
	Removed   []string        `json:"removed,omitempty"`
}

// DriftEvent reports a mismatch between the recorded configuration and the
// kernel state observed by the monitor.
type DriftEvent struct {
	Group      string   `json:"group"`
	Missing    []string `json:"missing,omitempty"`
	Unexpected []string `json:"unexpected,omitempty"`
}
