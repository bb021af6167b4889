package southbound

import (
	"fmt"
	"strconv"
	"strings"
)

// PortInfo describes one bridge member port.
type PortInfo struct {
	// Name is the port device name as enslaved, e.g. "l2sd0.100" or "eth3".
	Name string `json:"name"`
	// Parent is the physical device for tagged ports, "" otherwise.
	Parent string `json:"parent,omitempty"`
	// VLANID is the 802.1Q tag for tagged ports, 0 otherwise.
	VLANID uint16 `json:"vlan_id,omitempty"`
	Tagged bool   `json:"tagged"`
}

type BridgeInfo struct {
	Name  string     `json:"name"`
	Up    bool       `json:"up"`
	Ports []PortInfo `json:"ports"`
}

func (b BridgeInfo) HasPort(name string) bool {
	for _, p := range b.Ports {
		if p.Name == name {
			return true
		}
	}
	return false
}

// TaggedName returns the conventional 802.1Q subinterface name, "eth0.100".
func TaggedName(ifName string, vlanID uint16) string {
	return fmt.Sprintf("%s.%d", ifName, vlanID)
}

// SplitTagged breaks a subinterface name into parent and VLAN ID. Names
// without a valid ".<vid>" suffix report ok=false.
func SplitTagged(name string) (parent string, vlanID uint16, ok bool) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return "", 0, false
	}
	vid, err := strconv.ParseUint(name[idx+1:], 10, 16)
	if err != nil || vid == 0 || vid > 4094 {
		return "", 0, false
	}
	return name[:idx], uint16(vid), true
}
