package hal

import (
	"fmt"
	"strconv"
)

const (
	// MaxNameLen bounds group and interface names. The C surface this API
	// descends from used 32-byte buffers including the terminator.
	MaxNameLen = 31

	MinVLANID = 1
	MaxVLANID = 4094
)

// KnownGroupNames lists the bridge groups broadband gateway platforms
// conventionally ship with. Enforcement is opt-in (WithStrictNames); by
// default the list is advisory.
var KnownGroupNames = []string{
	"brlan0", "brlan1", "brlan2", "brlan3", "brlan4", "brlan5",
	"brlan7", "brlan10", "brlan106", "brlan112", "brlan113",
	"brlan403", "brebhaul",
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidName, name, MaxNameLen)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, c)
		}
	}
	if name[0] == '.' || name[0] == '-' {
		return fmt.Errorf("%w: %q starts with %q", ErrInvalidName, name, name[0])
	}
	return nil
}

func (h *HAL) validGroupName(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if !h.strictNames {
		return nil
	}
	for _, known := range KnownGroupNames {
		if name == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not a known bridge group", ErrInvalidName, name)
}

// parseVLANID converts the textual VLAN ID the API carries into the numeric
// form the dataplane wants.
func parseVLANID(s string) (uint16, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidVLANID)
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVLANID, s)
	}
	if n < MinVLANID || n > MaxVLANID {
		return 0, fmt.Errorf("%w: %d out of range %d-%d", ErrInvalidVLANID, n, MinVLANID, MaxVLANID)
	}
	return uint16(n), nil
}
