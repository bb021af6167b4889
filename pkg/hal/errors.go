package hal

import "errors"

var (
	// ErrGroupNotFound is returned when an operation targets a bridge group
	// that does not exist on the dataplane.
	ErrGroupNotFound = errors.New("bridge group not found")

	// ErrVLANConflict is returned when a group or member already exists
	// under a different VLAN ID than the one requested.
	ErrVLANConflict = errors.New("vlan id conflict")

	// ErrInvalidVLANID is returned for VLAN IDs outside 1-4094 or that are
	// not decimal numbers.
	ErrInvalidVLANID = errors.New("invalid vlan id")

	// ErrInvalidName is returned for group or interface names that are
	// empty, too long, or carry characters Linux rejects in ifnames.
	ErrInvalidName = errors.New("invalid name")

	// ErrEntryNotFound is returned by the config-entry API when no entry
	// is recorded for a group.
	ErrEntryNotFound = errors.New("config entry not found")
)
