package events

import "time"

// Event is the envelope published on the bus. Data carries one of the
// payload types in types.go (GroupEvent, InterfaceEvent, DriftEvent).
type Event struct {
	ID        string
	Type      string
	Timestamp time.Time
	Source    string
	Data      any
}
