package northbound

type GroupRequest struct {
	Name   string `json:"name"`
	VLANID string `json:"vlan_id"`
}

type InterfaceRequest struct {
	Name   string `json:"name"`
	VLANID string `json:"vlan_id,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// LoggingInfo reports the effective log levels: the default plus any
// per-component overrides set at runtime.
type LoggingInfo struct {
	DefaultLevel string            `json:"default_level"`
	Levels       map[string]string `json:"levels"`
}

type LoggingLevelRequest struct {
	Level string `json:"level"`
}

type LoggingLevelResponse struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}
