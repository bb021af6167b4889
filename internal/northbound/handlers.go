package northbound

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/logger"
	"github.com/veesix-networks/vlanhal/pkg/version"
)

func (c *Component) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.Encode(v)
}

func (c *Component) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// writeHALError maps the HAL's sentinel errors onto HTTP statuses.
func (c *Component) writeHALError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hal.ErrGroupNotFound), errors.Is(err, hal.ErrEntryNotFound):
		c.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, hal.ErrVLANConflict):
		c.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, hal.ErrInvalidName), errors.Is(err, hal.ErrInvalidVLANID):
		c.writeError(w, http.StatusBadRequest, err.Error())
	default:
		c.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (c *Component) handleListGroups(w http.ResponseWriter, r *http.Request) {
	states, err := c.hal.InspectAllGroups(r.Context())
	if err != nil {
		c.logger.Error("List groups failed", "error", err)
		c.writeHALError(w, err)
		return
	}
	c.writeJSON(w, states)
}

func (c *Component) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	state, err := c.hal.InspectGroup(r.Context(), r.PathValue("name"))
	if err != nil {
		c.writeHALError(w, err)
		return
	}
	c.writeJSON(w, state)
}

func (c *Component) handleAddGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := c.hal.AddGroup(r.Context(), req.Name, req.VLANID); err != nil {
		c.logger.Error("Add group failed", "group", req.Name, "error", err)
		c.writeHALError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	c.writeJSON(w, StatusResponse{Status: "ok"})
}

func (c *Component) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := c.hal.DeleteGroup(r.Context(), name); err != nil {
		c.logger.Error("Delete group failed", "group", name, "error", err)
		c.writeHALError(w, err)
		return
	}
	c.writeJSON(w, StatusResponse{Status: "ok"})
}

func (c *Component) handleAddInterface(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("name")
	var req InterfaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := c.hal.AddInterface(r.Context(), group, req.Name, req.VLANID); err != nil {
		c.logger.Error("Add interface failed", "group", group, "interface", req.Name, "error", err)
		c.writeHALError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	c.writeJSON(w, StatusResponse{Status: "ok"})
}

func (c *Component) handleDeleteInterface(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("name")
	ifName := r.PathValue("ifname")
	vlanID := r.URL.Query().Get("vlan_id")
	if err := c.hal.DeleteInterface(r.Context(), group, ifName, vlanID); err != nil {
		c.logger.Error("Delete interface failed", "group", group, "interface", ifName, "error", err)
		c.writeHALError(w, err)
		return
	}
	c.writeJSON(w, StatusResponse{Status: "ok"})
}

func (c *Component) handleFlushInterfaces(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("name")
	if err := c.hal.DeleteAllInterfaces(r.Context(), group); err != nil {
		c.logger.Error("Flush interfaces failed", "group", group, "error", err)
		c.writeHALError(w, err)
		return
	}
	c.writeJSON(w, StatusResponse{Status: "ok"})
}

func (c *Component) handleConfigEntries(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, c.hal.ConfigEntries())
}

func (c *Component) handleStats(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, c.hal.Stats())
}

func (c *Component) handleEvents(w http.ResponseWriter, r *http.Request) {
	if c.bus == nil {
		c.writeError(w, http.StatusNotFound, "event bus not configured")
		return
	}
	c.writeJSON(w, c.bus.Stats())
}

func (c *Component) handleVersion(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, version.Get())
}

func (c *Component) handleGetLogging(w http.ResponseWriter, r *http.Request) {
	levels := logger.GetComponentLevels()

	strLevels := make(map[string]string, len(levels))
	for name, level := range levels {
		strLevels[name] = string(level)
	}

	c.writeJSON(w, LoggingInfo{
		DefaultLevel: string(logger.GetDefaultLevel()),
		Levels:       strLevels,
	})
}

// handleSetLogging adjusts one component's log level at runtime. An empty
// level clears the override so the component falls back to the default.
func (c *Component) handleSetLogging(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("component")

	var req LoggingLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	level := logger.LogLevel(req.Level)
	if level != logger.LogLevelDebug && level != logger.LogLevelInfo &&
		level != logger.LogLevelWarn && level != logger.LogLevelError {
		if req.Level == "" {
			logger.ClearComponentLevel(name)
			c.writeJSON(w, LoggingLevelResponse{Name: name, Level: "default"})
			return
		}
		c.writeError(w, http.StatusBadRequest,
			"invalid level: "+req.Level+" (must be debug, info, warn, error)")
		return
	}

	logger.SetComponentLevel(name, level)
	c.logger.Info("Changed component log level", "component", name, "level", req.Level)
	c.writeJSON(w, LoggingLevelResponse{Name: name, Level: req.Level})
}

func (c *Component) handleHealthz(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, healthResponse{Status: "ok"})
}

func (c *Component) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if c.ready != nil && !c.ready.Ready() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(healthResponse{Status: "not_ready"})
		return
	}
	c.writeJSON(w, healthResponse{Status: "ready"})
}
