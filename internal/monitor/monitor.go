// Package monitor watches for drift between the recorded bridge-group
// configuration and the kernel state. It only observes: operators re-run
// the bootstrap or use the CLI to converge. Detected drift is logged,
// published on the event bus and surfaced through the readiness endpoint.
package monitor

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/veesix-networks/vlanhal/pkg/component"
	"github.com/veesix-networks/vlanhal/pkg/config"
	"github.com/veesix-networks/vlanhal/pkg/events"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/logger"
	"github.com/veesix-networks/vlanhal/pkg/southbound"
)

type Component struct {
	*component.Base

	logger   *slog.Logger
	hal      *hal.HAL
	bus      events.Bus
	desired  []config.Group
	interval time.Duration

	mu         sync.RWMutex
	lastCheck  time.Time
	lastDrift  []events.DriftEvent
	driftTotal uint64
}

// Status is the monitor's state as shown by readiness and diagnostics.
type Status struct {
	LastCheck  time.Time           `json:"last_check"`
	Drift      []events.DriftEvent `json:"drift,omitempty"`
	DriftTotal uint64              `json:"drift_total"`
}

func New(deps component.Dependencies, interval time.Duration) *Component {
	var desired []config.Group
	if deps.Config != nil {
		desired = deps.Config.Groups
	}
	return &Component{
		Base:     component.NewBase("monitor"),
		logger:   logger.Get(logger.Monitor),
		hal:      deps.HAL,
		bus:      deps.EventBus,
		desired:  desired,
		interval: interval,
	}
}

func (c *Component) Start(ctx context.Context) error {
	c.StartContext(ctx)
	c.logger.Info("Starting drift monitor", "interval", c.interval)

	c.Go(func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.Ctx.Done():
				return
			case <-ticker.C:
				c.checkOnce(c.Ctx)
			}
		}
	})

	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	c.logger.Info("Stopping drift monitor")
	c.StopContext()
	return nil
}

// Ready reports whether the last check saw no drift. Before the first
// check the monitor counts as ready.
func (c *Component) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lastDrift) == 0
}

func (c *Component) GetStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		LastCheck:  c.lastCheck,
		Drift:      append([]events.DriftEvent(nil), c.lastDrift...),
		DriftTotal: c.driftTotal,
	}
}

func (c *Component) checkOnce(ctx context.Context) {
	drift := c.collectDrift(ctx)

	c.mu.Lock()
	c.lastCheck = time.Now()
	c.lastDrift = drift
	c.driftTotal += uint64(len(drift))
	c.mu.Unlock()

	for _, d := range drift {
		c.logger.Warn("Configuration drift detected",
			"group", d.Group, "missing", d.Missing, "unexpected", d.Unexpected)
		if c.bus != nil {
			c.bus.Publish(events.TopicDrift, events.Event{Source: "monitor", Data: d})
		}
	}
}

// collectDrift compares cached entries and desired members against the
// dataplane. A cached group without its bridge is drift; a desired member
// missing from its bridge is drift.
func (c *Component) collectDrift(ctx context.Context) []events.DriftEvent {
	dp := c.hal.Dataplane()
	var out []events.DriftEvent

	desiredByGroup := make(map[string][]config.Interface)
	for _, g := range c.desired {
		desiredByGroup[g.Name] = g.Interfaces
	}

	for _, entry := range c.hal.ConfigEntries() {
		exists, err := dp.BridgeExists(ctx, entry.GroupName)
		if err != nil {
			c.logger.Error("Drift check failed", "group", entry.GroupName, "error", err)
			continue
		}
		if !exists {
			out = append(out, events.DriftEvent{
				Group:   entry.GroupName,
				Missing: []string{"bridge"},
			})
			continue
		}

		members := desiredByGroup[entry.GroupName]
		if len(members) == 0 {
			continue
		}

		var missing []string
		for _, m := range members {
			vlanID := m.VLANID
			if vlanID == "" {
				vlanID = entry.VLANID
			}
			vid, err := parseVID(vlanID)
			if err != nil {
				continue
			}
			in, err := dp.PortInBridge(ctx, entry.GroupName, m.Name, vid)
			if err != nil {
				c.logger.Error("Drift check failed", "group", entry.GroupName, "interface", m.Name, "error", err)
				continue
			}
			if !in {
				missing = append(missing, southbound.TaggedName(m.Name, vid))
			}
		}
		if len(missing) > 0 {
			out = append(out, events.DriftEvent{Group: entry.GroupName, Missing: missing})
		}
	}

	return out
}

func parseVID(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}
