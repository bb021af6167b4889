package exporter

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/veesix-networks/vlanhal/internal/monitor"
	"github.com/veesix-networks/vlanhal/pkg/events"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/version"
)

var (
	groupsDesc = prometheus.NewDesc(
		"vlanhal_groups",
		"Number of bridge groups known to the HAL.",
		nil, nil)
	groupPortsDesc = prometheus.NewDesc(
		"vlanhal_group_ports",
		"Number of member ports per bridge group.",
		[]string{"group"}, nil)
	operationsDesc = prometheus.NewDesc(
		"vlanhal_operations_total",
		"HAL API operations by operation and result.",
		[]string{"op", "result"}, nil)
	eventsPublishedDesc = prometheus.NewDesc(
		"vlanhal_events_published_total",
		"Events published on the internal bus.",
		nil, nil)
	eventsDroppedDesc = prometheus.NewDesc(
		"vlanhal_events_dropped_total",
		"Events dropped because the bus queue was full.",
		nil, nil)
	driftDesc = prometheus.NewDesc(
		"vlanhal_drift_detected_total",
		"Configuration drift findings reported by the monitor.",
		nil, nil)
	buildInfoDesc = prometheus.NewDesc(
		"vlanhal_build_info",
		"Build information.",
		[]string{"version", "commit"}, nil)
)

type collector struct {
	hal     *hal.HAL
	bus     events.Bus
	monitor *monitor.Component
	logger  *slog.Logger
}

func newCollector(h *hal.HAL, bus events.Bus, mon *monitor.Component, log *slog.Logger) *collector {
	return &collector{hal: h, bus: bus, monitor: mon, logger: log}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- groupsDesc
	ch <- groupPortsDesc
	ch <- operationsDesc
	ch <- eventsPublishedDesc
	ch <- eventsDroppedDesc
	ch <- driftDesc
	ch <- buildInfoDesc
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	info := version.Get()
	ch <- prometheus.MustNewConstMetric(buildInfoDesc, prometheus.GaugeValue, 1, info.Version, info.Commit)

	states, err := c.hal.InspectAllGroups(context.Background())
	if err != nil {
		c.logger.Error("Failed to collect group metrics", "error", err)
	} else {
		ch <- prometheus.MustNewConstMetric(groupsDesc, prometheus.GaugeValue, float64(len(states)))
		for _, st := range states {
			ch <- prometheus.MustNewConstMetric(groupPortsDesc, prometheus.GaugeValue,
				float64(len(st.Ports)), st.Name)
		}
	}

	stats := c.hal.Stats()
	for _, op := range stats.Ops {
		ch <- prometheus.MustNewConstMetric(operationsDesc, prometheus.CounterValue,
			float64(op.Attempts-op.Errors), op.Op, "ok")
		ch <- prometheus.MustNewConstMetric(operationsDesc, prometheus.CounterValue,
			float64(op.Errors), op.Op, "error")
	}

	if c.bus != nil {
		busStats := c.bus.Stats()
		ch <- prometheus.MustNewConstMetric(eventsPublishedDesc, prometheus.CounterValue, float64(busStats.Published))
		ch <- prometheus.MustNewConstMetric(eventsDroppedDesc, prometheus.CounterValue, float64(busStats.Dropped))
	}

	if c.monitor != nil {
		ch <- prometheus.MustNewConstMetric(driftDesc, prometheus.CounterValue,
			float64(c.monitor.GetStatus().DriftTotal))
	}
}
