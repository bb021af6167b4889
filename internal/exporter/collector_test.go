package exporter

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/logger"
	"github.com/veesix-networks/vlanhal/pkg/southbound/fake"
)

func gather(t *testing.T, c *collector) map[string]bool {
	t.Helper()
	registry := prometheus.NewRegistry()
	registry.MustRegister(c)
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestCollector(t *testing.T) {
	ctx := context.Background()
	dp := fake.New()
	h, err := hal.New(hal.WithDataplane(dp))
	if err != nil {
		t.Fatal(err)
	}
	if err := h.AddGroup(ctx, "brlan0", "100"); err != nil {
		t.Fatal(err)
	}
	if err := h.AddInterface(ctx, "brlan0", "l2sd0", ""); err != nil {
		t.Fatal(err)
	}

	names := gather(t, newCollector(h, nil, nil, logger.Get(logger.Exporter)))
	for _, want := range []string{
		"vlanhal_groups",
		"vlanhal_group_ports",
		"vlanhal_operations_total",
		"vlanhal_build_info",
	} {
		if !names[want] {
			t.Errorf("metric %s missing; got %v", want, keys(names))
		}
	}
	// No bus, no monitor: their metrics stay absent rather than lying.
	if names["vlanhal_events_published_total"] || names["vlanhal_drift_detected_total"] {
		t.Errorf("unexpected metrics present: %v", keys(names))
	}
}

func keys(m map[string]bool) string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return strings.Join(out, ",")
}
