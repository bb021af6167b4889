package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/veesix-networks/vlanhal/pkg/component"
	"github.com/veesix-networks/vlanhal/pkg/config"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/southbound/fake"
)

func newMonitor(t *testing.T, cfg *config.Config) (*Component, *hal.HAL, *fake.Dataplane) {
	t.Helper()
	dp := fake.New()
	h, err := hal.New(hal.WithDataplane(dp))
	if err != nil {
		t.Fatal(err)
	}
	c := New(component.Dependencies{HAL: h, Config: cfg}, time.Minute)
	return c, h, dp
}

func TestNoDrift(t *testing.T) {
	ctx := context.Background()
	c, h, _ := newMonitor(t, &config.Config{})

	if err := h.AddGroup(ctx, "brlan0", "100"); err != nil {
		t.Fatal(err)
	}

	c.checkOnce(ctx)
	if !c.Ready() {
		t.Error("monitor not ready without drift")
	}
	if st := c.GetStatus(); st.DriftTotal != 0 || len(st.Drift) != 0 {
		t.Errorf("status = %+v", st)
	}
}

func TestMissingBridgeIsDrift(t *testing.T) {
	ctx := context.Background()
	c, h, dp := newMonitor(t, &config.Config{})

	if err := h.AddGroup(ctx, "brlan0", "100"); err != nil {
		t.Fatal(err)
	}
	// Someone deletes the bridge behind the HAL's back.
	if err := dp.DeleteBridge(ctx, "brlan0"); err != nil {
		t.Fatal(err)
	}

	c.checkOnce(ctx)
	if c.Ready() {
		t.Error("monitor should not be ready with drift")
	}
	st := c.GetStatus()
	if len(st.Drift) != 1 || st.Drift[0].Group != "brlan0" {
		t.Fatalf("drift = %+v", st.Drift)
	}
	if len(st.Drift[0].Missing) != 1 || st.Drift[0].Missing[0] != "bridge" {
		t.Errorf("missing = %v", st.Drift[0].Missing)
	}
}

func TestMissingMemberIsDrift(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		Groups: []config.Group{
			{Name: "brlan0", VLANID: "100", Interfaces: []config.Interface{{Name: "l2sd0"}}},
		},
	}
	c, h, _ := newMonitor(t, cfg)

	// Group exists but the desired member was never attached.
	if err := h.AddGroup(ctx, "brlan0", "100"); err != nil {
		t.Fatal(err)
	}

	c.checkOnce(ctx)
	st := c.GetStatus()
	if len(st.Drift) != 1 {
		t.Fatalf("drift = %+v", st.Drift)
	}
	if st.Drift[0].Missing[0] != "l2sd0.100" {
		t.Errorf("missing = %v", st.Drift[0].Missing)
	}

	// Attach it; drift clears on the next check.
	if err := h.AddInterface(ctx, "brlan0", "l2sd0", ""); err != nil {
		t.Fatal(err)
	}
	c.checkOnce(ctx)
	if !c.Ready() {
		t.Error("drift did not clear")
	}
}
