package bootstrap

import (
	"context"
	"testing"

	"github.com/veesix-networks/vlanhal/pkg/config"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/southbound/fake"
)

func newHAL(t *testing.T) (*hal.HAL, *fake.Dataplane) {
	t.Helper()
	dp := fake.New()
	h, err := hal.New(hal.WithDataplane(dp))
	if err != nil {
		t.Fatal(err)
	}
	return h, dp
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	h, dp := newHAL(t)

	cfg := &config.Config{
		Groups: []config.Group{
			{
				Name:    "brlan0",
				VLANID:  "100",
				Address: "10.0.0.1/24",
				Interfaces: []config.Interface{
					{Name: "l2sd0"},
					{Name: "l2sd1", VLANID: "101"},
				},
			},
			{Name: "brlan1", VLANID: "101"},
		},
	}

	if err := New(h, cfg).Apply(ctx); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for _, group := range []string{"brlan0", "brlan1"} {
		if exists, _ := dp.BridgeExists(ctx, group); !exists {
			t.Errorf("bridge %s not created", group)
		}
	}
	// Member without an explicit VLAN uses the group default.
	if in, _ := dp.PortInBridge(ctx, "brlan0", "l2sd0", 100); !in {
		t.Error("l2sd0 not attached under group default vlan")
	}
	if in, _ := dp.PortInBridge(ctx, "brlan0", "l2sd1", 101); !in {
		t.Error("l2sd1 not attached under explicit vlan")
	}
	if addrs := dp.Addresses("brlan0"); len(addrs) != 1 || addrs[0] != "10.0.0.1/24" {
		t.Errorf("bridge addresses = %v", addrs)
	}
}

func TestApplyIdempotent(t *testing.T) {
	ctx := context.Background()
	h, _ := newHAL(t)

	cfg := &config.Config{
		Groups: []config.Group{
			{Name: "brlan0", VLANID: "100", Interfaces: []config.Interface{{Name: "l2sd0"}}},
		},
	}

	b := New(h, cfg)
	if err := b.Apply(ctx); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if err := b.Apply(ctx); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
}

func TestApplyGroupConflictAborts(t *testing.T) {
	ctx := context.Background()
	h, _ := newHAL(t)

	if err := h.AddGroup(ctx, "brlan0", "999"); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{Groups: []config.Group{{Name: "brlan0", VLANID: "100"}}}
	if err := New(h, cfg).Apply(ctx); err == nil {
		t.Fatal("expected conflict error")
	}
}
