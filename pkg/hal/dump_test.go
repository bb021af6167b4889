package hal

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestInspectGroup(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHAL(t)

	if _, err := h.InspectGroup(ctx, "brlan0"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("InspectGroup of unknown group = %v; want ErrGroupNotFound", err)
	}

	if err := h.AddGroup(ctx, "brlan0", "100"); err != nil {
		t.Fatal(err)
	}
	if err := h.AddInterface(ctx, "brlan0", "l2sd0", ""); err != nil {
		t.Fatal(err)
	}

	st, err := h.InspectGroup(ctx, "brlan0")
	if err != nil {
		t.Fatalf("InspectGroup: %v", err)
	}
	if !st.Present || st.DefaultVLANID != "100" {
		t.Errorf("state = %+v; want present with default vlan 100", st)
	}
	if len(st.Ports) != 1 || st.Ports[0].Name != "l2sd0.100" {
		t.Errorf("ports = %+v; want [l2sd0.100]", st.Ports)
	}
}

func TestInspectGroupCachedButAbsent(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHAL(t)

	// A config entry without a bridge is still inspectable; that is how
	// drift shows up.
	if err := h.InsertConfigEntry("brlan3", "103"); err != nil {
		t.Fatal(err)
	}
	st, err := h.InspectGroup(ctx, "brlan3")
	if err != nil {
		t.Fatalf("InspectGroup: %v", err)
	}
	if st.Present {
		t.Error("bridge reported present")
	}
	if st.DefaultVLANID != "103" {
		t.Errorf("default vlan = %q; want 103", st.DefaultVLANID)
	}
}

func TestInspectAllGroupsOrdered(t *testing.T) {
	ctx := context.Background()
	h, dp := newTestHAL(t)

	if err := h.AddGroup(ctx, "brlan5", "105"); err != nil {
		t.Fatal(err)
	}
	if err := h.AddGroup(ctx, "brlan0", "100"); err != nil {
		t.Fatal(err)
	}
	// A bridge the HAL never created still shows up.
	if err := dp.EnsureBridge(ctx, "brebhaul"); err != nil {
		t.Fatal(err)
	}

	states, err := h.InspectAllGroups(ctx)
	if err != nil {
		t.Fatalf("InspectAllGroups: %v", err)
	}
	var names []string
	for _, st := range states {
		names = append(names, st.Name)
	}
	want := []string{"brebhaul", "brlan0", "brlan5"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("group order = %v; want %v", names, want)
	}
}

func TestDumpGroup(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHAL(t)

	if err := h.AddGroup(ctx, "brlan0", "100"); err != nil {
		t.Fatal(err)
	}
	if err := h.AddInterface(ctx, "brlan0", "l2sd0", ""); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	if err := h.DumpGroup(ctx, &buf, "brlan0"); err != nil {
		t.Fatalf("DumpGroup: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"group brlan0 (up)", "default-vlan 100", "l2sd0.100", "vlan 100"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestDumpAllGroupsEmpty(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHAL(t)

	var buf strings.Builder
	if err := h.DumpAllGroups(ctx, &buf); err != nil {
		t.Fatalf("DumpAllGroups: %v", err)
	}
	if !strings.Contains(buf.String(), "no bridge groups") {
		t.Errorf("empty dump = %q", buf.String())
	}
}

func TestDumpConfigEntries(t *testing.T) {
	h, _ := newTestHAL(t)
	if err := h.InsertConfigEntry("brlan0", "100"); err != nil {
		t.Fatal(err)
	}
	if err := h.InsertConfigEntry("brebhaul", "1060"); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	if err := h.DumpConfigEntries(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "vlan 100") || !strings.Contains(out, "vlan 1060") {
		t.Errorf("dump = %q", out)
	}
	if strings.Index(out, "brebhaul") > strings.Index(out, "brlan0") {
		t.Error("entries not name-ordered")
	}
}
