package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestComponentLevelOverride(t *testing.T) {
	h := NewHALTextHandler(&bytes.Buffer{}, nil, Southbound)

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug enabled before override, default is %s", GetDefaultLevel())
	}

	SetComponentLevel(Southbound, LogLevelDebug)
	defer ClearComponentLevel(Southbound)

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Errorf("debug not enabled after override")
	}
	if got := GetComponentLevels()[Southbound]; got != LogLevelDebug {
		t.Errorf("GetComponentLevels()[%s] = %q, want %q", Southbound, got, LogLevelDebug)
	}

	ClearComponentLevel(Southbound)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Errorf("debug still enabled after clearing override")
	}
	if _, ok := GetComponentLevels()[Southbound]; ok {
		t.Errorf("override for %s survived ClearComponentLevel", Southbound)
	}
}

func TestWithOp(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHALTextHandler(&buf, nil, HAL))

	WithOp(l, OpAttrs{Op: "add_group", Group: "brlan0", VLANID: "100"}).
		Info("Created bridge group")

	out := buf.String()
	for _, want := range []string{"op=add_group", "group=brlan0", "vlan_id=100", "Created bridge group"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "interface=") {
		t.Errorf("log line %q carries an interface attr for a group op", out)
	}
}
