package main

import (
	"context"
	"strings"
	"testing"
)

func TestDispatchArity(t *testing.T) {
	c := NewCLI(NewClient("127.0.0.1:0"), "127.0.0.1:0", formatTable)

	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{"add group without vlan", "add group brlan0", "usage: add group <name> <vlan>"},
		{"add group extra args", "add group brlan0 100 extra", "usage: add group <name> <vlan>"},
		{"del group no args", "del group", "usage: del group <name>"},
		{"add interface one arg", "add interface brlan0", "usage: add interface <group> <ifname> [vlan]"},
		{"flush no group", "flush interfaces", "usage: flush interfaces <group>"},
		{"unknown command", "bogus", "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.dispatch(context.Background(), tt.line)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("dispatch(%q) = %v; want error containing %q", tt.line, err, tt.wantErr)
			}
		})
	}
}
