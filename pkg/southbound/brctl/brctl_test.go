package brctl

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

const showOutput = "bridge name\tbridge id\t\tSTP enabled\tinterfaces\n" +
	"brlan0\t\t8000.9cc8fc0f3a10\tno\t\tl2sd0.100\n" +
	"\t\t\t\t\t\tl2sd0.101\n" +
	"brlan1\t\t8000.9cc8fc0f3a11\tno\t\teth3\n" +
	"brebhaul\t8000.9cc8fc0f3a12\tno\n"

func TestParseShow(t *testing.T) {
	bridges := parseShow(strings.Split(showOutput, "\n"))

	if len(bridges) != 3 {
		t.Fatalf("got %d bridges; want 3", len(bridges))
	}

	tests := []struct {
		name  string
		ports []string
	}{
		{"brlan0", []string{"l2sd0.100", "l2sd0.101"}},
		{"brlan1", []string{"eth3"}},
		{"brebhaul", nil},
	}
	for i, tt := range tests {
		if bridges[i].name != tt.name {
			t.Errorf("bridge[%d].name = %s; want %s", i, bridges[i].name, tt.name)
		}
		if strings.Join(bridges[i].ports, ",") != strings.Join(tt.ports, ",") {
			t.Errorf("bridge[%d].ports = %v; want %v", i, bridges[i].ports, tt.ports)
		}
	}
}

func TestParseShowEmpty(t *testing.T) {
	if got := parseShow([]string{"bridge name\tbridge id\t\tSTP enabled\tinterfaces"}); len(got) != 0 {
		t.Errorf("header-only output produced %v", got)
	}
	if got := parseShow(nil); len(got) != 0 {
		t.Errorf("nil input produced %v", got)
	}
}

func TestParseShowLongLineCapped(t *testing.T) {
	long := "brlan0\t\t8000.9cc8fc0f3a10\tno\t\t" + strings.Repeat("x", 300)
	bridges := parseShow(splitCapped(long))
	if len(bridges) != 1 {
		t.Fatalf("got %d bridges; want 1", len(bridges))
	}
	if len(bridges[0].ports) != 1 {
		t.Fatalf("ports = %v", bridges[0].ports)
	}
	if len(bridges[0].ports[0]) >= 300 {
		t.Errorf("port name not capped: %d bytes", len(bridges[0].ports[0]))
	}
}

// cannedRunner records commands and answers from a script keyed by prefix.
type cannedRunner struct {
	commands []string
	answers  map[string]string
	fail     map[string]error
}

func (c *cannedRunner) run(ctx context.Context, command string) (string, error) {
	c.commands = append(c.commands, command)
	for prefix, err := range c.fail {
		if strings.HasPrefix(command, prefix) {
			return "", err
		}
	}
	for prefix, out := range c.answers {
		if strings.HasPrefix(command, prefix) {
			return out, nil
		}
	}
	return "", nil
}

func (c *cannedRunner) ran(prefix string) bool {
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			return true
		}
	}
	return false
}

func newTestDataplane(r *cannedRunner) *Dataplane {
	return New(withRunner(r.run))
}

func TestBridgeExists(t *testing.T) {
	r := &cannedRunner{answers: map[string]string{"brctl show": showOutput}}
	d := newTestDataplane(r)

	ctx := context.Background()
	if ok, err := d.BridgeExists(ctx, "brlan0"); err != nil || !ok {
		t.Errorf("BridgeExists(brlan0) = %v, %v; want true", ok, err)
	}
	if ok, err := d.BridgeExists(ctx, "brlan9"); err != nil || ok {
		t.Errorf("BridgeExists(brlan9) = %v, %v; want false", ok, err)
	}
}

func TestEnsureBridgeCreates(t *testing.T) {
	r := &cannedRunner{answers: map[string]string{"brctl show": showOutput}}
	d := newTestDataplane(r)

	if err := d.EnsureBridge(context.Background(), "brlan7"); err != nil {
		t.Fatalf("EnsureBridge: %v", err)
	}
	if !r.ran("brctl addbr brlan7") {
		t.Errorf("addbr not invoked; commands: %v", r.commands)
	}
	if !r.ran("ip link set brlan7 up") {
		t.Errorf("link not set up; commands: %v", r.commands)
	}
}

func TestEnsureBridgeIdempotent(t *testing.T) {
	r := &cannedRunner{answers: map[string]string{"brctl show": showOutput}}
	d := newTestDataplane(r)

	if err := d.EnsureBridge(context.Background(), "brlan0"); err != nil {
		t.Fatalf("EnsureBridge: %v", err)
	}
	if r.ran("brctl addbr") {
		t.Errorf("addbr invoked for existing bridge; commands: %v", r.commands)
	}
}

func TestEnsureTaggedPort(t *testing.T) {
	r := &cannedRunner{
		answers: map[string]string{"brctl show": showOutput},
		fail:    map[string]error{"ip link show l2sd0.102": fmt.Errorf("does not exist")},
	}
	d := newTestDataplane(r)

	if err := d.EnsureTaggedPort(context.Background(), "brlan0", "l2sd0", 102); err != nil {
		t.Fatalf("EnsureTaggedPort: %v", err)
	}
	for _, want := range []string{"vconfig add l2sd0 102", "brctl addif brlan0 l2sd0.102", "ip link set l2sd0.102 up"} {
		if !r.ran(want) {
			t.Errorf("%q not invoked; commands: %v", want, r.commands)
		}
	}
}

func TestEnsureTaggedPortAlreadyMember(t *testing.T) {
	r := &cannedRunner{answers: map[string]string{"brctl show": showOutput}}
	d := newTestDataplane(r)

	if err := d.EnsureTaggedPort(context.Background(), "brlan0", "l2sd0", 100); err != nil {
		t.Fatalf("EnsureTaggedPort: %v", err)
	}
	if r.ran("vconfig") || r.ran("brctl addif") {
		t.Errorf("mutating commands invoked for existing member: %v", r.commands)
	}
}

func TestRemovePort(t *testing.T) {
	r := &cannedRunner{answers: map[string]string{"brctl show": showOutput}}
	d := newTestDataplane(r)

	// Tagged port: delif then the subinterface goes too.
	if err := d.RemovePort(context.Background(), "brlan0", "l2sd0.100"); err != nil {
		t.Fatalf("RemovePort: %v", err)
	}
	if !r.ran("brctl delif brlan0 l2sd0.100") || !r.ran("vconfig rem l2sd0.100") {
		t.Errorf("commands: %v", r.commands)
	}

	// Physical port: only detached.
	r.commands = nil
	if err := d.RemovePort(context.Background(), "brlan1", "eth3"); err != nil {
		t.Fatalf("RemovePort: %v", err)
	}
	if r.ran("vconfig rem") {
		t.Errorf("vconfig rem invoked for physical port: %v", r.commands)
	}
}

func TestPortInAnyBridge(t *testing.T) {
	r := &cannedRunner{answers: map[string]string{"brctl show": showOutput}}
	d := newTestDataplane(r)

	ctx := context.Background()
	if ok, _ := d.PortInAnyBridge(ctx, "l2sd0", 101); !ok {
		t.Error("l2sd0.101 should be found in brlan0")
	}
	if ok, _ := d.PortInAnyBridge(ctx, "l2sd0", 999); ok {
		t.Error("l2sd0.999 should not be found")
	}
}

func TestBridgePortsParsesTags(t *testing.T) {
	r := &cannedRunner{answers: map[string]string{"brctl show": showOutput}}
	d := newTestDataplane(r)

	ports, err := d.BridgePorts(context.Background(), "brlan0")
	if err != nil {
		t.Fatalf("BridgePorts: %v", err)
	}
	if len(ports) != 2 {
		t.Fatalf("got %d ports; want 2", len(ports))
	}
	if !ports[0].Tagged || ports[0].Parent != "l2sd0" || ports[0].VLANID != 100 {
		t.Errorf("port[0] = %+v", ports[0])
	}

	if _, err := d.BridgePorts(context.Background(), "brlan9"); err == nil {
		t.Error("expected error for unknown bridge")
	}
}
