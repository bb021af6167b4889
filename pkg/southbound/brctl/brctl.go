// Package brctl implements southbound.Dataplane with the classic busybox
// tooling: brctl for bridge manipulation, vconfig for 802.1Q subinterfaces
// and ip for link state. It is the backend for platforms whose kernels or
// images predate iproute2 bridge support.
package brctl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/veesix-networks/vlanhal/internal/shell"
	"github.com/veesix-networks/vlanhal/pkg/logger"
	"github.com/veesix-networks/vlanhal/pkg/southbound"
)

const (
	defaultBrctlPath   = "brctl"
	defaultVconfigPath = "vconfig"
	defaultIPPath      = "ip"
)

// runFunc runs one shell command; tests substitute a canned runner.
type runFunc func(ctx context.Context, command string) (string, error)

type Dataplane struct {
	brctl   string
	vconfig string
	ip      string
	run     runFunc
	logger  *slog.Logger
}

type Option func(*Dataplane)

// WithPaths overrides the tool locations. Empty strings keep the defaults.
func WithPaths(brctlPath, vconfigPath, ipPath string) Option {
	return func(d *Dataplane) {
		if brctlPath != "" {
			d.brctl = brctlPath
		}
		if vconfigPath != "" {
			d.vconfig = vconfigPath
		}
		if ipPath != "" {
			d.ip = ipPath
		}
	}
}

func withRunner(run runFunc) Option {
	return func(d *Dataplane) { d.run = run }
}

func New(opts ...Option) *Dataplane {
	d := &Dataplane{
		brctl:   defaultBrctlPath,
		vconfig: defaultVconfigPath,
		ip:      defaultIPPath,
		run:     shell.Output,
		logger:  logger.Get(logger.Southbound),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dataplane) show(ctx context.Context) ([]bridgeEntry, error) {
	out, err := d.run(ctx, d.brctl+" show")
	if err != nil {
		return nil, fmt.Errorf("brctl show: %w", err)
	}
	return parseShow(splitCapped(out)), nil
}

func (d *Dataplane) BridgeExists(ctx context.Context, name string) (bool, error) {
	bridges, err := d.show(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range bridges {
		if b.name == name {
			return true, nil
		}
	}
	return false, nil
}

func (d *Dataplane) EnsureBridge(ctx context.Context, name string) error {
	exists, err := d.BridgeExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := d.run(ctx, fmt.Sprintf("%s addbr %s", d.brctl, name)); err != nil {
			return fmt.Errorf("brctl addbr %s: %w", name, err)
		}
		d.logger.Debug("Created bridge", "bridge", name)
	}
	if _, err := d.run(ctx, fmt.Sprintf("%s link set %s up", d.ip, name)); err != nil {
		return fmt.Errorf("set %s up: %w", name, err)
	}
	return nil
}

func (d *Dataplane) DeleteBridge(ctx context.Context, name string) error {
	exists, err := d.BridgeExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if _, err := d.run(ctx, fmt.Sprintf("%s link set %s down", d.ip, name)); err != nil {
		return fmt.Errorf("set %s down: %w", name, err)
	}
	if _, err := d.run(ctx, fmt.Sprintf("%s delbr %s", d.brctl, name)); err != nil {
		return fmt.Errorf("brctl delbr %s: %w", name, err)
	}
	d.logger.Debug("Deleted bridge", "bridge", name)
	return nil
}

func (d *Dataplane) ListBridges(ctx context.Context) ([]southbound.BridgeInfo, error) {
	bridges, err := d.show(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]southbound.BridgeInfo, 0, len(bridges))
	for _, b := range bridges {
		info := southbound.BridgeInfo{Name: b.name, Up: d.linkUp(ctx, b.name)}
		for _, p := range b.ports {
			info.Ports = append(info.Ports, makePortInfo(p))
		}
		out = append(out, info)
	}
	return out, nil
}

func (d *Dataplane) BridgePorts(ctx context.Context, bridge string) ([]southbound.PortInfo, error) {
	bridges, err := d.show(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range bridges {
		if b.name != bridge {
			continue
		}
		out := make([]southbound.PortInfo, 0, len(b.ports))
		for _, p := range b.ports {
			out = append(out, makePortInfo(p))
		}
		return out, nil
	}
	return nil, fmt.Errorf("bridge %s does not exist", bridge)
}

func (d *Dataplane) EnsureTaggedPort(ctx context.Context, bridge, ifName string, vlanID uint16) error {
	port := southbound.TaggedName(ifName, vlanID)

	member, err := d.PortInBridge(ctx, bridge, ifName, vlanID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}

	if !d.linkExists(ctx, port) {
		if _, err := d.run(ctx, fmt.Sprintf("%s add %s %d", d.vconfig, ifName, vlanID)); err != nil {
			return fmt.Errorf("vconfig add %s %d: %w", ifName, vlanID, err)
		}
		d.logger.Debug("Created vlan subinterface", "port", port)
	}
	if _, err := d.run(ctx, fmt.Sprintf("%s addif %s %s", d.brctl, bridge, port)); err != nil {
		return fmt.Errorf("brctl addif %s %s: %w", bridge, port, err)
	}
	if _, err := d.run(ctx, fmt.Sprintf("%s link set %s up", d.ip, port)); err != nil {
		return fmt.Errorf("set %s up: %w", port, err)
	}
	return nil
}

func (d *Dataplane) RemovePort(ctx context.Context, bridge, port string) error {
	if _, err := d.run(ctx, fmt.Sprintf("%s delif %s %s", d.brctl, bridge, port)); err != nil {
		return fmt.Errorf("brctl delif %s %s: %w", bridge, port, err)
	}
	if _, _, ok := southbound.SplitTagged(port); ok {
		if _, err := d.run(ctx, fmt.Sprintf("%s rem %s", d.vconfig, port)); err != nil {
			return fmt.Errorf("vconfig rem %s: %w", port, err)
		}
		d.logger.Debug("Deleted vlan subinterface", "port", port)
	}
	return nil
}

func (d *Dataplane) PortInBridge(ctx context.Context, bridge, ifName string, vlanID uint16) (bool, error) {
	bridges, err := d.show(ctx)
	if err != nil {
		return false, err
	}
	port := southbound.TaggedName(ifName, vlanID)
	for _, b := range bridges {
		if b.name != bridge {
			continue
		}
		for _, p := range b.ports {
			if p == port {
				return true, nil
			}
		}
	}
	return false, nil
}

func (d *Dataplane) PortInAnyBridge(ctx context.Context, ifName string, vlanID uint16) (bool, error) {
	bridges, err := d.show(ctx)
	if err != nil {
		return false, err
	}
	port := southbound.TaggedName(ifName, vlanID)
	for _, b := range bridges {
		for _, p := range b.ports {
			if p == port {
				return true, nil
			}
		}
	}
	return false, nil
}

func (d *Dataplane) SetBridgeAddress(ctx context.Context, bridge, prefix string) error {
	out, err := d.run(ctx, fmt.Sprintf("%s addr add %s dev %s", d.ip, prefix, bridge))
	if err != nil {
		// busybox ip reports an existing address as a failure; that is
		// this API's success case.
		if strings.Contains(out, "File exists") || strings.Contains(err.Error(), "File exists") {
			return nil
		}
		return fmt.Errorf("ip addr add %s dev %s: %w", prefix, bridge, err)
	}
	return nil
}

func (d *Dataplane) linkExists(ctx context.Context, name string) bool {
	_, err := d.run(ctx, fmt.Sprintf("%s link show %s", d.ip, name))
	return err == nil
}

func (d *Dataplane) linkUp(ctx context.Context, name string) bool {
	out, err := d.run(ctx, fmt.Sprintf("%s link show %s", d.ip, name))
	if err != nil {
		return false
	}
	return strings.Contains(out, ",UP") || strings.Contains(out, "<UP")
}

func (d *Dataplane) Close() error {
	return nil
}

func makePortInfo(name string) southbound.PortInfo {
	info := southbound.PortInfo{Name: name}
	if parent, vid, ok := southbound.SplitTagged(name); ok {
		info.Parent = parent
		info.VLANID = vid
		info.Tagged = true
	}
	return info
}

func splitCapped(out string) []string {
	if out == "" {
		return nil
	}
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		if len(l) > shell.MaxLineBytes {
			lines[i] = l[:shell.MaxLineBytes]
		}
	}
	return lines
}
