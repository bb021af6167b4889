// Package fake is an in-memory southbound.Dataplane for tests and dev-mode
// runs. It mimics kernel behavior closely enough for the HAL's idempotency
// and conflict paths: bridges are named sets of ports, tagged ports remember
// their parent and VLAN ID.
package fake

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/veesix-networks/vlanhal/pkg/southbound"
)

type bridge struct {
	up    bool
	addrs []string
	ports map[string]southbound.PortInfo
}

type Dataplane struct {
	mu      sync.RWMutex
	bridges map[string]*bridge
	closed  bool

	// FailNext, when set, makes the next mutating call return the error
	// and clears itself. Tests use it to verify cache-unchanged-on-failure.
	FailNext error
}

func New() *Dataplane {
	return &Dataplane{
		bridges: make(map[string]*bridge),
	}
}

func (d *Dataplane) takeFailure() error {
	err := d.FailNext
	d.FailNext = nil
	return err
}

func (d *Dataplane) BridgeExists(ctx context.Context, name string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false, southbound.ErrUnavailable
	}
	_, ok := d.bridges[name]
	return ok, nil
}

func (d *Dataplane) EnsureBridge(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return southbound.ErrUnavailable
	}
	if err := d.takeFailure(); err != nil {
		return err
	}
	if _, ok := d.bridges[name]; ok {
		return nil
	}
	d.bridges[name] = &bridge{up: true, ports: make(map[string]southbound.PortInfo)}
	return nil
}

func (d *Dataplane) DeleteBridge(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return southbound.ErrUnavailable
	}
	if err := d.takeFailure(); err != nil {
		return err
	}
	delete(d.bridges, name)
	return nil
}

func (d *Dataplane) ListBridges(ctx context.Context) ([]southbound.BridgeInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, southbound.ErrUnavailable
	}
	names := make([]string, 0, len(d.bridges))
	for n := range d.bridges {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]southbound.BridgeInfo, 0, len(names))
	for _, n := range names {
		out = append(out, d.bridgeInfo(n))
	}
	return out, nil
}

func (d *Dataplane) bridgeInfo(name string) southbound.BridgeInfo {
	br := d.bridges[name]
	info := southbound.BridgeInfo{Name: name, Up: br.up}
	portNames := make([]string, 0, len(br.ports))
	for p := range br.ports {
		portNames = append(portNames, p)
	}
	sort.Strings(portNames)
	for _, p := range portNames {
		info.Ports = append(info.Ports, br.ports[p])
	}
	return info
}

func (d *Dataplane) BridgePorts(ctx context.Context, name string) ([]southbound.PortInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, southbound.ErrUnavailable
	}
	if _, ok := d.bridges[name]; !ok {
		return nil, fmt.Errorf("bridge %s does not exist", name)
	}
	return d.bridgeInfo(name).Ports, nil
}

func (d *Dataplane) EnsureTaggedPort(ctx context.Context, bridgeName, ifName string, vlanID uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return southbound.ErrUnavailable
	}
	if err := d.takeFailure(); err != nil {
		return err
	}
	br, ok := d.bridges[bridgeName]
	if !ok {
		return fmt.Errorf("bridge %s does not exist", bridgeName)
	}
	port := southbound.TaggedName(ifName, vlanID)
	br.ports[port] = southbound.PortInfo{
		Name:   port,
		Parent: ifName,
		VLANID: vlanID,
		Tagged: true,
	}
	return nil
}

func (d *Dataplane) RemovePort(ctx context.Context, bridgeName, port string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return southbound.ErrUnavailable
	}
	if err := d.takeFailure(); err != nil {
		return err
	}
	br, ok := d.bridges[bridgeName]
	if !ok {
		return nil
	}
	delete(br.ports, port)
	return nil
}

func (d *Dataplane) PortInBridge(ctx context.Context, bridgeName, ifName string, vlanID uint16) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false, southbound.ErrUnavailable
	}
	br, ok := d.bridges[bridgeName]
	if !ok {
		return false, nil
	}
	_, ok = br.ports[southbound.TaggedName(ifName, vlanID)]
	return ok, nil
}

func (d *Dataplane) PortInAnyBridge(ctx context.Context, ifName string, vlanID uint16) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false, southbound.ErrUnavailable
	}
	port := southbound.TaggedName(ifName, vlanID)
	for _, br := range d.bridges {
		if _, ok := br.ports[port]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (d *Dataplane) SetBridgeAddress(ctx context.Context, bridgeName, prefix string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return southbound.ErrUnavailable
	}
	if err := d.takeFailure(); err != nil {
		return err
	}
	br, ok := d.bridges[bridgeName]
	if !ok {
		return fmt.Errorf("bridge %s does not exist", bridgeName)
	}
	for _, a := range br.addrs {
		if a == prefix {
			return nil
		}
	}
	br.addrs = append(br.addrs, prefix)
	return nil
}

// Addresses returns the prefixes assigned to a bridge, for tests.
func (d *Dataplane) Addresses(bridgeName string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	br, ok := d.bridges[bridgeName]
	if !ok {
		return nil
	}
	return append([]string(nil), br.addrs...)
}

func (d *Dataplane) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
