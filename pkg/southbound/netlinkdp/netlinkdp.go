// Package netlinkdp implements southbound.Dataplane directly against the
// kernel via rtnetlink. It is the default backend: bridges are bridge
// links, tagged ports are 802.1Q vlan links enslaved with LinkSetMaster.
//
// An optional network namespace keeps bridge manipulation off the host
// namespace on platforms that isolate the LAN side.
package netlinkdp

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"

	"github.com/veesix-networks/vlanhal/pkg/logger"
	"github.com/veesix-networks/vlanhal/pkg/southbound"
)

type Dataplane struct {
	handle *netlink.Handle
	nsName string
	logger *slog.Logger
}

// New returns a dataplane in the current network namespace.
func New() *Dataplane {
	return &Dataplane{logger: logger.Get(logger.Southbound)}
}

// NewInNamespace returns a dataplane whose netlink calls run in the named
// network namespace.
func NewInNamespace(nsName string) (*Dataplane, error) {
	nsHandle, err := netns.GetFromName(nsName)
	if err != nil {
		return nil, fmt.Errorf("get netns %s: %w", nsName, err)
	}

	h, err := netlink.NewHandleAt(nsHandle)
	if err != nil {
		nsHandle.Close()
		return nil, fmt.Errorf("netlink handle in netns %s: %w", nsName, err)
	}

	return &Dataplane{
		handle: h,
		nsName: nsName,
		logger: logger.Get(logger.Southbound),
	}, nil
}

func (d *Dataplane) nlLinkByName(name string) (netlink.Link, error) {
	if d.handle != nil {
		return d.handle.LinkByName(name)
	}
	return netlink.LinkByName(name)
}

func (d *Dataplane) nlLinkAdd(link netlink.Link) error {
	if d.handle != nil {
		return d.handle.LinkAdd(link)
	}
	return netlink.LinkAdd(link)
}

func (d *Dataplane) nlLinkDel(link netlink.Link) error {
	if d.handle != nil {
		return d.handle.LinkDel(link)
	}
	return netlink.LinkDel(link)
}

func (d *Dataplane) nlLinkSetUp(link netlink.Link) error {
	if d.handle != nil {
		return d.handle.LinkSetUp(link)
	}
	return netlink.LinkSetUp(link)
}

func (d *Dataplane) nlLinkSetMaster(link netlink.Link, master netlink.Link) error {
	if d.handle != nil {
		return d.handle.LinkSetMaster(link, master)
	}
	return netlink.LinkSetMaster(link, master)
}

func (d *Dataplane) nlLinkSetNoMaster(link netlink.Link) error {
	if d.handle != nil {
		return d.handle.LinkSetNoMaster(link)
	}
	return netlink.LinkSetNoMaster(link)
}

func (d *Dataplane) nlLinkList() ([]netlink.Link, error) {
	if d.handle != nil {
		return d.handle.LinkList()
	}
	return netlink.LinkList()
}

func (d *Dataplane) nlAddrList(link netlink.Link) ([]netlink.Addr, error) {
	if d.handle != nil {
		return d.handle.AddrList(link, netlink.FAMILY_ALL)
	}
	return netlink.AddrList(link, netlink.FAMILY_ALL)
}

func (d *Dataplane) nlAddrAdd(link netlink.Link, addr *netlink.Addr) error {
	if d.handle != nil {
		return d.handle.AddrAdd(link, addr)
	}
	return netlink.AddrAdd(link, addr)
}

// bridgeByName resolves name to a bridge link. Returns nil without error
// when the link does not exist, and an error when it exists but is some
// other device kind.
func (d *Dataplane) bridgeByName(name string) (*netlink.Bridge, error) {
	link, err := d.nlLinkByName(name)
	switch err.(type) {
	case nil:
	case netlink.LinkNotFoundError:
		return nil, nil
	default:
		return nil, fmt.Errorf("netlink: %w", err)
	}
	br, ok := link.(*netlink.Bridge)
	if !ok {
		return nil, fmt.Errorf("device %s exists but is not a bridge", name)
	}
	return br, nil
}

func (d *Dataplane) BridgeExists(ctx context.Context, name string) (bool, error) {
	br, err := d.bridgeByName(name)
	if err != nil {
		return false, err
	}
	return br != nil, nil
}

func (d *Dataplane) EnsureBridge(ctx context.Context, name string) error {
	br, err := d.bridgeByName(name)
	if err != nil {
		return err
	}
	if br == nil {
		attrs := netlink.NewLinkAttrs()
		attrs.Name = name
		br = &netlink.Bridge{LinkAttrs: attrs}
		if err := d.nlLinkAdd(br); err != nil {
			return fmt.Errorf("add bridge %s: %w", name, err)
		}
		d.logger.Debug("Created bridge device", "bridge", name)
	}
	if err := d.nlLinkSetUp(br); err != nil {
		return fmt.Errorf("set bridge %s up: %w", name, err)
	}
	return nil
}

func (d *Dataplane) DeleteBridge(ctx context.Context, name string) error {
	br, err := d.bridgeByName(name)
	if err != nil {
		return err
	}
	if br == nil {
		return nil
	}
	if err := d.nlLinkDel(br); err != nil {
		return fmt.Errorf("delete bridge %s: %w", name, err)
	}
	d.logger.Debug("Deleted bridge device", "bridge", name)
	return nil
}

func (d *Dataplane) ListBridges(ctx context.Context) ([]southbound.BridgeInfo, error) {
	links, err := d.nlLinkList()
	if err != nil {
		return nil, fmt.Errorf("netlink link list: %w", err)
	}

	byIndex := make(map[int]netlink.Link, len(links))
	for _, l := range links {
		byIndex[l.Attrs().Index] = l
	}

	var out []southbound.BridgeInfo
	for _, l := range links {
		br, ok := l.(*netlink.Bridge)
		if !ok {
			continue
		}
		info := southbound.BridgeInfo{
			Name: br.Attrs().Name,
			Up:   br.Attrs().Flags&net.FlagUp != 0,
		}
		for _, member := range links {
			if member.Attrs().MasterIndex == br.Attrs().Index {
				info.Ports = append(info.Ports, portInfo(member, byIndex))
			}
		}
		out = append(out, info)
	}
	return out, nil
}

func (d *Dataplane) BridgePorts(ctx context.Context, bridge string) ([]southbound.PortInfo, error) {
	br, err := d.bridgeByName(bridge)
	if err != nil {
		return nil, err
	}
	if br == nil {
		return nil, fmt.Errorf("bridge %s does not exist", bridge)
	}

	links, err := d.nlLinkList()
	if err != nil {
		return nil, fmt.Errorf("netlink link list: %w", err)
	}
	byIndex := make(map[int]netlink.Link, len(links))
	for _, l := range links {
		byIndex[l.Attrs().Index] = l
	}

	var out []southbound.PortInfo
	for _, l := range links {
		if l.Attrs().MasterIndex == br.Attrs().Index {
			out = append(out, portInfo(l, byIndex))
		}
	}
	return out, nil
}

func portInfo(link netlink.Link, byIndex map[int]netlink.Link) southbound.PortInfo {
	info := southbound.PortInfo{Name: link.Attrs().Name}
	if vl, ok := link.(*netlink.Vlan); ok {
		info.Tagged = true
		info.VLANID = uint16(vl.VlanId)
		if parent, ok := byIndex[vl.Attrs().ParentIndex]; ok {
			info.Parent = parent.Attrs().Name
		}
	}
	return info
}

func (d *Dataplane) EnsureTaggedPort(ctx context.Context, bridge, ifName string, vlanID uint16) error {
	br, err := d.bridgeByName(bridge)
	if err != nil {
		return err
	}
	if br == nil {
		return fmt.Errorf("bridge %s does not exist", bridge)
	}

	parent, err := d.nlLinkByName(ifName)
	if err != nil {
		return fmt.Errorf("parent interface %s: %w", ifName, err)
	}

	portName := southbound.TaggedName(ifName, vlanID)
	port, err := d.nlLinkByName(portName)
	switch err.(type) {
	case nil:
		vl, ok := port.(*netlink.Vlan)
		if !ok {
			return fmt.Errorf("device %s exists but is not a vlan subinterface", portName)
		}
		if uint16(vl.VlanId) != vlanID {
			return fmt.Errorf("device %s carries vlan %d, want %d", portName, vl.VlanId, vlanID)
		}
	case netlink.LinkNotFoundError:
		attrs := netlink.NewLinkAttrs()
		attrs.Name = portName
		attrs.ParentIndex = parent.Attrs().Index
		vl := &netlink.Vlan{LinkAttrs: attrs, VlanId: int(vlanID)}
		if err := d.nlLinkAdd(vl); err != nil {
			return fmt.Errorf("add vlan subinterface %s: %w", portName, err)
		}
		port = vl
		d.logger.Debug("Created vlan subinterface", "port", portName)
	default:
		return fmt.Errorf("netlink: %w", err)
	}

	if err := d.nlLinkSetMaster(port, br); err != nil {
		return fmt.Errorf("enslave %s to %s: %w", portName, bridge, err)
	}
	if err := d.nlLinkSetUp(port); err != nil {
		return fmt.Errorf("set %s up: %w", portName, err)
	}
	return nil
}

func (d *Dataplane) RemovePort(ctx context.Context, bridge, port string) error {
	link, err := d.nlLinkByName(port)
	if err != nil {
		if _, ok := err.(netlink.LinkNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("netlink: %w", err)
	}

	if err := d.nlLinkSetNoMaster(link); err != nil {
		return fmt.Errorf("detach %s: %w", port, err)
	}

	// Only vlan subinterfaces are the HAL's to delete; physical devices
	// just get released from the bridge.
	if _, ok := link.(*netlink.Vlan); ok {
		if err := d.nlLinkDel(link); err != nil {
			return fmt.Errorf("delete vlan subinterface %s: %w", port, err)
		}
		d.logger.Debug("Deleted vlan subinterface", "port", port)
	}
	return nil
}

func (d *Dataplane) PortInBridge(ctx context.Context, bridge, ifName string, vlanID uint16) (bool, error) {
	br, err := d.bridgeByName(bridge)
	if err != nil {
		return false, err
	}
	if br == nil {
		return false, nil
	}

	link, err := d.nlLinkByName(southbound.TaggedName(ifName, vlanID))
	switch err.(type) {
	case nil:
		return link.Attrs().MasterIndex == br.Attrs().Index, nil
	case netlink.LinkNotFoundError:
		return false, nil
	default:
		return false, fmt.Errorf("netlink: %w", err)
	}
}

func (d *Dataplane) PortInAnyBridge(ctx context.Context, ifName string, vlanID uint16) (bool, error) {
	link, err := d.nlLinkByName(southbound.TaggedName(ifName, vlanID))
	switch err.(type) {
	case nil:
	case netlink.LinkNotFoundError:
		return false, nil
	default:
		return false, fmt.Errorf("netlink: %w", err)
	}
	if link.Attrs().MasterIndex == 0 {
		return false, nil
	}
	master, err := d.nlLinkByName(linkNameByIndex(d, link.Attrs().MasterIndex))
	if err != nil {
		return false, nil
	}
	_, isBridge := master.(*netlink.Bridge)
	return isBridge, nil
}

func linkNameByIndex(d *Dataplane, index int) string {
	links, err := d.nlLinkList()
	if err != nil {
		return ""
	}
	for _, l := range links {
		if l.Attrs().Index == index {
			return l.Attrs().Name
		}
	}
	return ""
}

func (d *Dataplane) SetBridgeAddress(ctx context.Context, bridge, prefix string) error {
	br, err := d.bridgeByName(bridge)
	if err != nil {
		return err
	}
	if br == nil {
		return fmt.Errorf("bridge %s does not exist", bridge)
	}

	addr, err := netlink.ParseAddr(prefix)
	if err != nil {
		return fmt.Errorf("parse address %s: %w", prefix, err)
	}

	existing, err := d.nlAddrList(br)
	if err != nil {
		return fmt.Errorf("list addresses of %s: %w", bridge, err)
	}
	for _, a := range existing {
		if a.IPNet.String() == addr.IPNet.String() {
			return nil
		}
	}

	if err := d.nlAddrAdd(br, addr); err != nil {
		return fmt.Errorf("assign %s to %s: %w", prefix, bridge, err)
	}
	d.logger.Debug("Assigned bridge address", "bridge", bridge, "address", prefix)
	return nil
}

func (d *Dataplane) Close() error {
	if d.handle != nil {
		d.handle.Close()
	}
	return nil
}
