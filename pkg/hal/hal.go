// Package hal is the VLAN bridge-group management surface for broadband
// gateway devices: create and tear down bridge groups, attach 802.1Q tagged
// member interfaces, and keep a persistent group-to-VLAN configuration
// cache. The dataplane behind it is vendor-replaceable via
// southbound.Dataplane.
//
// All mutating operations are synchronous and idempotent: asking for a
// state the system is already in succeeds, asking for a state that clashes
// with the existing VLAN assignment fails with ErrVLANConflict.
package hal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/veesix-networks/vlanhal/pkg/confdb"
	"github.com/veesix-networks/vlanhal/pkg/events"
	"github.com/veesix-networks/vlanhal/pkg/lockfile"
	"github.com/veesix-networks/vlanhal/pkg/logger"
	"github.com/veesix-networks/vlanhal/pkg/southbound"
)

type HAL struct {
	// mu serializes mutating operations in-process; the optional flock
	// extends the same critical section across processes.
	mu    sync.Mutex
	dp    southbound.Dataplane
	cache *confdb.Cache
	store confdb.Store
	bus   events.Bus
	lock  *lockfile.Lock

	strictNames bool
	logger      *slog.Logger
	stats       *statsTable
}

func New(opts ...Option) (*HAL, error) {
	h := &HAL{
		cache:  confdb.NewCache(),
		logger: logger.Get(logger.HAL),
		stats:  newStatsTable(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.dp == nil {
		return nil, fmt.Errorf("hal: no dataplane configured")
	}
	return h, nil
}

// Restore loads config entries from the store into the cache. Call once at
// startup, before serving operations.
func (h *HAL) Restore(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	var entries []confdb.Entry
	err := h.store.Load(ctx, func(group, vlanID string) error {
		entries = append(entries, confdb.Entry{GroupName: group, VLANID: vlanID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("restore config entries: %w", err)
	}
	h.cache.Replace(entries)
	h.logger.Info("Restored config entries", "count", len(entries))
	return nil
}

// acquire enters the mutating critical section: in-process mutex first,
// then the cross-process flock. The returned release undoes both.
func (h *HAL) acquire(ctx context.Context) (func(), error) {
	h.mu.Lock()
	if h.lock != nil {
		if err := h.lock.Acquire(ctx); err != nil {
			h.mu.Unlock()
			return nil, err
		}
	}
	return func() {
		if h.lock != nil {
			if err := h.lock.Release(); err != nil {
				h.logger.Warn("Failed to release process lock", "error", err)
			}
		}
		h.mu.Unlock()
	}, nil
}

func (h *HAL) publish(topic string, data any) {
	if h.bus == nil {
		return
	}
	h.bus.Publish(topic, events.Event{Source: "hal", Data: data})
}

// AddGroup creates the bridge group and records vlanID as its default VLAN.
// The call succeeds when the bridge already exists with the same recorded
// VLAN and fails with ErrVLANConflict when the recorded VLAN differs.
func (h *HAL) AddGroup(ctx context.Context, group, vlanID string) (err error) {
	defer func() { h.stats.record(opAddGroup, err) }()

	if err = h.validGroupName(group); err != nil {
		return err
	}
	if _, err = parseVLANID(vlanID); err != nil {
		return err
	}

	log := logger.WithOp(h.logger, logger.OpAttrs{Op: opAddGroup, Group: group, VLANID: vlanID})

	release, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	exists, err := h.dp.BridgeExists(ctx, group)
	if err != nil {
		return fmt.Errorf("check bridge %s: %w", group, err)
	}

	if exists {
		if cached, ok := h.cache.Get(group); ok {
			if cached == vlanID {
				return nil
			}
			return fmt.Errorf("group %s already has vlan %s: %w", group, cached, ErrVLANConflict)
		}
		// Bridge exists but was created outside the HAL; adopt it.
		if err = h.putEntry(ctx, group, vlanID); err != nil {
			return err
		}
		log.Info("Adopted existing bridge group")
		h.publish(events.TopicGroup, events.GroupEvent{
			Action: events.GroupAdopted,
			Group:  group,
			VLANID: vlanID,
		})
		return nil
	}

	if err = h.dp.EnsureBridge(ctx, group); err != nil {
		return fmt.Errorf("create bridge %s: %w", group, err)
	}
	if err = h.putEntry(ctx, group, vlanID); err != nil {
		return err
	}

	log.Info("Created bridge group")
	h.publish(events.TopicGroup, events.GroupEvent{
		Action: events.GroupCreated,
		Group:  group,
		VLANID: vlanID,
	})
	return nil
}

// DeleteGroup removes the bridge group, detaching every member port first.
// Deleting a group that does not exist succeeds.
func (h *HAL) DeleteGroup(ctx context.Context, group string) (err error) {
	defer func() { h.stats.record(opDelGroup, err) }()

	if err = validName(group); err != nil {
		return err
	}

	release, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	exists, err := h.dp.BridgeExists(ctx, group)
	if err != nil {
		return fmt.Errorf("check bridge %s: %w", group, err)
	}

	if exists {
		ports, err := h.dp.BridgePorts(ctx, group)
		if err != nil {
			return fmt.Errorf("list ports of %s: %w", group, err)
		}
		for _, p := range ports {
			if err := h.dp.RemovePort(ctx, group, p.Name); err != nil {
				return fmt.Errorf("detach %s from %s: %w", p.Name, group, err)
			}
		}
		if err := h.dp.DeleteBridge(ctx, group); err != nil {
			return fmt.Errorf("delete bridge %s: %w", group, err)
		}
	}

	// The entry goes even when the bridge was already gone, so a delete
	// always converges cache and kernel.
	if err = h.dropEntry(ctx, group); err != nil {
		return err
	}

	if exists {
		logger.WithOp(h.logger, logger.OpAttrs{Op: opDelGroup, Group: group}).
			Info("Deleted bridge group")
		h.publish(events.TopicGroup, events.GroupEvent{
			Action: events.GroupDeleted,
			Group:  group,
		})
	}
	return nil
}

// AddInterface creates the 802.1Q subinterface ifName.vlan and enslaves it
// to the group's bridge. An empty vlanID means the group's recorded default.
// The member must not already sit in the group under a different VLAN.
func (h *HAL) AddInterface(ctx context.Context, group, ifName, vlanID string) (err error) {
	defer func() { h.stats.record(opAddInterface, err) }()

	if err = validName(group); err != nil {
		return err
	}
	if err = validName(ifName); err != nil {
		return err
	}

	release, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	exists, err := h.dp.BridgeExists(ctx, group)
	if err != nil {
		return fmt.Errorf("check bridge %s: %w", group, err)
	}
	if !exists {
		return fmt.Errorf("group %s: %w", group, ErrGroupNotFound)
	}

	vid, err := h.resolveVLANID(group, vlanID)
	if err != nil {
		return err
	}

	member, err := h.dp.PortInBridge(ctx, group, ifName, vid)
	if err != nil {
		return fmt.Errorf("check membership of %s in %s: %w", ifName, group, err)
	}
	if member {
		return nil
	}

	// Same physical interface under another tag in this group is a
	// conflict, not an idempotent repeat.
	ports, err := h.dp.BridgePorts(ctx, group)
	if err != nil {
		return fmt.Errorf("list ports of %s: %w", group, err)
	}
	for _, p := range ports {
		if p.Tagged && p.Parent == ifName && p.VLANID != vid {
			return fmt.Errorf("interface %s already in group %s with vlan %d: %w",
				ifName, group, p.VLANID, ErrVLANConflict)
		}
	}

	if err = h.dp.EnsureTaggedPort(ctx, group, ifName, vid); err != nil {
		return fmt.Errorf("attach %s.%d to %s: %w", ifName, vid, group, err)
	}

	logger.WithOp(h.logger, logger.OpAttrs{
		Op: opAddInterface, Group: group, Interface: ifName, VLANID: fmt.Sprintf("%d", vid),
	}).Info("Added interface to group")
	h.publish(events.TopicInterface, events.InterfaceEvent{
		Action:    events.InterfaceAdded,
		Group:     group,
		Interface: ifName,
		VLANID:    fmt.Sprintf("%d", vid),
	})
	return nil
}

// DeleteInterface detaches the tagged member from the group and deletes the
// VLAN subinterface. Removing a non-member succeeds.
func (h *HAL) DeleteInterface(ctx context.Context, group, ifName, vlanID string) (err error) {
	defer func() { h.stats.record(opDelInterface, err) }()

	if err = validName(group); err != nil {
		return err
	}
	if err = validName(ifName); err != nil {
		return err
	}

	release, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	exists, err := h.dp.BridgeExists(ctx, group)
	if err != nil {
		return fmt.Errorf("check bridge %s: %w", group, err)
	}
	if !exists {
		return nil
	}

	vid, err := h.resolveVLANID(group, vlanID)
	if err != nil {
		if vlanID == "" && errors.Is(err, ErrEntryNotFound) {
			// No explicit VLAN and no recorded default: nothing the HAL
			// could have attached, so nothing to remove.
			return nil
		}
		return err
	}

	member, err := h.dp.PortInBridge(ctx, group, ifName, vid)
	if err != nil {
		return fmt.Errorf("check membership of %s in %s: %w", ifName, group, err)
	}
	if !member {
		return nil
	}

	port := southbound.TaggedName(ifName, vid)
	if err = h.dp.RemovePort(ctx, group, port); err != nil {
		return fmt.Errorf("detach %s from %s: %w", port, group, err)
	}

	logger.WithOp(h.logger, logger.OpAttrs{
		Op: opDelInterface, Group: group, Interface: ifName, VLANID: fmt.Sprintf("%d", vid),
	}).Info("Removed interface from group")
	h.publish(events.TopicInterface, events.InterfaceEvent{
		Action:    events.InterfaceRemoved,
		Group:     group,
		Interface: ifName,
		VLANID:    fmt.Sprintf("%d", vid),
	})
	return nil
}

// DeleteAllInterfaces detaches every member port of the group.
func (h *HAL) DeleteAllInterfaces(ctx context.Context, group string) (err error) {
	defer func() { h.stats.record(opFlushInterfaces, err) }()

	if err = validName(group); err != nil {
		return err
	}

	release, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	exists, err := h.dp.BridgeExists(ctx, group)
	if err != nil {
		return fmt.Errorf("check bridge %s: %w", group, err)
	}
	if !exists {
		return fmt.Errorf("group %s: %w", group, ErrGroupNotFound)
	}

	ports, err := h.dp.BridgePorts(ctx, group)
	if err != nil {
		return fmt.Errorf("list ports of %s: %w", group, err)
	}

	removed := make([]string, 0, len(ports))
	for _, p := range ports {
		if err := h.dp.RemovePort(ctx, group, p.Name); err != nil {
			return fmt.Errorf("detach %s from %s: %w", p.Name, group, err)
		}
		removed = append(removed, p.Name)
	}

	if len(removed) > 0 {
		logger.WithOp(h.logger, logger.OpAttrs{Op: opFlushInterfaces, Group: group}).
			Info("Flushed group interfaces", "count", len(removed))
		h.publish(events.TopicInterface, events.InterfaceEvent{
			Action:  events.InterfacesFlushed,
			Group:   group,
			Removed: removed,
		})
	}
	return nil
}

// resolveVLANID turns the textual VLAN ID into numeric form, falling back
// to the group's recorded default when the text is empty.
func (h *HAL) resolveVLANID(group, vlanID string) (uint16, error) {
	if vlanID == "" {
		cached, ok := h.cache.Get(group)
		if !ok {
			return 0, fmt.Errorf("group %s has no default vlan: %w", group, ErrEntryNotFound)
		}
		vlanID = cached
	}
	return parseVLANID(vlanID)
}

// putEntry updates cache and store together. Store failure rolls the cache
// back so the two never diverge.
func (h *HAL) putEntry(ctx context.Context, group, vlanID string) error {
	prev, had := h.cache.Get(group)
	h.cache.Insert(group, vlanID)
	if h.store == nil {
		return nil
	}
	if err := h.store.Put(ctx, group, vlanID); err != nil {
		if had {
			h.cache.Insert(group, prev)
		} else {
			h.cache.Delete(group)
		}
		return fmt.Errorf("persist config entry %s: %w", group, err)
	}
	return nil
}

func (h *HAL) dropEntry(ctx context.Context, group string) error {
	prev, had := h.cache.Get(group)
	if !had {
		return nil
	}
	h.cache.Delete(group)
	if h.store == nil {
		return nil
	}
	if err := h.store.Delete(ctx, group); err != nil {
		h.cache.Insert(group, prev)
		return fmt.Errorf("drop config entry %s: %w", group, err)
	}
	return nil
}

// InsertConfigEntry records group -> vlanID in the cache (and store) without
// touching the dataplane.
func (h *HAL) InsertConfigEntry(group, vlanID string) error {
	if err := validName(group); err != nil {
		return err
	}
	if _, err := parseVLANID(vlanID); err != nil {
		return err
	}
	release, err := h.acquire(context.Background())
	if err != nil {
		return err
	}
	defer release()
	return h.putEntry(context.Background(), group, vlanID)
}

// DeleteConfigEntry removes the recorded entry for group.
func (h *HAL) DeleteConfigEntry(group string) error {
	if err := validName(group); err != nil {
		return err
	}
	release, err := h.acquire(context.Background())
	if err != nil {
		return err
	}
	defer release()
	if _, ok := h.cache.Get(group); !ok {
		return fmt.Errorf("group %s: %w", group, ErrEntryNotFound)
	}
	return h.dropEntry(context.Background(), group)
}

// VLANIDForGroup returns the VLAN ID recorded for group.
func (h *HAL) VLANIDForGroup(group string) (string, error) {
	v, ok := h.cache.Get(group)
	if !ok {
		return "", fmt.Errorf("group %s: %w", group, ErrEntryNotFound)
	}
	return v, nil
}

// ConfigEntries returns all recorded entries in name order.
func (h *HAL) ConfigEntries() []confdb.Entry {
	return h.cache.List()
}

// SetBridgeAddress assigns an IP prefix to the group's bridge device.
func (h *HAL) SetBridgeAddress(ctx context.Context, group, prefix string) error {
	if err := validName(group); err != nil {
		return err
	}
	release, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	exists, err := h.dp.BridgeExists(ctx, group)
	if err != nil {
		return fmt.Errorf("check bridge %s: %w", group, err)
	}
	if !exists {
		return fmt.Errorf("group %s: %w", group, ErrGroupNotFound)
	}
	if err := h.dp.SetBridgeAddress(ctx, group, prefix); err != nil {
		return fmt.Errorf("assign %s to %s: %w", prefix, group, err)
	}
	return nil
}

// Stats returns a snapshot of the HAL's operation counters.
func (h *HAL) Stats() Stats {
	return h.stats.snapshot()
}

// Dataplane exposes the southbound for components that only observe, like
// the drift monitor.
func (h *HAL) Dataplane() southbound.Dataplane {
	return h.dp
}
