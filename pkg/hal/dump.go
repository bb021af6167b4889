package hal

import (
	"context"
	"fmt"
	"io"
	"sort"
)

// InspectGroup returns the structured state of one bridge group.
func (h *HAL) InspectGroup(ctx context.Context, group string) (st *GroupState, err error) {
	defer func() { h.stats.record(opInspect, err) }()

	if err = validName(group); err != nil {
		return nil, err
	}

	exists, err := h.dp.BridgeExists(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("check bridge %s: %w", group, err)
	}
	vlanID, hasEntry := h.cache.Get(group)
	if !exists && !hasEntry {
		return nil, fmt.Errorf("group %s: %w", group, ErrGroupNotFound)
	}

	state := &GroupState{Name: group, Present: exists, DefaultVLANID: vlanID}
	if exists {
		bridges, err := h.dp.ListBridges(ctx)
		if err != nil {
			return nil, fmt.Errorf("list bridges: %w", err)
		}
		for _, b := range bridges {
			if b.Name == group {
				state.Up = b.Up
				state.Ports = b.Ports
				break
			}
		}
	}
	return state, nil
}

// InspectAllGroups returns the state of every group the HAL knows: the
// union of kernel bridges and cached config entries, name-ordered.
func (h *HAL) InspectAllGroups(ctx context.Context) (states []GroupState, err error) {
	defer func() { h.stats.record(opInspect, err) }()

	bridges, err := h.dp.ListBridges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bridges: %w", err)
	}

	byName := make(map[string]GroupState)
	for _, b := range bridges {
		byName[b.Name] = GroupState{Name: b.Name, Present: true, Up: b.Up, Ports: b.Ports}
	}
	for _, e := range h.cache.List() {
		st, ok := byName[e.GroupName]
		if !ok {
			st = GroupState{Name: e.GroupName}
		}
		st.DefaultVLANID = e.VLANID
		byName[e.GroupName] = st
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]GroupState, 0, len(names))
	for _, n := range names {
		out = append(out, byName[n])
	}
	return out, nil
}

// DumpGroup writes a human-readable dump of one group to w.
func (h *HAL) DumpGroup(ctx context.Context, w io.Writer, group string) error {
	st, err := h.InspectGroup(ctx, group)
	if err != nil {
		return err
	}
	writeGroupState(w, st)
	return nil
}

// DumpAllGroups writes a dump of every known group to w.
func (h *HAL) DumpAllGroups(ctx context.Context, w io.Writer) error {
	states, err := h.InspectAllGroups(ctx)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		fmt.Fprintln(w, "no bridge groups")
		return nil
	}
	for i := range states {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeGroupState(w, &states[i])
	}
	return nil
}

// DumpConfigEntries writes the group-to-VLAN configuration table to w.
func (h *HAL) DumpConfigEntries(w io.Writer) error {
	entries := h.cache.List()
	if len(entries) == 0 {
		fmt.Fprintln(w, "no config entries")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%-24s vlan %s\n", e.GroupName, e.VLANID)
	}
	return nil
}

func writeGroupState(w io.Writer, st *GroupState) {
	status := "absent"
	if st.Present {
		status = "down"
		if st.Up {
			status = "up"
		}
	}
	fmt.Fprintf(w, "group %s (%s)", st.Name, status)
	if st.DefaultVLANID != "" {
		fmt.Fprintf(w, " default-vlan %s", st.DefaultVLANID)
	}
	fmt.Fprintln(w)
	for _, p := range st.Ports {
		if p.Tagged {
			fmt.Fprintf(w, "  port %-20s parent %s vlan %d\n", p.Name, p.Parent, p.VLANID)
		} else {
			fmt.Fprintf(w, "  port %-20s untagged\n", p.Name)
		}
	}
}
