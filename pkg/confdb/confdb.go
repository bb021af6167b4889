// Package confdb holds the group-to-VLAN configuration entries: the default
// VLAN ID recorded for every bridge group the HAL manages.
package confdb

import (
	"sort"
	"sync"
)

type Entry struct {
	GroupName string `json:"group_name"`
	VLANID    string `json:"vlan_id"`
}

// Cache is the in-memory entry table. It is indexed by group name and safe
// for concurrent use. Iteration order is deterministic (byte-wise name
// order) so diagnostic dumps are stable.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]string),
	}
}

// Insert records group -> vlanID, overwriting any previous value.
func (c *Cache) Insert(group, vlanID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[group] = vlanID
}

// Delete removes the entry for group and reports whether one existed.
func (c *Cache) Delete(group string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[group]; !ok {
		return false
	}
	delete(c.entries, group)
	return true
}

// Get returns the VLAN ID recorded for group.
func (c *Cache) Get(group string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[group]
	return v, ok
}

// List returns all entries in name order.
func (c *Cache) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.entries))
	for g, v := range c.entries {
		out = append(out, Entry{GroupName: g, VLANID: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupName < out[j].GroupName })
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Replace swaps the whole table, used when restoring from a store.
func (c *Cache) Replace(entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string, len(entries))
	for _, e := range entries {
		c.entries[e.GroupName] = e.VLANID
	}
}
