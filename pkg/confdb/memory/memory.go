// Package memory provides a non-persistent confdb.Store for tests and
// dev-mode runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/veesix-networks/vlanhal/pkg/confdb"
)

type Store struct {
	mu      sync.RWMutex
	entries map[string]string
}

func New() *Store {
	return &Store{
		entries: make(map[string]string),
	}
}

func (s *Store) Put(ctx context.Context, group, vlanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[group] = vlanID
	return nil
}

func (s *Store) Delete(ctx context.Context, group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, group)
	return nil
}

func (s *Store) Load(ctx context.Context, fn confdb.LoadFunc) error {
	s.mu.RLock()
	groups := make([]string, 0, len(s.entries))
	for g := range s.entries {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	snapshot := make(map[string]string, len(s.entries))
	for g, v := range s.entries {
		snapshot[g] = v
	}
	s.mu.RUnlock()

	for _, g := range groups {
		if err := fn(g, snapshot[g]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]string)
	return nil
}

func (s *Store) Close() error {
	return nil
}
