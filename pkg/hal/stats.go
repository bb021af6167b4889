package hal

import (
	"sort"
	"sync"
)

const (
	opAddGroup        = "add_group"
	opDelGroup        = "del_group"
	opAddInterface    = "add_interface"
	opDelInterface    = "del_interface"
	opFlushInterfaces = "flush_interfaces"
	opInspect         = "inspect"
)

type opCounters struct {
	attempts uint64
	errors   uint64
}

type statsTable struct {
	mu        sync.Mutex
	ops       map[string]*opCounters
	lastError string
}

func newStatsTable() *statsTable {
	return &statsTable{ops: make(map[string]*opCounters)}
}

func (s *statsTable) record(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.ops[op]
	if !ok {
		c = &opCounters{}
		s.ops[op] = c
	}
	c.attempts++
	if err != nil {
		c.errors++
		s.lastError = err.Error()
	}
}

func (s *statsTable) snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Stats{LastError: s.lastError}
	for op, c := range s.ops {
		out.Ops = append(out.Ops, OpStats{Op: op, Attempts: c.attempts, Errors: c.errors})
	}
	sort.Slice(out.Ops, func(i, j int) bool { return out.Ops[i].Op < out.Ops[j].Op })
	return out
}
