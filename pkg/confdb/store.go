package confdb

import "context"

// Store persists configuration entries across daemon restarts.
type Store interface {
	Put(ctx context.Context, group, vlanID string) error
	Delete(ctx context.Context, group string) error
	Load(ctx context.Context, fn LoadFunc) error
	Clear(ctx context.Context) error
	Close() error
}

type LoadFunc func(group, vlanID string) error
