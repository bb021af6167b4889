package hal

import (
	"log/slog"

	"github.com/veesix-networks/vlanhal/pkg/confdb"
	"github.com/veesix-networks/vlanhal/pkg/events"
	"github.com/veesix-networks/vlanhal/pkg/lockfile"
	"github.com/veesix-networks/vlanhal/pkg/southbound"
)

type Option func(*HAL)

// WithDataplane sets the southbound implementation. Required.
func WithDataplane(dp southbound.Dataplane) Option {
	return func(h *HAL) { h.dp = dp }
}

// WithStore enables write-through persistence of config entries.
func WithStore(store confdb.Store) Option {
	return func(h *HAL) { h.store = store }
}

// WithEventBus makes the HAL publish group/interface lifecycle events.
func WithEventBus(bus events.Bus) Option {
	return func(h *HAL) { h.bus = bus }
}

// WithLock adds a cross-process advisory lock held around every mutating
// operation, so several processes can drive the same bridges safely.
func WithLock(lock *lockfile.Lock) Option {
	return func(h *HAL) { h.lock = lock }
}

// WithStrictNames rejects group names outside KnownGroupNames.
func WithStrictNames(strict bool) Option {
	return func(h *HAL) { h.strictNames = strict }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *HAL) { h.logger = l }
}
