// Package bootstrap applies the desired bridge groups from the daemon
// configuration at startup. All HAL operations are idempotent, so running
// it against an already-provisioned system is a no-op.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veesix-networks/vlanhal/pkg/config"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/logger"
)

type Bootstrap struct {
	hal    *hal.HAL
	cfg    *config.Config
	logger *slog.Logger
}

func New(h *hal.HAL, cfg *config.Config) *Bootstrap {
	return &Bootstrap{
		hal:    h,
		cfg:    cfg,
		logger: logger.Get(logger.Bootstrap),
	}
}

// Apply provisions every configured group. A failing group aborts (the
// config is wrong or the dataplane is down); a failing member interface is
// logged and skipped so one missing NIC does not block the rest.
func (b *Bootstrap) Apply(ctx context.Context) error {
	if len(b.cfg.Groups) == 0 {
		return nil
	}
	b.logger.Info("Applying desired bridge groups", "count", len(b.cfg.Groups))

	for _, g := range b.cfg.Groups {
		if err := b.hal.AddGroup(ctx, g.Name, g.VLANID); err != nil {
			return fmt.Errorf("provision group %s: %w", g.Name, err)
		}

		if g.Address != "" {
			if err := b.hal.SetBridgeAddress(ctx, g.Name, g.Address); err != nil {
				return fmt.Errorf("assign address to %s: %w", g.Name, err)
			}
		}

		for _, iface := range g.Interfaces {
			if err := b.hal.AddInterface(ctx, g.Name, iface.Name, iface.VLANID); err != nil {
				b.logger.Warn("Failed to attach interface, skipping",
					"group", g.Name, "interface", iface.Name, "error", err)
				continue
			}
		}
	}

	b.logger.Info("Desired bridge groups applied")
	return nil
}
