// Package exporter serves Prometheus metrics for the daemon: group and
// port gauges, per-operation counters, event bus throughput and drift.
package exporter

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veesix-networks/vlanhal/internal/monitor"
	"github.com/veesix-networks/vlanhal/pkg/component"
	"github.com/veesix-networks/vlanhal/pkg/events"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/logger"
)

type Component struct {
	*component.Base
	logger  *slog.Logger
	hal     *hal.HAL
	bus     events.Bus
	monitor *monitor.Component
	addr    string
	server  *http.Server
	mu      sync.RWMutex
	running bool
}

func New(deps component.Dependencies, addr string, mon *monitor.Component) *Component {
	return &Component{
		Base:    component.NewBase("exporter"),
		logger:  logger.Get(logger.Exporter),
		hal:     deps.HAL,
		bus:     deps.EventBus,
		monitor: mon,
		addr:    addr,
	}
}

func (c *Component) Start(ctx context.Context) error {
	c.StartContext(ctx)
	c.logger.Info("Starting Prometheus exporter", "addr", c.addr)

	c.Go(func() {
		c.startServer()
	})

	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	c.logger.Info("Stopping Prometheus exporter")

	if c.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.server.Shutdown(shutdownCtx)
	}

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	c.StopContext()
	return nil
}

func (c *Component) startServer() {
	registry := prometheus.NewRegistry()
	registry.MustRegister(newCollector(c.hal, c.bus, c.monitor, c.logger))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	c.server = &http.Server{
		Addr:    c.addr,
		Handler: mux,
	}

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	c.logger.Info("Prometheus HTTP server listening", "addr", c.addr)
	if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		c.logger.Error("Prometheus HTTP server error", "error", err)
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}
}
