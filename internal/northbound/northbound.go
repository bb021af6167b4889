// Package northbound serves the daemon's REST API: group and interface
// operations, config-entry inspection, health and readiness, and the
// OpenAPI document describing it all.
package northbound

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/veesix-networks/vlanhal/pkg/component"
	"github.com/veesix-networks/vlanhal/pkg/events"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/logger"
)

// Readiness lets the API report the drift monitor's view without binding
// the two components together.
type Readiness interface {
	Ready() bool
}

type Component struct {
	*component.Base
	logger  *slog.Logger
	hal     *hal.HAL
	bus     events.Bus
	ready   Readiness
	addr    string
	server  *http.Server
	mu      sync.RWMutex
	running bool
}

func New(deps component.Dependencies, addr string, ready Readiness) *Component {
	return &Component{
		Base:   component.NewBase("northbound"),
		logger: logger.Get(logger.Northbound),
		hal:    deps.HAL,
		bus:    deps.EventBus,
		ready:  ready,
		addr:   addr,
	}
}

func (c *Component) Start(ctx context.Context) error {
	c.StartContext(ctx)
	c.logger.Info("Starting API server", "addr", c.addr)

	c.Go(func() {
		c.startServer()
	})

	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	c.logger.Info("Stopping API server")

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

func (c *Component) Addr() string {
	return c.addr
}

func (c *Component) startServer() {
	c.server = &http.Server{
		Addr:    c.addr,
		Handler: c.routes(),
	}

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	c.logger.Info("API server listening", "addr", c.addr)
	if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		c.logger.Error("API server error", "error", err)
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}
}

func (c *Component) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/groups", c.handleListGroups)
	mux.HandleFunc("GET /api/groups/{name}", c.handleGetGroup)
	mux.HandleFunc("POST /api/groups", c.handleAddGroup)
	mux.HandleFunc("DELETE /api/groups/{name}", c.handleDeleteGroup)

	mux.HandleFunc("POST /api/groups/{name}/interfaces", c.handleAddInterface)
	mux.HandleFunc("DELETE /api/groups/{name}/interfaces/{ifname}", c.handleDeleteInterface)
	mux.HandleFunc("DELETE /api/groups/{name}/interfaces", c.handleFlushInterfaces)

	mux.HandleFunc("GET /api/config-entries", c.handleConfigEntries)
	mux.HandleFunc("GET /api/stats", c.handleStats)
	mux.HandleFunc("GET /api/events", c.handleEvents)
	mux.HandleFunc("GET /api/version", c.handleVersion)
	mux.HandleFunc("GET /api/logging", c.handleGetLogging)
	mux.HandleFunc("PUT /api/logging/{component}", c.handleSetLogging)
	mux.HandleFunc("GET /api/openapi.json", c.handleOpenAPI)

	mux.HandleFunc("GET /healthz", c.handleHealthz)
	mux.HandleFunc("GET /readyz", c.handleReadyz)

	return mux
}
