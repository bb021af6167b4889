package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"

	"github.com/veesix-networks/vlanhal/internal/bootstrap"
	"github.com/veesix-networks/vlanhal/internal/exporter"
	"github.com/veesix-networks/vlanhal/internal/monitor"
	"github.com/veesix-networks/vlanhal/internal/northbound"
	"github.com/veesix-networks/vlanhal/pkg/component"
	"github.com/veesix-networks/vlanhal/pkg/config"
	"github.com/veesix-networks/vlanhal/pkg/confdb"
	confdbsqlite "github.com/veesix-networks/vlanhal/pkg/confdb/sqlite"
	"github.com/veesix-networks/vlanhal/pkg/events"
	"github.com/veesix-networks/vlanhal/pkg/events/local"
	"github.com/veesix-networks/vlanhal/pkg/hal"
	"github.com/veesix-networks/vlanhal/pkg/lockfile"
	"github.com/veesix-networks/vlanhal/pkg/logger"
	"github.com/veesix-networks/vlanhal/pkg/southbound"
	"github.com/veesix-networks/vlanhal/pkg/southbound/brctl"
	"github.com/veesix-networks/vlanhal/pkg/southbound/fake"
	"github.com/veesix-networks/vlanhal/pkg/southbound/netlinkdp"
	"github.com/veesix-networks/vlanhal/pkg/version"
)

func buildDataplane(cfg *config.Config) (southbound.Dataplane, error) {
	switch cfg.Dataplane.Backend {
	case config.BackendNetlink:
		if cfg.Dataplane.Netns != "" {
			return netlinkdp.NewInNamespace(cfg.Dataplane.Netns)
		}
		return netlinkdp.New(), nil
	case config.BackendBrctl:
		return brctl.New(brctl.WithPaths(
			cfg.Dataplane.BrctlPath,
			cfg.Dataplane.VconfigPath,
			cfg.Dataplane.IPPath,
		)), nil
	default:
		return fake.New(), nil
	}
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		os.Stdout.WriteString("vlanhald " + version.Full() + "\n")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	components := make(map[string]logger.LogLevel, len(cfg.Logging.Components))
	for name, level := range cfg.Logging.Components {
		components[name] = logger.LogLevel(level)
	}
	logger.Configure(cfg.Logging.Format, logger.LogLevel(cfg.Logging.Level), components)

	mainLog := logger.Get(logger.Main)
	mainLog.Info("Starting vlanhald", "version", version.Version, "backend", cfg.Dataplane.Backend)

	dp, err := buildDataplane(cfg)
	if err != nil {
		log.Fatalf("Failed to build dataplane: %v", err)
	}

	var store confdb.Store
	if cfg.Store.Path != "" {
		store, err = confdbsqlite.Open(cfg.Store.Path)
		if err != nil {
			log.Fatalf("Failed to open config store: %v", err)
		}
	}

	lock, err := lockfile.New(cfg.Lock.Path)
	if err != nil {
		log.Fatalf("Failed to open lock file: %v", err)
	}

	eventBus := local.NewBus()

	halOpts := []hal.Option{
		hal.WithDataplane(dp),
		hal.WithEventBus(eventBus),
		hal.WithLock(lock),
		hal.WithStrictNames(cfg.HAL.StrictNames),
	}
	if store != nil {
		halOpts = append(halOpts, hal.WithStore(store))
	}

	h, err := hal.New(halOpts...)
	if err != nil {
		log.Fatalf("Failed to create HAL: %v", err)
	}

	ctx := context.Background()

	if err := h.Restore(ctx); err != nil {
		log.Fatalf("Failed to restore config entries: %v", err)
	}

	// Every group and interface change lands in the log via the audit
	// subscriber, whatever path it came in on.
	auditLog := logger.Get(logger.Events)
	auditSub := eventBus.SubscribeAll(func(e events.Event) {
		auditLog.Info("Event", "type", e.Type, "id", e.ID, "data", e.Data)
	})
	defer auditSub.Unsubscribe()

	if err := bootstrap.New(h, cfg).Apply(ctx); err != nil {
		log.Fatalf("Failed to apply desired groups: %v", err)
	}

	deps := component.Dependencies{
		EventBus:  eventBus,
		HAL:       h,
		Store:     store,
		Dataplane: dp,
		Config:    cfg,
	}

	orch := component.NewOrchestrator()

	var monitorComp *monitor.Component
	if cfg.Monitor.Enabled {
		monitorComp = monitor.New(deps, cfg.Monitor.Interval)
		orch.Register(monitorComp)
	}

	if cfg.API.Enabled {
		var ready northbound.Readiness
		if monitorComp != nil {
			ready = monitorComp
		}
		orch.Register(northbound.New(deps, cfg.API.ListenAddress, ready))
	}

	if cfg.Metrics.Enabled {
		orch.Register(exporter.New(deps, cfg.Metrics.ListenAddress, monitorComp))
	}

	if err := orch.Start(ctx); err != nil {
		log.Fatalf("Failed to start components: %v", err)
	}

	if ok, err := sddaemon.SdNotify(false, sddaemon.SdNotifyReady); !ok && err != nil {
		mainLog.Warn("Unable to send systemd ready notification", "error", err)
	}

	mainLog.Info("vlanhald started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	mainLog.Info("Shutting down vlanhald...")
	sddaemon.SdNotify(false, sddaemon.SdNotifyStopping)

	if err := orch.Stop(ctx); err != nil {
		mainLog.Error("Error stopping components", "error", err)
	}

	if err := eventBus.Close(); err != nil {
		mainLog.Error("Error closing event bus", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			mainLog.Error("Error closing config store", "error", err)
		}
	}
	if err := dp.Close(); err != nil {
		mainLog.Error("Error closing dataplane", "error", err)
	}
	if err := lock.Close(); err != nil {
		mainLog.Error("Error closing lock file", "error", err)
	}

	mainLog.Info("vlanhald stopped")
}
