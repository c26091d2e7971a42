package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dbsmedya/getversions/internal/cloud"
	"github.com/dbsmedya/getversions/internal/collector"
	"github.com/dbsmedya/getversions/internal/config"
	"github.com/dbsmedya/getversions/internal/database"
	"github.com/dbsmedya/getversions/internal/lock"
	"github.com/dbsmedya/getversions/internal/logger"
	"github.com/dbsmedya/getversions/internal/report"
	"github.com/dbsmedya/getversions/internal/store"
)

// app bundles what every command needs once configuration is loaded.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.Manager
	store *store.Store
}

// depsFactory builds the AWS collaborators. Tests replace it.
var depsFactory = awsDeps

func awsDeps(ctx context.Context, cfg *config.Config, log *logger.Logger) (collector.Deps, error) {
	clients, err := cloud.NewClients(ctx, cfg.AWS)
	if err != nil {
		return collector.Deps{}, err
	}

	fleet, err := cloud.NewFleet(clients.SSM, log)
	if err != nil {
		return collector.Deps{}, err
	}
	objects, err := cloud.NewObjectStore(clients.S3)
	if err != nil {
		return collector.Deps{}, err
	}
	inventory, err := cloud.NewInventory(clients.EC2)
	if err != nil {
		return collector.Deps{}, err
	}

	return collector.Deps{Fleet: fleet, Objects: objects, Inventory: inventory}, nil
}

// loadConfig reads the config file, applies flag overrides and validates.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(GetCLIOverrides())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads configuration, builds the logger and, when enabled,
// connects the report database.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	if !cfg.Database.Enabled {
		return a, nil
	}

	a.db = database.NewManager(&cfg.Database, log)
	if err := a.db.Connect(ctx); err != nil {
		return nil, err
	}

	a.store, err = store.New(a.db.DB, log)
	if err != nil {
		a.db.Close()
		return nil, err
	}
	if err := a.store.InitializeTables(ctx); err != nil {
		a.db.Close()
		return nil, err
	}

	return a, nil
}

// Close releases the database connection and flushes the logger.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warnw("Failed to close report database", "error", err)
		}
	}
	_ = a.log.Sync()
}

// collector builds a Collector over the AWS collaborators, saving reports
// when the store is enabled.
func (a *app) collector(ctx context.Context) (*collector.Collector, error) {
	deps, err := depsFactory(ctx, a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	if a.store != nil {
		deps.Saver = a.store
	}
	return collector.New(a.cfg, deps, a.log)
}

// withEnvironmentLock runs fn holding the environment lock when the report
// database is enabled and force is not set.
func (a *app) withEnvironmentLock(ctx context.Context, force bool, fn func() error) error {
	if a.db == nil {
		return fn()
	}
	if force {
		a.log.Warnw("Skipping advisory lock acquisition (--force flag used)", "environment", a.cfg.Environment)
		return fn()
	}

	err := lock.WithEnvironmentLock(ctx, a.db.DB, a.cfg.Environment, fn)
	if errors.Is(err, lock.ErrLockTimeout) {
		return fmt.Errorf("environment '%s' is already being refreshed by another instance (use --force to override)", a.cfg.Environment)
	}
	return err
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Warnw("Received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// writeReport renders r in the --output format.
func writeReport(w io.Writer, r *report.Report) error {
	return report.Render(w, r, outputFormat)
}

// runCollection wires a command that produces a report: app setup, signal
// handling, collector, optional environment lock and rendering.
func runCollection(out io.Writer, lockEnvironment, force bool, run func(context.Context, *collector.Collector) (*report.Report, error)) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(context.Background(), a.log)
	defer cancel()

	c, err := a.collector(ctx)
	if err != nil {
		return err
	}

	var r *report.Report
	collect := func() error {
		r, err = run(ctx, c)
		return err
	}

	if lockEnvironment {
		err = a.withEnvironmentLock(ctx, force, collect)
	} else {
		err = collect()
	}
	if err != nil {
		return err
	}

	return writeReport(out, r)
}
