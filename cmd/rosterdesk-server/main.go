// Package main is the rosterdesk server entrypoint.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/api"
	"github.com/rosterdesk/rosterdesk/internal/cache"
	"github.com/rosterdesk/rosterdesk/internal/catalog"
	"github.com/rosterdesk/rosterdesk/internal/config"
	"github.com/rosterdesk/rosterdesk/internal/db"
	"github.com/rosterdesk/rosterdesk/internal/db/migrations"
	"github.com/rosterdesk/rosterdesk/internal/dbpool"
	"github.com/rosterdesk/rosterdesk/internal/resolve"
	"github.com/rosterdesk/rosterdesk/internal/store"
)

// Build-time variables set via ldflags.
var (
	version = "0.3.0"
	commit  = ""
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	var (
		cat    catalog.Client
		pool   *dbpool.Pool
		writer api.CatalogWriter
	)

	if cfg.RemoteCatalog() {
		log.WithField("catalog_url", cfg.CatalogURL).Info("using remote catalog")
		cat = catalog.NewRemote(cfg.CatalogURL, log, catalog.RemoteConfig{
			Token:   cfg.CatalogToken.Value(),
			Timeout: cfg.LookupTimeout,
		})
	} else {
		p, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), int32(cfg.DBMaxConns))
		if err != nil {
			return err
		}
		defer p.Close()

		if err := db.RunMigrations(ctx, p, log, migrations.FS); err != nil {
			return err
		}

		s := store.NewEntityStore(p, log)
		cat, pool, writer = s, p, s
	}

	c := cache.New()
	go c.StartEviction(ctx, cfg.EvictionInterval)

	resolver := resolve.NewResolver(cat, c, log, resolve.Config{
		LookupTimeout: cfg.LookupTimeout,
		VirtualTypes:  cfg.VirtualTypes,
		CacheTTL:      cfg.CacheTTL,
	})
	batch := resolve.NewBatchResolver(resolver, log, cfg.BatchConcurrency)
	loader := resolve.NewRelationshipLoader(cat, resolver, c, log)

	handler := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Catalog:     cat,
		Writer:      writer,
		Resolver:    resolver,
		Batch:       batch,
		Loader:      loader,
		Cache:       c,
		CORSOrigins: cfg.CORSOrigins,
		Version:     versionString(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"version": versionString(),
		}).Info("rosterdesk listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}

func versionString() string {
	if commit != "" {
		return version + "+" + commit
	}

	return version
}
