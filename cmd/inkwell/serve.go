package main

import (
	"context"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/knight-ops/inkwell/internal/catalog"
	"github.com/knight-ops/inkwell/internal/config"
	"github.com/knight-ops/inkwell/internal/httpapi"
	"github.com/knight-ops/inkwell/internal/identify"
	"github.com/knight-ops/inkwell/internal/index"
	"github.com/knight-ops/inkwell/internal/ingest"
	"github.com/knight-ops/inkwell/internal/match"
	"github.com/knight-ops/inkwell/internal/scan"
)

func newCmdServe() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP identification server",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Usage: "CPU-bound worker pool size", Value: 4},
		},
		Action: func(c *cli.Context) error {
			return runServe(c.Context, c.Int("workers"))
		},
	}
}

func runServe(ctx context.Context, workers int) error {
	cfg := config.Load()

	store, err := catalog.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	idx := index.New()
	if err := rebuildIndex(ctx, store, idx); err != nil {
		return err
	}

	pool := identify.NewPool(workers)
	defer pool.Close()

	counter := scan.NewCounter(store)
	engine := match.NewEngine()
	svc := identify.NewService(idx, engine, counter, pool, cfg.CapturedImagesDir)
	handlers := httpapi.NewHandlers(svc, counter)
	router := httpapi.NewRouter(handlers, cfg.CardImagesDir, "")

	if cfg.CatalogURL != "" {
		job := ingest.NewJob(store, cfg.CardImagesDir, http.DefaultClient)
		sched := ingest.NewScheduler(cfg.CatalogURL, job, indexPublisher{store: store, idx: idx}, http.DefaultClient)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	} else {
		klog.Warning("serve: CATALOG_URL is unset, periodic ingestion disabled")
	}

	server := &http.Server{Addr: cfg.ListenAddr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	klog.Infof("serve: listening on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// indexPublisher adapts a catalog.Store + index.Index pair to
// ingest.Publisher, rebuilding the index from the store after a successful
// ingestion run.
type indexPublisher struct {
	store *catalog.Store
	idx   *index.Index
}

func (p indexPublisher) Rebuild(ctx context.Context) error {
	return rebuildIndex(ctx, p.store, p.idx)
}

func rebuildIndex(ctx context.Context, store *catalog.Store, idx *index.Index) error {
	snap, err := index.Build(ctx, store)
	if err != nil {
		return err
	}
	idx.Publish(snap)
	return nil
}
