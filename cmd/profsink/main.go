// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Command profsink is the profiling data sink's single binary: it
// opens the data directory, starts the symbolizer controller's
// background loop, and serves ExportProfiles over gRPC plus a
// Prometheus /metrics endpoint, in the single-process shape of
// cmd/erigon/main.go.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/flamehost/profsink/internal/applog"
	"github.com/flamehost/profsink/internal/catalog"
	"github.com/flamehost/profsink/internal/config"
	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/metrics"
	"github.com/flamehost/profsink/internal/obsring"
	"github.com/flamehost/profsink/internal/rpcserver"
	"github.com/flamehost/profsink/internal/symbolizer"
	"github.com/flamehost/profsink/internal/symstore"
)

func main() {
	app := &cli.App{
		Name:  "profsink",
		Usage: "single-host profiling data sink",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a TOML config file"},
			&cli.StringFlag{Name: "datadir", Usage: "data directory root"},
			&cli.StringFlag{Name: "listen.grpc", Usage: "gRPC listen address"},
			&cli.StringFlag{Name: "symbolizer.url", Usage: "symbolizer HTTPS base URL"},
			&cli.StringFlag{Name: "log.level", Usage: "debug, info, warn, or error"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "profsink:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg, c)

	log, err := applog.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	errCat := catalog.LoadErrors()
	metricReg := catalog.LoadMetrics()
	log.Info("loaded embedded catalogs", zap.Int("errors", len(errCat)), zap.Int("metrics", len(metricReg)))

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("profsink: create datadir: %w", err)
	}
	store, err := dbstore.OpenWithTables(cfg.DataDir, cfg.TableCfg(), metricReg)
	if err != nil {
		return fmt.Errorf("profsink: open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("closing store", zap.Error(err))
		}
	}()

	syms, err := symstore.Open(filepath.Join(cfg.DataDir, "symtrees"))
	if err != nil {
		return fmt.Errorf("profsink: open symstore: %w", err)
	}

	ring := obsring.New(obsring.DefaultCapacity)
	metricsReg := metrics.New()

	fetcher := symbolizer.NewHTTPFetcher(cfg.SymbolizerURL)
	controller := symbolizer.NewController(store, fetcher, cfg.SymbMaxPar)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	grpcSrv := rpcserver.NewGRPCServer(store, ring, log)
	grpcErrs := make(chan error, 1)
	go func() {
		log.Info("listening for ExportProfiles", zap.String("addr", cfg.ListenGRPC))
		grpcErrs <- rpcserver.Listen(grpcSrv, cfg.ListenGRPC)
	}()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsHandler(metricsReg)}
	metricsErrs := make(chan error, 1)
	go func() {
		log.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
		metricsErrs <- metricsSrv.ListenAndServe()
	}()

	symbErrs := make(chan error, 1)
	go func() {
		symbErrs <- controller.Run(ctx, syms, cfg.SymbFreq, cfg.SymbRetryFreq)
	}()

	go observeLoop(ctx, controller, metricsReg, store, ring)

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-grpcErrs:
		log.Error("gRPC server exited", zap.Error(err))
	case err := <-metricsErrs:
		log.Error("metrics server exited", zap.Error(err))
	case err := <-symbErrs:
		log.Error("symbolizer controller exited", zap.Error(err))
	}

	grpcSrv.GracefulStop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	return nil
}

func applyFlagOverrides(cfg *config.Config, c *cli.Context) {
	if v := c.String("datadir"); v != "" {
		cfg.DataDir = v
	}
	if v := c.String("listen.grpc"); v != "" {
		cfg.ListenGRPC = v
	}
	if v := c.String("symbolizer.url"); v != "" {
		cfg.SymbolizerURL = v
	}
	if v := c.String("log.level"); v != "" {
		cfg.LogLevel = v
	}
}

func metricsHandler(m *metrics.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}

// observeLoop periodically copies live state into metrics and the
// observation ring until ctx is cancelled: symbolizer queue depth,
// per-table cache hit/miss counters, and the process's own resource
// status (SPEC_FULL.md's gopsutil-backed status snapshot).
func observeLoop(ctx context.Context, controller *symbolizer.Controller, m *metrics.Registry, store *dbstore.Store, ring *obsring.Ring) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.ObserveController(controller)
			m.ObserveCache(store)
			if st, err := symbolizer.CurrentProcessStatus(); err == nil {
				ring.Push(obsring.Entry{Kind: "process_status", Payload: st, Received: time.Now()})
			}
		}
	}
}
