// Package main is the entry point for the pricing API server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pratham7049/azure-pricing-calculator/adapters/pricing"
	"github.com/pratham7049/azure-pricing-calculator/adapters/storage"
	"github.com/pratham7049/azure-pricing-calculator/api"
	"github.com/pratham7049/azure-pricing-calculator/core/engine"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/config"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "config file (JSON or YAML)")
	envFile := flag.String("env-file", ".env", "dotenv file with PRICECALC_* overrides")
	addr := flag.String("addr", "", "listen address (overrides server.addr)")
	schema := flag.String("schema", "", "comma separated default key schema")
	flag.Parse()

	if err := config.LoadEnvFiles(*envFile); err != nil {
		return err
	}
	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()
	logger := logging.With(zap.String("service", "pricing-api"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, warn, _, err := pricing.DefaultRegistry().Load(ctx, cfg.Catalog, pricing.Options{
		Currency: cfg.Estimate.Currency,
		Region:   cfg.Estimate.Region,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if warn != nil {
		logger.Warn("serving partial catalog", zap.Error(warn))
	}

	ec := engine.DefaultConfig()
	ec.DefaultRegion = cfg.Estimate.Region
	ec.Currency = cfg.Estimate.Currency
	ec.HoursPerMonth = cfg.Estimate.HoursPerMonth
	ec.Concurrency = cfg.Estimate.Concurrency
	if cfg.Catalog.Source == pricing.SourceAWS {
		ec.Provider = types.ProviderAWS
	}

	store, err := storage.Open(storage.Backend(cfg.Server.StoreBackend), cfg.Server.StoreDir)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewServer(engine.New(ec, logger), cat, api.Options{
			Version:        version,
			Schema:         types.ParseSchema(*schema),
			CatalogWarning: warn,
			Store:          store,
			Logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.Int("offers", cat.Len()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
