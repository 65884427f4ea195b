package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
	"github.com/runwayshop/runway/api"
	"github.com/runwayshop/runway/api/background"
	"github.com/runwayshop/runway/config"
	"github.com/runwayshop/runway/core/cart"
	"github.com/runwayshop/runway/core/product"
	"github.com/runwayshop/runway/rate"
	"github.com/runwayshop/runway/store"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	const prefix = "RUNWAY"
	var cfg config.Config
	if _, err := conf.Parse(prefix, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	catalog, err := product.Open(logger, cfg.Catalog.File)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}

	snapshots, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime

	bg := background.New(logger)

	limiter := rate.New(cfg.Rate.RPS, cfg.Rate.Burst, cfg.Rate.Idle)
	defer limiter.Stop()

	mux := api.APIMux(api.APIConfig{
		CorsOrigin: cfg.Cors.Origin,
		Log:        logger,
		Catalog:    catalog,
		Store:      snapshots,
		Session:    sessionManager,
		Background: bg,
		CartMeta: cart.Meta{
			Currency:              cfg.Cart.Currency,
			TaxRate:               cfg.Cart.TaxRate,
			FreeShippingThreshold: cfg.Cart.FreeShippingThreshold,
		},
		Limiter: limiter,
	})

	srv := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		if err := bg.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not complete pending snapshot writes: %w", err)
		}
	}
	return nil
}

func openStore(cfg config.Store) (store.Store, error) {
	switch cfg.Backend {
	case "file":
		return store.NewFile(cfg.Dir)
	case "memory":
		return store.NewMemory(), nil
	case "redis":
		return store.NewRedis(context.Background(), cfg.RedisURL, cfg.RedisTTL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
