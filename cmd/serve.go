package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Piamias-Victor/maju/internal/checkout"
	"github.com/Piamias-Victor/maju/internal/config"
	"github.com/Piamias-Victor/maju/internal/events"
	h "github.com/Piamias-Victor/maju/internal/http"
	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the checkout API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "override HTTP_PORT"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadServer()
			if err != nil {
				return err
			}
			if p := c.String("port"); p != "" {
				cfg.HTTPPort = p
			}
			return serve(c.Context, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Server) error {
	log := logger.New(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var publisher events.Publisher = events.NoopPublisher{}
	var wg sync.WaitGroup
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaTopic, log, cfg.KafkaBrokers...)
		defer kp.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			kp.Run(ctx)
		}()
		publisher = kp
		log.WithField("brokers", cfg.KafkaBrokers).Info("publishing checkout events to kafka")
	}

	provider, err := checkout.NewStripeProvider(cfg.StripeSecretKey, cfg.BreakerOptions(), log)
	if err != nil {
		return err
	}
	service, err := checkout.NewService(provider, publisher, cfg.SiteURL, log,
		checkout.WithProviderTimeout(cfg.RequestTimeout))
	if err != nil {
		return err
	}

	router := h.NewRouter(h.Deps{
		Logger:         log,
		Checkout:       h.NewCheckoutHandler(service, cfg.RequestTimeout, log),
		CORSOrigins:    cfg.CORSAllowOrigins,
		RateLimiter:    h.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		RequestTimeout: cfg.RequestTimeout,

		TrustProxyHeaders: cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.HTTPPort).Info("checkout API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	// Stop the event writer and let it flush.
	stop()
	wg.Wait()

	log.Info("server exited")
	return serveErr
}
