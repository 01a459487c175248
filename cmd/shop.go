package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Piamias-Victor/maju/internal/cart"
	"github.com/Piamias-Victor/maju/internal/client"
	"github.com/Piamias-Victor/maju/internal/config"
	"github.com/Piamias-Victor/maju/internal/console"
	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/Piamias-Victor/maju/internal/flow"
	"github.com/Piamias-Victor/maju/internal/form"
	"github.com/Piamias-Victor/maju/internal/storage"
	"github.com/Piamias-Victor/maju/internal/timer"
	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func shopCommand() *cli.Command {
	return &cli.Command{
		Name:  "shop",
		Usage: "order a bowl from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Usage: "override API_URL"},
			&cli.StringFlag{Name: "color", Usage: "preselect a color (rose or bleu)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadShop()
			if err != nil {
				return err
			}
			if api := c.String("api"); api != "" {
				cfg.APIURL = api
			}
			return shop(c.Context, cfg, c.String("color"))
		},
	}
}

func shop(ctx context.Context, cfg config.Shop, color string) error {
	log := logger.New(cfg.LogLevel, false)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := timerStore(ctx, cfg, log)
	defer closeStore()

	sessions, err := client.NewCheckoutClient(cfg.APIURL, nil)
	if err != nil {
		return err
	}

	out := console.SyncWriter(os.Stdout)

	cartState := cart.NewProvider(
		cart.WithCloseResetDelay(cfg.ModalResetDelay),
		cart.WithLogger(log),
	)
	checkoutForm := form.NewForm(cartState, form.NewValidator(),
		form.WithSubmitDelay(cfg.FormSubmitDelay),
		form.WithLogger(log),
	)
	controller := flow.NewController(cartState, checkoutForm, sessions,
		console.NewNavigator(out), console.NewNotifier(out),
		flow.WithLogger(log),
	)

	if color != "" {
		c, err := domain.ParseColor(color)
		if err != nil {
			return fmt.Errorf("--color: %w", err)
		}
		if err := controller.SelectColor(c); err != nil {
			return err
		}
	}

	countdown := timer.New(store, timer.WithLogger(log))
	countdown.Init(ctx)
	go func() {
		_ = countdown.Run(ctx)
	}()

	return console.New(console.Deps{
		Flow:  controller,
		Cart:  cartState,
		Form:  checkoutForm,
		Timer: countdown,
		In:    os.Stdin,
		Out:   out,
	}).Run(ctx)
}

// timerStore shares the countdown through Redis when configured and keeps it
// in memory otherwise.
func timerStore(ctx context.Context, cfg config.Shop, log logrus.FieldLogger) (storage.Store, func()) {
	if cfg.RedisAddr == "" {
		return storage.NewMemoryStore(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unavailable, countdown kept in memory")
		_ = rdb.Close()
		return storage.NewMemoryStore(), func() {}
	}
	return storage.NewRedisStore(rdb, cfg.TimerTTL), func() { _ = rdb.Close() }
}
