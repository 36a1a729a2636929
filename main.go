package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"storefront/pkg/config"
	"storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
		WarnStack:   cfg.App.Env == "dev",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(context.Background(), "storefront stopped with error", err)
		os.Exit(1)
	}
	log.Info(context.Background(), "server gracefully stopped")
}

// run serves HTTP and consumes order events until ctx is cancelled or one of
// them fails.
func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error(context.Background(), "closing connections", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(log.WithField(gctx, "addr", cfg.App.Port), "starting server")
		return app.Fiber.Listen(cfg.App.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server")
		return app.Fiber.ShutdownWithTimeout(shutdownTimeout)
	})
	if app.Events != nil {
		g.Go(func() error {
			return app.Events.ConsumeOrderEvents(gctx, app.HandleOrderEvent)
		})
	}
	return g.Wait()
}
