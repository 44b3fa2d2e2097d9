package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/pkg/config"
	"github.com/merko/merko-backend/pkg/db"
	"github.com/merko/merko-backend/pkg/instance"
	"github.com/merko/merko-backend/pkg/logger"
	"github.com/merko/merko-backend/pkg/metrics"
	"github.com/merko/merko-backend/pkg/migrate"
	"github.com/merko/merko-backend/pkg/outbox"
	"github.com/merko/merko-backend/pkg/outbox/idempotency"
	"github.com/merko/merko-backend/pkg/outbox/registry"
	"github.com/merko/merko-backend/pkg/pubsub"
	"github.com/merko/merko-backend/pkg/redis"
)

func main() {
	requeue := flag.String("requeue", "", "move the dead lettered event with this id back into the outbox and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: workerName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = workerName

	logg = logger.New(logger.Options{
		ServiceName: workerName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if *requeue != "" {
		if err := requeueParked(cfg, logg, *requeue); err != nil {
			logg.Error(context.Background(), "requeue failed", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}
}

// run owns every client it opens; close failures are folded into the
// returned error.
func run(cfg *config.Config, logg *logger.Logger) (err error) {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(dbClient))

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	pubsubClient, err := pubsub.NewClient(bootCtx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(pubsubClient))

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(redisClient))

	guard, err := idempotency.NewGuard(redisClient, workerName, instance.GetID(), cfg.Outbox.PublishGuardTTL)
	if err != nil {
		return err
	}
	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		return err
	}

	pool, err := dbClient.SQL()
	if err != nil {
		return err
	}
	reg := metrics.NewRegistry(pool)

	publishers := newPublisherCache(pubsubClient)
	defer publishers.Stop()

	service, err := NewService(ServiceParams{
		Config:           cfg.Outbox,
		Logger:           logg,
		DB:               dbClient,
		PubSub:           pubsubClient,
		Repository:       outbox.NewRepository(dbClient.DB()),
		DLQRepository:    outbox.NewDLQRepository(dbClient.DB()),
		Registry:         eventRegistry,
		PublisherFactory: publishers.factory(),
		Guard:            guard,
		Metrics:          metrics.NewOutboxMetrics(reg),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(bootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"topic":       cfg.PubSub.DomainTopic,
	})
	logg.Info(logg.WithField(ctx, "event_types", eventRegistry.EventTypes()), "starting outbox publisher")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return service.Run(groupCtx) })
	group.Go(func() error { return metrics.Serve(groupCtx, cfg.App.MetricsAddr, reg, logg) })
	if waitErr := group.Wait(); waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return waitErr
	}

	logg.Info(ctx, "outbox publisher shutting down gracefully")
	return nil
}

// requeueParked gives one dead lettered event a fresh attempt budget.
func requeueParked(cfg *config.Config, logg *logger.Logger, rawID string) (err error) {
	eventID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid event id %q: %w", rawID, err)
	}
	ctx := logg.WithField(context.Background(), "event_id", eventID.String())

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(dbClient))

	dlq := outbox.NewDLQRepository(dbClient.DB())
	if err := dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return dlq.Requeue(ctx, tx, eventID)
	}); err != nil {
		return err
	}
	logg.Info(ctx, "dead lettered event requeued")
	return nil
}
