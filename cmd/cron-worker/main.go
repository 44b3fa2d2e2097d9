package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/merko/merko-backend/internal/cart"
	"github.com/merko/merko-backend/internal/catalog"
	"github.com/merko/merko-backend/internal/cron"
	"github.com/merko/merko-backend/internal/users"
	"github.com/merko/merko-backend/pkg/config"
	"github.com/merko/merko-backend/pkg/db"
	"github.com/merko/merko-backend/pkg/instance"
	"github.com/merko/merko-backend/pkg/logger"
	"github.com/merko/merko-backend/pkg/metrics"
	"github.com/merko/merko-backend/pkg/migrate"
	"github.com/merko/merko-backend/pkg/outbox"
	"github.com/merko/merko-backend/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	once := flag.String("job", "", "run the named job once and exit instead of following the schedule")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg, *once); err != nil {
		logg.Error(context.Background(), "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger, once string) error {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer closeWith(logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer closeWith(logg, "redis", redisClient.Close)

	registry, err := buildJobs(cfg, logg, dbClient)
	if err != nil {
		return err
	}

	lock, err := redis.NewLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), cfg.Cron.LockTTL)
	if err != nil {
		return err
	}

	pool, err := dbClient.SQL()
	if err != nil {
		return err
	}
	reg := metrics.NewRegistry(pool)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Schedule: cfg.Cron.Schedule,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(bootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
		"schedule":    cfg.Cron.Schedule,
	})

	if once != "" {
		logg.Info(logg.WithField(ctx, "job", once), "running single cron job")
		return service.RunJob(ctx, once)
	}
	logg.Info(ctx, "starting cron worker")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return service.Run(groupCtx) })
	group.Go(func() error { return metrics.Serve(groupCtx, cfg.App.MetricsAddr, reg, logg) })
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
	return nil
}

func buildJobs(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	conn := dbClient.DB()

	carts, err := cart.NewService(cart.NewRepository(conn), dbClient, catalog.NewRepository(conn), users.NewRepository(conn), logg)
	if err != nil {
		return nil, err
	}
	abandon, err := cron.NewCartAbandonJob(cron.CartAbandonJobParams{
		Logger: logg,
		Carts:  carts,
		After:  cfg.Cron.CartAbandonAfter,
	})
	if err != nil {
		return nil, err
	}
	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outbox.NewRepository(conn),
		Retention:  cfg.Outbox.RetentionDays,
	})
	if err != nil {
		return nil, err
	}
	return cron.NewRegistry(abandon, retention)
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return serviceName + ":" + env
}

func closeWith(logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(context.Background(), "error closing "+name, err)
	}
}
