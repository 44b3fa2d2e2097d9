package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/merko/merko-backend/api/routes"
	"github.com/merko/merko-backend/internal/cart"
	"github.com/merko/merko-backend/internal/catalog"
	"github.com/merko/merko-backend/internal/checkout"
	"github.com/merko/merko-backend/internal/delivery"
	"github.com/merko/merko-backend/internal/fulfillment"
	"github.com/merko/merko-backend/internal/ledger"
	"github.com/merko/merko-backend/internal/orders"
	deliveryroutes "github.com/merko/merko-backend/internal/routes"
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

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
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

	pool, err := dbClient.SQL()
	if err != nil {
		return err
	}
	reg := metrics.NewRegistry(pool)
	lifecycle := metrics.NewLifecycleMetrics(reg)

	svcs, err := buildServices(cfg, logg, dbClient, redisClient, lifecycle)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(bootCtx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:      cfg,
			Logger:      logg,
			Gatherer:    reg,
			HTTP:        metrics.NewHTTPMetrics(reg),
			DB:          dbClient,
			Redis:       redisClient,
			Idempotency: redisClient,
			Limiter:     redisClient,
			Cart:        svcs.cart,
			Checkout:    svcs.checkout,
			Orders:      svcs.orders,
			Fulfillment: svcs.fulfillment,
			Delivery:    svcs.delivery,
			Routes:      svcs.routes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(bootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	logg.Info(ctx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(bootCtx, shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type services struct {
	cart        cart.Service
	checkout    checkout.Service
	orders      orders.Service
	fulfillment fulfillment.Service
	delivery    delivery.Service
	routes      deliveryroutes.Service
}

// buildServices wires repositories and services in dependency order.
func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, lifecycle *metrics.LifecycleMetrics) (*services, error) {
	conn := dbClient.DB()

	productRepo := catalog.NewRepository(conn)
	userRepo := users.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	deliveryRepo := delivery.NewRepository(conn)
	confirmedRepo := fulfillment.NewRepository(conn)
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	if err != nil {
		return nil, err
	}
	fulfillmentSvc, err := fulfillment.NewService(confirmedRepo)
	if err != nil {
		return nil, err
	}
	cartSvc, err := cart.NewService(cartRepo, dbClient, productRepo, userRepo, logg)
	if err != nil {
		return nil, err
	}
	checkoutSvc, err := checkout.NewService(dbClient, cartRepo, ordersRepo, emitter, logg)
	if err != nil {
		return nil, err
	}

	transitioner, err := orders.NewTransitioner(orders.TransitionerDeps{
		Repo:     ordersRepo,
		Stock:    productRepo,
		Ledger:   ledgerSvc,
		Confirms: fulfillmentSvc,
		Users:    userRepo,
		Outbox:   emitter,
		Metrics:  lifecycle,
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}
	ordersSvc, err := orders.NewService(ordersRepo, dbClient, transitioner)
	if err != nil {
		return nil, err
	}

	deliverySvc, err := delivery.NewService(deliveryRepo, confirmedRepo, dbClient, emitter, logg)
	if err != nil {
		return nil, err
	}

	routeLock, err := redis.NewLock(redisClient, redisClient.LockKey("route-generation"), cfg.Redis.RouteLockTTL)
	if err != nil {
		return nil, err
	}
	routesSvc, err := deliveryroutes.NewService(deliveryroutes.ServiceParams{
		Repo:        deliveryroutes.NewRepository(conn),
		Entries:     deliveryRepo,
		Tx:          dbClient,
		Outbox:      emitter,
		Lock:        routeLock,
		Origin:      cfg.Routing.Origin,
		StopSpacing: cfg.Routing.StopSpacing,
		Metrics:     lifecycle,
		Logger:      logg,
	})
	if err != nil {
		return nil, err
	}

	return &services{
		cart:        cartSvc,
		checkout:    checkoutSvc,
		orders:      ordersSvc,
		fulfillment: fulfillmentSvc,
		delivery:    deliverySvc,
		routes:      routesSvc,
	}, nil
}

func closeWith(logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(context.Background(), "error closing "+name, err)
	}
}
