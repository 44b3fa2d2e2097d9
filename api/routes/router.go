package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/merko/merko-backend/api/controllers"
	"github.com/merko/merko-backend/api/middleware"
	"github.com/merko/merko-backend/internal/cart"
	"github.com/merko/merko-backend/internal/checkout"
	"github.com/merko/merko-backend/internal/delivery"
	"github.com/merko/merko-backend/internal/fulfillment"
	"github.com/merko/merko-backend/internal/orders"
	deliveryroutes "github.com/merko/merko-backend/internal/routes"
	"github.com/merko/merko-backend/pkg/config"
	"github.com/merko/merko-backend/pkg/enums"
	"github.com/merko/merko-backend/pkg/logger"
	"github.com/merko/merko-backend/pkg/metrics"
	pkgredis "github.com/merko/merko-backend/pkg/redis"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Params collects everything the router hands to controllers. Nil services
// answer 500 from their handlers; a nil Idempotency or Limiter disables that
// middleware.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	DB    controllers.Pinger
	Redis controllers.Pinger

	Idempotency pkgredis.ResponseStore
	Limiter     rateLimiter

	Cart        cart.Service
	Checkout    checkout.Service
	Orders      orders.Service
	Fulfillment fulfillment.Service
	Delivery    delivery.Service
	Routes      deliveryroutes.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg, p.HTTP),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": p.Redis,
		}))
	})
	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	checkoutPolicy := middleware.NewRateLimitPolicy("checkout", cfg.RateLimit.CheckoutWindow, cfg.RateLimit.CheckoutLimit)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(p.Idempotency, cfg.Redis.IdempotencyTTL, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleMerchant))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(p.Cart, logg))
				r.Delete("/", controllers.CartClear(p.Cart, logg))
				r.Post("/items", controllers.CartAdd(p.Cart, logg))
				r.Put("/items/{cartItemId}", controllers.CartUpdateItem(p.Cart, logg))
				r.Delete("/items/{cartItemId}", controllers.CartRemoveItem(p.Cart, logg))
			})

			r.With(middleware.RateLimit(checkoutPolicy, p.Limiter, logg)).
				Post("/checkout", controllers.Checkout(p.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(p.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(p.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(p.Orders, logg))
				r.Put("/{orderId}/items/{itemId}/quantity", controllers.OrderItemQuantity(p.Orders, logg))
				r.Put("/{orderId}/items/{itemId}/status", controllers.OrderItemStatus(p.Orders, logg))
				r.Delete("/{orderId}/items/{itemId}", controllers.OrderItemDelete(p.Orders, logg))
			})
		})

		r.Route("/supplier", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleSupplier))
			r.Get("/order-items", controllers.SupplierItems(p.Orders, logg))
			r.Put("/order-items/{itemId}/status", controllers.SupplierItemStatus(p.Orders, logg))
		})

		r.Route("/delivery", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleDelivery, enums.RoleAdmin))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ConfirmedOrdersList(p.Fulfillment, logg))
				r.Get("/assignable", controllers.ConfirmedOrdersAssignable(p.Fulfillment, logg))
				r.Get("/count", controllers.ConfirmedOrdersCount(p.Fulfillment, logg))
				r.Get("/{confirmedOrderId}", controllers.ConfirmedOrderDetail(p.Fulfillment, logg))
				r.Put("/{confirmedOrderId}/status", controllers.ConfirmedOrderStatus(p.Fulfillment, logg))
				r.Put("/{confirmedOrderId}/route", controllers.ConfirmedOrderRoute(p.Fulfillment, logg))
			})

			r.Route("/entries", func(r chi.Router) {
				r.Get("/", controllers.DeliveryEntriesList(p.Delivery, logg))
				r.Post("/", controllers.DeliveryEntryCreate(p.Delivery, logg))
				r.Put("/{deliveryId}/status", controllers.DeliveryEntryStatus(p.Delivery, logg))
				r.Delete("/{deliveryId}", controllers.DeliveryEntryDelete(p.Delivery, logg))
			})

			r.Route("/routes", func(r chi.Router) {
				r.Get("/", controllers.RoutesList(p.Routes, logg))
				r.Post("/generate", controllers.RouteGenerate(p.Routes, logg))
				r.Get("/{routeId}", controllers.RouteDetail(p.Routes, logg))
				r.Put("/{routeId}/status", controllers.RouteStatus(p.Routes, logg))
				r.Delete("/{routeId}", controllers.RouteDelete(p.Routes, logg))
			})

			r.Put("/stops/{stopId}/status", controllers.RouteStopStatus(p.Routes, logg))
		})
	})

	return r
}
