package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/api/middleware"
	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/internal/cart"
	"github.com/merko/merko-backend/internal/checkout"
	"github.com/merko/merko-backend/internal/fulfillment"
	"github.com/merko/merko-backend/internal/orders"
	"github.com/merko/merko-backend/internal/routes"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/pagination"
)

// serve mounts handler on pattern and runs one request as the given actor.
func serve(method, pattern, target, body string, handler http.HandlerFunc, userID uuid.UUID, role enums.Role) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, handler)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != uuid.Nil {
		req = req.WithContext(middleware.WithActor(req.Context(), authz.Actor{UserID: userID, Role: role}))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type stubCart struct {
	actor     authz.Actor
	productID uuid.UUID
	itemID    uuid.UUID
	quantity  int
	cleared   bool
	err       error
}

func (s *stubCart) AddToCart(_ context.Context, actor authz.Actor, productID uuid.UUID, quantity int) (*cart.CartDTO, error) {
	s.actor, s.productID, s.quantity = actor, productID, quantity
	if s.err != nil {
		return nil, s.err
	}
	return &cart.CartDTO{Status: enums.CartStatusActive, TotalQuantity: quantity}, nil
}

func (s *stubCart) GetCart(_ context.Context, actor authz.Actor) (*cart.CartDTO, error) {
	s.actor = actor
	return &cart.CartDTO{Status: enums.CartStatusActive, Items: []cart.CartItemDTO{}}, s.err
}

func (s *stubCart) UpdateCartItem(_ context.Context, actor authz.Actor, itemID uuid.UUID, quantity int) (*cart.CartDTO, error) {
	s.actor, s.itemID, s.quantity = actor, itemID, quantity
	if s.err != nil {
		return nil, s.err
	}
	return &cart.CartDTO{Status: enums.CartStatusActive, TotalQuantity: quantity}, nil
}

func (s *stubCart) RemoveCartItem(_ context.Context, actor authz.Actor, itemID uuid.UUID) error {
	s.actor, s.itemID = actor, itemID
	return s.err
}

func (s *stubCart) ClearCart(_ context.Context, actor authz.Actor) error {
	s.actor, s.cleared = actor, true
	return s.err
}

func (s *stubCart) AbandonStale(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

type stubCheckout struct {
	req checkout.Request
	err error
}

func (s *stubCheckout) ProcessCheckout(_ context.Context, _ authz.Actor, req checkout.Request) (*orders.OrderDetailsDTO, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDetailsDTO{ID: uuid.New(), OrderNumber: "ORD-ABCDEF123456", Status: enums.OrderStatusPending}, nil
}

type stubOrders struct {
	params         pagination.Params
	orderID        uuid.UUID
	itemID         uuid.UUID
	quantity       int
	status         string
	includePending bool
	err            error
}

func (s *stubOrders) detail() (*orders.OrderDetailsDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDetailsDTO{ID: s.orderID, Items: []orders.OrderItemDTO{}}, nil
}

func (s *stubOrders) GetMyOrders(_ context.Context, _ authz.Actor, params pagination.Params) (pagination.Page[orders.OrderSummaryDTO], error) {
	s.params = params
	return pagination.Page[orders.OrderSummaryDTO]{Items: []orders.OrderSummaryDTO{}}, s.err
}

func (s *stubOrders) GetOrderDetails(_ context.Context, _ authz.Actor, orderID uuid.UUID) (*orders.OrderDetailsDTO, error) {
	s.orderID = orderID
	return s.detail()
}

func (s *stubOrders) UpdateItemQuantity(_ context.Context, _ authz.Actor, orderID, itemID uuid.UUID, quantity int) (*orders.OrderDetailsDTO, error) {
	s.orderID, s.itemID, s.quantity = orderID, itemID, quantity
	return s.detail()
}

func (s *stubOrders) UpdateItemStatus(_ context.Context, _ authz.Actor, orderID, itemID uuid.UUID, status string) (*orders.OrderDetailsDTO, error) {
	s.orderID, s.itemID, s.status = orderID, itemID, status
	return s.detail()
}

func (s *stubOrders) DeleteItem(_ context.Context, _ authz.Actor, orderID, itemID uuid.UUID) (*orders.OrderDetailsDTO, error) {
	s.orderID, s.itemID = orderID, itemID
	return s.detail()
}

func (s *stubOrders) CancelOrder(_ context.Context, _ authz.Actor, orderID uuid.UUID) (*orders.OrderDetailsDTO, error) {
	s.orderID = orderID
	return s.detail()
}

func (s *stubOrders) ListSupplierItems(_ context.Context, _ authz.Actor, includePending bool) ([]orders.SupplierOrderItemDTO, error) {
	s.includePending = includePending
	return []orders.SupplierOrderItemDTO{}, s.err
}

func (s *stubOrders) UpdateSupplierItemStatus(_ context.Context, _ authz.Actor, itemID uuid.UUID, status string) (*orders.SupplierOrderItemDTO, error) {
	s.itemID, s.status = itemID, status
	if s.err != nil {
		return nil, s.err
	}
	return &orders.SupplierOrderItemDTO{ID: itemID}, nil
}

type stubFulfillment struct {
	filter fulfillment.Filter
	id     uuid.UUID
	value  string
	err    error
}

func (s *stubFulfillment) row() (*models.ConfirmedOrder, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ConfirmedOrder{ID: s.id, Status: "Ready to Pick", MerchantName: "Corner Shop"}, nil
}

func (s *stubFulfillment) RecordConfirmation(context.Context, *gorm.DB, *models.ConfirmedOrder) error {
	return nil
}

func (s *stubFulfillment) CancelConfirmation(context.Context, *gorm.DB, uuid.UUID) (bool, error) {
	return false, nil
}

func (s *stubFulfillment) List(_ context.Context, _ authz.Actor, filter fulfillment.Filter) ([]models.ConfirmedOrder, error) {
	s.filter = filter
	return []models.ConfirmedOrder{}, s.err
}

func (s *stubFulfillment) Assignable(context.Context, authz.Actor) ([]models.ConfirmedOrder, error) {
	return []models.ConfirmedOrder{}, s.err
}

func (s *stubFulfillment) Get(_ context.Context, _ authz.Actor, id uuid.UUID) (*models.ConfirmedOrder, error) {
	s.id = id
	return s.row()
}

func (s *stubFulfillment) UpdateStatus(_ context.Context, _ authz.Actor, id uuid.UUID, status string) (*models.ConfirmedOrder, error) {
	s.id, s.value = id, status
	return s.row()
}

func (s *stubFulfillment) AssignRoute(_ context.Context, _ authz.Actor, id uuid.UUID, route string) (*models.ConfirmedOrder, error) {
	s.id, s.value = id, route
	return s.row()
}

func (s *stubFulfillment) CountByStatus(_ context.Context, _ authz.Actor, status string) (int64, error) {
	s.value = status
	return 3, s.err
}

type stubDelivery struct {
	id     uuid.UUID
	status string
	err    error
}

func (s *stubDelivery) CreateEntry(_ context.Context, _ authz.Actor, confirmedOrderID uuid.UUID) (*models.DeliveryEntry, error) {
	s.id = confirmedOrderID
	if s.err != nil {
		return nil, s.err
	}
	return &models.DeliveryEntry{ID: uuid.New(), ConfirmedOrderID: confirmedOrderID, Status: enums.DeliveryStatusReady}, nil
}

func (s *stubDelivery) List(context.Context, authz.Actor) ([]models.DeliveryEntry, error) {
	return []models.DeliveryEntry{}, s.err
}

func (s *stubDelivery) UpdateStatus(_ context.Context, _ authz.Actor, id uuid.UUID, status string) (*models.DeliveryEntry, error) {
	s.id, s.status = id, status
	if s.err != nil {
		return nil, s.err
	}
	return &models.DeliveryEntry{ID: id, Status: enums.DeliveryStatus(status)}, nil
}

func (s *stubDelivery) DeleteEntry(_ context.Context, _ authz.Actor, id uuid.UUID) error {
	s.id = id
	return s.err
}

type stubRoutes struct {
	id         uuid.UUID
	status     string
	activeOnly bool
	err        error
}

func (s *stubRoutes) withStops() (*routes.RouteWithStopsDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &routes.RouteWithStopsDTO{Route: routes.RouteDTO{ID: s.id, DeliveryAddresses: []string{}}, Stops: []routes.StopDTO{}}, nil
}

func (s *stubRoutes) GenerateOptimalRoute(context.Context, authz.Actor) (*routes.RouteWithStopsDTO, error) {
	return s.withStops()
}

func (s *stubRoutes) GetRouteWithStops(_ context.Context, _ authz.Actor, id uuid.UUID) (*routes.RouteWithStopsDTO, error) {
	s.id = id
	return s.withStops()
}

func (s *stubRoutes) List(context.Context, authz.Actor) ([]routes.RouteDTO, error) {
	return []routes.RouteDTO{}, s.err
}

func (s *stubRoutes) ListActive(context.Context, authz.Actor) ([]routes.RouteDTO, error) {
	s.activeOnly = true
	return []routes.RouteDTO{}, s.err
}

func (s *stubRoutes) UpdateRouteStatus(_ context.Context, _ authz.Actor, id uuid.UUID, status string) (*routes.RouteDTO, error) {
	s.id, s.status = id, status
	if s.err != nil {
		return nil, s.err
	}
	return &routes.RouteDTO{ID: id, Status: enums.RouteStatus(status)}, nil
}

func (s *stubRoutes) UpdateStopStatus(_ context.Context, _ authz.Actor, id uuid.UUID, status string) (*routes.StopDTO, error) {
	s.id, s.status = id, status
	if s.err != nil {
		return nil, s.err
	}
	return &routes.StopDTO{ID: id, Status: enums.RouteStopStatus(status)}, nil
}

func (s *stubRoutes) DeleteRoute(_ context.Context, _ authz.Actor, id uuid.UUID) error {
	s.id = id
	return s.err
}

var errStateConflict = pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition")
