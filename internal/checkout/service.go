// Package checkout converts a merchant's active cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/internal/cart"
	"github.com/merko/merko-backend/internal/orders"
	pricing "github.com/merko/merko-backend/pkg/checkout"
	"github.com/merko/merko-backend/pkg/db"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/logger"
	"github.com/merko/merko-backend/pkg/outbox"
	"github.com/merko/merko-backend/pkg/outbox/payloads"
)

const orderNumberPrefix = "ORD-"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service executes checkout orchestration.
type Service interface {
	ProcessCheckout(ctx context.Context, actor authz.Actor, req Request) (*orders.OrderDetailsDTO, error)
}

type service struct {
	tx         txRunner
	cartRepo   cart.CartRepository
	ordersRepo orders.Repository
	outbox     outboxPublisher
	logg       *logger.Logger
	newNumber  func() string
}

// NewService builds the checkout service.
func NewService(tx txRunner, cartRepo cart.CartRepository, ordersRepo orders.Repository, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:         tx,
		cartRepo:   cartRepo,
		ordersRepo: ordersRepo,
		outbox:     publisher,
		logg:       logg,
		newNumber:  NewOrderNumber,
	}, nil
}

// NewOrderNumber returns "ORD-" followed by 12 upper-case hex characters.
func NewOrderNumber() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return orderNumberPrefix + strings.ToUpper(token[:12])
}

func (s *service) ProcessCheckout(ctx context.Context, actor authz.Actor, req Request) (*orders.OrderDetailsDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return nil, err
	}
	shippingMethod, err := enums.ParseShippingMethod(req.ShippingMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid shipping method: %s", req.ShippingMethod))
	}
	paymentMethod, err := enums.ParsePaymentMethod(req.PaymentInfo.Method)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid payment method: %s", req.PaymentInfo.Method))
	}
	if strings.TrimSpace(req.ShippingInfo.Address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		record, err := cartRepo.FindActiveByUser(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "no active cart found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}

		lines := make([]pricing.Line, 0, len(record.Items))
		for _, item := range record.Items {
			lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice(), Quantity: item.Quantity})
		}
		totals := pricing.ComputeTotals(lines, shippingMethod)

		order = buildOrder(actor, req, shippingMethod, paymentMethod, totals)
		order.OrderNumber = s.newNumber()
		for _, item := range record.Items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   item.ProductID,
				Quantity:    item.Quantity,
				PriceAtTime: item.UnitPrice(),
				Status:      enums.OrderItemStatusPending,
			})
		}
		if err := ordersRepo.CreateOrder(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number collision, retry checkout")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := cartRepo.UpdateStatus(ctx, record.ID, enums.CartStatusOrdered); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark cart ordered")
		}
		if err := cartRepo.DeleteItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart items")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				MerchantID:  actor.UserID,
				ItemCount:   len(order.Items),
				TotalAmount: order.TotalAmount.StringFixed(2),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order created")
		}

		order, err = ordersRepo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		fields := map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"user_id":      actor.UserID.String(),
			"item_count":   len(order.Items),
			"total":        order.TotalAmount.StringFixed(2),
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "checkout completed")
	}
	return orders.ToDetails(order), nil
}

func buildOrder(actor authz.Actor, req Request, shipping enums.ShippingMethod, payment enums.PaymentMethod, totals pricing.Totals) *models.Order {
	info := req.ShippingInfo
	order := &models.Order{
		UserID:              actor.UserID,
		ShippingFirstName:   strings.TrimSpace(info.FirstName),
		ShippingLastName:    strings.TrimSpace(info.LastName),
		ShippingCompanyName: info.CompanyName,
		ShippingAddress:     strings.TrimSpace(info.Address),
		ShippingApartment:   info.Apartment,
		ShippingCity:        strings.TrimSpace(info.City),
		ShippingState:       strings.TrimSpace(info.State),
		ShippingZipCode:     strings.TrimSpace(info.ZipCode),
		ShippingPhone:       info.Phone,
		PaymentMethod:       payment,
		ShippingMethod:      shipping,
		Subtotal:            totals.Subtotal,
		TaxAmount:           totals.Tax,
		ShippingCost:        totals.Shipping,
		TotalAmount:         totals.Total,
	}
	switch payment {
	case enums.PaymentMethodCreditCard:
		order.CardLastFour = optional(pricing.LastFour(req.PaymentInfo.CardNumber))
		order.CardHolderName = optional(req.PaymentInfo.CardHolderName)
		order.CardExpiration = optional(req.PaymentInfo.ExpirationDate)
	case enums.PaymentMethodPurchaseOrder:
		order.PurchaseOrderNumber = optional(req.PaymentInfo.PurchaseOrderNumber)
	}
	return order
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
