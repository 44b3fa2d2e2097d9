package orders

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/internal/catalog"
	"github.com/merko/merko-backend/internal/ledger"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/logger"
	"github.com/merko/merko-backend/pkg/metrics"
	"github.com/merko/merko-backend/pkg/outbox"
	"github.com/merko/merko-backend/pkg/outbox/payloads"
)

const addressNotAvailable = "Address not available"

// Transitioner applies item status changes together with their stock,
// ledger, projection and event side effects. Merchant and supplier paths
// share it so both follow the same rules.
type Transitioner struct {
	repo     Repository
	stock    catalog.Repository
	ledger   stockLedger
	confirms ConfirmationStore
	users    userLoader
	outbox   outboxPublisher
	metrics  *metrics.LifecycleMetrics
	logg     *logger.Logger
}

// TransitionerDeps groups the collaborators of a Transitioner.
type TransitionerDeps struct {
	Repo     Repository
	Stock    catalog.Repository
	Ledger   stockLedger
	Confirms ConfirmationStore
	Users    userLoader
	Outbox   outboxPublisher
	Metrics  *metrics.LifecycleMetrics
	Logger   *logger.Logger
}

func NewTransitioner(deps TransitionerDeps) (*Transitioner, error) {
	switch {
	case deps.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Stock == nil:
		return nil, fmt.Errorf("catalog repository required")
	case deps.Ledger == nil:
		return nil, fmt.Errorf("stock ledger required")
	case deps.Confirms == nil:
		return nil, fmt.Errorf("confirmation store required")
	case deps.Users == nil:
		return nil, fmt.Errorf("user loader required")
	case deps.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Transitioner{
		repo:     deps.Repo,
		stock:    deps.Stock,
		ledger:   deps.Ledger,
		confirms: deps.Confirms,
		users:    deps.Users,
		outbox:   deps.Outbox,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
	}, nil
}

// ApplyTransition moves item to status `to` inside tx. item must carry its
// Product and its Order with the owning User. A same-status request is a
// no-op. Disallowed pairs fail with STATE_CONFLICT.
func (t *Transitioner) ApplyTransition(ctx context.Context, tx *gorm.DB, actor authz.Actor, item *models.OrderItem, to enums.OrderItemStatus) error {
	from := item.Status
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot change order item status from %s to %s", from, to)).
			WithDetails(map[string]any{"from": from, "to": to})
	}

	// The status write comes first so a caller holding a stale item fails
	// before any stock moves.
	moved, err := t.repo.WithTx(tx).UpdateItemStatus(ctx, item.ID, from, to)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item status")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order item is no longer %s", from)).
			WithDetails(map[string]any{"from": from, "to": to})
	}

	switch {
	case from == enums.OrderItemStatusPending && to == enums.OrderItemStatusConfirmed:
		if err := t.confirm(ctx, tx, actor, item); err != nil {
			return err
		}
	case to == enums.OrderItemStatusCancelled:
		if err := t.cancel(ctx, tx, actor, item); err != nil {
			return err
		}
	}

	item.Status = to
	t.metrics.IncTransition(string(from), string(to))
	t.logInfo(ctx, "order item status changed", map[string]any{
		"order_item_id": item.ID.String(),
		"order_id":      item.OrderID.String(),
		"from":          string(from),
		"to":            string(to),
		"actor_role":    string(actor.Role),
	})
	return nil
}

func (t *Transitioner) confirm(ctx context.Context, tx *gorm.DB, actor authz.Actor, item *models.OrderItem) error {
	if item.Order == nil || item.Product == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "order item is missing its order or product")
	}
	stock := t.stock.WithTx(tx)
	remaining, ok, err := stock.DecrementStock(ctx, item.ProductID, item.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		available, err := stock.StockOf(ctx, item.ProductID)
		if err != nil {
			return err
		}
		t.metrics.IncStockRejection()
		return pkgerrors.New(pkgerrors.CodeInsufficient, fmt.Sprintf("insufficient stock. available: %d, requested: %d", available, item.Quantity)).
			WithDetails(map[string]any{"available": available, "requested": item.Quantity, "productId": item.ProductID})
	}

	if _, err := t.ledger.Record(ctx, tx, ledger.RecordInput{
		ProductID:   item.ProductID,
		OrderItemID: item.ID,
		ActorUserID: actor.UserID,
		Type:        enums.StockMovementDeduction,
		Quantity:    item.Quantity,
		StockAfter:  remaining,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock deduction")
	}

	supplier, err := t.users.FindByID(ctx, item.Product.SupplierID)
	if err != nil {
		return err
	}
	row := buildConfirmedOrder(item, supplier)
	if err := t.confirms.RecordConfirmation(ctx, tx, row); err != nil {
		return err
	}

	return t.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderItemConfirmed,
		AggregateType: enums.AggregateOrderItem,
		AggregateID:   item.ID,
		Actor:         actorRef(actor),
		Data: payloads.OrderItemConfirmedEvent{
			OrderID:          item.OrderID,
			OrderItemID:      item.ID,
			ProductID:        item.ProductID,
			SupplierID:       item.Product.SupplierID,
			ConfirmedOrderID: row.ID,
			Quantity:         item.Quantity,
			StockRemaining:   remaining,
		},
	})
}

// cancel restores stock only when it was deducted, that is from CONFIRMED.
func (t *Transitioner) cancel(ctx context.Context, tx *gorm.DB, actor authz.Actor, item *models.OrderItem) error {
	restored := 0
	if item.Status == enums.OrderItemStatusConfirmed {
		remaining, err := t.stock.WithTx(tx).IncrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if _, err := t.ledger.Record(ctx, tx, ledger.RecordInput{
			ProductID:   item.ProductID,
			OrderItemID: item.ID,
			ActorUserID: actor.UserID,
			Type:        enums.StockMovementRestoration,
			Quantity:    item.Quantity,
			StockAfter:  remaining,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock restoration")
		}
		withdrawn, err := t.confirms.CancelConfirmation(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		if !withdrawn {
			t.logWarn(ctx, "cancelled item was already assigned for delivery; route generation skips its entry", map[string]any{
				"order_item_id": item.ID.String(),
				"order_id":      item.OrderID.String(),
			})
		}
		restored = item.Quantity
	}

	return t.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderItemCancelled,
		AggregateType: enums.AggregateOrderItem,
		AggregateID:   item.ID,
		Actor:         actorRef(actor),
		Data: payloads.OrderItemCancelledEvent{
			OrderID:        item.OrderID,
			OrderItemID:    item.ID,
			ProductID:      item.ProductID,
			PreviousStatus: string(item.Status),
			StockRestored:  restored,
		},
	})
}

func buildConfirmedOrder(item *models.OrderItem, supplier *models.User) *models.ConfirmedOrder {
	order := item.Order
	row := &models.ConfirmedOrder{
		OrderID:         order.ID,
		OrderItemID:     item.ID,
		MerchantID:      order.UserID,
		SupplierID:      supplier.ID,
		SupplierName:    supplier.DisplayName(),
		DeliveryAddress: DeliveryAddress(order),
		Status:          enums.ConfirmedOrderReadyToPick,
		OrderDate:       order.OrderDate,
		TotalAmount:     item.TotalPrice,
	}
	if order.User != nil {
		row.MerchantName = order.User.DisplayName()
		row.ContactNumber = order.User.PhoneNumber
	}
	return row
}

// DeliveryAddress formats the shipping snapshot as
// "address, apartment, city, state zip", skipping blank parts.
func DeliveryAddress(order *models.Order) string {
	var b strings.Builder
	appendPart := func(sep, part string) {
		if strings.TrimSpace(part) == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(part)
	}
	appendPart("", order.ShippingAddress)
	if order.ShippingApartment != nil {
		appendPart(", ", *order.ShippingApartment)
	}
	appendPart(", ", order.ShippingCity)
	appendPart(", ", order.ShippingState)
	appendPart(" ", order.ShippingZipCode)
	if b.Len() == 0 {
		return addressNotAvailable
	}
	return b.String()
}

func actorRef(actor authz.Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}

func (t *Transitioner) logInfo(ctx context.Context, msg string, fields map[string]any) {
	if t.logg == nil {
		return
	}
	t.logg.Info(t.logg.WithFields(ctx, fields), msg)
}

func (t *Transitioner) logWarn(ctx context.Context, msg string, fields map[string]any) {
	if t.logg == nil {
		return
	}
	t.logg.Warn(t.logg.WithFields(ctx, fields), msg)
}
