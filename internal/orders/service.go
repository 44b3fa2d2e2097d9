// Package orders owns order items and their status machine.
package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/pagination"
)

type transitionApplier interface {
	ApplyTransition(ctx context.Context, tx *gorm.DB, actor authz.Actor, item *models.OrderItem, to enums.OrderItemStatus) error
}

// Service defines the merchant and supplier order operations.
type Service interface {
	GetMyOrders(ctx context.Context, actor authz.Actor, params pagination.Params) (pagination.Page[OrderSummaryDTO], error)
	GetOrderDetails(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*OrderDetailsDTO, error)
	UpdateItemQuantity(ctx context.Context, actor authz.Actor, orderID, itemID uuid.UUID, quantity int) (*OrderDetailsDTO, error)
	UpdateItemStatus(ctx context.Context, actor authz.Actor, orderID, itemID uuid.UUID, status string) (*OrderDetailsDTO, error)
	DeleteItem(ctx context.Context, actor authz.Actor, orderID, itemID uuid.UUID) (*OrderDetailsDTO, error)
	CancelOrder(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*OrderDetailsDTO, error)

	ListSupplierItems(ctx context.Context, actor authz.Actor, includePending bool) ([]SupplierOrderItemDTO, error)
	UpdateSupplierItemStatus(ctx context.Context, actor authz.Actor, itemID uuid.UUID, status string) (*SupplierOrderItemDTO, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	transitions transitionApplier
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, transitions transitionApplier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if transitions == nil {
		return nil, fmt.Errorf("transition applier required")
	}
	return &service{repo: repo, tx: tx, transitions: transitions}, nil
}

func (s *service) GetMyOrders(ctx context.Context, actor authz.Actor, params pagination.Params) (pagination.Page[OrderSummaryDTO], error) {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return pagination.Page[OrderSummaryDTO]{}, err
	}
	rows, err := s.repo.ListUserOrders(ctx, actor.UserID, params)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return pagination.Page[OrderSummaryDTO]{}, err
		}
		return pagination.Page[OrderSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page := pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	out := pagination.Page[OrderSummaryDTO]{
		Items:      make([]OrderSummaryDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		out.Items = append(out.Items, ToSummary(&page.Items[i]))
	}
	return out, nil
}

func (s *service) GetOrderDetails(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*OrderDetailsDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return nil, err
	}
	order, err := s.ownedOrder(ctx, actor, orderID, s.repo.FindOrder)
	if err != nil {
		return nil, err
	}
	return ToDetails(order), nil
}

// UpdateItemQuantity changes the quantity of a PENDING item and recomputes its total.
func (s *service) UpdateItemQuantity(ctx context.Context, actor authz.Actor, orderID, itemID uuid.UUID, quantity int) (*OrderDetailsDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := s.ownedItem(ctx, s.repo.WithTx(tx), actor, orderID, itemID)
		if err != nil {
			return err
		}
		if item.Status != enums.OrderItemStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("can only update quantity for pending items. current status: %s", item.Status))
		}
		item.Quantity = quantity
		if err := s.repo.WithTx(tx).SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrderDetails(ctx, actor, orderID)
}

func (s *service) UpdateItemStatus(ctx context.Context, actor authz.Actor, orderID, itemID uuid.UUID, status string) (*OrderDetailsDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return nil, err
	}
	to, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := s.ownedItem(ctx, s.repo.WithTx(tx), actor, orderID, itemID)
		if err != nil {
			return err
		}
		return s.transitions.ApplyTransition(ctx, tx, actor, item, to)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrderDetails(ctx, actor, orderID)
}

// DeleteItem removes a PENDING item from the order.
func (s *service) DeleteItem(ctx context.Context, actor authz.Actor, orderID, itemID uuid.UUID) (*OrderDetailsDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return nil, err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.ownedItem(ctx, repo, actor, orderID, itemID)
		if err != nil {
			return err
		}
		if item.Status != enums.OrderItemStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("can only delete pending items. current status: %s", item.Status))
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrderDetails(ctx, actor, orderID)
}

// CancelOrder cancels every PENDING or CONFIRMED item. Nothing changes when
// any item has already shipped or been delivered. The item rows stay locked
// for the whole cancellation so a concurrent confirm waits for it.
func (s *service) CancelOrder(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*OrderDetailsDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return nil, err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.ownedOrder(ctx, actor, orderID, s.repo.WithTx(tx).FindOrderForUpdate)
		if err != nil {
			return err
		}
		for _, item := range order.Items {
			if item.Status == enums.OrderItemStatusShipped || item.Status == enums.OrderItemStatusDelivered {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot cancel order: some items have already been shipped or delivered")
			}
		}
		for i := range order.Items {
			item := &order.Items[i]
			if item.Status != enums.OrderItemStatusPending && item.Status != enums.OrderItemStatusConfirmed {
				continue
			}
			item.Order = order
			if err := s.transitions.ApplyTransition(ctx, tx, actor, item, enums.OrderItemStatusCancelled); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrderDetails(ctx, actor, orderID)
}

// ListSupplierItems lists items for the supplier's products. PENDING items
// are included only on request.
func (s *service) ListSupplierItems(ctx context.Context, actor authz.Actor, includePending bool) ([]SupplierOrderItemDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleSupplier); err != nil {
		return nil, err
	}
	items, err := s.repo.ListSupplierItems(ctx, actor.UserID, includePending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier items")
	}
	out := make([]SupplierOrderItemDTO, 0, len(items))
	for i := range items {
		out = append(out, toSupplierItem(&items[i]))
	}
	return out, nil
}

func (s *service) UpdateSupplierItemStatus(ctx context.Context, actor authz.Actor, itemID uuid.UUID, status string) (*SupplierOrderItemDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleSupplier); err != nil {
		return nil, err
	}
	to, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := s.findItem(ctx, s.repo.WithTx(tx), itemID)
		if err != nil {
			return err
		}
		if item.Product == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if err := authz.RequireOwner(actor, item.Product.SupplierID, "order item"); err != nil {
			return err
		}
		return s.transitions.ApplyTransition(ctx, tx, actor, item, to)
	})
	if err != nil {
		return nil, err
	}
	item, err := s.findItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	dto := toSupplierItem(item)
	return &dto, nil
}

func (s *service) ownedOrder(ctx context.Context, actor authz.Actor, orderID uuid.UUID, load func(context.Context, uuid.UUID) (*models.Order, error)) (*models.Order, error) {
	order, err := load(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := authz.RequireOwner(actor, order.UserID, "order"); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) ownedItem(ctx context.Context, repo Repository, actor authz.Actor, orderID, itemID uuid.UUID) (*models.OrderItem, error) {
	item, err := s.findItem(ctx, repo, itemID)
	if err != nil {
		return nil, err
	}
	if item.OrderID != orderID || item.Order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item does not belong to this order")
	}
	if err := authz.RequireOwner(actor, item.Order.UserID, "order"); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) findItem(ctx context.Context, repo Repository, itemID uuid.UUID) (*models.OrderItem, error) {
	item, err := repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
	}
	return item, nil
}

func parseStatus(raw string) (enums.OrderItemStatus, error) {
	status, err := enums.ParseOrderItemStatus(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid status: %s", raw))
	}
	return status, nil
}
