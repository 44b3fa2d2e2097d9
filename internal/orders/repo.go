package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/merko/merko-backend/internal/repo"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/pagination"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// CreateOrder inserts the order together with its items.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Create(order).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.findOrder(ctx, id, false)
}

// FindOrderForUpdate is FindOrder with the order's item rows locked, so the
// statuses it returns stay current until the transaction ends.
func (r *repository) FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.findOrder(ctx, id, true)
}

func (r *repository) findOrder(ctx context.Context, id uuid.UUID, lockItems bool) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			if lockItems {
				db = db.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListUserOrders returns the user's orders newest first, fetching one extra
// row so callers can detect a next page.
func (r *repository) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	page, err := pagination.Scope(params)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := r.DB(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Scopes(page).
		Find(&orders).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// FindItem loads an item with its product and its order's owner. The item
// row is locked so concurrent transitions on it serialize.
func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.Locked(ctx).
		Preload("Product").
		Preload("Order").
		Preload("Order.User").
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveItem persists the item; TotalPrice is recomputed by the model hook.
func (r *repository) SaveItem(ctx context.Context, item *models.OrderItem) error {
	return r.DB(ctx).Omit("Order", "Product").Save(item).Error
}

// UpdateItemStatus moves the item from `from` to `to`. It reports false when
// the stored status is no longer `from`.
func (r *repository) UpdateItemStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderItemStatus) (bool, error) {
	res := r.DB(ctx).
		Model(&models.OrderItem{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.OrderItem{}).Error
}

// ListSupplierItems returns items for products owned by supplierID, newest
// order first. PENDING items are skipped unless includePending is set.
func (r *repository) ListSupplierItems(ctx context.Context, supplierID uuid.UUID, includePending bool) ([]models.OrderItem, error) {
	query := r.DB(ctx).
		Preload("Product").
		Preload("Order").
		Preload("Order.User").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("products.supplier_id = ?", supplierID)
	if !includePending {
		query = query.Where("order_items.status <> ?", enums.OrderItemStatusPending)
	}

	var items []models.OrderItem
	if err := query.
		Order("orders.order_date DESC").
		Order("order_items.created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
