package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/repo"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

// Repository exposes persistence operations for carts and their items.
type Repository struct {
	repo.Base
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// FindActiveByUser loads the ACTIVE cart of the user with items and products.
// It returns gorm.ErrRecordNotFound when the user has none.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart, defaulting to ACTIVE. Like CreateItem it runs
// under a savepoint.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.Status == "" {
		cart.Status = enums.CartStatusActive
	}
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(cart).Error
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateStatus moves a cart to status. The update only applies while the
// cart is still in an allowed predecessor state, so a checkout racing the
// abandonment sweep loses cleanly instead of resurrecting the cart.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error {
	res := r.DB(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND status IN ?", id, status.Predecessors()).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is no longer active")
	}
	return nil
}

// Touch refreshes updated_at so the cart counts as recently used.
func (r *Repository) Touch(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).
		Model(&models.Cart{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", time.Now().UTC()).Error
}

// AbandonIdleSince marks every ACTIVE cart untouched since cutoff as ABANDONED.
func (r *Repository) AbandonIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Cart{}).
		Where("status = ? AND updated_at < ?", enums.CartStatusActive, cutoff).
		Update("status", enums.CartStatusAbandoned)
	return res.RowsAffected, res.Error
}

// IncrementItemQuantity adds delta to the product's line in cart in a single
// statement. It reports false when the cart has no line for the product.
func (r *Repository) IncrementItemQuantity(ctx context.Context, cartID, productID uuid.UUID, delta int) (bool, error) {
	res := r.DB(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		UpdateColumns(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected > 0, res.Error
}

// FindItemByID loads an item with the cart that owns it.
func (r *Repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.CartItem, *models.Cart, error) {
	var item models.CartItem
	if err := r.DB(ctx).Preload("Product").First(&item, "id = ?", id).Error; err != nil {
		return nil, nil, err
	}
	var cart models.Cart
	if err := r.DB(ctx).First(&cart, "id = ?", item.CartID).Error; err != nil {
		return nil, nil, err
	}
	return &item, &cart, nil
}

// CreateItem inserts under a savepoint so a unique violation leaves the
// surrounding transaction usable.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(item).Error
	})
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.DB(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.CartItem{}).Error
}

// DeleteItems removes every item of the cart; the cart row is kept.
func (r *Repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.DB(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
