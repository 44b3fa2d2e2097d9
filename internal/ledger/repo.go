package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/repo"
	"github.com/merko/merko-backend/pkg/db/models"
)

// Repository manages persistence for stock ledger events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.StockLedgerEvent) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.StockLedgerEvent, error)
	ListByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]models.StockLedgerEvent, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, event *models.StockLedgerEvent) error {
	return r.DB(ctx).Create(event).Error
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.StockLedgerEvent, error) {
	var events []models.StockLedgerEvent
	if err := r.DB(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) ListByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]models.StockLedgerEvent, error) {
	var events []models.StockLedgerEvent
	if err := r.DB(ctx).
		Where("order_item_id = ?", orderItemID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
