// Package catalog reads products and owns the stock counter.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/repo"
	"github.com/merko/merko-backend/pkg/db/models"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

// Repository exposes the product reads and the stock counter.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// DecrementStock removes qty only when enough is available. ok is false
	// when the row was not updated.
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (remaining int, ok bool, err error)
	IncrementStock(ctx context.Context, productID uuid.UUID, qty int) (remaining int, err error)
	StockOf(ctx context.Context, productID uuid.UUID) (int, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, repo.Lookup(err, "product")
	}
	return &product, nil
}

func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int, bool, error) {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	remaining, err := r.StockOf(ctx, productID)
	if err != nil {
		return 0, true, err
	}
	return remaining, true, nil
}

func (r *repository) IncrementStock(ctx context.Context, productID uuid.UUID, qty int) (int, error) {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment stock")
	}
	if res.RowsAffected == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return r.StockOf(ctx, productID)
}

func (r *repository) StockOf(ctx context.Context, productID uuid.UUID) (int, error) {
	var stock int
	err := r.DB(ctx).
		Model(&models.Product{}).
		Select("stock_quantity").
		Where("id = ?", productID).
		Scan(&stock).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read stock")
	}
	return stock, nil
}
