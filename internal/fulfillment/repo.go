package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/repo"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

// Query narrows a confirmed order listing. Zero values match everything.
type Query struct {
	Status string
	Route  string
	From   *time.Time
	Until  *time.Time
}

// Repository persists confirmed order projections.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, row *models.ConfirmedOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ConfirmedOrder, error)
	List(ctx context.Context, q Query) ([]models.ConfirmedOrder, error)
	ListAssignable(ctx context.Context) ([]models.ConfirmedOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
	UpdateRoute(ctx context.Context, id uuid.UUID, route string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	CancelReadyForItem(ctx context.Context, orderItemID uuid.UUID) (int64, error)
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

func (r *repository) Create(ctx context.Context, row *models.ConfirmedOrder) error {
	return r.DB(ctx).Create(row).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ConfirmedOrder, error) {
	var row models.ConfirmedOrder
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, q Query) ([]models.ConfirmedOrder, error) {
	query := r.DB(ctx).Model(&models.ConfirmedOrder{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Route != "" {
		query = query.Where("route = ?", q.Route)
	}
	if q.From != nil {
		query = query.Where("order_date >= ?", *q.From)
	}
	if q.Until != nil {
		query = query.Where("order_date < ?", *q.Until)
	}
	var rows []models.ConfirmedOrder
	if err := query.Order("order_date DESC").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAssignable returns rows waiting to be picked that have no delivery entry yet.
func (r *repository) ListAssignable(ctx context.Context) ([]models.ConfirmedOrder, error) {
	var rows []models.ConfirmedOrder
	err := r.DB(ctx).
		Where("status = ?", enums.ConfirmedOrderReadyToPick).
		Where("NOT EXISTS (SELECT 1 FROM delivery_entries de WHERE de.confirmed_order_id = confirmed_orders.id)").
		Order("order_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.DB(ctx).Model(&models.ConfirmedOrder{}).Where("id = ?", id).Update("status", status).Error
}

// TransitionStatus writes `to` only while the row still holds `from`.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	res := r.DB(ctx).
		Model(&models.ConfirmedOrder{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) UpdateRoute(ctx context.Context, id uuid.UUID, route string) error {
	return r.DB(ctx).Model(&models.ConfirmedOrder{}).Where("id = ?", id).Update("route", route).Error
}

func (r *repository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.ConfirmedOrder{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *repository) CancelReadyForItem(ctx context.Context, orderItemID uuid.UUID) (int64, error) {
	res := r.DB(ctx).
		Model(&models.ConfirmedOrder{}).
		Where("order_item_id = ? AND status = ?", orderItemID, enums.ConfirmedOrderReadyToPick).
		Update("status", enums.ConfirmedOrderCancelled)
	return res.RowsAffected, res.Error
}
