package delivery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/repo"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

// Repository persists delivery entries and reads the route stops that point at them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.DeliveryEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryEntry, error)
	ExistsForConfirmedOrder(ctx context.Context, confirmedOrderID uuid.UUID) (bool, error)
	List(ctx context.Context) ([]models.DeliveryEntry, error)
	ListRoutable(ctx context.Context) ([]models.DeliveryEntry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DeliveryStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	ListStops(ctx context.Context, entryID uuid.UUID) ([]models.RouteStop, error)
	DeleteStops(ctx context.Context, entryID uuid.UUID) error
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

func (r *repository) Create(ctx context.Context, entry *models.DeliveryEntry) error {
	return r.DB(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryEntry, error) {
	var entry models.DeliveryEntry
	if err := r.DB(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ExistsForConfirmedOrder(ctx context.Context, confirmedOrderID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.DeliveryEntry{}).
		Where("confirmed_order_id = ?", confirmedOrderID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) List(ctx context.Context) ([]models.DeliveryEntry, error) {
	var entries []models.DeliveryEntry
	if err := r.DB(ctx).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListRoutable returns entries ready for delivery, oldest first. Entries
// whose order item was cancelled after assignment are left out.
func (r *repository) ListRoutable(ctx context.Context) ([]models.DeliveryEntry, error) {
	var entries []models.DeliveryEntry
	err := r.DB(ctx).
		Select("delivery_entries.*").
		Joins("LEFT JOIN confirmed_orders ON confirmed_orders.id = delivery_entries.confirmed_order_id").
		Joins("LEFT JOIN order_items ON order_items.id = confirmed_orders.order_item_id").
		Where("delivery_entries.status = ?", enums.DeliveryStatusReady).
		Where("(order_items.status IS NULL OR order_items.status <> ?)", enums.OrderItemStatusCancelled).
		Order("delivery_entries.created_at ASC").
		Order("delivery_entries.id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DeliveryStatus) error {
	return r.DB(ctx).Model(&models.DeliveryEntry{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.DeliveryEntry{}).Error
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.DeliveryEntry{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) ListStops(ctx context.Context, entryID uuid.UUID) ([]models.RouteStop, error) {
	var stops []models.RouteStop
	if err := r.DB(ctx).Where("delivery_entry_id = ?", entryID).Find(&stops).Error; err != nil {
		return nil, err
	}
	return stops, nil
}

func (r *repository) DeleteStops(ctx context.Context, entryID uuid.UUID) error {
	return r.DB(ctx).Where("delivery_entry_id = ?", entryID).Delete(&models.RouteStop{}).Error
}
