package routes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/repo"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

// Repository persists routes and their stops.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRoute(ctx context.Context, route *models.Route) error
	CreateStops(ctx context.Context, stops []models.RouteStop) error
	FindRoute(ctx context.Context, id uuid.UUID) (*models.Route, error)
	FindRouteWithStops(ctx context.Context, id uuid.UUID) (*models.Route, error)
	List(ctx context.Context) ([]models.Route, error)
	ListByStatus(ctx context.Context, status enums.RouteStatus) ([]models.Route, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RouteStatus) error
	DeleteRoute(ctx context.Context, id uuid.UUID) error
	DeleteStops(ctx context.Context, routeID uuid.UUID) error

	FindStop(ctx context.Context, id uuid.UUID) (*models.RouteStop, error)
	UpdateStop(ctx context.Context, id uuid.UUID, status enums.RouteStopStatus, arrivedAt *time.Time) error
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

func (r *repository) CreateRoute(ctx context.Context, route *models.Route) error {
	return r.DB(ctx).Omit("Stops").Create(route).Error
}

func (r *repository) CreateStops(ctx context.Context, stops []models.RouteStop) error {
	if len(stops) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&stops).Error
}

func (r *repository) FindRoute(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	var route models.Route
	if err := r.DB(ctx).First(&route, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *repository) FindRouteWithStops(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	var route models.Route
	err := r.DB(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("stop_order ASC")
		}).
		First(&route, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *repository) List(ctx context.Context) ([]models.Route, error) {
	var routes []models.Route
	if err := r.DB(ctx).Order("created_at DESC").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.RouteStatus) ([]models.Route, error) {
	var routes []models.Route
	if err := r.DB(ctx).Where("status = ?", status).Order("created_at DESC").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RouteStatus) error {
	return r.DB(ctx).Model(&models.Route{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repository) DeleteRoute(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Route{}).Error
}

func (r *repository) DeleteStops(ctx context.Context, routeID uuid.UUID) error {
	return r.DB(ctx).Where("route_id = ?", routeID).Delete(&models.RouteStop{}).Error
}

func (r *repository) FindStop(ctx context.Context, id uuid.UUID) (*models.RouteStop, error) {
	var stop models.RouteStop
	if err := r.DB(ctx).First(&stop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &stop, nil
}

func (r *repository) UpdateStop(ctx context.Context, id uuid.UUID, status enums.RouteStopStatus, arrivedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if arrivedAt != nil {
		updates["actual_arrival_time"] = *arrivedAt
	}
	return r.DB(ctx).Model(&models.RouteStop{}).Where("id = ?", id).Updates(updates).Error
}
