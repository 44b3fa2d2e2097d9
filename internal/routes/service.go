// Package routes builds delivery routes from entries that are ready to go out.
package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/internal/delivery"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/logger"
	"github.com/merko/merko-backend/pkg/metrics"
	"github.com/merko/merko-backend/pkg/outbox"
	"github.com/merko/merko-backend/pkg/outbox/payloads"
)

const (
	defaultOrigin      = "Distribution Center"
	defaultStopSpacing = 15 * time.Minute
	routeNamePrefix    = "Optimized Route - "
	routeNameLayout    = "2006-01-02T15:04:05"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type entrySource interface {
	WithTx(tx *gorm.DB) delivery.Repository
	ListRoutable(ctx context.Context) ([]models.DeliveryEntry, error)
}

// Locker serializes route generation across API replicas.
type Locker interface {
	Acquire(ctx context.Context) (string, bool, error)
	Release(ctx context.Context, owner string) error
}

// Service generates and manages delivery routes.
type Service interface {
	GenerateOptimalRoute(ctx context.Context, actor authz.Actor) (*RouteWithStopsDTO, error)
	GetRouteWithStops(ctx context.Context, actor authz.Actor, id uuid.UUID) (*RouteWithStopsDTO, error)
	List(ctx context.Context, actor authz.Actor) ([]RouteDTO, error)
	ListActive(ctx context.Context, actor authz.Actor) ([]RouteDTO, error)
	UpdateRouteStatus(ctx context.Context, actor authz.Actor, id uuid.UUID, status string) (*RouteDTO, error)
	UpdateStopStatus(ctx context.Context, actor authz.Actor, stopID uuid.UUID, status string) (*StopDTO, error)
	DeleteRoute(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

// ServiceParams wires the routes service.
type ServiceParams struct {
	Repo        Repository
	Entries     entrySource
	Tx          txRunner
	Outbox      outboxPublisher
	Lock        Locker
	Orderer     Orderer
	Origin      string
	StopSpacing time.Duration
	Metrics     *metrics.LifecycleMetrics
	Logger      *logger.Logger
}

type service struct {
	repo        Repository
	entries     entrySource
	tx          txRunner
	outbox      outboxPublisher
	lock        Locker
	orderer     Orderer
	origin      string
	stopSpacing time.Duration
	metrics     *metrics.LifecycleMetrics
	logg        *logger.Logger
	now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("routes repository required")
	case params.Entries == nil:
		return nil, fmt.Errorf("delivery entry source required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case params.Lock == nil:
		return nil, fmt.Errorf("route generation lock required")
	}
	if params.Orderer == nil {
		params.Orderer = AlphabeticalOrderer{}
	}
	if strings.TrimSpace(params.Origin) == "" {
		params.Origin = defaultOrigin
	}
	if params.StopSpacing <= 0 {
		params.StopSpacing = defaultStopSpacing
	}
	return &service{
		repo:        params.Repo,
		entries:     params.Entries,
		tx:          params.Tx,
		outbox:      params.Outbox,
		lock:        params.Lock,
		orderer:     params.Orderer,
		origin:      params.Origin,
		stopSpacing: params.StopSpacing,
		metrics:     params.Metrics,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

func requireStaff(actor authz.Actor) error {
	return authz.RequireRole(actor, enums.RoleDelivery, enums.RoleAdmin)
}

// GenerateOptimalRoute puts every "Ready for delivery" entry on one new route,
// one stop per entry, grouped by address in the orderer's sequence.
func (s *service) GenerateOptimalRoute(ctx context.Context, actor authz.Actor) (*RouteWithStopsDTO, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	owner, acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire route generation lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "route generation already in progress")
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), owner); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "release route generation lock")
		}
	}()

	var route *models.Route
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ready, err := s.entries.WithTx(tx).ListRoutable(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ready deliveries")
		}
		if len(ready) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no delivery entries found that are ready for delivery")
		}

		byAddress := map[string][]models.DeliveryEntry{}
		var distinct []string
		for _, entry := range ready {
			if strings.TrimSpace(entry.DeliveryAddress) == "" {
				continue
			}
			if _, seen := byAddress[entry.DeliveryAddress]; !seen {
				distinct = append(distinct, entry.DeliveryAddress)
			}
			byAddress[entry.DeliveryAddress] = append(byAddress[entry.DeliveryAddress], entry)
		}
		if len(distinct) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no valid delivery addresses found")
		}
		ordered := s.orderer.Order(distinct)

		addressesJSON, err := json.Marshal(ordered)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode delivery addresses")
		}
		now := s.now()
		route = &models.Route{
			Name:              routeNamePrefix + now.Format(routeNameLayout),
			StartLocation:     s.origin,
			EndLocation:       ordered[len(ordered)-1],
			TotalDistance:     decimal.Zero,
			EstimatedDuration: 0,
			DeliveryAddresses: string(addressesJSON),
			Status:            enums.RouteStatusActive,
		}
		repo := s.repo.WithTx(tx)
		if err := repo.CreateRoute(ctx, route); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create route")
		}

		stops := make([]models.RouteStop, 0, len(ready))
		entryIDs := make([]uuid.UUID, 0, len(ready))
		for _, address := range ordered {
			for _, entry := range byAddress[address] {
				order := len(stops) + 1
				eta := now.Add(time.Duration(order) * s.stopSpacing)
				stops = append(stops, models.RouteStop{
					RouteID:              route.ID,
					DeliveryEntryID:      entry.ID,
					StopOrder:            order,
					Address:              address,
					EstimatedArrivalTime: &eta,
					Status:               enums.RouteStopStatusPending,
				})
				entryIDs = append(entryIDs, entry.ID)
			}
		}
		if err := repo.CreateStops(ctx, stops); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create route stops")
		}
		route.Stops = stops

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRouteGenerated,
			AggregateType: enums.AggregateRoute,
			AggregateID:   route.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: payloads.RouteGeneratedEvent{
				RouteID:          route.ID,
				RouteName:        route.Name,
				StopCount:        len(stops),
				DeliveryEntryIDs: entryIDs,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveRouteStops(len(route.Stops))
	s.logInfo(ctx, "route generated", map[string]any{
		"route_id":  route.ID.String(),
		"stops":     len(route.Stops),
		"addresses": route.DeliveryAddresses,
	})
	return toRouteWithStops(route), nil
}

func (s *service) GetRouteWithStops(ctx context.Context, actor authz.Actor, id uuid.UUID) (*RouteWithStopsDTO, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	route, err := s.repo.FindRouteWithStops(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return toRouteWithStops(route), nil
}

func (s *service) List(ctx context.Context, actor authz.Actor) ([]RouteDTO, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	routes, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list routes")
	}
	return toRouteDTOs(routes), nil
}

func (s *service) ListActive(ctx context.Context, actor authz.Actor) ([]RouteDTO, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	routes, err := s.repo.ListByStatus(ctx, enums.RouteStatusActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active routes")
	}
	return toRouteDTOs(routes), nil
}

func (s *service) UpdateRouteStatus(ctx context.Context, actor authz.Actor, id uuid.UUID, status string) (*RouteDTO, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	route, err := s.repo.FindRoute(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	next, err := enums.ParseRouteStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid status: %s", status))
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update route status")
	}
	route.Status = next
	dto := ToRouteDTO(route)
	return &dto, nil
}

// UpdateStopStatus moves a pending stop to visited or skipped. Visiting
// records the arrival time.
func (s *service) UpdateStopStatus(ctx context.Context, actor authz.Actor, stopID uuid.UUID, status string) (*StopDTO, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	next, err := enums.ParseRouteStopStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid status: %s", status))
	}
	stop, err := s.repo.FindStop(ctx, stopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("route stop not found with id: %s", stopID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load route stop")
	}
	if stop.Status == next {
		dto := ToStopDTO(stop)
		return &dto, nil
	}
	if stop.Status != enums.RouteStopStatusPending || next == enums.RouteStopStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move stop from %s to %s", stop.Status, next))
	}
	var arrivedAt *time.Time
	if next == enums.RouteStopStatusVisited {
		now := s.now().UTC()
		arrivedAt = &now
	}
	if err := s.repo.UpdateStop(ctx, stop.ID, next, arrivedAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update route stop")
	}
	stop.Status = next
	stop.ActualArrivalTime = arrivedAt
	dto := ToStopDTO(stop)
	return &dto, nil
}

func (s *service) DeleteRoute(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindRoute(ctx, id); err != nil {
			return notFound(err, id)
		}
		if err := repo.DeleteStops(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete route stops")
		}
		if err := repo.DeleteRoute(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete route")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logInfo(ctx, "route deleted", map[string]any{"route_id": id.String()})
	return nil
}

func notFound(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("route not found with id: %s", id))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load route")
}

func toRouteDTOs(routes []models.Route) []RouteDTO {
	out := make([]RouteDTO, 0, len(routes))
	for i := range routes {
		out = append(out, ToRouteDTO(&routes[i]))
	}
	return out
}

func (s *service) logInfo(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}
