// Package fulfillment manages the pick/pack projection written when an order
// item is confirmed.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/pkg/db"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

// Date filters accepted by List.
const (
	DateToday     = "today"
	DateYesterday = "yesterday"
	DateThisWeek  = "this week"
	DateThisMonth = "this month"

	allStatuses = "All"
	allRoutes   = "All Routes"
	allDates    = "All"
)

// Filter is the caller-facing listing filter.
type Filter struct {
	Status     string
	DateFilter string
	Route      string
}

// Service exposes confirmed order reads and updates to delivery staff.
type Service interface {
	RecordConfirmation(ctx context.Context, tx *gorm.DB, row *models.ConfirmedOrder) error
	CancelConfirmation(ctx context.Context, tx *gorm.DB, orderItemID uuid.UUID) (bool, error)

	List(ctx context.Context, actor authz.Actor, filter Filter) ([]models.ConfirmedOrder, error)
	Assignable(ctx context.Context, actor authz.Actor) ([]models.ConfirmedOrder, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ConfirmedOrder, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, id uuid.UUID, status string) (*models.ConfirmedOrder, error)
	AssignRoute(ctx context.Context, actor authz.Actor, id uuid.UUID, route string) (*models.ConfirmedOrder, error)
	CountByStatus(ctx context.Context, actor authz.Actor, status string) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// RecordConfirmation stores the projection for a freshly confirmed item.
func (s *service) RecordConfirmation(ctx context.Context, tx *gorm.DB, row *models.ConfirmedOrder) error {
	if row == nil || row.OrderItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "confirmed order requires an order item")
	}
	if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "order item already has a confirmed order")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create confirmed order")
	}
	return nil
}

func (s *service) CancelConfirmation(ctx context.Context, tx *gorm.DB, orderItemID uuid.UUID) (bool, error) {
	n, err := s.repo.WithTx(tx).CancelReadyForItem(ctx, orderItemID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel confirmed order")
	}
	return n > 0, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor, filter Filter) ([]models.ConfirmedOrder, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	q := Query{}
	if status := strings.TrimSpace(filter.Status); status != "" && status != allStatuses {
		q.Status = status
	}
	if route := strings.TrimSpace(filter.Route); route != "" && route != allRoutes {
		q.Route = route
	}
	from, until, err := dateWindow(filter.DateFilter, s.now())
	if err != nil {
		return nil, err
	}
	q.From, q.Until = from, until

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list confirmed orders")
	}
	return rows, nil
}

func (s *service) Assignable(ctx context.Context, actor authz.Actor) ([]models.ConfirmedOrder, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAssignable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignable orders")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ConfirmedOrder, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, actor authz.Actor, id uuid.UUID, status string) (*models.ConfirmedOrder, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status is required")
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update confirmed order status")
	}
	return s.find(ctx, id)
}

func (s *service) AssignRoute(ctx context.Context, actor authz.Actor, id uuid.UUID, route string) (*models.ConfirmedOrder, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	route = strings.TrimSpace(route)
	if route == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "route is required")
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRoute(ctx, id, route); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign route")
	}
	return s.find(ctx, id)
}

func (s *service) CountByStatus(ctx context.Context, actor authz.Actor, status string) (int64, error) {
	if err := requireStaff(actor); err != nil {
		return 0, err
	}
	count, err := s.repo.CountByStatus(ctx, strings.TrimSpace(status))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count confirmed orders")
	}
	return count, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.ConfirmedOrder, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "confirmed order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load confirmed order")
	}
	return row, nil
}

func requireStaff(actor authz.Actor) error {
	return authz.RequireRole(actor, enums.RoleDelivery, enums.RoleAdmin)
}

// dateWindow maps a date filter to a half-open [from, until) range in now's
// location. "All" and empty mean no bound.
func dateWindow(filter string, now time.Time) (*time.Time, *time.Time, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := midnight.AddDate(0, 0, 1)
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "", strings.ToLower(allDates):
		return nil, nil, nil
	case DateToday:
		return &midnight, &tomorrow, nil
	case DateYesterday:
		from := midnight.AddDate(0, 0, -1)
		return &from, &midnight, nil
	case DateThisWeek:
		from := midnight.AddDate(0, 0, -7)
		return &from, nil, nil
	case DateThisMonth:
		from := midnight.AddDate(0, 0, -30)
		return &from, nil, nil
	default:
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid date filter %q", filter))
	}
}
