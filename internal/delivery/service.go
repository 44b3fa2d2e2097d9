// Package delivery schedules confirmed orders for physical delivery.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/internal/fulfillment"
	"github.com/merko/merko-backend/pkg/db"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/logger"
	"github.com/merko/merko-backend/pkg/outbox"
	"github.com/merko/merko-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages delivery entries.
type Service interface {
	CreateEntry(ctx context.Context, actor authz.Actor, confirmedOrderID uuid.UUID) (*models.DeliveryEntry, error)
	List(ctx context.Context, actor authz.Actor) ([]models.DeliveryEntry, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, deliveryID uuid.UUID, status string) (*models.DeliveryEntry, error)
	DeleteEntry(ctx context.Context, actor authz.Actor, deliveryID uuid.UUID) error
}

type service struct {
	repo      Repository
	confirmed fulfillment.Repository
	tx        txRunner
	outbox    outboxPublisher
	logg      *logger.Logger
}

func NewService(repo Repository, confirmed fulfillment.Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if confirmed == nil {
		return nil, fmt.Errorf("confirmed order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, confirmed: confirmed, tx: tx, outbox: publisher, logg: logg}, nil
}

func requireStaff(actor authz.Actor) error {
	return authz.RequireRole(actor, enums.RoleDelivery, enums.RoleAdmin)
}

// CreateEntry turns a "Ready to Pick" confirmed order into a delivery entry
// and marks the order "Assigned".
func (s *service) CreateEntry(ctx context.Context, actor authz.Actor, confirmedOrderID uuid.UUID) (*models.DeliveryEntry, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	var entry *models.DeliveryEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		confirmed := s.confirmed.WithTx(tx)
		entries := s.repo.WithTx(tx)

		order, err := confirmed.FindByID(ctx, confirmedOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order not found with id: %s", confirmedOrderID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load confirmed order")
		}
		if order.Status != enums.ConfirmedOrderReadyToPick {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order must be '%s' to assign for delivery. current status: %s", enums.ConfirmedOrderReadyToPick, order.Status))
		}
		exists, err := entries.ExistsForConfirmedOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check delivery entry")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already assigned for delivery")
		}
		if strings.TrimSpace(order.MerchantName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "merchant name is required")
		}
		if strings.TrimSpace(order.SupplierName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
		}

		entry = &models.DeliveryEntry{
			ConfirmedOrderID: order.ID,
			MerchantName:     order.MerchantName,
			SupplierName:     order.SupplierName,
			DeliveryAddress:  order.DeliveryAddress,
			Status:           enums.DeliveryStatusReady,
		}
		if err := entries.Create(ctx, entry); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order is already assigned for delivery")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery entry")
		}
		assigned, err := confirmed.TransitionStatus(ctx, order.ID, enums.ConfirmedOrderReadyToPick, enums.ConfirmedOrderAssigned)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order assigned")
		}
		if !assigned {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is no longer '%s'", enums.ConfirmedOrderReadyToPick))
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryAssigned,
			AggregateType: enums.AggregateDeliveryEntry,
			AggregateID:   entry.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: payloads.DeliveryAssignedEvent{
				DeliveryEntryID:  entry.ID,
				ConfirmedOrderID: order.ID,
				DeliveryAddress:  entry.DeliveryAddress,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.logInfo(ctx, "delivery entry created", map[string]any{
		"delivery_entry_id":  entry.ID.String(),
		"confirmed_order_id": confirmedOrderID.String(),
	})
	return entry, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor) ([]models.DeliveryEntry, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery entries")
	}
	return entries, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor authz.Actor, deliveryID uuid.UUID, status string) (*models.DeliveryEntry, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	entry, err := s.load(ctx, s.repo, deliveryID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(status) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status cannot be empty")
	}
	next, err := enums.ParseDeliveryStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error()).WithDetails(map[string]any{
			"valid": enums.DeliveryStatusValues(),
		})
	}
	if err := s.repo.UpdateStatus(ctx, entry.ID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery status")
	}
	entry.Status = next
	s.logInfo(ctx, "delivery status updated", map[string]any{
		"delivery_entry_id": entry.ID.String(),
		"status":            string(next),
	})
	return entry, nil
}

// DeleteEntry removes an entry and its route stops. Entries with a visited
// stop are kept for audit.
func (s *service) DeleteEntry(ctx context.Context, actor authz.Actor, deliveryID uuid.UUID) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entry, err := s.load(ctx, repo, deliveryID)
		if err != nil {
			return err
		}
		stops, err := repo.ListStops(ctx, entry.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load route stops")
		}
		for _, stop := range stops {
			if stop.Status == enums.RouteStopStatusVisited {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					"cannot delete delivery entry because it has visited route stops. this delivery has been processed and cannot be removed for audit purposes")
			}
		}
		if err := repo.DeleteStops(ctx, entry.ID); err != nil {
			return rewriteDeleteError(err, "delete route stops")
		}
		remaining, err := repo.ListStops(ctx, entry.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify route stops")
		}
		if len(remaining) > 0 {
			return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("failed to clean up route stops. %d stops remain", len(remaining)))
		}
		if err := repo.Delete(ctx, entry.ID); err != nil {
			return rewriteDeleteError(err, "delete delivery entry")
		}
		exists, err := repo.Exists(ctx, entry.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify delivery entry")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeInternal, "delivery entry deletion failed. entry still exists")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logInfo(ctx, "delivery entry deleted", map[string]any{"delivery_entry_id": deliveryID.String()})
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.DeliveryEntry, error) {
	entry, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("delivery entry not found with id: %s", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery entry")
	}
	return entry, nil
}

func rewriteDeleteError(err error, msg string) error {
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "delivery entry is still referenced by other records")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func (s *service) logInfo(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}
