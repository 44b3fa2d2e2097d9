package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/ledger"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	"github.com/merko/merko-backend/pkg/outbox"
	"github.com/merko/merko-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error)
	FindItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	SaveItem(ctx context.Context, item *models.OrderItem) error
	UpdateItemStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderItemStatus) (bool, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListSupplierItems(ctx context.Context, supplierID uuid.UUID, includePending bool) ([]models.OrderItem, error)
}

// ConfirmationStore writes the fulfillment projection of confirmed items.
type ConfirmationStore interface {
	RecordConfirmation(ctx context.Context, tx *gorm.DB, row *models.ConfirmedOrder) error
	// CancelConfirmation flips the item's projection to Cancelled while it is
	// still waiting to be picked. It reports whether a row changed.
	CancelConfirmation(ctx context.Context, tx *gorm.DB, orderItemID uuid.UUID) (bool, error)
}

type stockLedger interface {
	Record(ctx context.Context, tx *gorm.DB, input ledger.RecordInput) (*models.StockLedgerEvent, error)
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
