// Package ledger keeps the append-only history of stock counter changes.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

// Service defines operations that record stock movements.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.StockLedgerEvent, error)
	History(ctx context.Context, productID uuid.UUID) ([]models.StockLedgerEvent, error)
}

type service struct {
	repo Repository
}

// RecordInput captures the immutable data a stock movement requires.
type RecordInput struct {
	ProductID   uuid.UUID
	OrderItemID uuid.UUID
	ActorUserID uuid.UUID
	Type        enums.StockMovementType
	Quantity    int
	StockAfter  int
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

// Record appends a movement. When tx is set the row joins the caller's transaction.
func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.StockLedgerEvent, error) {
	if input.ProductID == uuid.Nil {
		return nil, fmt.Errorf("product id is required")
	}
	if input.OrderItemID == uuid.Nil {
		return nil, fmt.Errorf("order item id is required")
	}
	if input.Type != enums.StockMovementDeduction && input.Type != enums.StockMovementRestoration {
		return nil, fmt.Errorf("invalid stock movement type %q", input.Type)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	event := &models.StockLedgerEvent{
		ProductID:   input.ProductID,
		OrderItemID: input.OrderItemID,
		ActorUserID: input.ActorUserID,
		Type:        input.Type,
		Quantity:    input.Quantity,
		StockAfter:  input.StockAfter,
	}
	if err := s.repo.WithTx(tx).Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) History(ctx context.Context, productID uuid.UUID) ([]models.StockLedgerEvent, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id is required")
	}
	return s.repo.ListByProduct(ctx, productID)
}
