// Package cart keeps the per-merchant ACTIVE cart and its line items.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/pkg/db"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/logger"
)

// Service exposes cart operations for merchants.
type Service interface {
	AddToCart(ctx context.Context, actor authz.Actor, productID uuid.UUID, quantity int) (*CartDTO, error)
	GetCart(ctx context.Context, actor authz.Actor) (*CartDTO, error)
	UpdateCartItem(ctx context.Context, actor authz.Actor, cartItemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveCartItem(ctx context.Context, actor authz.Actor, cartItemID uuid.UUID) error
	ClearCart(ctx context.Context, actor authz.Actor) error
	AbandonStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
	users    userLoader
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader, users userLoader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		users:    users,
		logg:     logg,
	}, nil
}

// AddToCart adds quantity of product to the merchant's ACTIVE cart, creating
// the cart when needed. Stock is not checked here; it is enforced when a
// supplier confirms the resulting order item.
func (s *service) AddToCart(ctx context.Context, actor authz.Actor, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != enums.ProductStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available for purchase")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := s.activeCart(ctx, repo, actor.UserID, true)
		if err != nil {
			return err
		}

		if err := mergeItem(ctx, repo, cart.ID, product, quantity); err != nil {
			return err
		}
		return repo.Touch(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logInfo(ctx, "cart item added", map[string]any{
		"user_id":    actor.UserID.String(),
		"product_id": product.ID.String(),
		"quantity":   quantity,
	})
	return s.GetCart(ctx, actor)
}

// mergeItem adds quantity to the product's line, creating it on first add. A
// concurrent first add that wins the insert is merged into instead.
func mergeItem(ctx context.Context, repo CartRepository, cartID uuid.UUID, product *models.Product, quantity int) error {
	merged, err := repo.IncrementItemQuantity(ctx, cartID, product.ID, quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if merged {
		return nil
	}

	price := product.Price
	err = repo.CreateItem(ctx, &models.CartItem{
		CartID:      cartID,
		ProductID:   product.ID,
		Quantity:    quantity,
		PriceAtTime: &price,
	})
	if err == nil {
		return nil
	}
	if !db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
	}
	merged, err = repo.IncrementItemQuantity(ctx, cartID, product.ID, quantity)
	switch {
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	case !merged:
		return pkgerrors.New(pkgerrors.CodeConflict, "cart item changed concurrently, retry")
	}
	return nil
}

// GetCart returns the ACTIVE cart projection or an empty one.
func (s *service) GetCart(ctx context.Context, actor authz.Actor) (*CartDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	cart, err := s.activeCart(ctx, s.repo, actor.UserID, false)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return emptyCart(user), nil
	}
	return toCartDTO(cart, user), nil
}

// UpdateCartItem sets the quantity of an owned cart item verbatim.
func (s *service) UpdateCartItem(ctx context.Context, actor authz.Actor, cartItemID uuid.UUID, quantity int) (*CartDTO, error) {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	item, cart, err := s.ownedItem(ctx, actor, cartItemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if err := s.repo.Touch(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
	}
	return s.GetCart(ctx, actor)
}

// RemoveCartItem deletes an owned cart item.
func (s *service) RemoveCartItem(ctx context.Context, actor authz.Actor, cartItemID uuid.UUID) error {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return err
	}
	item, _, err := s.ownedItem(ctx, actor, cartItemID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	s.logInfo(ctx, "cart item removed", map[string]any{
		"user_id":      actor.UserID.String(),
		"cart_item_id": item.ID.String(),
	})
	return nil
}

// ClearCart deletes every item of the ACTIVE cart and keeps the cart row.
func (s *service) ClearCart(ctx context.Context, actor authz.Actor) error {
	if err := authz.RequireRole(actor, enums.RoleMerchant); err != nil {
		return err
	}
	cart, err := s.activeCart(ctx, s.repo, actor.UserID, false)
	if err != nil || cart == nil {
		return err
	}
	if err := s.repo.DeleteItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// AbandonStale marks ACTIVE carts untouched for olderThan as ABANDONED.
func (s *service) AbandonStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "abandon age must be positive")
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	count, err := s.repo.AbandonIdleSince(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "abandon carts")
	}
	return count, nil
}

// activeCart loads the user's ACTIVE cart. With create unset a missing cart
// yields nil, nil.
func (s *service) activeCart(ctx context.Context, repo CartRepository, userID uuid.UUID, create bool) (*models.Cart, error) {
	cart, err := repo.FindActiveByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if !create {
		return nil, nil
	}
	created, err := repo.Create(ctx, &models.Cart{UserID: userID, Status: enums.CartStatusActive})
	if err == nil {
		return created, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	// Another request opened the cart first.
	cart, err = repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) ownedItem(ctx context.Context, actor authz.Actor, cartItemID uuid.UUID) (*models.CartItem, *models.Cart, error) {
	item, cart, err := s.repo.FindItemByID(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if err := authz.RequireOwner(actor, cart.UserID, "cart item"); err != nil {
		return nil, nil, err
	}
	return item, cart, nil
}

func (s *service) logInfo(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}
