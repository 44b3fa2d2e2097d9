package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merko/merko-backend/internal/testutil"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

func TestDecrementStockIsConditional(t *testing.T) {
	conn := testutil.OpenDB(t)
	supplier := testutil.MustUser(t, conn, enums.RoleSupplier, "Acme")
	product := testutil.MustProduct(t, conn, supplier, "9.99", 5)
	repo := NewRepository(conn)
	ctx := context.Background()

	remaining, ok, err := repo.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, remaining)

	_, ok, err = repo.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok, "decrement beyond available stock must be rejected")

	stock, err := repo.StockOf(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stock, "rejected decrement must not change stock")
}

func TestIncrementStock(t *testing.T) {
	conn := testutil.OpenDB(t)
	supplier := testutil.MustUser(t, conn, enums.RoleSupplier, "")
	product := testutil.MustProduct(t, conn, supplier, "1.00", 0)
	repo := NewRepository(conn)

	remaining, err := repo.IncrementStock(context.Background(), product.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)

	_, err = repo.IncrementStock(context.Background(), uuid.New(), 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewRepository(testutil.OpenDB(t))
	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestConcurrentDecrementsNeverOversell(t *testing.T) {
	conn := testutil.OpenDB(t)
	supplier := testutil.MustUser(t, conn, enums.RoleSupplier, "Acme")
	product := testutil.MustProduct(t, conn, supplier, "5.00", 5)
	repo := NewRepository(conn)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.DecrementStock(context.Background(), product.ID, 2)
			if err != nil {
				return
			}
			if ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	stock, err := repo.StockOf(context.Background(), product.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stock, 0)
	assert.Equal(t, 5-2*succeeded, stock)
	assert.LessOrEqual(t, succeeded, 2)
}
