package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/testutil"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

type postgresStockSuite struct {
	suite.Suite
	conn *gorm.DB
	repo Repository
}

func TestPostgresStock(t *testing.T) {
	if !testutil.IntegrationEnabled() {
		t.Skip("set MERKO_INTEGRATION=1 to run postgres integration tests")
	}
	suite.Run(t, &postgresStockSuite{})
}

func (s *postgresStockSuite) SetupSuite() {
	s.conn = testutil.OpenPostgres(s.T())
	s.repo = NewRepository(s.conn)
}

func (s *postgresStockSuite) TestParallelDecrementsStopAtZero() {
	supplier := testutil.MustUser(s.T(), s.conn, enums.RoleSupplier, "Acme")
	product := testutil.MustProduct(s.T(), s.conn, supplier, "3.50", 10)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.repo.DecrementStock(context.Background(), product.ID, 1)
			s.NoError(err)
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(10, granted)
	stock, err := s.repo.StockOf(context.Background(), product.ID)
	s.Require().NoError(err)
	s.Zero(stock)
}

func (s *postgresStockSuite) TestCheckConstraintRejectsNegativeStock() {
	supplier := testutil.MustUser(s.T(), s.conn, enums.RoleSupplier, "")
	product := testutil.MustProduct(s.T(), s.conn, supplier, "1.00", 1)

	err := s.conn.Model(&models.Product{}).
		Where("id = ?", product.ID).
		UpdateColumn("stock_quantity", -1).Error
	s.Error(err, "chk_products_stock_non_negative must reject negative stock")
}
