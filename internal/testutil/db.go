// Package testutil holds sqlite fixtures shared by repository tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

// OpenDB returns an isolated in-memory sqlite database with every model migrated.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(uuid.NewString(), "-", ""))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// MustUser inserts a user with the given role.
func MustUser(t *testing.T, conn *gorm.DB, role enums.Role, company string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     fmt.Sprintf("%s_%s@example.com", strings.ToLower(string(role)), uuid.NewString()[:8]),
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
	if company != "" {
		user.CompanyName = &company
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// MustProduct inserts an active product owned by supplier.
func MustProduct(t *testing.T, conn *gorm.DB, supplier *models.User, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		SupplierID:          supplier.ID,
		SupplierCompanyName: supplier.CompanyName,
		Name:                "Test Product",
		SKU:                 fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		Price:               decimal.RequireFromString(price),
		StockQuantity:       stock,
		Status:              enums.ProductStatusActive,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
