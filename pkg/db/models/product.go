package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/pkg/enums"
)

// Product is a catalog entry owned by a supplier. StockQuantity is the only
// counter mutated by the order lifecycle.
type Product struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID          uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null;index"`
	SupplierCompanyName *string             `gorm:"column:supplier_company_name"`
	Name                string              `gorm:"column:product_name;not null"`
	SKU                 string              `gorm:"column:sku;uniqueIndex"`
	Brand               *string             `gorm:"column:brand"`
	Category            *string             `gorm:"column:category"`
	Price               decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity       int                 `gorm:"column:stock_quantity;not null;default:0;check:chk_products_stock_non_negative,stock_quantity >= 0"`
	Status              enums.ProductStatus `gorm:"column:status;not null"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
