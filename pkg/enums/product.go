package enums

// ProductStatus controls whether a product can be added to carts.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "Active"
	ProductStatusInactive ProductStatus = "Inactive"
)

// String implements fmt.Stringer.
func (p ProductStatus) String() string {
	return string(p)
}

// StockMovementType labels a stock ledger row.
type StockMovementType string

const (
	StockMovementDeduction   StockMovementType = "deduction"
	StockMovementRestoration StockMovementType = "restoration"
)

// String implements fmt.Stringer.
func (s StockMovementType) String() string {
	return string(s)
}
