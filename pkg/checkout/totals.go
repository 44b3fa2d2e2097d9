// Package checkout holds the pure pricing rules applied when a cart becomes an order.
package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/merko/merko-backend/pkg/enums"
)

var (
	// TaxRate is applied to the merchandise subtotal.
	TaxRate = decimal.RequireFromString("0.08")
	// ExpressShippingCost is the flat fee for EXPRESS orders; STANDARD ships free.
	ExpressShippingCost = decimal.RequireFromString("25.00")
)

// Line is one priced cart line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total is the line amount.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the money breakdown stored on an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals sums the lines, applies tax and shipping. Tax is rounded to
// cents before it is added so the stored parts always add up to the total.
func ComputeTotals(lines []Line, method enums.ShippingMethod) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total())
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	shipping := ShippingCost(method)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// ShippingCost returns the fee for the shipping method.
func ShippingCost(method enums.ShippingMethod) decimal.Decimal {
	if method == enums.ShippingMethodExpress {
		return ExpressShippingCost
	}
	return decimal.Zero
}

// LastFour keeps the trailing four characters of a card number, or the whole
// value when it is four characters or fewer. Spaces and dashes are ignored.
func LastFour(cardNumber string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(cardNumber))
	if len(cleaned) <= 4 {
		return cleaned
	}
	return cleaned[len(cleaned)-4:]
}
