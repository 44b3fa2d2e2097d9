package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/merko/merko-backend/pkg/enums"
)

func TestComputeTotals(t *testing.T) {
	lines := []Line{
		{UnitPrice: decimal.RequireFromString("10.00"), Quantity: 3},
		{UnitPrice: decimal.RequireFromString("2.50"), Quantity: 2},
	}

	cases := []struct {
		name   string
		method enums.ShippingMethod
		want   Totals
	}{
		{
			name:   "standard",
			method: enums.ShippingMethodStandard,
			want: Totals{
				Subtotal: decimal.RequireFromString("35.00"),
				Tax:      decimal.RequireFromString("2.80"),
				Shipping: decimal.Zero,
				Total:    decimal.RequireFromString("37.80"),
			},
		},
		{
			name:   "express",
			method: enums.ShippingMethodExpress,
			want: Totals{
				Subtotal: decimal.RequireFromString("35.00"),
				Tax:      decimal.RequireFromString("2.80"),
				Shipping: decimal.RequireFromString("25.00"),
				Total:    decimal.RequireFromString("62.80"),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(lines, tc.method)
			if !got.Subtotal.Equal(tc.want.Subtotal) || !got.Tax.Equal(tc.want.Tax) ||
				!got.Shipping.Equal(tc.want.Shipping) || !got.Total.Equal(tc.want.Total) {
				t.Fatalf("unexpected totals %+v", got)
			}
		})
	}
}

func TestComputeTotalsRoundsTax(t *testing.T) {
	got := ComputeTotals([]Line{{UnitPrice: decimal.RequireFromString("0.99"), Quantity: 1}}, enums.ShippingMethodStandard)
	if !got.Tax.Equal(decimal.RequireFromString("0.08")) {
		t.Fatalf("expected tax rounded to 0.08, got %s", got.Tax)
	}
	if !got.Total.Equal(decimal.RequireFromString("1.07")) {
		t.Fatalf("unexpected total %s", got.Total)
	}
}

func TestLastFour(t *testing.T) {
	cases := map[string]string{
		"4111 1111 1111 1234": "1234",
		"4111-1111-1111-9876": "9876",
		"123":                 "123",
		"1234":                "1234",
		"":                    "",
	}
	for in, want := range cases {
		if got := LastFour(in); got != want {
			t.Fatalf("LastFour(%q) = %q, want %q", in, got, want)
		}
	}
}
