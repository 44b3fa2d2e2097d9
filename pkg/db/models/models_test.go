package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUserDisplayName(t *testing.T) {
	company := "Acme Wholesale"
	blank := "  "
	cases := []struct {
		user User
		want string
	}{
		{User{FirstName: "Ada", LastName: "Lovelace", CompanyName: &company}, "Acme Wholesale"},
		{User{FirstName: "Ada", LastName: "Lovelace", CompanyName: &blank}, "Ada Lovelace"},
		{User{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
	}
	for _, tc := range cases {
		if got := tc.user.DisplayName(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestCartItemLineTotalFallsBackToProductPrice(t *testing.T) {
	snapshot := decimal.RequireFromString("10.00")
	withSnapshot := CartItem{Quantity: 3, PriceAtTime: &snapshot, Product: &Product{Price: decimal.RequireFromString("12.00")}}
	if !withSnapshot.LineTotal().Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("unexpected total %s", withSnapshot.LineTotal())
	}

	fallback := CartItem{Quantity: 2, Product: &Product{Price: decimal.RequireFromString("4.50")}}
	if !fallback.LineTotal().Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("unexpected fallback total %s", fallback.LineTotal())
	}

	if !(CartItem{Quantity: 5}).LineTotal().IsZero() {
		t.Fatal("missing price and product should total zero")
	}
}

func TestOrderItemRecalculateTotal(t *testing.T) {
	item := OrderItem{Quantity: 4, PriceAtTime: decimal.RequireFromString("2.25")}
	item.RecalculateTotal()
	if !item.TotalPrice.Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("unexpected total %s", item.TotalPrice)
	}
}
