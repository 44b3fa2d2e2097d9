package models

// All lists every persisted model in dependency order, used by AutoMigrate in
// tests.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&ConfirmedOrder{},
		&DeliveryEntry{},
		&Route{},
		&RouteStop{},
		&StockLedgerEvent{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
