package checkout

// ShippingInfo is the delivery address snapshot copied onto the order.
type ShippingInfo struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	CompanyName *string `json:"companyName,omitempty"`
	Address     string  `json:"address" validate:"notblank"`
	Apartment   *string `json:"apartment,omitempty"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	ZipCode     string  `json:"zipCode"`
	Phone       *string `json:"phone,omitempty"`
}

// PaymentInfo carries the payment method and its method-specific fields.
// The card number and CVV are never persisted.
type PaymentInfo struct {
	Method              string `json:"paymentMethod" validate:"notblank"`
	CardNumber          string `json:"cardNumber,omitempty"`
	CardHolderName      string `json:"cardHolderName,omitempty"`
	ExpirationDate      string `json:"expirationDate,omitempty"`
	CVV                 string `json:"cvv,omitempty"`
	PurchaseOrderNumber string `json:"purchaseOrderNumber,omitempty"`
}

// Request is the checkout payload.
type Request struct {
	ShippingInfo   ShippingInfo `json:"shippingInfo" validate:"required"`
	PaymentInfo    PaymentInfo  `json:"paymentInfo" validate:"required"`
	ShippingMethod string       `json:"shippingMethod" validate:"notblank"`
}
