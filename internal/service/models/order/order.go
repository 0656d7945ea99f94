package order

import (
	"time"

	"github.com/kirastore/backend/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// Order is the central aggregate: a placed order with its customer snapshot,
// denormalized shipping address and frozen line items.
type Order struct {
	ID            int64                 `json:"id"`
	OrderNumber   string                `json:"orderNumber"`
	Customer      Customer              `json:"customer"`
	Shipping      Shipping              `json:"shipping"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	ShippingCost  decimal.Decimal       `json:"shippingCost"`
	Discount      decimal.Decimal       `json:"discount"`
	Total         decimal.Decimal       `json:"total"`
	Status        Status                `json:"status"`
	PaymentStatus PaymentStatus         `json:"paymentStatus"`
	PaymentMethod PaymentMethod         `json:"paymentMethod"`
	TrackingCode  string                `json:"trackingCode,omitempty"`
	ExpiresAt     *time.Time            `json:"expiresAt,omitempty"`
	PaidAt        *time.Time            `json:"paidAt,omitempty"`
	ShippedAt     *time.Time            `json:"shippedAt,omitempty"`
	DeliveredAt   *time.Time            `json:"deliveredAt,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	OrderItems    []orderitem.OrderItem `json:"orderItems"`
}

// Customer is the contact snapshot copied onto an order at intake.
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	DNI       string `json:"dni,omitempty"`
}

// Shipping is the chosen method plus a denormalized address snapshot.
// Later edits to the user's address book never alter a placed order.
type Shipping struct {
	Method     string `json:"method"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// TransferExpiration is how long a bank-transfer order stays payable.
const TransferExpiration = 48 * time.Hour
