package orderitem

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a frozen snapshot of a product at purchase time. Catalog edits
// after the order is placed never alter it.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	ImageURL  string          `json:"image,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
