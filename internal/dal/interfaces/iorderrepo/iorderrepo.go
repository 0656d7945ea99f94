package iorderrepo

import (
	"context"

	"github.com/kirastore/backend/internal/service/models/order"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error)
	Patch(ctx context.Context, orderNumber string, patch *order.PatchOrderModel) error
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
