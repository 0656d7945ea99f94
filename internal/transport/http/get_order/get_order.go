package getorder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/kirastore/backend/internal/service/models/order"
	"github.com/kirastore/backend/internal/service/services/ordersvc"
	"github.com/kirastore/backend/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	GetOrderByNumber(ctx context.Context, orderNumber string) (*order.Order, error)
}

type getOrderRequest struct {
	OrderID string `schema:"orderId,required"`
}

// GetOrder serves the customer-facing order lookup by order number.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &getOrderRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		httperr.BadRequest(w, "orderId query parameter is required")
		slog.Error("Error decoding order lookup query", "error", err)

		return
	}

	found, err := service.GetOrderByNumber(r.Context(), query.OrderID)
	if errors.Is(err, ordersvc.ErrOrderNotFound) {
		httperr.NotFound(w, "order not found")

		return
	}
	if err != nil {
		httperr.Internal(w, err)

		return
	}

	httperr.JSON(w, http.StatusOK, found)
}
