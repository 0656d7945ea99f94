package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/kirastore/backend/internal/service/models/order"
	"github.com/kirastore/backend/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}

type listOrdersRequest struct {
	Statuses        []string `schema:"status"`
	PaymentStatuses []string `schema:"paymentStatus"`
	Email           string   `schema:"email"`
	Limit           int      `schema:"limit"`
	Offset          int      `schema:"offset"`
}

func (req *listOrdersRequest) toFilter() (*order.QueryOrdersModel, []httperr.FieldError) {
	var errs []httperr.FieldError
	filter := &order.QueryOrdersModel{
		CustomerEmail: req.Email,
		Limit:         req.Limit,
		Offset:        req.Offset,
	}

	for _, raw := range req.Statuses {
		status, err := order.ParseStatus(raw)
		if err != nil {
			errs = append(errs, httperr.FieldError{Field: "status", Message: "unknown status " + raw})

			continue
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	for _, raw := range req.PaymentStatuses {
		status, err := order.ParsePaymentStatus(raw)
		if err != nil {
			errs = append(errs, httperr.FieldError{Field: "paymentStatus", Message: "unknown payment status " + raw})

			continue
		}
		filter.PaymentStatuses = append(filter.PaymentStatuses, status)
	}

	if req.Limit < 0 {
		errs = append(errs, httperr.FieldError{Field: "limit", Message: "must not be negative"})
	}
	if req.Offset < 0 {
		errs = append(errs, httperr.FieldError{Field: "offset", Message: "must not be negative"})
	}

	return filter, errs
}

// ListOrders serves the back-office order listing with optional filters.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &listOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		httperr.BadRequest(w, "failed to decode query parameters")
		slog.Error("Error decoding list orders query", "error", err)

		return
	}

	filter, errs := query.toFilter()
	if len(errs) > 0 {
		httperr.Validation(w, errs)

		return
	}

	orders, err := service.GetOrders(r.Context(), filter)
	if err != nil {
		httperr.Internal(w, err)

		return
	}

	httperr.JSON(w, http.StatusOK, orders)
}
