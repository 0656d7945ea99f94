package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirastore/backend/internal/dal/gateway"
	"github.com/kirastore/backend/internal/service/services/checkoutsvc"
	"github.com/kirastore/backend/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	CreateCheckoutSession(
		ctx context.Context,
		items []gateway.PreferenceItem,
		payer gateway.Payer,
		orderNumber string,
	) (*gateway.Preference, error)
}

type checkoutRequest struct {
	Items   []gateway.PreferenceItem `json:"items"`
	Payer   gateway.Payer            `json:"payer"`
	OrderID string                   `json:"orderId"`
}

// CreateCheckoutSession opens a gateway checkout session for a placed order.
func CreateCheckoutSession(w http.ResponseWriter, r *http.Request, service service) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "failed to decode request body")
		slog.Error("Error decoding checkout request", "error", err)

		return
	}

	if strings.TrimSpace(req.OrderID) == "" {
		httperr.BadRequest(w, "orderId is required")

		return
	}

	pref, err := service.CreateCheckoutSession(r.Context(), req.Items, req.Payer, req.OrderID)

	var itemErr *checkoutsvc.ItemError
	switch {
	case errors.As(err, &itemErr):
		httperr.BadRequest(w, itemErr.Error())
	case errors.Is(err, checkoutsvc.ErrGatewayUnauthorized):
		httperr.Unauthorized(w, "payment gateway rejected credentials")
		slog.Error("Gateway credentials rejected", "order_id", req.OrderID)
	case err != nil:
		httperr.Internal(w, err)
	default:
		httperr.JSON(w, http.StatusOK, pref)
	}
}
