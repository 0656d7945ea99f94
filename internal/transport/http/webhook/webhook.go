package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kirastore/backend/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	ProcessNotification(ctx context.Context, paymentID string) error
}

type notificationRequest struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type ackResponse struct {
	Received bool `json:"received"`
}

// HandleNotification receives gateway payment notifications.
//
// The gateway retries any non-2xx response indefinitely, so this handler
// acknowledges every delivery: malformed bodies, unknown references and
// internal failures are logged and still answered with 200.
func HandleNotification(w http.ResponseWriter, r *http.Request, service service) {
	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Error decoding webhook body", "error", err)
		httperr.JSON(w, http.StatusOK, ackResponse{Received: true})

		return
	}

	if req.Type != "payment" || req.Data.ID == "" {
		slog.Info("Ignoring non-payment notification", "type", req.Type)
		httperr.JSON(w, http.StatusOK, ackResponse{Received: true})

		return
	}

	if err := service.ProcessNotification(r.Context(), req.Data.ID); err != nil {
		slog.Error("Error processing payment notification",
			"payment_id", req.Data.ID,
			"error", err,
		)
	}

	httperr.JSON(w, http.StatusOK, ackResponse{Received: true})
}
