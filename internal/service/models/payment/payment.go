package payment

import (
	"time"

	"github.com/kirastore/backend/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// GatewayStatus is a payment status as reported by the gateway's API.
type GatewayStatus string

const (
	GatewayApproved  GatewayStatus = "approved"
	GatewayPending   GatewayStatus = "pending"
	GatewayRejected  GatewayStatus = "rejected"
	GatewayRefunded  GatewayStatus = "refunded"
	GatewayCancelled GatewayStatus = "cancelled"
)

// Payment is the authoritative payment record fetched from the gateway by the
// notification's payment identifier. The notification body itself is never
// trusted for status.
type Payment struct {
	ID                string          `json:"id"`
	Status            GatewayStatus   `json:"status"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	PayerEmail        string          `json:"payer_email,omitempty"`
	DateApproved      *time.Time      `json:"date_approved,omitempty"`
}

// Transition is the local effect of one gateway status.
type Transition struct {
	PaymentStatus  order.PaymentStatus
	Status         order.Status
	ChangesPayment bool
	ChangesStatus  bool
	Notify         bool
	StampPaidAt    bool
}

// Resolve maps a gateway status to the local order transition. Unrecognized
// statuses change nothing.
func Resolve(s GatewayStatus) Transition {
	switch s {
	case GatewayApproved:
		return Transition{
			PaymentStatus:  order.PaymentApproved,
			Status:         order.StatusConfirmed,
			ChangesPayment: true,
			ChangesStatus:  true,
			Notify:         true,
			StampPaidAt:    true,
		}
	case GatewayPending:
		return Transition{
			PaymentStatus:  order.PaymentPending,
			ChangesPayment: true,
		}
	case GatewayRejected:
		return Transition{
			PaymentStatus:  order.PaymentRejected,
			ChangesPayment: true,
		}
	case GatewayRefunded:
		return Transition{
			PaymentStatus:  order.PaymentRefunded,
			Status:         order.StatusRefunded,
			ChangesPayment: true,
			ChangesStatus:  true,
		}
	case GatewayCancelled:
		return Transition{
			PaymentStatus:  order.PaymentCancelled,
			Status:         order.StatusCancelled,
			ChangesPayment: true,
			ChangesStatus:  true,
		}
	default:
		return Transition{}
	}
}
