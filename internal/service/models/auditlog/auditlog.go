package auditlog

import "time"

// Event types published to the audit queue.
const (
	EventOrderCreated         = "order.created"
	EventPaymentStatusChanged = "order.payment_status_changed"
)

// Event is one order lifecycle event for the back-office audit trail.
type Event struct {
	EventID       string    `json:"eventId"`
	Type          string    `json:"type"`
	OrderNumber   string    `json:"orderNumber"`
	Status        string    `json:"status,omitempty"`
	PaymentStatus string    `json:"paymentStatus,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}
