package notification

import "time"

// ProcessedNotification is the dedup record for one gateway webhook delivery.
// The (payment_id, gateway_status) pair is unique: replaying the same
// notification is detected and skipped without resending side effects.
type ProcessedNotification struct {
	ID            int64
	PaymentID     string
	GatewayStatus string
	OrderNumber   string
	ReceivedAt    time.Time
}
