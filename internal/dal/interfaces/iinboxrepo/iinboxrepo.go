package iinboxrepo

import (
	"context"

	"github.com/kirastore/backend/internal/service/models/notification"
)

// IInboxRepository records processed gateway notifications for dedup.
type IInboxRepository interface {
	// Record inserts the notification and reports whether it was new.
	// A previously seen (payment_id, gateway_status) pair returns false.
	Record(ctx context.Context, n notification.ProcessedNotification) (bool, error)
}
