package iauditrepo

import (
	"context"

	"github.com/kirastore/backend/internal/service/models/auditlog"
)

// IAuditRepository publishes order lifecycle events to the audit queue.
type IAuditRepository interface {
	Publish(ctx context.Context, events ...auditlog.Event) error
}
