package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/kirastore/backend/internal/dal/postgres"
	"github.com/kirastore/backend/internal/service/models/notification"
)

// InboxRepository records processed gateway notifications in Postgres.
type InboxRepository struct {
	conn postgres.Querier
}

// NewInboxRepository creates a new inbox repository.
func NewInboxRepository(conn postgres.Querier) *InboxRepository {
	return &InboxRepository{
		conn: conn,
	}
}

// Record inserts the notification, relying on the unique index over
// (payment_id, gateway_status) to detect replays. Returns false when the
// notification was already processed.
func (r *InboxRepository) Record(
	ctx context.Context,
	n notification.ProcessedNotification,
) (bool, error) {
	query, args, err := sq.Insert("payment_notifications").
		Columns(
			"payment_id",
			"gateway_status",
			"order_number",
			"received_at",
		).
		Values(
			n.PaymentID,
			n.GatewayStatus,
			n.OrderNumber,
			n.ReceivedAt,
		).
		Suffix("ON CONFLICT (payment_id, gateway_status) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build insert query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to record notification: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
