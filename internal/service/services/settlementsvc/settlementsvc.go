package settlementsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirastore/backend/internal/dal/interfaces/iauditrepo"
	"github.com/kirastore/backend/internal/dal/interfaces/iinboxrepo"
	"github.com/kirastore/backend/internal/dal/interfaces/iorderrepo"
	"github.com/kirastore/backend/internal/dal/mailer"
	"github.com/kirastore/backend/internal/dal/postgres"
	orderrepo "github.com/kirastore/backend/internal/dal/repositories/order/postgres"
	"github.com/kirastore/backend/internal/dal/uow"
	"github.com/kirastore/backend/internal/metrics"
	"github.com/kirastore/backend/internal/service/models/auditlog"
	"github.com/kirastore/backend/internal/service/models/notification"
	"github.com/kirastore/backend/internal/service/models/order"
	"github.com/kirastore/backend/internal/service/models/payment"
	"go.opentelemetry.io/otel"
)

type gatewayClient interface {
	GetPayment(ctx context.Context, paymentID string) (*payment.Payment, error)
}

type mailClient interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	OrderRepository() iorderrepo.IOrderRepository
	InboxRepository() iinboxrepo.IInboxRepository
}

// SettlementService reconciles gateway payment notifications into local
// order state. The notification payload is never trusted for status: the
// payment is always re-fetched from the gateway by identifier.
type SettlementService struct {
	pgClient  *postgres.Client
	gateway   gatewayClient
	mail      mailClient
	auditRepo iauditrepo.IAuditRepository
	metrics   *metrics.ServiceMetrics
	newUOW    func() unitOfWork
	now       func() time.Time
}

// option is a function that configures the SettlementService.
type option func(*SettlementService)

// MustNewSettlementService creates a new SettlementService.
func MustNewSettlementService(opts ...option) *SettlementService {
	s := &SettlementService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.gateway == nil {
		panic("settlementsvc: gateway client is required")
	}

	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *SettlementService) {
		s.pgClient = pgClient
	}
}

// WithGatewayClient sets the payment gateway client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithGatewayClient(client gatewayClient) option {
	return func(s *SettlementService) {
		s.gateway = client
	}
}

// WithMailClient sets the transactional mail client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMailClient(client mailClient) option {
	return func(s *SettlementService) {
		s.mail = client
	}
}

// WithAuditRepository sets the audit publisher.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuditRepository(repo iauditrepo.IAuditRepository) option {
	return func(s *SettlementService) {
		s.auditRepo = repo
	}
}

// WithMetrics sets the service metrics.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMetrics(m *metrics.ServiceMetrics) option {
	return func(s *SettlementService) {
		s.metrics = m
	}
}

// WithUnitOfWorkFactory overrides transaction construction, for tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *SettlementService) {
		s.newUOW = factory
	}
}

// WithClock overrides the time source, for tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *SettlementService) {
		s.now = now
	}
}

// ProcessNotification handles one gateway notification.
//
// Unknown payment references and already-processed notifications are skipped
// without error: the webhook transport acknowledges every delivery anyway,
// and surfacing an error here would only make the gateway retry what it
// cannot fix. A returned error means an internal fault worth logging.
func (s *SettlementService) ProcessNotification(ctx context.Context, paymentID string) error {
	ctx, span := otel.Tracer("settlement").Start(ctx, "SettlementService.ProcessNotification")
	defer span.End()

	p, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to fetch payment %s: %w", paymentID, err)
	}

	if p.ExternalReference == "" {
		slog.Warn("Notification without external reference, skipping", "payment_id", paymentID)
		s.countWebhook("skipped_no_reference")

		return nil
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = work.Rollback()
	}()

	ord, err := work.OrderRepository().GetByNumber(ctx, p.ExternalReference)
	if errors.Is(err, orderrepo.ErrNotFound) {
		slog.Warn("Notification for unknown order, skipping",
			"payment_id", paymentID,
			"order_number", p.ExternalReference,
		)
		s.countWebhook("skipped_unknown_order")

		return nil
	}
	if err != nil {
		return err
	}

	fresh, err := work.InboxRepository().Record(ctx, notification.ProcessedNotification{
		PaymentID:     paymentID,
		GatewayStatus: string(p.Status),
		OrderNumber:   ord.OrderNumber,
		ReceivedAt:    s.now(),
	})
	if err != nil {
		return err
	}
	if !fresh {
		slog.Info("Duplicate notification, skipping",
			"payment_id", paymentID,
			"gateway_status", p.Status,
		)
		s.countWebhook("duplicate")

		return work.Commit()
	}

	transition := payment.Resolve(p.Status)
	if !transition.ChangesPayment && !transition.ChangesStatus {
		slog.Info("Gateway status has no local effect",
			"payment_id", paymentID,
			"gateway_status", p.Status,
		)
		s.countWebhook("noop")

		return work.Commit()
	}

	patch := &order.PatchOrderModel{}
	if transition.ChangesPayment {
		patch.WithPaymentStatus(transition.PaymentStatus)
	}
	if transition.ChangesStatus {
		patch.WithStatus(transition.Status)
	}
	if transition.StampPaidAt {
		paidAt := s.now()
		if p.DateApproved != nil {
			paidAt = *p.DateApproved
		}
		patch.WithPaidAt(paidAt)
	}

	if err := work.OrderRepository().Patch(ctx, ord.OrderNumber, patch); err != nil {
		return err
	}

	if err := work.Commit(); err != nil {
		return err
	}
	s.countWebhook("applied")

	if transition.Notify {
		s.sendConfirmation(ctx, ord)
	}

	s.publishAudit(ctx, ord, transition)

	return nil
}

func (s *SettlementService) countWebhook(outcome string) {
	if s.metrics == nil {
		return
	}

	s.metrics.WebhooksProcessed.WithLabelValues(outcome).Inc()
}

func (s *SettlementService) sendConfirmation(ctx context.Context, ord *order.Order) {
	if s.mail == nil {
		return
	}

	msg := mailer.Message{
		To:      ord.Customer.Email,
		Subject: fmt.Sprintf("Tu pedido %s está confirmado", ord.OrderNumber),
		HTML: fmt.Sprintf(
			"<p>¡Hola %s! Recibimos tu pago de $%s. Tu pedido %s ya está en preparación.</p>",
			ord.Customer.FirstName,
			ord.Total.StringFixed(2),
			ord.OrderNumber,
		),
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		slog.Error("Failed to send confirmation email",
			"order_number", ord.OrderNumber,
			"error", err,
		)

		return
	}

	if s.metrics != nil {
		s.metrics.EmailsSent.Inc()
	}
}

func (s *SettlementService) publishAudit(ctx context.Context, ord *order.Order, t payment.Transition) {
	if s.auditRepo == nil {
		return
	}

	event := auditlog.Event{
		EventID:       uuid.NewString(),
		Type:          auditlog.EventPaymentStatusChanged,
		OrderNumber:   ord.OrderNumber,
		PaymentStatus: t.PaymentStatus.String(),
		OccurredAt:    s.now(),
	}
	if t.ChangesStatus {
		event.Status = t.Status.String()
	}

	if err := s.auditRepo.Publish(ctx, event); err != nil {
		slog.Error("Failed to publish audit event",
			"event_id", event.EventID,
			"order_number", ord.OrderNumber,
			"error", err,
		)
	}
}
