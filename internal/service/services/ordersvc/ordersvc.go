package ordersvc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirastore/backend/internal/dal/interfaces/iauditrepo"
	"github.com/kirastore/backend/internal/dal/interfaces/iorderitemrepo"
	"github.com/kirastore/backend/internal/dal/interfaces/iorderrepo"
	"github.com/kirastore/backend/internal/dal/postgres"
	orderrepo "github.com/kirastore/backend/internal/dal/repositories/order/postgres"
	"github.com/kirastore/backend/internal/dal/uow"
	"github.com/kirastore/backend/internal/metrics"
	"github.com/kirastore/backend/internal/service/models/auditlog"
	"github.com/kirastore/backend/internal/service/models/order"
	"github.com/kirastore/backend/internal/service/models/orderitem"
)

// ErrOrderNotFound is returned when no order matches the given number.
var ErrOrderNotFound = errors.New("order not found")

// OrderService creates orders and serves order lookups.
type OrderService struct {
	pgClient  *postgres.Client
	auditRepo iauditrepo.IAuditRepository
	metrics   *metrics.ServiceMetrics
	newUOW    func() unitOfWork
	now       func() time.Time
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithAuditRepository sets the audit publisher for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuditRepository(repo iauditrepo.IAuditRepository) option {
	return func(s *OrderService) {
		s.auditRepo = repo
	}
}

// WithMetrics sets the service metrics for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMetrics(m *metrics.ServiceMetrics) option {
	return func(s *OrderService) {
		s.metrics = m
	}
}

// WithUnitOfWorkFactory overrides transaction construction, for tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// WithClock overrides the time source, for tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// CreateOrder persists a new order with its items in one transaction.
//
// The order number is minted from the current millisecond timestamp plus the
// channel suffix; transfer orders additionally get a 48 hour payment
// expiration. Monetary totals are taken from the caller as-is: there is no
// recomputation against catalog prices here.
func (s *OrderService) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	now := s.now()

	o.OrderNumber = order.NewNumber(now, o.PaymentMethod)
	o.Status = order.StatusPending
	o.PaymentStatus = order.PaymentPending
	o.CreatedAt = now
	o.UpdatedAt = now

	if o.PaymentMethod == order.MethodTransfer {
		expiresAt := now.Add(order.TransferExpiration)
		o.ExpiresAt = &expiresAt
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer func() {
		_ = work.Rollback()
	}()

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return order.Order{}, err
	}

	items := make([]orderitem.OrderItem, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		item.OrderID = inserted.ID
		item.CreatedAt = now
		items = append(items, item)
	}

	inserted.OrderItems, err = work.OrderItemRepository().BulkInsert(ctx, items)
	if err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(); err != nil {
		return order.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.WithLabelValues(inserted.PaymentMethod.String()).Inc()
	}

	s.publishAudit(ctx, auditlog.Event{
		EventID:       uuid.NewString(),
		Type:          auditlog.EventOrderCreated,
		OrderNumber:   inserted.OrderNumber,
		Status:        inserted.Status.String(),
		PaymentStatus: inserted.PaymentStatus.String(),
		OccurredAt:    now,
	})

	return inserted, nil
}

// GetOrderByNumber retrieves one order with its items.
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	work := s.newUOW()

	found, err := work.OrderRepository().GetByNumber(ctx, orderNumber)
	if errors.Is(err, orderrepo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := work.OrderItemRepository().Query(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: []int64{found.ID},
	})
	if err != nil {
		return nil, err
	}
	found.OrderItems = items

	return found, nil
}

// GetOrders retrieves orders with their items based on filter.
func (s *OrderService) GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	itemQuery := &orderitem.QueryOrderItemsModel{}
	for _, o := range orders {
		itemQuery.OrderIds = append(itemQuery.OrderIds, o.ID)
	}
	items, err := work.OrderItemRepository().Query(ctx, itemQuery)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, nil
}

func (s *OrderService) publishAudit(ctx context.Context, event auditlog.Event) {
	if s.auditRepo == nil {
		return
	}

	if err := s.auditRepo.Publish(ctx, event); err != nil {
		slog.Error("Failed to publish audit event",
			"event_id", event.EventID,
			"order_number", event.OrderNumber,
			"error", err,
		)
	}
}
