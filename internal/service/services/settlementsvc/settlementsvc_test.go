package settlementsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirastore/backend/internal/dal/interfaces/iinboxrepo"
	"github.com/kirastore/backend/internal/dal/interfaces/iorderrepo"
	"github.com/kirastore/backend/internal/dal/mailer"
	orderrepo "github.com/kirastore/backend/internal/dal/repositories/order/postgres"
	"github.com/kirastore/backend/internal/service/models/notification"
	"github.com/kirastore/backend/internal/service/models/order"
	"github.com/kirastore/backend/internal/service/models/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	byNumber map[string]*order.Order
}

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	stored := o
	r.byNumber[o.OrderNumber] = &stored

	return o, nil
}

func (r *fakeOrderRepo) GetByNumber(_ context.Context, orderNumber string) (*order.Order, error) {
	o, ok := r.byNumber[orderNumber]
	if !ok {
		return nil, orderrepo.ErrNotFound
	}
	copied := *o

	return &copied, nil
}

func (r *fakeOrderRepo) Patch(_ context.Context, orderNumber string, patch *order.PatchOrderModel) error {
	o, ok := r.byNumber[orderNumber]
	if !ok {
		return orderrepo.ErrNotFound
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		o.PaymentStatus = *patch.PaymentStatus
	}
	if patch.PaidAt != nil {
		o.PaidAt = patch.PaidAt
	}

	return nil
}

func (r *fakeOrderRepo) Query(_ context.Context, _ *order.QueryOrdersModel) ([]order.Order, error) {
	return nil, nil
}

type fakeInboxRepo struct {
	seen map[string]bool
}

func (r *fakeInboxRepo) Record(_ context.Context, n notification.ProcessedNotification) (bool, error) {
	key := n.PaymentID + "|" + n.GatewayStatus
	if r.seen[key] {
		return false, nil
	}
	r.seen[key] = true

	return true, nil
}

type fakeUOW struct {
	orders *fakeOrderRepo
	inbox  *fakeInboxRepo
}

func (u *fakeUOW) Begin(context.Context) error { return nil }
func (u *fakeUOW) Commit() error               { return nil }
func (u *fakeUOW) Rollback() error             { return nil }

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return u.orders
}

func (u *fakeUOW) InboxRepository() iinboxrepo.IInboxRepository {
	return u.inbox
}

type fakeGateway struct {
	payments map[string]*payment.Payment
	err      error
}

func (g *fakeGateway) GetPayment(_ context.Context, paymentID string) (*payment.Payment, error) {
	if g.err != nil {
		return nil, g.err
	}
	p, ok := g.payments[paymentID]
	if !ok {
		return nil, errors.New("payment not found")
	}

	return p, nil
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)

	return nil
}

type fixture struct {
	svc     *SettlementService
	orders  *fakeOrderRepo
	gateway *fakeGateway
	mail    *fakeMailer
}

func newFixture(now time.Time) *fixture {
	orders := &fakeOrderRepo{byNumber: make(map[string]*order.Order)}
	inbox := &fakeInboxRepo{seen: make(map[string]bool)}
	gw := &fakeGateway{payments: make(map[string]*payment.Payment)}
	mail := &fakeMailer{}
	u := &fakeUOW{orders: orders, inbox: inbox}

	svc := MustNewSettlementService(
		WithGatewayClient(gw),
		WithMailClient(mail),
		WithUnitOfWorkFactory(func() unitOfWork { return u }),
		WithClock(func() time.Time { return now }),
	)

	return &fixture{svc: svc, orders: orders, gateway: gw, mail: mail}
}

func (f *fixture) seedOrder(number string) {
	f.orders.byNumber[number] = &order.Order{
		OrderNumber:   number,
		Customer:      order.Customer{FirstName: "Mer", Email: "mer@example.com"},
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentPending,
		PaymentMethod: order.MethodGateway,
	}
}

func (f *fixture) seedPayment(id, orderNumber string, status payment.GatewayStatus) {
	f.gateway.payments[id] = &payment.Payment{
		ID:                id,
		Status:            status,
		ExternalReference: orderNumber,
	}
}

func TestApprovedNotificationConfirmsOrder(t *testing.T) {
	now := time.Date(2025, 8, 1, 15, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedOrder("KIRA-TEST1-MP")
	f.seedPayment("pay-1", "KIRA-TEST1-MP", payment.GatewayApproved)

	err := f.svc.ProcessNotification(context.Background(), "pay-1")
	require.NoError(t, err)

	stored := f.orders.byNumber["KIRA-TEST1-MP"]
	assert.Equal(t, order.PaymentApproved, stored.PaymentStatus)
	assert.Equal(t, order.StatusConfirmed, stored.Status)
	require.NotNil(t, stored.PaidAt)
	assert.Equal(t, now, *stored.PaidAt)

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "mer@example.com", f.mail.sent[0].To)
}

func TestDuplicateApprovedNotificationSendsNoSecondEmail(t *testing.T) {
	f := newFixture(time.Now())
	f.seedOrder("KIRA-TEST2-MP")
	f.seedPayment("pay-2", "KIRA-TEST2-MP", payment.GatewayApproved)

	require.NoError(t, f.svc.ProcessNotification(context.Background(), "pay-2"))
	require.NoError(t, f.svc.ProcessNotification(context.Background(), "pay-2"))

	assert.Len(t, f.mail.sent, 1)
}

func TestUnknownOrderIsSkippedWithoutError(t *testing.T) {
	f := newFixture(time.Now())
	f.seedPayment("pay-3", "KIRA-GHOST-MP", payment.GatewayApproved)

	err := f.svc.ProcessNotification(context.Background(), "pay-3")

	assert.NoError(t, err)
	assert.Empty(t, f.mail.sent)
	assert.Empty(t, f.orders.byNumber)
}

func TestRejectedLeavesFulfillmentStatusUntouched(t *testing.T) {
	f := newFixture(time.Now())
	f.seedOrder("KIRA-TEST4-MP")
	f.seedPayment("pay-4", "KIRA-TEST4-MP", payment.GatewayRejected)

	require.NoError(t, f.svc.ProcessNotification(context.Background(), "pay-4"))

	stored := f.orders.byNumber["KIRA-TEST4-MP"]
	assert.Equal(t, order.PaymentRejected, stored.PaymentStatus)
	assert.Equal(t, order.StatusPending, stored.Status)
	assert.Nil(t, stored.PaidAt)
	assert.Empty(t, f.mail.sent)
}

func TestRefundedMarksBothAxes(t *testing.T) {
	f := newFixture(time.Now())
	f.seedOrder("KIRA-TEST5-MP")
	f.seedPayment("pay-5", "KIRA-TEST5-MP", payment.GatewayRefunded)

	require.NoError(t, f.svc.ProcessNotification(context.Background(), "pay-5"))

	stored := f.orders.byNumber["KIRA-TEST5-MP"]
	assert.Equal(t, order.PaymentRefunded, stored.PaymentStatus)
	assert.Equal(t, order.StatusRefunded, stored.Status)
	assert.Empty(t, f.mail.sent)
}

func TestUnrecognizedGatewayStatusChangesNothing(t *testing.T) {
	f := newFixture(time.Now())
	f.seedOrder("KIRA-TEST6-MP")
	f.seedPayment("pay-6", "KIRA-TEST6-MP", payment.GatewayStatus("in_mediation"))

	require.NoError(t, f.svc.ProcessNotification(context.Background(), "pay-6"))

	stored := f.orders.byNumber["KIRA-TEST6-MP"]
	assert.Equal(t, order.PaymentPending, stored.PaymentStatus)
	assert.Equal(t, order.StatusPending, stored.Status)
	assert.Empty(t, f.mail.sent)
}

func TestGatewayFetchFailureSurfacesError(t *testing.T) {
	f := newFixture(time.Now())
	f.gateway.err = errors.New("gateway down")

	err := f.svc.ProcessNotification(context.Background(), "pay-7")

	assert.Error(t, err)
}

func TestPaidAtPrefersGatewayApprovalTime(t *testing.T) {
	now := time.Date(2025, 8, 1, 15, 0, 0, 0, time.UTC)
	approvedAt := now.Add(-2 * time.Minute)
	f := newFixture(now)
	f.seedOrder("KIRA-TEST8-MP")
	f.gateway.payments["pay-8"] = &payment.Payment{
		ID:                "pay-8",
		Status:            payment.GatewayApproved,
		ExternalReference: "KIRA-TEST8-MP",
		DateApproved:      &approvedAt,
	}

	require.NoError(t, f.svc.ProcessNotification(context.Background(), "pay-8"))

	stored := f.orders.byNumber["KIRA-TEST8-MP"]
	require.NotNil(t, stored.PaidAt)
	assert.Equal(t, approvedAt, *stored.PaidAt)
}

func TestMailFailureDoesNotFailProcessing(t *testing.T) {
	f := newFixture(time.Now())
	f.seedOrder("KIRA-TEST9-MP")
	f.seedPayment("pay-9", "KIRA-TEST9-MP", payment.GatewayApproved)
	f.mail.err = errors.New("smtp refused")

	err := f.svc.ProcessNotification(context.Background(), "pay-9")

	assert.NoError(t, err)
	assert.Equal(t, order.PaymentApproved, f.orders.byNumber["KIRA-TEST9-MP"].PaymentStatus)
}
