package createorder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kirastore/backend/internal/service/models/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	gotOrder order.Order
	calls    int
	err      error
}

func (s *fakeService) CreateOrder(_ context.Context, o order.Order) (order.Order, error) {
	s.calls++
	s.gotOrder = o
	if s.err != nil {
		return order.Order{}, s.err
	}

	o.OrderNumber = order.NewNumber(time.Now(), o.PaymentMethod)
	if o.PaymentMethod == order.MethodTransfer {
		expires := time.Now().Add(order.TransferExpiration)
		o.ExpiresAt = &expires
	}

	return o, nil
}

func validBody() string {
	return `{
		"customer": {
			"firstName": "Mer",
			"lastName": "García",
			"email": "mer@example.com",
			"phone": "+5491122334455",
			"dni": "30123456"
		},
		"shipping": {
			"method": "correo",
			"address": {
				"street": "Av. Corrientes 1234",
				"city": "Buenos Aires",
				"province": "CABA",
				"postalCode": "C1043"
			}
		},
		"items": [
			{"productId": 1, "name": "Collar artesanal", "price": "1500.50", "quantity": 2}
		],
		"subtotal": "3001.00",
		"shippingCost": "500.00",
		"discount": "0",
		"total": "3501.00"
	}`
}

type validationResponse struct {
	Error   string `json:"error"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func fields(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()

	var resp validationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var out []string
	for _, d := range resp.Details {
		out = append(out, d.Field)
	}

	return out
}

func TestTransferOrderCreated(t *testing.T) {
	svc := &fakeService{}
	req := httptest.NewRequest(http.MethodPost, "/api/orders/transfer", strings.NewReader(validBody()))
	rec := httptest.NewRecorder()

	CreateTransferOrder(rec, req, svc)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Regexp(t, regexp.MustCompile(`^KIRA-[0-9A-Z]+-TF$`), resp.OrderID)
	assert.NotEmpty(t, resp.ExpiresAt)

	assert.Equal(t, order.MethodTransfer, svc.gotOrder.PaymentMethod)
	assert.True(t, svc.gotOrder.Total.Equal(decimal.RequireFromString("3501.00")))
	require.Len(t, svc.gotOrder.OrderItems, 1)
	assert.Equal(t, "Collar artesanal", svc.gotOrder.OrderItems[0].Name)
}

func TestGatewayOrderHasNoExpiry(t *testing.T) {
	svc := &fakeService{}
	req := httptest.NewRequest(http.MethodPost, "/api/orders/checkout", strings.NewReader(validBody()))
	rec := httptest.NewRecorder()

	CreateGatewayOrder(rec, req, svc)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, regexp.MustCompile(`^KIRA-[0-9A-Z]+-MP$`), resp.OrderID)
	assert.Empty(t, resp.ExpiresAt)
}

func TestValidationListsEveryFailingField(t *testing.T) {
	svc := &fakeService{}
	body := `{
		"customer": {"firstName": "", "lastName": "", "email": "nope", "phone": ""},
		"shipping": {"method": ""},
		"items": [],
		"subtotal": "0",
		"shippingCost": "0",
		"discount": "0",
		"total": "0"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders/transfer", strings.NewReader(body))
	rec := httptest.NewRecorder()

	CreateTransferOrder(rec, req, svc)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls)

	got := fields(t, rec)
	assert.ElementsMatch(t, []string{
		"customer.firstName",
		"customer.lastName",
		"customer.email",
		"customer.phone",
		"shipping.method",
		"items",
		"total",
	}, got)
}

func TestItemValidationNamesIndexedField(t *testing.T) {
	svc := &fakeService{}
	body := strings.Replace(validBody(), `"price": "1500.50"`, `"price": "0"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/orders/transfer", strings.NewReader(body))
	rec := httptest.NewRecorder()

	CreateTransferOrder(rec, req, svc)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(t, rec), "items[0].price")
}

func TestMalformedBodyRejected(t *testing.T) {
	svc := &fakeService{}
	req := httptest.NewRequest(http.MethodPost, "/api/orders/transfer", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()

	CreateTransferOrder(rec, req, svc)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestServiceFailureHidesDetail(t *testing.T) {
	svc := &fakeService{err: errors.New("pq: connection refused")}
	req := httptest.NewRequest(http.MethodPost, "/api/orders/transfer", strings.NewReader(validBody()))
	rec := httptest.NewRecorder()

	CreateTransferOrder(rec, req, svc)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
