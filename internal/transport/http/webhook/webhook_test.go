package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	gotPaymentID string
	calls        int
	err          error
}

func (s *fakeService) ProcessNotification(_ context.Context, paymentID string) error {
	s.calls++
	s.gotPaymentID = paymentID

	return s.err
}

func post(t *testing.T, svc *fakeService, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	HandleNotification(rec, req, svc)

	return rec
}

func TestPaymentNotificationForwardedToService(t *testing.T) {
	svc := &fakeService{}

	rec := post(t, svc, `{"type":"payment","data":{"id":"pay-42"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Equal(t, "pay-42", svc.gotPaymentID)
}

func TestMalformedBodyStillAcknowledged(t *testing.T) {
	svc := &fakeService{}

	rec := post(t, svc, `{not json`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Zero(t, svc.calls)
}

func TestNonPaymentTypeIgnored(t *testing.T) {
	svc := &fakeService{}

	rec := post(t, svc, `{"type":"merchant_order","data":{"id":"mo-1"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestMissingPaymentIDIgnored(t *testing.T) {
	svc := &fakeService{}

	rec := post(t, svc, `{"type":"payment","data":{}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestServiceFailureStillAcknowledged(t *testing.T) {
	svc := &fakeService{err: errors.New("gateway unreachable")}

	rec := post(t, svc, `{"type":"payment","data":{"id":"pay-43"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Equal(t, 1, svc.calls)
}
