package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendStampsConfiguredSender(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "Kira Store <pedidos@kirastore.example>", nil)

	err := client.Send(context.Background(), Message{
		To:      "mer@example.com",
		Subject: "Tu pedido está confirmado",
		HTML:    "<p>Gracias por tu compra.</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "Kira Store <pedidos@kirastore.example>", got.From)
	assert.Equal(t, "mer@example.com", got.To)
}

func TestSendMapsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "revoked-key", "pedidos@kirastore.example", nil)

	err := client.Send(context.Background(), Message{To: "mer@example.com"})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSendSurfacesProviderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "pedidos@kirastore.example", nil)

	err := client.Send(context.Background(), Message{To: "mer@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
