package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kirastore/backend/internal/service/models/payment"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// ErrUnauthorized is returned when the gateway rejects the configured
// credentials. Callers map it to a distinct error class so an operator
// dashboard can alert on expired tokens separately from generic failures.
var ErrUnauthorized = errors.New("gateway rejected credentials")

// Client talks to the payment gateway's REST API. It is constructed once at
// startup and injected where needed; there is no ambient global instance.
type Client struct {
	baseURL     string
	accessToken string
	storeURL    string
	httpClient  *http.Client
}

// MustNewClient creates a new gateway client from config and environment.
func MustNewClient() *Client {
	accessToken := os.Getenv("KIRA_GATEWAY_ACCESS_TOKEN")
	if accessToken == "" {
		panic("KIRA_GATEWAY_ACCESS_TOKEN is not set")
	}

	baseURL := viper.GetString("gateway.base_url")
	if baseURL == "" {
		panic("gateway.base_url is not set in config")
	}

	timeout := viper.GetDuration("gateway.timeout")
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		storeURL:    viper.GetString("gateway.store_url"),
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// NewClient creates a gateway client with explicit parameters, for tests.
func NewClient(baseURL, accessToken, storeURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		storeURL:    storeURL,
		httpClient:  httpClient,
	}
}

// PreferenceItem is one line of a checkout session.
type PreferenceItem struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	PictureURL string          `json:"picture_url,omitempty"`
}

// Payer identifies the buyer on a checkout session.
type Payer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type backURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	Payer             Payer            `json:"payer"`
	ExternalReference string           `json:"external_reference"`
	BackURLs          *backURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	NotificationURL   string           `json:"notification_url,omitempty"`
}

// Preference is a created checkout session.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CreatePreference opens a checkout session referencing the order number as
// external reference, so the later webhook can correlate back.
func (c *Client) CreatePreference(
	ctx context.Context,
	items []PreferenceItem,
	payer Payer,
	orderNumber string,
) (*Preference, error) {
	req := preferenceRequest{
		Items:             items,
		Payer:             payer,
		ExternalReference: orderNumber,
	}

	// Callback URLs pointing at a loopback host are meaningless to the
	// gateway, so they are omitted entirely in local development.
	if c.storeURL != "" && !isLoopback(c.storeURL) {
		req.BackURLs = &backURLs{
			Success: c.storeURL + "/checkout/success",
			Failure: c.storeURL + "/checkout/failure",
			Pending: c.storeURL + "/checkout/pending",
		}
		req.AutoReturn = "approved"
		req.NotificationURL = c.storeURL + "/api/payments/webhook"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference request: %w", err)
	}

	var pref Preference
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", bytes.NewReader(body), &pref); err != nil {
		return nil, err
	}

	return &pref, nil
}

// GetPayment fetches the authoritative payment record by identifier.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return nil
}

func isLoopback(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	host := u.Hostname()

	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
