package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrUnauthorized is returned when the email provider rejects the API key.
var ErrUnauthorized = errors.New("mail provider rejected credentials")

// Message is one transactional email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Client sends transactional email through the provider's HTTP API. Like the
// gateway client, it is constructed at startup and injected, never global.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
}

// MustNewClient creates a new mail client from config and environment.
func MustNewClient() *Client {
	apiKey := os.Getenv("KIRA_MAIL_API_KEY")
	if apiKey == "" {
		panic("KIRA_MAIL_API_KEY is not set")
	}

	baseURL := viper.GetString("mailer.base_url")
	if baseURL == "" {
		panic("mailer.base_url is not set in config")
	}

	from := viper.GetString("mailer.from")
	if from == "" {
		panic("mailer.from is not set in config")
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		from:       from,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClient creates a mail client with explicit parameters, for tests.
func NewClient(baseURL, apiKey, from string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		from:       from,
		httpClient: httpClient,
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send delivers one message. There is no retry; the caller decides what a
// failed send means.
func (c *Client) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return fmt.Errorf("mail provider returned %d: %s", resp.StatusCode, string(raw))
	}

	return nil
}
