package checkoutsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirastore/backend/internal/dal/gateway"
)

// ErrGatewayUnauthorized marks credential failures distinctly from generic
// gateway errors, so operators can alert on expired tokens.
var ErrGatewayUnauthorized = errors.New("payment gateway unauthorized")

// ItemError reports which cart item failed validation.
type ItemError struct {
	Title  string
	Reason string
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("invalid item %q: %s", e.Title, e.Reason)
}

type gatewayClient interface {
	CreatePreference(
		ctx context.Context,
		items []gateway.PreferenceItem,
		payer gateway.Payer,
		orderNumber string,
	) (*gateway.Preference, error)
}

// CheckoutService opens gateway checkout sessions for placed orders.
type CheckoutService struct {
	gateway gatewayClient
}

// option is a function that configures the CheckoutService.
type option func(*CheckoutService)

// MustNewCheckoutService creates a new CheckoutService.
func MustNewCheckoutService(opts ...option) *CheckoutService {
	s := &CheckoutService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.gateway == nil {
		panic("checkoutsvc: gateway client is required")
	}

	return s
}

// WithGatewayClient sets the payment gateway client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithGatewayClient(client gatewayClient) option {
	return func(s *CheckoutService) {
		s.gateway = client
	}
}

// CreateCheckoutSession validates the cart and opens a checkout session
// that references the order number, so the settlement webhook can correlate
// back. A single non-positive unit price rejects the whole request before
// any gateway call.
func (s *CheckoutService) CreateCheckoutSession(
	ctx context.Context,
	items []gateway.PreferenceItem,
	payer gateway.Payer,
	orderNumber string,
) (*gateway.Preference, error) {
	if len(items) == 0 {
		return nil, &ItemError{Reason: "cart is empty"}
	}

	for _, item := range items {
		if !item.UnitPrice.IsPositive() {
			return nil, &ItemError{
				Title:  item.Title,
				Reason: "unit price must be greater than zero",
			}
		}
		if item.Quantity <= 0 {
			return nil, &ItemError{
				Title:  item.Title,
				Reason: "quantity must be greater than zero",
			}
		}
	}

	pref, err := s.gateway.CreatePreference(ctx, items, payer, orderNumber)
	if errors.Is(err, gateway.ErrUnauthorized) {
		return nil, ErrGatewayUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return pref, nil
}
