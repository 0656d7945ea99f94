package createorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirastore/backend/internal/service/models/order"
	"github.com/kirastore/backend/internal/service/models/orderitem"
	"github.com/kirastore/backend/internal/transport/http/httperr"
	"github.com/shopspring/decimal"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
}

type customerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	DNI       string `json:"dni"`
}

type shippingAddressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Notes      string `json:"notes"`
}

type shippingRequest struct {
	Method  string                  `json:"method"`
	Address *shippingAddressRequest `json:"address"`
}

type itemRequest struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Image     string          `json:"image"`
}

type createOrderRequest struct {
	Customer     customerRequest `json:"customer"`
	Shipping     shippingRequest `json:"shipping"`
	Items        []itemRequest   `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
}

type createOrderResponse struct {
	Success   bool   `json:"success"`
	OrderID   string `json:"orderId"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	Message   string `json:"message"`
}

// validate collects every failing field instead of stopping at the first.
func (req *createOrderRequest) validate() []httperr.FieldError {
	var errs []httperr.FieldError

	if strings.TrimSpace(req.Customer.FirstName) == "" {
		errs = append(errs, httperr.FieldError{Field: "customer.firstName", Message: "is required"})
	}
	if strings.TrimSpace(req.Customer.LastName) == "" {
		errs = append(errs, httperr.FieldError{Field: "customer.lastName", Message: "is required"})
	}
	if !strings.Contains(req.Customer.Email, "@") {
		errs = append(errs, httperr.FieldError{Field: "customer.email", Message: "must be a valid email"})
	}
	if strings.TrimSpace(req.Customer.Phone) == "" {
		errs = append(errs, httperr.FieldError{Field: "customer.phone", Message: "is required"})
	}
	if strings.TrimSpace(req.Shipping.Method) == "" {
		errs = append(errs, httperr.FieldError{Field: "shipping.method", Message: "is required"})
	}

	if len(req.Items) == 0 {
		errs = append(errs, httperr.FieldError{Field: "items", Message: "must not be empty"})
	}
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			errs = append(errs, httperr.FieldError{
				Field:   fmt.Sprintf("items[%d].productId", i),
				Message: "must be positive",
			})
		}
		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, httperr.FieldError{
				Field:   fmt.Sprintf("items[%d].name", i),
				Message: "is required",
			})
		}
		if !item.Price.IsPositive() {
			errs = append(errs, httperr.FieldError{
				Field:   fmt.Sprintf("items[%d].price", i),
				Message: "must be greater than zero",
			})
		}
		if item.Quantity <= 0 {
			errs = append(errs, httperr.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be greater than zero",
			})
		}
	}

	if req.Subtotal.IsNegative() {
		errs = append(errs, httperr.FieldError{Field: "subtotal", Message: "must not be negative"})
	}
	if req.ShippingCost.IsNegative() {
		errs = append(errs, httperr.FieldError{Field: "shippingCost", Message: "must not be negative"})
	}
	if req.Discount.IsNegative() {
		errs = append(errs, httperr.FieldError{Field: "discount", Message: "must not be negative"})
	}
	if !req.Total.IsPositive() {
		errs = append(errs, httperr.FieldError{Field: "total", Message: "must be greater than zero"})
	}

	return errs
}

func (req *createOrderRequest) toModel(method order.PaymentMethod) order.Order {
	o := order.Order{
		Customer: order.Customer{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
			DNI:       req.Customer.DNI,
		},
		Shipping: order.Shipping{
			Method: req.Shipping.Method,
		},
		Subtotal:      req.Subtotal,
		ShippingCost:  req.ShippingCost,
		Discount:      req.Discount,
		Total:         req.Total,
		PaymentMethod: method,
	}

	if req.Shipping.Address != nil {
		o.Shipping.Street = req.Shipping.Address.Street
		o.Shipping.City = req.Shipping.Address.City
		o.Shipping.Province = req.Shipping.Address.Province
		o.Shipping.PostalCode = req.Shipping.Address.PostalCode
		o.Shipping.Notes = req.Shipping.Address.Notes
	}

	for _, item := range req.Items {
		o.OrderItems = append(o.OrderItems, orderitem.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			ImageURL:  item.Image,
		})
	}

	return o
}

// CreateTransferOrder handles intake of a bank-transfer order. The caller is
// later expected to instruct the customer to transfer funds; no component
// here verifies the transfer happened.
func CreateTransferOrder(w http.ResponseWriter, r *http.Request, service service) {
	createOrder(w, r, service, order.MethodTransfer)
}

// CreateGatewayOrder handles intake of a gateway-checkout order. The caller
// follows up with a checkout-session request referencing the returned order
// number.
func CreateGatewayOrder(w http.ResponseWriter, r *http.Request, service service) {
	createOrder(w, r, service, order.MethodGateway)
}

func createOrder(w http.ResponseWriter, r *http.Request, service service, method order.PaymentMethod) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "failed to decode request body")
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if errs := req.validate(); len(errs) > 0 {
		httperr.Validation(w, errs)

		return
	}

	created, err := service.CreateOrder(r.Context(), req.toModel(method))
	if err != nil {
		httperr.Internal(w, err)

		return
	}

	resp := createOrderResponse{
		Success: true,
		OrderID: created.OrderNumber,
		Message: "order created",
	}
	if created.ExpiresAt != nil {
		resp.ExpiresAt = created.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}

	httperr.JSON(w, http.StatusCreated, resp)
}
