package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kirastore/backend/internal/dal/gateway"
	"github.com/kirastore/backend/internal/metrics"
	"github.com/kirastore/backend/internal/service/models/address"
	"github.com/kirastore/backend/internal/service/models/order"
	"github.com/kirastore/backend/internal/transport/http/addresses"
	"github.com/kirastore/backend/internal/transport/http/checkout"
	createorder "github.com/kirastore/backend/internal/transport/http/create_order"
	getorder "github.com/kirastore/backend/internal/transport/http/get_order"
	listorders "github.com/kirastore/backend/internal/transport/http/list_orders"
	"github.com/kirastore/backend/internal/transport/http/webhook"
	"github.com/kirastore/backend/pkg/http/middleware/trace"
	"github.com/kirastore/backend/pkg/logger"
	"github.com/spf13/viper"
)

type orderService interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*order.Order, error)
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}

type checkoutService interface {
	CreateCheckoutSession(
		ctx context.Context,
		items []gateway.PreferenceItem,
		payer gateway.Payer,
		orderNumber string,
	) (*gateway.Preference, error)
}

type settlementService interface {
	ProcessNotification(ctx context.Context, paymentID string) error
}

type addressService interface {
	CreateAddress(ctx context.Context, a address.Address) (address.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID int64, patch *address.PatchAddressModel) error
	DeleteAddress(ctx context.Context, userID, addressID int64) error
	ListAddresses(ctx context.Context, userID int64) ([]address.Address, error)
}

type HTTPTransport struct {
	server     *http.Server
	router     *chi.Mux
	orders     orderService
	checkout   checkoutService
	settlement settlementService
	addresses  addressService
}

func NewHTTPTransport(
	orders orderService,
	checkoutSvc checkoutService,
	settlement settlementService,
	addressSvc addressService,
	serviceMetrics *metrics.ServiceMetrics,
) *HTTPTransport {
	router := newRouter()
	if serviceMetrics != nil {
		router.Use(serviceMetrics.Middleware)
	}
	server := newServer(router)

	return &HTTPTransport{
		server:     server,
		router:     router,
		orders:     orders,
		checkout:   checkoutSvc,
		settlement: settlement,
		addresses:  addressSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Handle("/metrics", metrics.Handler())

	h.router.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.getOrder)
			r.Get("/list", h.listOrders)
			r.Post("/transfer", h.createTransferOrder)
			r.Post("/checkout", h.createGatewayOrder)
		})

		r.Post("/checkout/preference", h.createCheckoutSession)
		r.Post("/payments/webhook", h.handleNotification)

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", h.listAddresses)
			r.Post("/", h.createAddress)
			r.Put("/{id}", h.updateAddress)
			r.Delete("/{id}", h.deleteAddress)
		})
	})
}

func (h *HTTPTransport) createTransferOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateTransferOrder(w, r, h.orders)
}

func (h *HTTPTransport) createGatewayOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateGatewayOrder(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	checkout.CreateCheckoutSession(w, r, h.checkout)
}

func (h *HTTPTransport) handleNotification(w http.ResponseWriter, r *http.Request) {
	webhook.HandleNotification(w, r, h.settlement)
}

func (h *HTTPTransport) createAddress(w http.ResponseWriter, r *http.Request) {
	addresses.CreateAddress(w, r, h.addresses)
}

func (h *HTTPTransport) updateAddress(w http.ResponseWriter, r *http.Request) {
	addresses.UpdateAddress(w, r, h.addresses)
}

func (h *HTTPTransport) deleteAddress(w http.ResponseWriter, r *http.Request) {
	addresses.DeleteAddress(w, r, h.addresses)
}

func (h *HTTPTransport) listAddresses(w http.ResponseWriter, r *http.Request) {
	addresses.ListAddresses(w, r, h.addresses)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
