package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirastore/backend/internal/dal/gateway"
	"github.com/kirastore/backend/internal/dal/mailer"
	"github.com/kirastore/backend/internal/dal/postgres"
	"github.com/kirastore/backend/internal/dal/rabbitmq"
	"github.com/kirastore/backend/internal/dal/repositories/audit"
	outboxrepo "github.com/kirastore/backend/internal/dal/repositories/outbox/postgres"
	"github.com/kirastore/backend/internal/metrics"
	"github.com/kirastore/backend/internal/otel"
	"github.com/kirastore/backend/internal/service/services/addresssvc"
	"github.com/kirastore/backend/internal/service/services/checkoutsvc"
	"github.com/kirastore/backend/internal/service/services/ordersvc"
	"github.com/kirastore/backend/internal/service/services/settlementsvc"
	httptransport "github.com/kirastore/backend/internal/transport/http"
	outboxworker "github.com/kirastore/backend/internal/worker/outbox"
)

// App represents the application. Every external client is constructed here
// once and injected; nothing holds ambient global state.
type App struct {
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	otelController *otel.OtelController
	workerCancel   context.CancelFunc
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()
	gatewayClient := gateway.MustNewClient()
	mailClient := mailer.MustNewClient()

	serviceMetrics := metrics.NewServiceMetrics()

	outboxRepo := outboxrepo.NewOutboxRepository(postgresClient.DB())
	auditRepo := audit.NewAuditRabbitMQRepository(rabbitClient, outboxRepo)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithAuditRepository(auditRepo),
		ordersvc.WithMetrics(serviceMetrics),
	)

	checkoutSvc := checkoutsvc.MustNewCheckoutService(
		checkoutsvc.WithGatewayClient(gatewayClient),
	)

	settlementSvc := settlementsvc.MustNewSettlementService(
		settlementsvc.WithPostgresClient(postgresClient),
		settlementsvc.WithGatewayClient(gatewayClient),
		settlementsvc.WithMailClient(mailClient),
		settlementsvc.WithAuditRepository(auditRepo),
		settlementsvc.WithMetrics(serviceMetrics),
	)

	addressSvc := addresssvc.MustNewAddressService(
		addresssvc.WithPostgresClient(postgresClient),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, checkoutSvc, settlementSvc, addressSvc, serviceMetrics)
	transport.RegisterRoutes()

	return &App{
		transport:      transport,
		outboxWorker:   outboxworker.NewWorker(outboxRepo, rabbitClient),
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.workerCancel()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	if err := a.postgresClient.Close(); err != nil {
		slog.Error("Database connection close error", "error", err)
	} else {
		slog.Info("Database connection closed gracefully")
	}

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
