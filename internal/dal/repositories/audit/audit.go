package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirastore/backend/internal/dal/interfaces/ioutboxrepo"
	"github.com/kirastore/backend/internal/dal/rabbitmq"
	"github.com/kirastore/backend/internal/service/models/auditlog"
	outboxmodel "github.com/kirastore/backend/internal/service/models/outbox"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"
)

type broker interface {
	DeclareQueue(cfg rabbitmq.DeclareQueueConfig) (amqp.Queue, error)
	PublishJSON(queue string, body []byte) error
}

// AuditRabbitMQRepository publishes order lifecycle events to the audit
// queue. Publish failures are parked in the outbox for the retry worker.
type AuditRabbitMQRepository struct {
	client     broker
	outboxRepo ioutboxrepo.IOutboxRepository
	queue      amqp.Queue
	maxRetries int
}

func NewAuditRabbitMQRepository(
	client broker,
	outboxRepo ioutboxrepo.IOutboxRepository,
) *AuditRabbitMQRepository {
	queueName := viper.GetString("rabbitmq.audit_queue")
	if queueName == "" {
		queueName = "kira.orders.audit"
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       queueName,
		Durable:    true,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	return &AuditRabbitMQRepository{
		client:     client,
		outboxRepo: outboxRepo,
		queue:      queue,
		maxRetries: maxRetries,
	}
}

// Publish sends the events with bounded parallelism. An event that cannot be
// published is written to the outbox instead of failing the caller.
func (r *AuditRabbitMQRepository) Publish(ctx context.Context, events ...auditlog.Event) error {
	publishCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	g, _ := errgroup.WithContext(publishCtx)
	g.SetLimit(3)

	for _, event := range events {
		g.Go(func() error {
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to marshal audit event: %w", err)
			}

			if err := r.client.PublishJSON(r.queue.Name, payload); err != nil {
				slog.Warn("Audit publish failed, parking event in outbox",
					"event_id", event.EventID,
					"error", err,
				)

				return r.park(publishCtx, payload, err)
			}

			return nil
		})
	}

	return g.Wait()
}

func (r *AuditRabbitMQRepository) park(ctx context.Context, payload []byte, cause error) error {
	now := time.Now()

	return r.outboxRepo.Insert(ctx, outboxmodel.OutboxMessage{
		QueueName:   r.queue.Name,
		RoutingKey:  r.queue.Name,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  r.maxRetries,
		LastError:   cause.Error(),
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
}
