package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	outboxmodel "github.com/kirastore/backend/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retryCall struct {
	id          int64
	retryCount  int
	lastError   string
	nextRetryAt time.Time
}

type fakeOutboxRepo struct {
	pending []outboxmodel.OutboxMessage
	deleted []int64
	retries []retryCall
}

func (r *fakeOutboxRepo) Insert(_ context.Context, _ outboxmodel.OutboxMessage) error {
	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outboxmodel.OutboxMessage, error) {
	return r.pending, nil
}

func (r *fakeOutboxRepo) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)

	return nil
}

func (r *fakeOutboxRepo) UpdateRetry(
	_ context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	r.retries = append(r.retries, retryCall{
		id:          id,
		retryCount:  retryCount,
		lastError:   lastError,
		nextRetryAt: nextRetryAt,
	})

	return nil
}

type fakePublisher struct {
	err       error
	failOnce  bool
	published []string
}

func (p *fakePublisher) PublishJSON(queue string, _ []byte) error {
	if p.err != nil {
		err := p.err
		if p.failOnce {
			p.err = nil
		}

		return err
	}
	p.published = append(p.published, queue)

	return nil
}

func pendingMessage(id int64, retryCount int) outboxmodel.OutboxMessage {
	return outboxmodel.OutboxMessage{
		ID:         id,
		QueueName:  "kira.orders.audit",
		RoutingKey: "kira.orders.audit",
		Payload:    []byte(`{"eventId":"e-1"}`),
		RetryCount: retryCount,
		MaxRetries: 5,
	}
}

func TestSuccessfulPublishRemovesMessage(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outboxmodel.OutboxMessage{pendingMessage(7, 0)}}
	pub := &fakePublisher{}
	w := NewWorker(repo, pub)

	w.processMessages(context.Background())

	assert.Equal(t, []string{"kira.orders.audit"}, pub.published)
	assert.Equal(t, []int64{7}, repo.deleted)
	assert.Empty(t, repo.retries)
}

func TestFailedPublishSchedulesFirstRetryAt30s(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outboxmodel.OutboxMessage{pendingMessage(7, 0)}}
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	w := NewWorker(repo, pub)

	before := time.Now()
	w.processMessages(context.Background())

	require.Len(t, repo.retries, 1)
	call := repo.retries[0]
	assert.Equal(t, int64(7), call.id)
	assert.Equal(t, 1, call.retryCount)
	assert.Equal(t, "broker unavailable", call.lastError)
	assert.WithinDuration(t, before.Add(30*time.Second), call.nextRetryAt, 5*time.Second)
	assert.Empty(t, repo.deleted)
}

func TestBackoffDoublesPerRetry(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outboxmodel.OutboxMessage{pendingMessage(7, 2)}}
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	w := NewWorker(repo, pub)

	before := time.Now()
	w.processMessages(context.Background())

	require.Len(t, repo.retries, 1)
	call := repo.retries[0]
	assert.Equal(t, 3, call.retryCount)
	assert.WithinDuration(t, before.Add(120*time.Second), call.nextRetryAt, 5*time.Second)
}

func TestMixedBatchHandlesEachMessageIndependently(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []outboxmodel.OutboxMessage{
		pendingMessage(1, 0),
		pendingMessage(2, 0),
	}}
	pub := &fakePublisher{err: errors.New("broker hiccup"), failOnce: true}
	w := NewWorker(repo, pub)

	w.processMessages(context.Background())

	require.Len(t, repo.retries, 1)
	assert.Equal(t, int64(1), repo.retries[0].id)
	assert.Equal(t, []int64{2}, repo.deleted)
}
