package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/notify"
	"github.com/cuongbtq/barangay-gigs/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settlement struct {
	tag     uint64
	ack     bool
	requeue bool
}

// fakeAcknowledger records how each delivery was settled
type fakeAcknowledger struct {
	mu      sync.Mutex
	settled []settlement
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled = append(a.settled, settlement{tag: tag, ack: true})
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled = append(a.settled, settlement{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) byTag() map[uint64]settlement {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := map[uint64]settlement{}
	for _, s := range a.settled {
		out[s.tag] = s
	}
	return out
}

type fakeBroker struct {
	deliveries chan amqp.Delivery
	qosErr     error
	prefetch   int
	tag        string
}

func (b *fakeBroker) Qos(n int) error {
	b.prefetch = n
	return b.qosErr
}

func (b *fakeBroker) Consume(tag string) (<-chan amqp.Delivery, error) {
	b.tag = tag
	return b.deliveries, nil
}

type memStore struct {
	mu   sync.Mutex
	rows map[string]domain.Notification
	// failures makes the next n inserts fail
	failures int
}

func (s *memStore) InsertNotification(_ context.Context, n domain.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return false, errors.New("connection reset")
	}
	if _, ok := s.rows[n.MessageID]; ok {
		return false, nil
	}
	s.rows[n.MessageID] = n
	return true, nil
}

type fakeMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (m *fakeMetrics) RecordWorkerMessage(result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result]++
}

type harness struct {
	worker *Worker
	broker *fakeBroker
	store  *memStore
	acks   *fakeAcknowledger
	stats  *fakeMetrics
}

func newHarness() *harness {
	h := &harness{
		broker: &fakeBroker{deliveries: make(chan amqp.Delivery, 16)},
		store:  &memStore{rows: map[string]domain.Notification{}},
		acks:   &fakeAcknowledger{},
		stats:  &fakeMetrics{results: map[string]int{}},
	}
	h.worker = NewWorker(&Config{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Broker:         h.broker,
		Store:          h.store,
		Metrics:        h.stats,
		WorkerID:       "notification-worker-test",
		Concurrency:    3,
		PrefetchCount:  1,
		ProcessTimeout: time.Second,
	})
	return h
}

func (h *harness) deliver(tag uint64, body []byte, redelivered bool) {
	h.broker.deliveries <- amqp.Delivery{
		Acknowledger: h.acks,
		DeliveryTag:  tag,
		Redelivered:  redelivered,
		Body:         body,
	}
}

// drain closes the delivery channel and waits for Start to finish
func (h *harness) drain(t *testing.T) {
	t.Helper()
	close(h.broker.deliveries)
	err := h.worker.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrDeliveriesClosed)
}

func body(t *testing.T, msg notify.Message) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

func validMessage(id string) notify.Message {
	return notify.Message{
		MessageID: id,
		Type:      "job_applied",
		Recipient: "11111111-1111-1111-1111-111111111111",
		Sender:    "22222222-2222-2222-2222-222222222222",
		JobID:     "33333333-3333-3333-3333-333333333333",
		Title:     "New applicant",
		Message:   "Someone applied to your job",
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestWorker_StoresAndAcks(t *testing.T) {
	h := newHarness()
	msg := validMessage("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	h.deliver(1, body(t, msg), false)

	h.drain(t)

	assert.Equal(t, settlement{tag: 1, ack: true}, h.acks.byTag()[1])
	row, ok := h.store.rows[msg.MessageID]
	require.True(t, ok)
	assert.Equal(t, msg.Recipient, row.Recipient)
	assert.Equal(t, msg.JobID, row.RelatedJob)
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, 1, h.stats.results[domain.ResultStored])

	assert.Equal(t, "notification-worker-test", h.broker.tag)
	assert.Equal(t, 3, h.broker.prefetch, "prefetch is raised to the pool size")
}

func TestWorker_DuplicateIsAcked(t *testing.T) {
	h := newHarness()
	msg := validMessage("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	h.store.rows[msg.MessageID] = domain.Notification{MessageID: msg.MessageID}
	h.deliver(7, body(t, msg), true)

	h.drain(t)

	assert.True(t, h.acks.byTag()[7].ack)
	assert.Equal(t, 1, h.stats.results[domain.ResultDuplicate])
}

func TestWorker_MalformedIsDropped(t *testing.T) {
	h := newHarness()
	bad := validMessage("not-a-uuid")
	h.deliver(1, []byte("{"), false)
	h.deliver(2, body(t, bad), false)

	h.drain(t)

	got := h.acks.byTag()
	assert.Equal(t, settlement{tag: 1}, got[1])
	assert.Equal(t, settlement{tag: 2}, got[2])
	assert.Equal(t, 2, h.stats.results[domain.ResultMalformed])
	assert.Empty(t, h.store.rows)
}

func TestWorker_StoreFailureRequeuesOnce(t *testing.T) {
	h := newHarness()
	h.store.failures = 2
	h.deliver(1, body(t, validMessage("cccccccc-cccc-cccc-cccc-cccccccccccc")), false)
	h.deliver(2, body(t, validMessage("dddddddd-dddd-dddd-dddd-dddddddddddd")), true)

	h.drain(t)

	got := h.acks.byTag()
	assert.Equal(t, settlement{tag: 1, requeue: true}, got[1])
	assert.Equal(t, settlement{tag: 2, requeue: false}, got[2])
	assert.Equal(t, 1, h.stats.results[domain.ResultRequeued])
	assert.Equal(t, 1, h.stats.results[domain.ResultFailed])
}

func TestWorker_StopsOnCancel(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.worker.Start(ctx) }()

	h.deliver(1, body(t, validMessage("eeeeeeee-eeee-eeee-eeee-eeeeeeeeeeee")), false)
	require.Eventually(t, func() bool { return len(h.acks.byTag()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_QosFailure(t *testing.T) {
	h := newHarness()
	h.broker.qosErr = errors.New("channel closed")

	err := h.worker.Start(context.Background())
	assert.ErrorContains(t, err, "failed to set QoS")
}

func TestShouldRequeue(t *testing.T) {
	w := newHarness().worker
	retryable := domain.NewRetryableError(errors.New("timeout"))

	assert.True(t, w.shouldRequeue(retryable, false))
	assert.False(t, w.shouldRequeue(retryable, true))
	assert.False(t, w.shouldRequeue(errors.New("bad data"), false))
}
