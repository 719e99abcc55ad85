package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/shared/rabbitmq"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroker struct {
	mu        sync.Mutex
	published []rabbitmq.Message
	failFor   string
	ctxErr    error
}

func (b *fakeBroker) PublishWithRetry(ctx context.Context, msg rabbitmq.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctxErr = ctx.Err()
	if msg.Type == b.failFor {
		return errors.New("channel closed")
	}
	b.published = append(b.published, msg)
	return nil
}

type fakeMetrics struct {
	published map[string]int
	failed    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{published: map[string]int{}, failed: map[string]int{}}
}

func (m *fakeMetrics) RecordNotificationPublished(t string) { m.published[t]++ }
func (m *fakeMetrics) RecordNotificationFailed(t string)    { m.failed[t]++ }

func testEffects() []domain.Effect {
	job := &domain.Job{ID: uuid.NewString(), Title: "Fix sink", PostedBy: uuid.NewString()}
	worker := uuid.NewString()
	return []domain.Effect{
		{Type: domain.EffectJobApplied, Recipient: job.PostedBy, Sender: worker, JobID: job.ID, Title: "New applicant", Message: "m1"},
		{Type: domain.EffectApplicationSent, Recipient: worker, JobID: job.ID, Title: "Application sent", Message: "m2"},
	}
}

func newTestPublisher(b Broker, m Metrics) *Publisher {
	p := NewPublisher(b, m, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)
	p.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestPublisher_Notify(t *testing.T) {
	broker := &fakeBroker{}
	metrics := newFakeMetrics()
	p := newTestPublisher(broker, metrics)
	effects := testEffects()

	p.Notify(context.Background(), effects)

	require.Len(t, broker.published, 2)
	for i, pub := range broker.published {
		assert.Equal(t, ContentType, pub.ContentType)
		assert.Equal(t, string(effects[i].Type), pub.Type)

		msg, err := Decode(pub.Body)
		require.NoError(t, err)
		assert.Equal(t, pub.ID, msg.MessageID)
		assert.Equal(t, effects[i].Recipient, msg.Recipient)
		assert.Equal(t, effects[i].JobID, msg.JobID)
		assert.Equal(t, effects[i].Message, msg.Message)
	}
	assert.Equal(t, 1, metrics.published["job_applied"])
	assert.Equal(t, 1, metrics.published["application_sent"])
}

func TestPublisher_FailuresAreSwallowed(t *testing.T) {
	broker := &fakeBroker{failFor: string(domain.EffectJobApplied)}
	metrics := newFakeMetrics()
	p := newTestPublisher(broker, metrics)

	assert.NotPanics(t, func() { p.Notify(context.Background(), testEffects()) })

	require.Len(t, broker.published, 1)
	assert.Equal(t, 1, metrics.failed["job_applied"])
	assert.Equal(t, 1, metrics.published["application_sent"])
}

func TestPublisher_IgnoresCallerCancellation(t *testing.T) {
	broker := &fakeBroker{}
	p := newTestPublisher(broker, newFakeMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Notify(ctx, testEffects())

	assert.Len(t, broker.published, 2)
	assert.NoError(t, broker.ctxErr)
}

func TestPublisher_NoEffects(t *testing.T) {
	broker := &fakeBroker{}
	newTestPublisher(broker, newFakeMetrics()).Notify(context.Background(), nil)
	assert.Empty(t, broker.published)
}

func TestDecode(t *testing.T) {
	valid := NewMessage(testEffects()[0], time.Now())

	tests := []struct {
		name    string
		mutate  func(m *Message)
		wantErr bool
	}{
		{name: "valid", mutate: func(m *Message) {}},
		{name: "no sender", mutate: func(m *Message) { m.Sender = "" }},
		{name: "bad message id", mutate: func(m *Message) { m.MessageID = "nope" }, wantErr: true},
		{name: "bad recipient", mutate: func(m *Message) { m.Recipient = "" }, wantErr: true},
		{name: "bad sender", mutate: func(m *Message) { m.Sender = "x" }, wantErr: true},
		{name: "bad job", mutate: func(m *Message) { m.JobID = "x" }, wantErr: true},
		{name: "missing type", mutate: func(m *Message) { m.Type = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMessage)
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err := Decode([]byte("{broken"))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}
