package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/queue"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherNotify(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}
	ev := queue.ReservationEvent{EventID: "abc", Kind: "assigned", TenantID: 2, ReservationID: 40, To: "pending", TableID: 5}

	require.NoError(t, p.Notify(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "2:40", string(msg.Key))

	var got queue.ReservationEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, ev, got)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{"event_id": "abc", "kind": "assigned"}, headers)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherPropagatesErrors(t *testing.T) {
	boom := errors.New("leader not available")
	p := &KafkaPublisher{w: &fakeWriter{err: boom}}
	assert.ErrorIs(t, p.Notify(context.Background(), queue.ReservationEvent{}), boom)
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher([]string{"k1:9092"}, "reservations")
	w, ok := p.w.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "reservations", w.Topic)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
}
