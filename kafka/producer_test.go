package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_PublishEvent(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "orders", nil)

	require.NoError(t, p.PublishEvent(context.Background(), "order-1", []byte(`{"event_type":"order_created"}`)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "order-1", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"event_type":"order_created"}`, string(w.msgs[0].Value))

	p.Close()
	assert.True(t, w.closed)
}

func TestProducer_PublishEventError(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{err: errors.New("no leader")}, "orders", nil)
	assert.Error(t, p.PublishEvent(context.Background(), "k", nil))
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, ParseBrokers(""))
}
