package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Event tests ---

func TestNewEvent_Fields(t *testing.T) {
	type CartData struct {
		SessionID string `json:"session_id"`
		Subtotal  int64  `json:"subtotal"`
	}

	data := CartData{SessionID: "sess-1", Subtotal: 2500}
	event, err := NewEvent("cart.updated", "sess-1", "cart", "storefront", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID, "EventID should be a non-empty UUID")
	assert.Equal(t, "cart.updated", event.EventType)
	assert.Equal(t, "sess-1", event.AggregateID)
	assert.Equal(t, "cart", event.AggregateType)
	assert.Equal(t, "storefront", event.Source)
	assert.Equal(t, SchemaVersion, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.Empty(t, event.CorrelationID)
	assert.Nil(t, event.Metadata)

	var roundTripped CartData
	require.NoError(t, json.Unmarshal(event.Data, &roundTripped))
	assert.Equal(t, data, roundTripped)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("test.event", "agg-1", "test", "storefront", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal test.event payload")
}

func TestNewEvent_Options(t *testing.T) {
	event, err := NewEvent("cart.cleared", "sess-2", "cart", "storefront", struct{}{},
		WithCorrelationID("corr-1"),
		WithMetadata("user_id", "u-1"),
		WithMetadata("empty", ""),
		WithCorrelationID(""),
	)
	require.NoError(t, err)

	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.Equal(t, map[string]string{"user_id": "u-1"}, event.Metadata)
}

func TestEvent_MarshalDecode(t *testing.T) {
	original, err := NewEvent("wishlist.updated", "sess-9", "wishlist", "storefront",
		map[string]int{"item_count": 2}, WithCorrelationID("corr-abc"), WithMetadata("user_id", "u-1"))
	require.NoError(t, err)

	data, err := original.Marshal()
	require.NoError(t, err)

	decoded, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, decoded.EventID)
	assert.Equal(t, "corr-abc", decoded.CorrelationID)
	assert.Equal(t, "u-1", decoded.Metadata["user_id"])

	var payload map[string]int
	require.NoError(t, decoded.DecodeData(&payload))
	assert.Equal(t, 2, payload["item_count"])
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte(`{broken json`))
	require.Error(t, err)

	_, err = DecodeEvent([]byte{})
	require.Error(t, err)

	_, err = DecodeEvent([]byte(`{"event_type":"cart.updated"}`))
	assert.ErrorIs(t, err, errMissingEventID)

	_, err = DecodeEvent([]byte(`{"event_id":"e-1"}`))
	assert.ErrorIs(t, err, errMissingEventType)

	event := &Event{EventType: "cart.updated", Data: json.RawMessage(`not valid json`)}
	var target map[string]string
	require.Error(t, event.DecodeData(&target))
}

// --- ProducerConfig tests ---

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.True(t, cfg.Async)
}

// --- Topic tests ---

func TestTopic(t *testing.T) {
	tests := []struct {
		domain string
		action string
		want   string
	}{
		{"cart", "updated", "storefront.cart.updated"},
		{"cart", "cleared", "storefront.cart.cleared"},
		{"wishlist", "updated", "storefront.wishlist.updated"},
	}

	for _, tt := range tests {
		t.Run(tt.domain+"."+tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
		})
	}
}

// --- Producer tests ---

func TestNewProducer_CreatesInstance(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.NotNil(t, p.writer.Completion)

	assert.NoError(t, p.Close())
}

func TestProducer_CompletionCountsOutcome(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	defer p.Close()

	topic := "storefront.test.completion"
	delivered := eventsDelivered.WithLabelValues(topic, resultDelivered)
	failed := eventsDelivered.WithLabelValues(topic, resultFailed)
	deliveredBefore, failedBefore := testutil.ToFloat64(delivered), testutil.ToFloat64(failed)

	msgs := []kafka.Message{{Topic: topic}, {Topic: topic}}
	p.completed(msgs, nil)
	p.completed(msgs[:1], errors.New("broker unavailable"))

	assert.Equal(t, deliveredBefore+2, testutil.ToFloat64(delivered))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestMessage_KeyAndHeaders(t *testing.T) {
	event, err := NewEvent("cart.updated", "sess-9", "cart", "storefront", struct{}{}, WithCorrelationID("corr-9"))
	require.NoError(t, err)

	msg, err := message("storefront.cart.updated", event)
	require.NoError(t, err)

	assert.Equal(t, "storefront.cart.updated", msg.Topic)
	assert.Equal(t, []byte("sess-9"), msg.Key)
	assert.Equal(t, []kafka.Header{
		{Key: "event_type", Value: []byte("cart.updated")},
		{Key: "source", Value: []byte("storefront")},
		{Key: "correlation_id", Value: []byte("corr-9")},
	}, msg.Headers)

	decoded, err := DecodeEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
}

func TestMessage_OmitsEmptyCorrelationID(t *testing.T) {
	event, err := NewEvent("wishlist.updated", "sess-1", "wishlist", "storefront", struct{}{})
	require.NoError(t, err)

	msg, err := message("t", event)
	require.NoError(t, err)

	require.Len(t, msg.Headers, 2)
	for _, h := range msg.Headers {
		assert.NotEqual(t, "correlation_id", h.Key)
	}
}

func TestPingBrokers_JoinsDialErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	err := PingBrokers(ctx, []string{"127.0.0.1:1", "127.0.0.1:2"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all brokers unreachable")
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.Contains(t, err.Error(), "127.0.0.1:2")
}
