package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/precios-especiales-api/internal/application/ports"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
	block  chan struct{}
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func event(typ string) ports.SpecialPriceEvent {
	return ports.SpecialPriceEvent{
		Type:            typ,
		ID:              "sp-1",
		UserID:          "u-1",
		ProductID:       "12",
		SpecialPrice:    decimal.RequireFromString("80"),
		DiscountPercent: decimal.NewFromInt(20),
		Active:          true,
		OccurredAt:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestEncode_KeyAndHeaders(t *testing.T) {
	msg, err := encode(event(ports.EventSpecialPriceCreated))
	require.NoError(t, err)

	assert.Equal(t, "u-1:12", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "special_price.created", string(msg.Headers[0].Value))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "sp-1", body["id"])
	assert.Equal(t, "80", body["specialPrice"])

	// El evento de baja solo lleva el id.
	del, err := encode(ports.SpecialPriceEvent{Type: ports.EventSpecialPriceDeleted, ID: "sp-9"})
	require.NoError(t, err)
	assert.Equal(t, "sp-9", string(del.Key))
}

func TestPublisher_FlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, 8)
	p.Start()

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Publish(context.Background(), event(ports.EventSpecialPriceUpdated)))
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Close(ctx))

	assert.Len(t, w.msgs, 3)
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), event(ports.EventSpecialPriceUpdated)), ErrClosed)
	assert.NoError(t, p.Close(ctx), "cerrar dos veces no falla")
}

func TestPublisher_FullBufferDoesNotBlock(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	p := newPublisher(w, 1)
	// Sin Start: nadie consume la cola.
	require.NoError(t, p.Publish(context.Background(), event(ports.EventSpecialPriceCreated)))
	assert.ErrorIs(t, p.Publish(context.Background(), event(ports.EventSpecialPriceCreated)), ErrBufferFull)
}
