// Package kafka publica los eventos de precios especiales en un tópico de Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/precios-especiales-api/internal/application/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// ErrBufferFull la cola interna está llena; el evento se descarta.
var ErrBufferFull = errors.New("kafka: cola de eventos llena")

// ErrClosed el publicador ya fue cerrado.
var ErrClosed = errors.New("kafka: publicador cerrado")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher encola los eventos y una goroutine los escribe en el tópico.
// Publish nunca bloquea al caso de uso.
type Publisher struct {
	w       messageWriter
	inbox   chan kafka.Message
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	timeout time.Duration
}

// NewPublisher crea el writer particionando por clave (usuario:producto).
func NewPublisher(brokers []string, topic string, buf int) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, buf)
}

func newPublisher(w messageWriter, buf int) *Publisher {
	if buf <= 0 {
		buf = 256
	}
	return &Publisher{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
	}
}

// Start lanza la goroutine de escritura. Termina cuando se llama Close.
func (p *Publisher) Start() {
	go func() {
		defer close(p.done)
		for m := range p.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			if err := p.w.WriteMessages(ctx, m); err != nil {
				log.Warn().Err(err).Str("key", string(m.Key)).Msg("kafka: no se pudo escribir el evento")
			}
			cancel()
		}
		if err := p.w.Close(); err != nil {
			log.Warn().Err(err).Msg("kafka: cierre del writer")
		}
	}()
}

// Publish serializa el evento y lo encola.
func (p *Publisher) Publish(_ context.Context, event ports.SpecialPriceEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close deja de aceptar eventos, vacía la cola y espera a la goroutine o al vencimiento de ctx.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func encode(event ports.SpecialPriceEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: serializar evento: %w", err)
	}
	key := event.ID
	if event.UserID != "" && event.ProductID != "" {
		key = event.UserID + ":" + event.ProductID
	}
	return kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Time:    event.OccurredAt,
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(event.Type)}},
	}, nil
}
