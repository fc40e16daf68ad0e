package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"nuvra_crm_backend/platform/config"
	"nuvra_crm_backend/platform/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultExchange = "ex.leads"
	publishTimeout  = 5 * time.Second
)

// streamedEvents are forwarded to the AMQP exchange, keyed by event name.
var streamedEvents = []string{
	LeadIngested{}.EventName(),
	APIKeyRevoked{}.EventName(),
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// StreamPublisher forwards domain events to a durable AMQP topic exchange.
type StreamPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       amqpChannel
	exchange string
	log      *logger.Logger
}

// DialStream connects to the broker and declares the exchange.
func DialStream(cfg config.EventStreamConfig, log *logger.Logger) (*StreamPublisher, error) {
	conn, err := amqp.Dial(cfg.GetAMQPURL())
	if err != nil {
		return nil, fmt.Errorf("connect to amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	exchange := cfg.GetAMQPExchange()
	if exchange == "" {
		exchange = defaultExchange
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	p := newStreamPublisher(ch, exchange, log)
	p.conn = conn
	return p, nil
}

func newStreamPublisher(ch amqpChannel, exchange string, log *logger.Logger) *StreamPublisher {
	return &StreamPublisher{ch: ch, exchange: exchange, log: log}
}

// Attach subscribes the publisher to every streamed event on bus.
func (p *StreamPublisher) Attach(bus Bus) {
	for _, name := range streamedEvents {
		bus.Subscribe(name, HandlerFunc(p.Forward))
	}
}

// Forward publishes one event with its name as routing key.
func (p *StreamPublisher) Forward(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventName(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, event.EventName(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		Type:         event.EventName(),
		Timestamp:    event.OccurredAt(),
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.EventName(), err)
	}
	return nil
}

func (p *StreamPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		p.log.Warn("failed to close amqp channel", "error", err)
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
