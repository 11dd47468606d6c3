package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

// channel is the subset of *amqp.Channel the publisher drives.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// Publisher sends activity events to a durable topic exchange.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	logg     *logger.Logger
	now      func() time.Time
}

// NewPublisher dials the broker and declares the exchange.
func NewPublisher(ctx context.Context, cfg config.RabbitMQConfig, logg *logger.Logger) (*Publisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}
	p, err := newPublisher(ch, cfg.Exchange, logg)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	logg.Info(logg.WithField(ctx, "exchange", p.exchange), "rabbitmq publisher connected")
	return p, nil
}

func newPublisher(ch channel, exchange string, logg *logger.Logger) (*Publisher, error) {
	exchange = strings.TrimSpace(exchange)
	if exchange == "" {
		return nil, errors.New("rabbitmq exchange is required")
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange, logg: logg, now: time.Now}, nil
}

// Publish sends a persistent JSON message. Attributes become AMQP headers.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload []byte, attrs map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	headers := amqp.Table{}
	for k, v := range attrs {
		headers[k] = v
	}
	err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Headers:      headers,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// Ping reports whether the channel is still open.
func (p *Publisher) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		return errors.New("rabbitmq channel closed")
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			ctx := p.logg.WithField(context.Background(), "error", err.Error())
			p.logg.Warn(ctx, "error closing rabbitmq channel")
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
