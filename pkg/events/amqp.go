package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const Exchange = "checkout.events"

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// AMQPPublisher publishes JSON envelopes to a durable topic exchange.
// The routing key is the event name with a version suffix, e.g. payment.success.v1.
//
// Delivery is best-effort: a closed channel or connection is reopened on the
// next Publish and a publish that hits ErrClosed is retried once. Events are
// not buffered while the broker is unreachable.
type AMQPPublisher struct {
	mu        sync.Mutex
	ch        channel
	producer  string
	open      func() (channel, error)
	closeConn func() error
}

// DialAMQP connects to the broker, declares the exchange and returns a
// publisher that redials on its own after the broker drops the connection.
func DialAMQP(url, producer string) (*AMQPPublisher, error) {
	d := &amqpDialer{url: url}
	p := newAMQPPublisher(producer, d.open, d.close)

	ch, err := p.open()
	if err != nil {
		_ = d.close()
		return nil, err
	}
	p.ch = ch
	return p, nil
}

func newAMQPPublisher(producer string, open func() (channel, error), closeConn func() error) *AMQPPublisher {
	return &AMQPPublisher{producer: producer, open: open, closeConn: closeConn}
}

func RoutingKey(eventName string) string {
	return eventName + ".v1"
}

func (p *AMQPPublisher) Publish(ctx context.Context, eventName, partitionKey string, payload interface{}) error {
	body, err := json.Marshal(NewEnvelope(p.producer, eventName, partitionKey, payload))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventName, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(pubCtx, Exchange, RoutingKey(eventName), false, false, msg)
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}

	p.ch = nil
	if ch, err = p.channelLocked(); err != nil {
		return err
	}
	return ch.PublishWithContext(pubCtx, Exchange, RoutingKey(eventName), false, false, msg)
}

// channelLocked returns the current channel, reopening it if the broker closed it.
func (p *AMQPPublisher) channelLocked() (channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("reopen channel: %w", err)
	}
	p.ch = ch
	return ch, nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.ch != nil && !p.ch.IsClosed() {
		err = p.ch.Close()
	}
	p.ch = nil
	if p.closeConn != nil {
		if cerr := p.closeConn(); err == nil {
			err = cerr
		}
	}
	return err
}

// amqpDialer owns the broker connection and redials once it is closed.
type amqpDialer struct {
	url  string
	conn *amqp.Connection
}

func (d *amqpDialer) open() (channel, error) {
	if d.conn == nil || d.conn.IsClosed() {
		conn, err := amqp.DialConfig(d.url, amqp.Config{
			Dial: amqp.DefaultDial(10 * time.Second),
		})
		if err != nil {
			return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		d.conn = conn
	}

	ch, err := d.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}
	return ch, nil
}

func (d *amqpDialer) close() error {
	if d.conn == nil || d.conn.IsClosed() {
		return nil
	}
	return d.conn.Close()
}
