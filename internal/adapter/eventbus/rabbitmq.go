package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

const publishTimeout = 5 * time.Second

var ErrNotReady = errors.New("rabbitmq publisher not ready")

// RabbitMQPublisher publishes to a durable topic exchange and waits for the
// broker confirm of each message.
type RabbitMQPublisher struct {
	exchange      string
	connection    *amqp.Connection
	channel       *amqp.Channel
	notifyConfirm chan amqp.Confirmation
	mu            sync.Mutex
}

func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	log.Info().Str("exchange", exchange).Msg("connecting to rabbitmq")

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("channel could not be put into confirm mode: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	p := &RabbitMQPublisher{
		exchange:      exchange,
		connection:    conn,
		channel:       ch,
		notifyConfirm: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}

	log.Info().Str("exchange", exchange).Msg("rabbitmq publisher ready")

	return p, nil
}

func newPublishing(payload any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		Body:         body,
	}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, topic string, payload any) error {
	msg, err := newPublishing(payload, time.Now().UTC())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.connection == nil || p.connection.IsClosed() {
		return ErrNotReady
	}

	log.Debug().Str("exchange", p.exchange).Str("topic", topic).RawJSON("body", msg.Body).Msg("publishing event")

	if err := p.channel.Publish(p.exchange, topic, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()

	select {
	case confirm, ok := <-p.notifyConfirm:
		if !ok {
			return ErrNotReady
		}
		if !confirm.Ack {
			return fmt.Errorf("event %s nacked by broker", msg.MessageId)
		}
		return nil
	case <-timer.C:
		return errors.New("publish confirmation timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Error().Err(err).Msg("error closing rabbitmq channel")
		}
	}

	if p.connection != nil && !p.connection.IsClosed() {
		return p.connection.Close()
	}

	return nil
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, topic string, _ any) error {
	log.Debug().Str("topic", topic).Msg("event publishing disabled, dropping event")
	return nil
}
