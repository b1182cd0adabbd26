package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishing(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	msg, err := newPublishing(map[string]string{"ticketId": "tkt-1"}, now)

	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, now, msg.Timestamp)
	assert.NotEmpty(t, msg.MessageId)

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "tkt-1", body["ticketId"])
}

func TestNewPublishing_Unencodable(t *testing.T) {
	_, err := newPublishing(make(chan int), time.Now())

	assert.Error(t, err)
}

func TestPublishWithoutConnection(t *testing.T) {
	p := &RabbitMQPublisher{exchange: "tickets.events"}

	err := p.Publish(context.Background(), "ticket.issued", map[string]string{})

	assert.ErrorIs(t, err, ErrNotReady)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), "ticket.issued", nil))
}
