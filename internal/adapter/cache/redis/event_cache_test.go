package redis_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "github.com/srgjo27/ticketflow/internal/adapter/cache/redis"
	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

func TestGetEvent_Hit(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := cache.NewEventCache(db, time.Minute)

	start := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(map[string]any{
		"id":           "evt-1",
		"name":         "Gala",
		"venue_id":     "v-1",
		"price":        "25.50",
		"max_tickets":  100,
		"tickets_sold": 40,
		"start_time":   start,
		"version":      3,
	})
	require.NoError(t, err)

	mockRedis.ExpectGet("event:evt-1").SetVal(string(raw))

	event, err := c.GetEvent(context.Background(), "evt-1")

	require.NoError(t, err)
	assert.Equal(t, "Gala", event.Name)
	assert.True(t, event.Price.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, 60, event.Remaining())
	assert.True(t, event.StartTime.Equal(start))
	assert.Equal(t, 3, event.Version)

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestGetEvent_Miss(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := cache.NewEventCache(db, time.Minute)

	mockRedis.ExpectGet("event:evt-1").RedisNil()

	_, err := c.GetEvent(context.Background(), "evt-1")

	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestGetEvent_Failure(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := cache.NewEventCache(db, time.Minute)

	mockRedis.ExpectGet("event:evt-1").SetErr(errors.New("connection refused"))

	_, err := c.GetEvent(context.Background(), "evt-1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCacheMiss)
}

func TestSetEventAndInvalidate(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := cache.NewEventCache(db, 45*time.Second)
	ctx := context.Background()

	event := &domain.Event{ID: "evt-1", Name: "Gala", Price: decimal.NewFromInt(10), MaxTickets: 5}
	want := `{"id":"evt-1","name":"Gala","venue":"","venue_id":"","price":"10","max_tickets":5,"tickets_sold":0,` +
		`"start_time":"0001-01-01T00:00:00Z","timezone":"","version":0}`
	mockRedis.ExpectSet("event:evt-1", want, 45*time.Second).SetVal("OK")
	mockRedis.ExpectDel("event:evt-1").SetVal(1)

	require.NoError(t, c.SetEvent(ctx, event))
	require.NoError(t, c.Invalidate(ctx, "evt-1"))

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
