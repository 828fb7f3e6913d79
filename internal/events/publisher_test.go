package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishingEncodesEvent(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := BookingDecided{
		BookingID: "b-1",
		ItemID:    "i-1",
		OwnerID:   "u-1",
		BookerID:  "u-2",
		Approved:  true,
		Status:    "APPROVED",
		DecidedAt: ts,
	}

	msg, err := newPublishing(event, ts)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, ts, msg.Timestamp)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "b-1", decoded["booking_id"])
	assert.Equal(t, true, decoded["approved"])
	assert.Equal(t, "2026-03-01T12:00:00Z", decoded["decided_at"])
}

func TestNewPublishingRejectsUnencodable(t *testing.T) {
	_, err := newPublishing(make(chan int), time.Now())
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	ctx := context.Background()

	assert.NoError(t, p.BookingCreated(ctx, BookingCreated{BookingID: "b-1"}))
	assert.NoError(t, p.BookingDecided(ctx, BookingDecided{BookingID: "b-1"}))
	assert.NoError(t, p.Close())
}
