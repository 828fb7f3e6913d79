// Package events publishes booking lifecycle events to RabbitMQ.
package events

import "time"

const (
	QueueBookingCreated = "booking.created"
	QueueBookingDecided = "booking.decided"
)

// BookingCreated is published when a booker requests an item.
// It lets the owner be notified without querying the primary database.
type BookingCreated struct {
	BookingID string    `json:"booking_id"`
	ItemID    string    `json:"item_id"`
	ItemName  string    `json:"item_name"`
	OwnerID   string    `json:"owner_id"`
	BookerID  string    `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// BookingDecided is published after the owner approves or rejects a booking.
type BookingDecided struct {
	BookingID string    `json:"booking_id"`
	ItemID    string    `json:"item_id"`
	OwnerID   string    `json:"owner_id"`
	BookerID  string    `json:"booker_id"`
	Approved  bool      `json:"approved"`
	Status    string    `json:"status"`
	DecidedAt time.Time `json:"decided_at"`
}
