package notify

import (
	"time"

	"railway/internal/domain/models"
)

const (
	TopicTicketBooked    = "ticket.booked"
	TopicTicketCancelled = "ticket.cancelled"
	TopicTicketPromoted  = "ticket.promoted"
)

// Topics is every topic the email notifier subscribes to.
var Topics = []string{TopicTicketBooked, TopicTicketCancelled, TopicTicketPromoted}

// TicketEvent is published after the transaction that produced it has committed.
type TicketEvent struct {
	PNR             string       `json:"pnr_no"`
	Owner           models.Owner `json:"owner"`
	PassengerName   string       `json:"passenger_name"`
	TrainNo         string       `json:"train_no"`
	Source          string       `json:"source"`
	Destination     string       `json:"destination"`
	JourneyDate     string       `json:"journey_date"`
	ClassName       string       `json:"class_name,omitempty"`
	Status          string       `json:"status"`
	BerthID         int64        `json:"berth_id,omitempty"`
	WaitingPosition int          `json:"waiting_position,omitempty"`
	Fare            float64      `json:"fare,omitempty"`
	Refund          float64      `json:"refund,omitempty"`
	At              time.Time    `json:"at"`
	RequestID       string       `json:"request_id,omitempty"`
}

// Publisher is what services depend on; a nil Publisher disables events.
type Publisher interface {
	Publish(topic string, ev TicketEvent) error
}
