package models

import "time"

// Lifecycle is the single authoritative state of a booking. The ticket-level and
// allocation-level status columns are both derived from it.
type Lifecycle string

const (
	LifecycleConfirmed Lifecycle = "confirmed"
	LifecycleRAC       Lifecycle = "rac"
	LifecycleWaiting   Lifecycle = "waiting"
	LifecycleCancelled Lifecycle = "cancelled"
)

// TicketStatus is the legacy ticket column: RAC is reported as waiting.
type TicketStatus string

const (
	TicketConfirmed TicketStatus = "confirmed"
	TicketWaiting   TicketStatus = "waiting"
	TicketCancelled TicketStatus = "cancelled"
)

// AllocationStatus is the legacy allocation column.
type AllocationStatus string

const (
	AllocationConfirmed AllocationStatus = "confirmed"
	AllocationRAC       AllocationStatus = "rac"
	AllocationWaiting   AllocationStatus = "waiting"
	AllocationCancelled AllocationStatus = "cancelled"
)

func (l Lifecycle) TicketStatus() TicketStatus {
	switch l {
	case LifecycleConfirmed:
		return TicketConfirmed
	case LifecycleCancelled:
		return TicketCancelled
	default:
		return TicketWaiting
	}
}

func (l Lifecycle) AllocationStatus() AllocationStatus {
	return AllocationStatus(l)
}

// HoldsBerth reports whether a booking in this state references a berth.
func (l Lifecycle) HoldsBerth() bool {
	return l == LifecycleConfirmed
}

// LifecycleOf rebuilds the lifecycle from the two stored columns. A cancelled
// value on either side wins; otherwise the allocation column is authoritative.
func LifecycleOf(ticket TicketStatus, alloc AllocationStatus) Lifecycle {
	if ticket == TicketCancelled || alloc == AllocationCancelled {
		return LifecycleCancelled
	}
	switch alloc {
	case AllocationConfirmed:
		return LifecycleConfirmed
	case AllocationRAC:
		return LifecycleRAC
	case AllocationWaiting:
		return LifecycleWaiting
	}
	if ticket == TicketConfirmed {
		return LifecycleConfirmed
	}
	return LifecycleWaiting
}

// Passenger is the traveller named on a ticket.
type Passenger struct {
	Name   string `json:"passenger_name"`
	Age    int    `json:"passenger_age,omitempty"`
	Gender string `json:"passenger_gender,omitempty"`
}

// Ticket is one passenger-journey booking. It is never deleted.
type Ticket struct {
	PNR          string     `json:"pnr_no"`
	Passenger    Passenger  `json:"passenger"`
	Key          JourneyKey `json:"-"`
	Owner        Owner      `json:"owner"`
	Fare         float64    `json:"fare"`
	OriginalFare float64    `json:"original_fare"`
	Lifecycle    Lifecycle  `json:"lifecycle"`
	BookedAt     time.Time  `json:"booking_time"`
	CancelledAt  *time.Time `json:"cancellation_time,omitempty"`
	RefundAmount *float64   `json:"refund_amount,omitempty"`
}

func (t Ticket) Status() TicketStatus { return t.Lifecycle.TicketStatus() }

// Allocation is the seat-assignment side of a ticket (1:1 with Ticket).
type Allocation struct {
	ID          string    `json:"allocation_id"`
	PNR         string    `json:"pnr_no"`
	ClassID     int64     `json:"class_id"`
	BerthID     *int64    `json:"berth_id,omitempty"`
	Lifecycle   Lifecycle `json:"lifecycle"`
	AllocatedAt time.Time `json:"allocation_time"`
	Seq         int64     `json:"-"`
}

func (a Allocation) Status() AllocationStatus { return a.Lifecycle.AllocationStatus() }

// QueueEntry is a waiting allocation as seen by the waiting-list queue.
type QueueEntry struct {
	AllocationID  string
	PNR           string
	PassengerName string
	Owner         Owner
	AllocatedAt   time.Time
	Seq           int64
}

// HistoryAction is the verb recorded in booking history.
type HistoryAction string

const (
	HistoryBooked    HistoryAction = "booked"
	HistoryModified  HistoryAction = "modified"
	HistoryCancelled HistoryAction = "cancelled"
)

// HistoryEntry is an append-only audit row shown to the ticket owner.
type HistoryEntry struct {
	ID      string        `json:"history_id" db:"history_id"`
	Owner   Owner         `json:"-" db:"-"`
	PNR     string        `json:"pnr_no" db:"pnr_no"`
	Action  HistoryAction `json:"action" db:"action"`
	Status  TicketStatus  `json:"booking_status" db:"booking_status"`
	Details string        `json:"details" db:"details"`
	At      time.Time     `json:"action_time" db:"action_time"`
}
