package reservation

import (
	"context"
	"fmt"
	"time"

	"railway/internal/domain/models"
)

// Promotion is what a freed berth did to the waiting list.
type Promotion struct {
	Promoted        *PromotedTicket  `json:"waiting_list_promoted"`
	PositionUpdates []PositionUpdate `json:"waiting_list_updates"`
}

// PromotedTicket is the queue head that received the freed berth.
type PromotedTicket struct {
	PNR              string       `json:"pnr_no"`
	PassengerName    string       `json:"passenger_name"`
	Owner            models.Owner `json:"-"`
	PreviousPosition int          `json:"previous_position"`
	BerthID          int64        `json:"berth_id"`
}

// PositionUpdate records a waiting ticket moving up the queue.
type PositionUpdate struct {
	PNR         string       `json:"pnr_no"`
	Owner       models.Owner `json:"-"`
	OldPosition int          `json:"old_position"`
	NewPosition int          `json:"new_position"`
}

// QueueManager keeps the per-(class, journey key) waiting list in FIFO order.
type QueueManager struct {
	NewID func(prefix string) string
}

// Promote moves the head of the waiting queue into freedBerthID and records the
// position change of everyone behind it. Positions themselves are never stored.
func (q QueueManager) Promote(ctx context.Context, tx Tx, key models.JourneyKey, classID, freedBerthID int64, now time.Time) (Promotion, error) {
	out := Promotion{PositionUpdates: []PositionUpdate{}}

	queue, err := tx.WaitingQueue(ctx, key, classID)
	if err != nil {
		return out, fmt.Errorf("failed to load waiting queue: %w", err)
	}
	if len(queue) == 0 {
		return out, nil
	}

	head := queue[0]
	if err := tx.PromoteAllocation(ctx, head.AllocationID, head.PNR, freedBerthID, now); err != nil {
		return out, fmt.Errorf("failed to promote %s: %w", head.PNR, err)
	}
	if err := tx.AdjustBookedSeats(ctx, classID, 1); err != nil {
		return out, fmt.Errorf("failed to update booked seats: %w", err)
	}
	if err := tx.AppendHistory(ctx, models.HistoryEntry{
		ID:      q.newID("HIST"),
		Owner:   head.Owner,
		PNR:     head.PNR,
		Action:  models.HistoryModified,
		Status:  models.TicketConfirmed,
		Details: fmt.Sprintf("Upgraded from waiting list to confirmed. Position 1 -> CONFIRMED. Berth: %d", freedBerthID),
		At:      now,
	}); err != nil {
		return out, fmt.Errorf("failed to record promotion: %w", err)
	}
	out.Promoted = &PromotedTicket{
		PNR:              head.PNR,
		PassengerName:    head.PassengerName,
		Owner:            head.Owner,
		PreviousPosition: 1,
		BerthID:          freedBerthID,
	}

	for i, e := range queue[1:] {
		oldPos := i + 2
		upd := PositionUpdate{PNR: e.PNR, Owner: e.Owner, OldPosition: oldPos, NewPosition: oldPos - 1}
		if err := tx.AppendHistory(ctx, models.HistoryEntry{
			ID:      q.newID("HIST"),
			Owner:   e.Owner,
			PNR:     e.PNR,
			Action:  models.HistoryModified,
			Status:  models.TicketWaiting,
			Details: fmt.Sprintf("Waiting list position improved: %d -> %d", upd.OldPosition, upd.NewPosition),
			At:      now,
		}); err != nil {
			return out, fmt.Errorf("failed to record position change for %s: %w", e.PNR, err)
		}
		out.PositionUpdates = append(out.PositionUpdates, upd)
	}
	return out, nil
}

// Position returns the 1-based rank of pnr in queue and the queue length.
// Rank is 0 when pnr is not waiting.
func Position(queue []models.QueueEntry, pnr string) (int, int) {
	for i, e := range queue {
		if e.PNR == pnr {
			return i + 1, len(queue)
		}
	}
	return 0, len(queue)
}

// Chance is the rough confirmation likelihood shown for a waiting position.
func Chance(position int) string {
	switch {
	case position <= 0:
		return ""
	case position <= 5:
		return "HIGH"
	case position <= 10:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func (q QueueManager) newID(prefix string) string {
	if q.NewID != nil {
		return q.NewID(prefix)
	}
	return NewID(prefix)
}
