package reservation

import (
	"context"
	"time"

	"railway/internal/domain/models"
)

// Store opens the transactional scope every allocate/cancel sequence runs in.
// Implementations must roll back all writes made through tx when fn returns an error.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of reads and writes the reservation core performs against storage.
// Reads observe the writes already made through the same Tx.
type Tx interface {
	// LockClass takes the per-class write lock that serializes inventory changes.
	LockClass(ctx context.Context, classID int64) (models.Class, error)
	RouteExists(ctx context.Context, key models.JourneyKey, classID int64) (bool, error)
	ClassesOnRoute(ctx context.Context, key models.JourneyKey) ([]models.Class, error)

	// Berths returns the class berths ordered by (coach, berth) ascending.
	Berths(ctx context.Context, classID int64) ([]models.Berth, error)
	OccupiedBerths(ctx context.Context, key models.JourneyKey, classID int64) (Occupancy, error)
	CountAllocations(ctx context.Context, key models.JourneyKey, classID int64, state models.Lifecycle) (int, error)
	// WaitingQueue returns waiting allocations of non-cancelled tickets in FIFO order.
	WaitingQueue(ctx context.Context, key models.JourneyKey, classID int64) ([]models.QueueEntry, error)

	// CountActiveEmployeeBookings locks the employee and counts non-cancelled
	// tickets booked in [from, to).
	CountActiveEmployeeBookings(ctx context.Context, employeeID string, from, to time.Time) (int, error)

	InsertTicket(ctx context.Context, t models.Ticket) error
	// InsertAllocation stores a and fills in its insertion sequence.
	InsertAllocation(ctx context.Context, a *models.Allocation) error
	InsertPayment(ctx context.Context, p models.Payment) error
	AppendHistory(ctx context.Context, h models.HistoryEntry) error
	AppendTransaction(ctx context.Context, t models.TransactionEntry) error
	AdjustBookedSeats(ctx context.Context, classID int64, delta int) error
	RecomputeBookedSeats(ctx context.Context, classID int64) (int, error)

	// TicketByPNR returns domain.ErrTicketNotFound (wrapped) when missing.
	TicketByPNR(ctx context.Context, pnr string, forUpdate bool) (models.Ticket, models.Allocation, error)
	PromoteAllocation(ctx context.Context, allocationID, pnr string, berthID int64, at time.Time) error
	// CancelTicket closes ticket and allocation together and clears the berth reference.
	CancelTicket(ctx context.Context, pnr string, refund float64, at time.Time) error
}

// Occupancy is the set of berth ids held by confirmed allocations for one
// (class, journey key).
type Occupancy map[int64]struct{}

func (o Occupancy) Has(berthID int64) bool {
	_, ok := o[berthID]
	return ok
}
