package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"
)

// Engine runs booking and cancellation against a Store, one transaction each.
type Engine struct {
	Store     Store
	Allocator Allocator
	Queue     QueueManager
	Now       func() time.Time
	Location  *time.Location
	NewPNR    func(prefix string) string
	NewID     func(prefix string) string
}

// NewEngine wires an Engine with the default clock and id generators.
func NewEngine(store Store, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{Store: store, Location: loc}
}

// BookingRequest is a trusted booking command; the caller has already resolved
// the owner, the listed fare and any identity or payment checks.
type BookingRequest struct {
	Key         models.JourneyKey
	ClassID     int64
	ClassName   string
	Passenger   models.Passenger
	Preferred   models.SeatType
	Owner       models.Owner
	Fare        float64
	PaymentMode models.PaymentMode
	// Label describes the traveller in history, e.g. "Dependent: A B (Son)".
	Label string
}

// Booking is the persisted result of a successful booking.
type Booking struct {
	Ticket         models.Ticket
	Allocation     models.Allocation
	Outcome        Outcome
	ClassName      string
	Payment        *models.Payment
	QuotaUsed      int
	QuotaRemaining int
}

// Cancellation is the persisted result of a successful cancellation.
type Cancellation struct {
	Ticket      models.Ticket
	Refund      float64
	CancelledAt time.Time
	BerthFreed  bool
	Promotion   Promotion
}

// Status is a ticket as read back by its owner, with queue position computed on read.
type Status struct {
	Ticket          models.Ticket
	Allocation      models.Allocation
	Berth           *models.Berth
	ClassName       string
	WaitingPosition int
	TotalWaiting    int
}

// ClassAvailability is the read-only inventory view of one class.
type ClassAvailability struct {
	Class        models.Class
	TotalBerths  int
	Confirmed    int
	RAC          int
	Waiting      int
	Available    int
	FreeBySeat   map[models.SeatType]int
	RACAvailable bool
}

// Book validates the date window, then allocates and persists in one transaction.
func (e *Engine) Book(ctx context.Context, req BookingRequest) (Booking, error) {
	var out Booking
	policy := PolicyFor(req.Owner.Kind)
	now := e.now()

	if err := ValidateJourneyDate(req.Key.Date, now); err != nil {
		return out, err
	}

	err := e.Store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		class, err := tx.LockClass(ctx, req.ClassID)
		if err != nil {
			return err
		}
		if class.TrainNo != req.Key.TrainNo {
			return domain.RouteNotFound(req.Key.TrainNo, req.Key.Source, req.Key.Destination)
		}
		className := req.ClassName
		if className == "" {
			className = class.Name
		}

		used := 0
		if policy.MonthlyQuota > 0 {
			from, to := MonthWindow(now)
			used, err = tx.CountActiveEmployeeBookings(ctx, req.Owner.ID, from, to)
			if err != nil {
				return fmt.Errorf("failed to count employee bookings: %w", err)
			}
			if used >= policy.MonthlyQuota {
				return domain.QuotaExceeded(used, policy.MonthlyQuota)
			}
		}

		outcome, err := e.Allocator.Allocate(ctx, tx, req.Key, req.ClassID, req.Preferred)
		if err != nil {
			return err
		}

		ticket := models.Ticket{
			PNR:          e.newPNR(policy.PNRPrefix),
			Passenger:    req.Passenger,
			Key:          req.Key,
			Owner:        req.Owner,
			Fare:         policy.ChargedFare(req.Fare),
			OriginalFare: RoundMoney(req.Fare),
			Lifecycle:    outcome.Lifecycle,
			BookedAt:     now,
		}
		if err := tx.InsertTicket(ctx, ticket); err != nil {
			return fmt.Errorf("failed to insert ticket: %w", err)
		}

		alloc := models.Allocation{
			ID:          e.newID("ALLOC"),
			PNR:         ticket.PNR,
			ClassID:     req.ClassID,
			Lifecycle:   outcome.Lifecycle,
			AllocatedAt: now,
		}
		if outcome.Berth != nil {
			id := outcome.Berth.ID
			alloc.BerthID = &id
		}
		if err := tx.InsertAllocation(ctx, &alloc); err != nil {
			return fmt.Errorf("failed to insert allocation: %w", err)
		}
		if outcome.Lifecycle.HoldsBerth() {
			if err := tx.AdjustBookedSeats(ctx, req.ClassID, 1); err != nil {
				return fmt.Errorf("failed to update booked seats: %w", err)
			}
		}

		var payment *models.Payment
		if policy.RequiresPayment {
			payment = &models.Payment{
				TransactionID: e.newID("TXN"),
				PNR:           ticket.PNR,
				UserID:        req.Owner.ID,
				Amount:        ticket.Fare,
				Type:          "payment",
				Mode:          req.PaymentMode,
				Status:        "success",
				At:            now,
			}
			if err := tx.InsertPayment(ctx, *payment); err != nil {
				return fmt.Errorf("failed to insert payment: %w", err)
			}
			if err := tx.AppendTransaction(ctx, models.TransactionEntry{
				ID:            e.newID("TXH"),
				UserID:        req.Owner.ID,
				PNR:           ticket.PNR,
				TransactionID: payment.TransactionID,
				Type:          "payment",
				Amount:        payment.Amount,
				Status:        "success",
				Description:   fmt.Sprintf("Payment for ticket %s. Mode: %s", ticket.PNR, payment.Mode),
				At:            now,
			}); err != nil {
				return fmt.Errorf("failed to record payment transaction: %w", err)
			}
		}

		if err := tx.AppendHistory(ctx, models.HistoryEntry{
			ID:      e.newID("HIST"),
			Owner:   req.Owner,
			PNR:     ticket.PNR,
			Action:  models.HistoryBooked,
			Status:  ticket.Status(),
			Details: bookingDetails(req, policy, className, ticket, outcome),
			At:      now,
		}); err != nil {
			return fmt.Errorf("failed to record booking history: %w", err)
		}

		out = Booking{
			Ticket:     ticket,
			Allocation: alloc,
			Outcome:    outcome,
			ClassName:  className,
			Payment:    payment,
		}
		if policy.MonthlyQuota > 0 {
			out.QuotaUsed = used + 1
			out.QuotaRemaining = policy.MonthlyQuota - out.QuotaUsed
		}
		return nil
	})
	if err != nil {
		return Booking{}, err
	}
	return out, nil
}

// Cancel closes the ticket owned by owner and, when it held a berth, promotes
// the head of the waiting list into it. Everything commits or nothing does.
func (e *Engine) Cancel(ctx context.Context, pnr string, owner models.Owner) (Cancellation, error) {
	var out Cancellation
	pnr = strings.TrimSpace(pnr)
	policy := PolicyFor(owner.Kind)
	now := e.now()

	err := e.Store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		// Lock order is class, then ticket; booking and promotion follow it too.
		ticket, alloc, err := tx.TicketByPNR(ctx, pnr, false)
		if err != nil {
			return err
		}
		if ticket.Owner != owner {
			return domain.TicketNotFound(pnr)
		}
		if ticket.Lifecycle == models.LifecycleCancelled {
			return domain.AlreadyCancelled(pnr)
		}
		if _, err := tx.LockClass(ctx, alloc.ClassID); err != nil {
			return err
		}
		ticket, alloc, err = tx.TicketByPNR(ctx, pnr, true)
		if err != nil {
			return err
		}
		if ticket.Lifecycle == models.LifecycleCancelled {
			return domain.AlreadyCancelled(pnr)
		}

		refund := policy.Refund(ticket.Fare)
		if err := tx.CancelTicket(ctx, pnr, refund, now); err != nil {
			return err
		}

		promotion := Promotion{PositionUpdates: []PositionUpdate{}}
		if alloc.BerthID != nil {
			if err := tx.AdjustBookedSeats(ctx, alloc.ClassID, -1); err != nil {
				return fmt.Errorf("failed to update booked seats: %w", err)
			}
			promotion, err = e.queue().Promote(ctx, tx, ticket.Key, alloc.ClassID, *alloc.BerthID, now)
			if err != nil {
				return err
			}
		}

		if policy.ChargesFare {
			if err := tx.AppendTransaction(ctx, models.TransactionEntry{
				ID:            e.newID("REF"),
				UserID:        owner.ID,
				PNR:           pnr,
				TransactionID: e.newID("TXN"),
				Type:          "refund",
				Amount:        refund,
				Status:        "success",
				Description:   fmt.Sprintf("Refund for cancelled ticket %s (%.0f%% of %.2f)", pnr, policy.RefundRate*100, ticket.Fare),
				At:            now,
			}); err != nil {
				return fmt.Errorf("failed to record refund transaction: %w", err)
			}
		}

		if err := tx.AppendHistory(ctx, models.HistoryEntry{
			ID:      e.newID("HIST"),
			Owner:   owner,
			PNR:     pnr,
			Action:  models.HistoryCancelled,
			Status:  models.TicketCancelled,
			Details: cancellationDetails(refund, alloc, promotion),
			At:      now,
		}); err != nil {
			return fmt.Errorf("failed to record cancellation history: %w", err)
		}

		ticket.Lifecycle = models.LifecycleCancelled
		ticket.CancelledAt = &now
		ticket.RefundAmount = &refund
		out = Cancellation{
			Ticket:      ticket,
			Refund:      refund,
			CancelledAt: now,
			BerthFreed:  alloc.BerthID != nil,
			Promotion:   promotion,
		}
		return nil
	})
	if err != nil {
		return Cancellation{}, err
	}
	return out, nil
}

// Status reads a ticket for its owner and computes its current waiting position.
func (e *Engine) Status(ctx context.Context, pnr string, owner models.Owner) (Status, error) {
	var out Status
	pnr = strings.TrimSpace(pnr)
	err := e.Store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		ticket, alloc, err := tx.TicketByPNR(ctx, pnr, false)
		if err != nil {
			return err
		}
		if ticket.Owner != owner {
			return domain.TicketNotFound(pnr)
		}
		out = Status{Ticket: ticket, Allocation: alloc}

		classes, err := tx.ClassesOnRoute(ctx, ticket.Key)
		if err != nil {
			return fmt.Errorf("failed to load classes: %w", err)
		}
		for _, c := range classes {
			if c.ID == alloc.ClassID {
				out.ClassName = c.Name
			}
		}

		if alloc.BerthID != nil {
			berths, err := tx.Berths(ctx, alloc.ClassID)
			if err != nil {
				return fmt.Errorf("failed to load berths: %w", err)
			}
			for i := range berths {
				if berths[i].ID == *alloc.BerthID {
					out.Berth = &berths[i]
					break
				}
			}
		}
		if alloc.Lifecycle == models.LifecycleWaiting {
			queue, err := tx.WaitingQueue(ctx, ticket.Key, alloc.ClassID)
			if err != nil {
				return fmt.Errorf("failed to load waiting queue: %w", err)
			}
			out.WaitingPosition, out.TotalWaiting = Position(queue, pnr)
		}
		return nil
	})
	if err != nil {
		return Status{}, err
	}
	return out, nil
}

// WaitingList returns the current FIFO queue of one (class, journey key).
func (e *Engine) WaitingList(ctx context.Context, key models.JourneyKey, classID int64) ([]models.QueueEntry, error) {
	var out []models.QueueEntry
	err := e.Store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		q, err := tx.WaitingQueue(ctx, key, classID)
		out = q
		return err
	})
	return out, err
}

// Availability derives per-class counts for a journey from confirmed allocations.
func (e *Engine) Availability(ctx context.Context, key models.JourneyKey) ([]ClassAvailability, error) {
	var out []ClassAvailability
	err := e.Store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		classes, err := tx.ClassesOnRoute(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to load classes: %w", err)
		}
		for _, c := range classes {
			inv, err := LoadInventory(ctx, tx, key, c.ID)
			if err != nil {
				return err
			}
			out = append(out, summarize(c, inv))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecomputeBookedSeats resets the cached class counter to the number of
// confirmed allocations and returns the new value.
func (e *Engine) RecomputeBookedSeats(ctx context.Context, classID int64) (int, error) {
	var n int
	err := e.Store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.LockClass(ctx, classID); err != nil {
			return err
		}
		var err error
		n, err = tx.RecomputeBookedSeats(ctx, classID)
		return err
	})
	return n, err
}

// Quota is an employee's free-booking usage in the month window [From, To).
type Quota struct {
	Used  int
	Limit int
	From  time.Time
	To    time.Time
}

// QuotaUsage reports how many free bookings the employee has used this month.
func (e *Engine) QuotaUsage(ctx context.Context, employeeID string) (Quota, error) {
	q := Quota{Limit: EmployeePolicy.MonthlyQuota}
	q.From, q.To = MonthWindow(e.now())
	err := e.Store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		n, err := tx.CountActiveEmployeeBookings(ctx, employeeID, q.From, q.To)
		q.Used = n
		return err
	})
	if err != nil {
		return Quota{}, err
	}
	return q, nil
}

func summarize(c models.Class, inv Inventory) ClassAvailability {
	free := make(map[models.SeatType]int, len(models.SeatTypes))
	for _, st := range models.SeatTypes {
		free[st] = 0
	}
	confirmedCount := 0
	for _, b := range inv.Berths {
		if inv.Occupied.Has(b.ID) {
			confirmedCount++
			continue
		}
		free[b.SeatType]++
	}
	return ClassAvailability{
		Class:        c,
		TotalBerths:  len(inv.Berths),
		Confirmed:    confirmedCount,
		RAC:          inv.RAC,
		Waiting:      inv.Waiting,
		Available:    len(inv.Berths) - confirmedCount,
		FreeBySeat:   free,
		RACAvailable: RACAvailable(inv.RAC, len(inv.Berths)),
	}
}

func bookingDetails(req BookingRequest, p Policy, className string, t models.Ticket, o Outcome) string {
	label := req.Label
	if label == "" {
		label = req.Passenger.Name
	}
	prefix := ""
	fare := fmt.Sprintf("Fare: %.2f", t.Fare)
	if !p.ChargesFare {
		prefix = "FREE "
		fare = fmt.Sprintf("Original fare: %.2f (free for employee)", t.OriginalFare)
	}
	switch o.Lifecycle {
	case models.LifecycleConfirmed:
		seat := string(o.Berth.SeatType)
		switch {
		case o.PreferenceMet:
			seat += " (preferred)"
		case o.AlternativeProvided:
			seat += fmt.Sprintf(" (alternative to %s)", req.Preferred)
		}
		return fmt.Sprintf("%sCONFIRMED booking for %s. Train: %s, Class: %s, Seat: %s, Berth: %d. %s",
			prefix, label, t.Key.TrainNo, className, seat, o.Berth.ID, fare)
	case models.LifecycleRAC:
		return fmt.Sprintf("%sRAC booking for %s. Train: %s, Class: %s. %s",
			prefix, label, t.Key.TrainNo, className, fare)
	default:
		return fmt.Sprintf("%sWAITING LIST booking for %s. Train: %s, Class: %s, Position: %d. %s",
			prefix, label, t.Key.TrainNo, className, o.WaitingPosition, fare)
	}
}

func cancellationDetails(refund float64, alloc models.Allocation, p Promotion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket cancelled. Refund: %.2f.", refund)
	if alloc.BerthID != nil {
		fmt.Fprintf(&b, " Berth %d freed.", *alloc.BerthID)
	}
	if p.Promoted != nil {
		fmt.Fprintf(&b, " Waiting list ticket %s promoted to confirmed.", p.Promoted.PNR)
		if n := len(p.PositionUpdates); n > 0 {
			fmt.Fprintf(&b, " %d other waiting tickets moved up.", n)
		}
	}
	return b.String()
}

func (e *Engine) now() time.Time {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	if e.Location != nil {
		now = now.In(e.Location)
	}
	return now
}

func (e *Engine) queue() QueueManager {
	q := e.Queue
	if q.NewID == nil {
		q.NewID = e.newID
	}
	return q
}

func (e *Engine) newPNR(prefix string) string {
	if e.NewPNR != nil {
		return e.NewPNR(prefix)
	}
	return NewPNR(prefix)
}

func (e *Engine) newID(prefix string) string {
	if e.NewID != nil {
		return e.NewID(prefix)
	}
	return NewID(prefix)
}
