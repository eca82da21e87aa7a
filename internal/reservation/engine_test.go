package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTrain = "12951"
	testClass = int64(1)
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine(t *testing.T, berthCount int) (*Engine, *MemoryStore, *fakeClock) {
	t.Helper()
	store := NewMemoryStore()
	store.AddRoute(testTrain, "NDLS", "AGC", "BCT")
	berths := make([]models.Berth, berthCount)
	for i := range berths {
		berths[i] = models.Berth{
			ID:       int64(100 + i),
			CoachNo:  1 + i/8,
			BerthNo:  1 + i%8,
			SeatType: models.SeatTypes[i%len(models.SeatTypes)],
		}
	}
	store.AddClass(models.Class{ID: testClass, TrainNo: testTrain, Name: "Sleeper", Multiplier: 1}, berths...)
	store.AddEmployee("EMP001")

	clk := &fakeClock{t: testNow}
	eng := NewEngine(store, time.UTC)
	eng.Now = clk.Now
	n := 0
	eng.NewPNR = func(prefix string) string {
		n++
		return fmt.Sprintf("%s%04d", prefix, n)
	}
	return eng, store, clk
}

func testKey() models.JourneyKey {
	return models.NewJourneyKey(testTrain, "NDLS", "BCT", testNow.AddDate(0, 0, 7))
}

func passengerReq(name string) BookingRequest {
	return BookingRequest{
		Key:         testKey(),
		ClassID:     testClass,
		Passenger:   models.Passenger{Name: name, Age: 30},
		Owner:       models.UserOwner("U1"),
		Fare:        1000,
		PaymentMode: models.PaymentUPI,
	}
}

func TestEngineBook_FillsBerthsThenRACThenWaiting(t *testing.T) {
	eng, store, _ := newTestEngine(t, 10)
	ctx := context.Background()

	seen := map[int64]bool{}
	for i := 0; i < 10; i++ {
		b, err := eng.Book(ctx, passengerReq(fmt.Sprintf("P%d", i)))
		require.NoError(t, err)
		require.Equal(t, models.LifecycleConfirmed, b.Outcome.Lifecycle)
		require.NotNil(t, b.Allocation.BerthID)
		require.False(t, seen[*b.Allocation.BerthID], "berth assigned twice")
		seen[*b.Allocation.BerthID] = true
		assert.Equal(t, models.TicketConfirmed, b.Ticket.Status())
	}

	rac, err := eng.Book(ctx, passengerReq("R"))
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleRAC, rac.Outcome.Lifecycle)
	assert.Nil(t, rac.Allocation.BerthID)
	assert.Equal(t, models.TicketWaiting, rac.Ticket.Status())
	assert.Equal(t, models.AllocationRAC, rac.Allocation.Status())

	w1, err := eng.Book(ctx, passengerReq("W1"))
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleWaiting, w1.Outcome.Lifecycle)
	assert.Equal(t, 1, w1.Outcome.WaitingPosition)

	w2, err := eng.Book(ctx, passengerReq("W2"))
	require.NoError(t, err)
	assert.Equal(t, 2, w2.Outcome.WaitingPosition)

	assert.Equal(t, 10, store.Class(testClass).BookedSeats)
}

func TestEngineBook_PassengerPaymentAndHistory(t *testing.T) {
	eng, store, _ := newTestEngine(t, 5)

	b, err := eng.Book(context.Background(), passengerReq("Asha"))
	require.NoError(t, err)

	require.NotNil(t, b.Payment)
	assert.Equal(t, 1000.0, b.Payment.Amount)
	assert.Equal(t, models.PaymentUPI, b.Payment.Mode)
	assert.Equal(t, "PNR0001", b.Ticket.PNR)

	hist := store.History(b.Ticket.PNR)
	require.Len(t, hist, 1)
	assert.Equal(t, models.HistoryBooked, hist[0].Action)
	assert.Contains(t, hist[0].Details, "CONFIRMED")

	txns := store.Transactions(b.Ticket.PNR)
	require.Len(t, txns, 1)
	assert.Equal(t, "payment", txns[0].Type)
}

func TestEngineBook_DateWindow(t *testing.T) {
	eng, _, _ := newTestEngine(t, 5)
	ctx := context.Background()

	cases := []struct {
		offset  int
		wantErr bool
	}{
		{-1, true},
		{0, false},
		{120, false},
		{121, true},
	}
	for _, c := range cases {
		req := passengerReq("D")
		req.Key = models.NewJourneyKey(testTrain, "NDLS", "BCT", testNow.AddDate(0, 0, c.offset))
		_, err := eng.Book(ctx, req)
		if c.wantErr {
			assert.ErrorIs(t, err, domain.ErrInvalidJourneyDate, "offset %d", c.offset)
			assert.True(t, domain.IsValidation(err))
		} else {
			assert.NoError(t, err, "offset %d", c.offset)
		}
	}
}

func TestEngineBook_RouteNotFoundLeavesNoState(t *testing.T) {
	eng, store, _ := newTestEngine(t, 5)
	req := passengerReq("X")
	req.Key = models.NewJourneyKey(testTrain, "BCT", "NDLS", testNow.AddDate(0, 0, 3))

	_, err := eng.Book(context.Background(), req)

	require.ErrorIs(t, err, domain.ErrRouteNotFound)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, 0, store.Class(testClass).BookedSeats)
	assert.Empty(t, store.History("PNR0001"))
}

func TestEngineBook_EmployeeQuota(t *testing.T) {
	eng, _, _ := newTestEngine(t, 20)
	ctx := context.Background()
	req := passengerReq("Ravi Kumar")
	req.Owner = models.EmployeeOwner("EMP001")

	var last Booking
	for i := 0; i < EmployeePolicy.MonthlyQuota; i++ {
		b, err := eng.Book(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 0.0, b.Ticket.Fare)
		assert.Equal(t, 1000.0, b.Ticket.OriginalFare)
		assert.Nil(t, b.Payment)
		last = b
	}
	assert.Equal(t, 10, last.QuotaUsed)
	assert.Equal(t, 0, last.QuotaRemaining)
	assert.Contains(t, last.Ticket.PNR, "EPNR")

	_, err := eng.Book(ctx, req)
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.True(t, domain.IsConflict(err))

	_, err = eng.Cancel(ctx, last.Ticket.PNR, req.Owner)
	require.NoError(t, err)

	_, err = eng.Book(ctx, req)
	assert.NoError(t, err)
}

func TestEngineBook_QuotaResetsNextMonth(t *testing.T) {
	eng, _, clk := newTestEngine(t, 20)
	ctx := context.Background()
	req := passengerReq("Ravi Kumar")
	req.Owner = models.EmployeeOwner("EMP001")
	for i := 0; i < EmployeePolicy.MonthlyQuota; i++ {
		_, err := eng.Book(ctx, req)
		require.NoError(t, err)
	}

	clk.Advance(24 * time.Hour * 25)
	req.Key = models.NewJourneyKey(testTrain, "NDLS", "BCT", clk.Now().AddDate(0, 0, 7))
	_, err := eng.Book(ctx, req)
	assert.NoError(t, err)
}

func TestEngineCancel_FIFOPromotion(t *testing.T) {
	eng, store, clk := newTestEngine(t, 2)
	ctx := context.Background()

	first, err := eng.Book(ctx, passengerReq("C1"))
	require.NoError(t, err)
	_, err = eng.Book(ctx, passengerReq("C2"))
	require.NoError(t, err)
	rac, err := eng.Book(ctx, passengerReq("R1"))
	require.NoError(t, err)
	require.Equal(t, models.LifecycleRAC, rac.Outcome.Lifecycle)

	var waiting []Booking
	for _, name := range []string{"A", "B", "C"} {
		clk.Advance(time.Second)
		w, err := eng.Book(ctx, passengerReq(name))
		require.NoError(t, err)
		require.Equal(t, models.LifecycleWaiting, w.Outcome.Lifecycle)
		waiting = append(waiting, w)
	}

	clk.Advance(time.Minute)
	res, err := eng.Cancel(ctx, first.Ticket.PNR, models.UserOwner("U1"))
	require.NoError(t, err)

	require.True(t, res.BerthFreed)
	require.NotNil(t, res.Promotion.Promoted)
	assert.Equal(t, waiting[0].Ticket.PNR, res.Promotion.Promoted.PNR)
	assert.Equal(t, 1, res.Promotion.Promoted.PreviousPosition)
	assert.Equal(t, *first.Allocation.BerthID, res.Promotion.Promoted.BerthID)
	assert.Equal(t, []PositionUpdate{
		{PNR: waiting[1].Ticket.PNR, Owner: models.UserOwner("U1"), OldPosition: 2, NewPosition: 1},
		{PNR: waiting[2].Ticket.PNR, Owner: models.UserOwner("U1"), OldPosition: 3, NewPosition: 2},
	}, res.Promotion.PositionUpdates)

	promoted, err := eng.Status(ctx, waiting[0].Ticket.PNR, models.UserOwner("U1"))
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleConfirmed, promoted.Ticket.Lifecycle)
	assert.Equal(t, models.TicketConfirmed, promoted.Ticket.Status())
	require.NotNil(t, promoted.Berth)
	assert.Equal(t, *first.Allocation.BerthID, promoted.Berth.ID)
	assert.True(t, promoted.Allocation.AllocatedAt.Equal(clk.Now()), "promotion resets allocation time")
	assert.Equal(t, "Sleeper", promoted.ClassName)

	b, err := eng.Status(ctx, waiting[1].Ticket.PNR, models.UserOwner("U1"))
	require.NoError(t, err)
	assert.Equal(t, 1, b.WaitingPosition)
	assert.Equal(t, 2, b.TotalWaiting)

	c, err := eng.Status(ctx, waiting[2].Ticket.PNR, models.UserOwner("U1"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.WaitingPosition)

	racStatus, err := eng.Status(ctx, rac.Ticket.PNR, models.UserOwner("U1"))
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleRAC, racStatus.Ticket.Lifecycle)

	assert.Equal(t, 2, store.Class(testClass).BookedSeats)
	hist := store.History(waiting[1].Ticket.PNR)
	require.Len(t, hist, 2)
	assert.Equal(t, "Waiting list position improved: 2 -> 1", hist[1].Details)
}

func TestEngineCancel_TieBreakByInsertionOrder(t *testing.T) {
	eng, _, _ := newTestEngine(t, 1)
	ctx := context.Background()

	confirmed, err := eng.Book(ctx, passengerReq("C"))
	require.NoError(t, err)
	_, err = eng.Book(ctx, passengerReq("R"))
	require.NoError(t, err)
	w1, err := eng.Book(ctx, passengerReq("W1"))
	require.NoError(t, err)
	w2, err := eng.Book(ctx, passengerReq("W2"))
	require.NoError(t, err)
	require.True(t, w1.Allocation.AllocatedAt.Equal(w2.Allocation.AllocatedAt))

	res, err := eng.Cancel(ctx, confirmed.Ticket.PNR, models.UserOwner("U1"))
	require.NoError(t, err)
	require.NotNil(t, res.Promotion.Promoted)
	assert.Equal(t, w1.Ticket.PNR, res.Promotion.Promoted.PNR)
}

func TestEngineCancel_WaitingTicketFreesNothing(t *testing.T) {
	eng, store, clk := newTestEngine(t, 1)
	ctx := context.Background()
	owner := models.UserOwner("U1")

	_, err := eng.Book(ctx, passengerReq("C"))
	require.NoError(t, err)
	_, err = eng.Book(ctx, passengerReq("R"))
	require.NoError(t, err)
	clk.Advance(time.Second)
	w1, err := eng.Book(ctx, passengerReq("W1"))
	require.NoError(t, err)
	clk.Advance(time.Second)
	w2, err := eng.Book(ctx, passengerReq("W2"))
	require.NoError(t, err)

	res, err := eng.Cancel(ctx, w1.Ticket.PNR, owner)
	require.NoError(t, err)
	assert.False(t, res.BerthFreed)
	assert.Nil(t, res.Promotion.Promoted)
	assert.Empty(t, res.Promotion.PositionUpdates)
	assert.Equal(t, 1, store.Class(testClass).BookedSeats)

	st, err := eng.Status(ctx, w2.Ticket.PNR, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, st.WaitingPosition)
}

func TestEngineCancel_RefundMath(t *testing.T) {
	eng, _, _ := newTestEngine(t, 5)
	ctx := context.Background()

	p, err := eng.Book(ctx, passengerReq("Asha"))
	require.NoError(t, err)
	res, err := eng.Cancel(ctx, p.Ticket.PNR, models.UserOwner("U1"))
	require.NoError(t, err)
	assert.Equal(t, 850.0, res.Refund)

	req := passengerReq("Ravi Kumar")
	req.Owner = models.EmployeeOwner("EMP001")
	e, err := eng.Book(ctx, req)
	require.NoError(t, err)
	res, err = eng.Cancel(ctx, e.Ticket.PNR, req.Owner)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Refund)
}

func TestEngineCancel_TwiceFailsAndKeepsState(t *testing.T) {
	eng, store, _ := newTestEngine(t, 5)
	ctx := context.Background()
	owner := models.UserOwner("U1")

	b, err := eng.Book(ctx, passengerReq("Asha"))
	require.NoError(t, err)
	first, err := eng.Cancel(ctx, b.Ticket.PNR, owner)
	require.NoError(t, err)
	historyLen := len(store.History(b.Ticket.PNR))

	_, err = eng.Cancel(ctx, b.Ticket.PNR, owner)
	require.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	st, err := eng.Status(ctx, b.Ticket.PNR, owner)
	require.NoError(t, err)
	require.NotNil(t, st.Ticket.RefundAmount)
	assert.Equal(t, first.Refund, *st.Ticket.RefundAmount)
	assert.Equal(t, models.AllocationCancelled, st.Allocation.Status())
	assert.Nil(t, st.Allocation.BerthID)
	assert.Len(t, store.History(b.Ticket.PNR), historyLen)
}

func TestEngineCancel_NotOwnerOrMissing(t *testing.T) {
	eng, _, _ := newTestEngine(t, 5)
	ctx := context.Background()

	b, err := eng.Book(ctx, passengerReq("Asha"))
	require.NoError(t, err)

	_, err = eng.Cancel(ctx, b.Ticket.PNR, models.UserOwner("someone-else"))
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)

	_, err = eng.Cancel(ctx, b.Ticket.PNR, models.EmployeeOwner("U1"))
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)

	_, err = eng.Cancel(ctx, "PNR9999", models.UserOwner("U1"))
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

type failingTx struct {
	Tx
	failOn string
}

func (f failingTx) AppendHistory(ctx context.Context, h models.HistoryEntry) error {
	if f.failOn == "history" {
		return errors.New("disk full")
	}
	return f.Tx.AppendHistory(ctx, h)
}

type failingStore struct {
	inner  *MemoryStore
	failOn string
}

func (s failingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.inner.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		return fn(ctx, failingTx{Tx: tx, failOn: s.failOn})
	})
}

func TestEngine_InfrastructureFailureRollsBack(t *testing.T) {
	eng, store, _ := newTestEngine(t, 1)
	ctx := context.Background()
	owner := models.UserOwner("U1")

	confirmed, err := eng.Book(ctx, passengerReq("C"))
	require.NoError(t, err)
	_, err = eng.Book(ctx, passengerReq("R"))
	require.NoError(t, err)
	w, err := eng.Book(ctx, passengerReq("W"))
	require.NoError(t, err)

	eng.Store = failingStore{inner: store, failOn: "history"}
	_, err = eng.Cancel(ctx, confirmed.Ticket.PNR, owner)
	require.Error(t, err)

	eng.Store = store
	st, err := eng.Status(ctx, confirmed.Ticket.PNR, owner)
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleConfirmed, st.Ticket.Lifecycle)

	ws, err := eng.Status(ctx, w.Ticket.PNR, owner)
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleWaiting, ws.Ticket.Lifecycle)
	assert.Equal(t, 1, ws.WaitingPosition)
	assert.Equal(t, 1, store.Class(testClass).BookedSeats)
}

func TestEngineAvailability(t *testing.T) {
	eng, _, _ := newTestEngine(t, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		req := passengerReq("P")
		req.Preferred = models.SeatLower
		_, err := eng.Book(ctx, req)
		require.NoError(t, err)
	}

	avail, err := eng.Availability(ctx, testKey())
	require.NoError(t, err)
	require.Len(t, avail, 1)
	a := avail[0]
	assert.Equal(t, 10, a.TotalBerths)
	assert.Equal(t, 3, a.Confirmed)
	assert.Equal(t, 7, a.Available)
	assert.Equal(t, 0, a.FreeBySeat[models.SeatLower])
	assert.True(t, a.RACAvailable)

	none, err := eng.Availability(ctx, models.NewJourneyKey(testTrain, "BCT", "NDLS", testNow))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEngineRecomputeBookedSeats(t *testing.T) {
	eng, store, _ := newTestEngine(t, 5)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := eng.Book(ctx, passengerReq("P"))
		require.NoError(t, err)
	}
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.AdjustBookedSeats(ctx, testClass, 7)
	}))
	require.Equal(t, 9, store.Class(testClass).BookedSeats)

	n, err := eng.RecomputeBookedSeats(ctx, testClass)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, store.Class(testClass).BookedSeats)
}

func TestEngineQuotaUsage(t *testing.T) {
	eng, _, _ := newTestEngine(t, 5)
	ctx := context.Background()

	q, err := eng.QuotaUsage(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, 0, q.Used)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), q.From)

	req := passengerReq("Emp")
	req.Owner = models.EmployeeOwner("EMP001")
	_, err = eng.Book(ctx, req)
	require.NoError(t, err)

	q, err = eng.QuotaUsage(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, 1, q.Used)

	_, err = eng.QuotaUsage(ctx, "EMP404")
	assert.True(t, domain.IsNotFound(err))
}

func TestEngineBook_ConcurrentBookingsNeverShareABerth(t *testing.T) {
	eng, store, _ := newTestEngine(t, 10)
	var seq atomic.Int64
	eng.NewPNR = func(prefix string) string {
		return fmt.Sprintf("%s%04d", prefix, seq.Add(1))
	}
	ctx := context.Background()

	const callers = 40
	results := make([]Booking, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = eng.Book(ctx, passengerReq(fmt.Sprintf("P%d", i)))
		}(i)
	}
	wg.Wait()

	counts := map[models.Lifecycle]int{}
	berths := map[int64]string{}
	positions := map[int]bool{}
	for i, b := range results {
		require.NoError(t, errs[i])
		counts[b.Outcome.Lifecycle]++
		switch b.Outcome.Lifecycle {
		case models.LifecycleConfirmed:
			require.NotNil(t, b.Allocation.BerthID)
			if prev, taken := berths[*b.Allocation.BerthID]; taken {
				t.Fatalf("berth %d given to %s and %s", *b.Allocation.BerthID, prev, b.Ticket.PNR)
			}
			berths[*b.Allocation.BerthID] = b.Ticket.PNR
		case models.LifecycleWaiting:
			assert.False(t, positions[b.Outcome.WaitingPosition], "duplicate waiting position %d", b.Outcome.WaitingPosition)
			positions[b.Outcome.WaitingPosition] = true
		}
	}
	assert.Equal(t, 10, counts[models.LifecycleConfirmed])
	assert.Equal(t, 1, counts[models.LifecycleRAC])
	assert.Equal(t, 29, counts[models.LifecycleWaiting])
	assert.Len(t, berths, 10)
	for pos := 1; pos <= 29; pos++ {
		assert.True(t, positions[pos], "missing waiting position %d", pos)
	}

	queue, err := eng.WaitingList(ctx, testKey(), testClass)
	require.NoError(t, err)
	assert.Len(t, queue, 29)

	stored := store.Class(testClass).BookedSeats
	recomputed, err := eng.RecomputeBookedSeats(ctx, testClass)
	require.NoError(t, err)
	assert.Equal(t, recomputed, stored)
}

type lockRecorder struct {
	*MemoryStore
	calls []string
}

func (r *lockRecorder) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return r.MemoryStore.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		return fn(ctx, recordingTx{Tx: tx, rec: r})
	})
}

type recordingTx struct {
	Tx
	rec *lockRecorder
}

func (t recordingTx) LockClass(ctx context.Context, classID int64) (models.Class, error) {
	t.rec.calls = append(t.rec.calls, "class")
	return t.Tx.LockClass(ctx, classID)
}

func (t recordingTx) TicketByPNR(ctx context.Context, pnr string, forUpdate bool) (models.Ticket, models.Allocation, error) {
	if forUpdate {
		t.rec.calls = append(t.rec.calls, "ticket:"+pnr)
	}
	return t.Tx.TicketByPNR(ctx, pnr, forUpdate)
}

func (t recordingTx) PromoteAllocation(ctx context.Context, allocationID, pnr string, berthID int64, at time.Time) error {
	t.rec.calls = append(t.rec.calls, "promote:"+pnr)
	return t.Tx.PromoteAllocation(ctx, allocationID, pnr, berthID, at)
}

func TestEngineCancel_LocksClassBeforeTicket(t *testing.T) {
	eng, store, _ := newTestEngine(t, 1)
	ctx := context.Background()

	confirmed, err := eng.Book(ctx, passengerReq("A"))
	require.NoError(t, err)
	_, err = eng.Book(ctx, passengerReq("B"))
	require.NoError(t, err)
	waiting, err := eng.Book(ctx, passengerReq("C"))
	require.NoError(t, err)
	require.Equal(t, models.LifecycleWaiting, waiting.Outcome.Lifecycle)

	rec := &lockRecorder{MemoryStore: store}
	eng.Store = rec

	_, err = eng.Cancel(ctx, confirmed.Ticket.PNR, models.UserOwner("U1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"class", "ticket:" + confirmed.Ticket.PNR, "promote:" + waiting.Ticket.PNR}, rec.calls)

	rec.calls = nil
	_, err = eng.Cancel(ctx, confirmed.Ticket.PNR, models.UserOwner("U1"))
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Empty(t, rec.calls)
}
