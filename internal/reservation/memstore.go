package reservation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"
)

// MemoryStore is an in-process Store. It keeps an occupancy index keyed by
// (class, journey key) so berth lookups never scan allocations. Transactions
// run one at a time on a copy of the state that replaces the original on success.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type occupancyKey struct {
	classID int64
	journey string
}

type memState struct {
	classes      map[int64]models.Class
	berths       map[int64][]models.Berth
	stops        map[string]map[string]int
	employees    map[string]bool
	tickets      map[string]models.Ticket
	allocations  map[string]models.Allocation
	occupancy    map[occupancyKey]map[int64]string
	seq          int64
	payments     []models.Payment
	history      []models.HistoryEntry
	transactions []models.TransactionEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		classes:     map[int64]models.Class{},
		berths:      map[int64][]models.Berth{},
		stops:       map[string]map[string]int{},
		employees:   map[string]bool{},
		tickets:     map[string]models.Ticket{},
		allocations: map[string]models.Allocation{},
		occupancy:   map[occupancyKey]map[int64]string{},
	}}
}

// AddRoute registers the stations a train calls at, in order.
func (m *MemoryStore) AddRoute(trainNo string, stations ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := map[string]int{}
	for i, s := range stations {
		seq[s] = i + 1
	}
	m.state.stops[trainNo] = seq
}

// AddClass registers a class and its berths.
func (m *MemoryStore) AddClass(c models.Class, berths ...models.Berth) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]models.Berth, 0, len(berths))
	for _, b := range berths {
		b.ClassID = c.ID
		list = append(list, b)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CoachNo != list[j].CoachNo {
			return list[i].CoachNo < list[j].CoachNo
		}
		return list[i].BerthNo < list[j].BerthNo
	})
	m.state.classes[c.ID] = c
	m.state.berths[c.ID] = list
}

// AddEmployee registers an employee id for quota checks.
func (m *MemoryStore) AddEmployee(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.employees[id] = true
}

// History returns a copy of the booking history rows for pnr.
func (m *MemoryStore) History(pnr string) []models.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.HistoryEntry
	for _, h := range m.state.history {
		if h.PNR == pnr {
			out = append(out, h)
		}
	}
	return out
}

// Transactions returns a copy of the transaction rows for pnr.
func (m *MemoryStore) Transactions(pnr string) []models.TransactionEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TransactionEntry
	for _, t := range m.state.transactions {
		if t.PNR == pnr {
			out = append(out, t)
		}
	}
	return out
}

// Class returns the stored class row.
func (m *MemoryStore) Class(id int64) models.Class {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.classes[id]
}

func (m *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := m.state.clone()
	if err := fn(ctx, &memTx{s: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (s *memState) clone() *memState {
	out := &memState{
		classes:      make(map[int64]models.Class, len(s.classes)),
		berths:       s.berths,
		stops:        s.stops,
		employees:    s.employees,
		tickets:      make(map[string]models.Ticket, len(s.tickets)),
		allocations:  make(map[string]models.Allocation, len(s.allocations)),
		occupancy:    make(map[occupancyKey]map[int64]string, len(s.occupancy)),
		seq:          s.seq,
		payments:     append([]models.Payment(nil), s.payments...),
		history:      append([]models.HistoryEntry(nil), s.history...),
		transactions: append([]models.TransactionEntry(nil), s.transactions...),
	}
	for k, v := range s.classes {
		out.classes[k] = v
	}
	for k, v := range s.tickets {
		out.tickets[k] = v
	}
	for k, v := range s.allocations {
		out.allocations[k] = v
	}
	for k, set := range s.occupancy {
		cp := make(map[int64]string, len(set))
		for b, pnr := range set {
			cp[b] = pnr
		}
		out.occupancy[k] = cp
	}
	return out
}

type memTx struct {
	s *memState
}

func occKey(key models.JourneyKey, classID int64) occupancyKey {
	return occupancyKey{classID: classID, journey: key.String()}
}

func (t *memTx) LockClass(_ context.Context, classID int64) (models.Class, error) {
	c, ok := t.s.classes[classID]
	if !ok {
		return models.Class{}, domain.NotFoundError{Resource: fmt.Sprintf("class %d", classID)}
	}
	return c, nil
}

func (t *memTx) RouteExists(_ context.Context, key models.JourneyKey, classID int64) (bool, error) {
	c, ok := t.s.classes[classID]
	if !ok || c.TrainNo != key.TrainNo {
		return false, nil
	}
	return t.runs(key), nil
}

func (t *memTx) runs(key models.JourneyKey) bool {
	stops := t.s.stops[key.TrainNo]
	src, okSrc := stops[key.Source]
	dst, okDst := stops[key.Destination]
	return okSrc && okDst && src < dst
}

func (t *memTx) ClassesOnRoute(_ context.Context, key models.JourneyKey) ([]models.Class, error) {
	if !t.runs(key) {
		return nil, nil
	}
	var out []models.Class
	for _, c := range t.s.classes {
		if c.TrainNo == key.TrainNo {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Multiplier != out[j].Multiplier {
			return out[i].Multiplier > out[j].Multiplier
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *memTx) Berths(_ context.Context, classID int64) ([]models.Berth, error) {
	return append([]models.Berth(nil), t.s.berths[classID]...), nil
}

func (t *memTx) OccupiedBerths(_ context.Context, key models.JourneyKey, classID int64) (Occupancy, error) {
	set := t.s.occupancy[occKey(key, classID)]
	out := make(Occupancy, len(set))
	for id := range set {
		out[id] = struct{}{}
	}
	return out, nil
}

func (t *memTx) CountAllocations(_ context.Context, key models.JourneyKey, classID int64, state models.Lifecycle) (int, error) {
	n := 0
	for _, a := range t.s.allocations {
		if a.ClassID != classID || a.Lifecycle != state {
			continue
		}
		if t.s.tickets[a.PNR].Key == key {
			n++
		}
	}
	return n, nil
}

func (t *memTx) WaitingQueue(_ context.Context, key models.JourneyKey, classID int64) ([]models.QueueEntry, error) {
	var out []models.QueueEntry
	for _, a := range t.s.allocations {
		if a.ClassID != classID || a.Lifecycle != models.LifecycleWaiting || a.BerthID != nil {
			continue
		}
		tk := t.s.tickets[a.PNR]
		if tk.Key != key || tk.Lifecycle == models.LifecycleCancelled {
			continue
		}
		out = append(out, models.QueueEntry{
			AllocationID:  a.ID,
			PNR:           a.PNR,
			PassengerName: tk.Passenger.Name,
			Owner:         tk.Owner,
			AllocatedAt:   a.AllocatedAt,
			Seq:           a.Seq,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AllocatedAt.Equal(out[j].AllocatedAt) {
			return out[i].AllocatedAt.Before(out[j].AllocatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (t *memTx) CountActiveEmployeeBookings(_ context.Context, employeeID string, from, to time.Time) (int, error) {
	if !t.s.employees[employeeID] {
		return 0, domain.NotFoundError{Resource: "employee " + employeeID}
	}
	n := 0
	for _, tk := range t.s.tickets {
		if tk.Owner.Kind != models.OwnerEmployee || tk.Owner.ID != employeeID {
			continue
		}
		if tk.Lifecycle == models.LifecycleCancelled {
			continue
		}
		if !tk.BookedAt.Before(from) && tk.BookedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) InsertTicket(_ context.Context, tk models.Ticket) error {
	if _, dup := t.s.tickets[tk.PNR]; dup {
		return fmt.Errorf("duplicate pnr %s", tk.PNR)
	}
	t.s.tickets[tk.PNR] = tk
	return nil
}

func (t *memTx) InsertAllocation(_ context.Context, a *models.Allocation) error {
	tk, ok := t.s.tickets[a.PNR]
	if !ok {
		return fmt.Errorf("allocation for unknown pnr %s", a.PNR)
	}
	if a.BerthID != nil {
		set := t.s.occupancy[occKey(tk.Key, a.ClassID)]
		if set == nil {
			set = map[int64]string{}
			t.s.occupancy[occKey(tk.Key, a.ClassID)] = set
		}
		if holder, taken := set[*a.BerthID]; taken {
			return fmt.Errorf("berth %d already held by %s", *a.BerthID, holder)
		}
		set[*a.BerthID] = a.PNR
	}
	t.s.seq++
	a.Seq = t.s.seq
	t.s.allocations[a.PNR] = *a
	return nil
}

func (t *memTx) InsertPayment(_ context.Context, p models.Payment) error {
	t.s.payments = append(t.s.payments, p)
	return nil
}

func (t *memTx) AppendHistory(_ context.Context, h models.HistoryEntry) error {
	t.s.history = append(t.s.history, h)
	return nil
}

func (t *memTx) AppendTransaction(_ context.Context, tr models.TransactionEntry) error {
	t.s.transactions = append(t.s.transactions, tr)
	return nil
}

func (t *memTx) AdjustBookedSeats(_ context.Context, classID int64, delta int) error {
	c, ok := t.s.classes[classID]
	if !ok {
		return fmt.Errorf("class %d not found", classID)
	}
	c.BookedSeats += delta
	if c.BookedSeats < 0 {
		c.BookedSeats = 0
	}
	t.s.classes[classID] = c
	return nil
}

func (t *memTx) RecomputeBookedSeats(_ context.Context, classID int64) (int, error) {
	c, ok := t.s.classes[classID]
	if !ok {
		return 0, fmt.Errorf("class %d not found", classID)
	}
	n := 0
	for _, a := range t.s.allocations {
		if a.ClassID == classID && a.Lifecycle == models.LifecycleConfirmed {
			n++
		}
	}
	c.BookedSeats = n
	t.s.classes[classID] = c
	return n, nil
}

func (t *memTx) TicketByPNR(_ context.Context, pnr string, _ bool) (models.Ticket, models.Allocation, error) {
	tk, ok := t.s.tickets[pnr]
	if !ok {
		return models.Ticket{}, models.Allocation{}, domain.TicketNotFound(pnr)
	}
	return tk, t.s.allocations[pnr], nil
}

func (t *memTx) PromoteAllocation(_ context.Context, allocationID, pnr string, berthID int64, at time.Time) error {
	a, ok := t.s.allocations[pnr]
	if !ok || a.ID != allocationID || a.Lifecycle != models.LifecycleWaiting {
		return fmt.Errorf("allocation %s is not waiting", allocationID)
	}
	tk := t.s.tickets[pnr]
	set := t.s.occupancy[occKey(tk.Key, a.ClassID)]
	if set == nil {
		set = map[int64]string{}
		t.s.occupancy[occKey(tk.Key, a.ClassID)] = set
	}
	if holder, taken := set[berthID]; taken {
		return fmt.Errorf("berth %d already held by %s", berthID, holder)
	}
	set[berthID] = pnr

	a.Lifecycle = models.LifecycleConfirmed
	a.BerthID = &berthID
	a.AllocatedAt = at
	t.s.allocations[pnr] = a
	tk.Lifecycle = models.LifecycleConfirmed
	t.s.tickets[pnr] = tk
	return nil
}

func (t *memTx) CancelTicket(_ context.Context, pnr string, refund float64, at time.Time) error {
	tk, ok := t.s.tickets[pnr]
	if !ok {
		return domain.TicketNotFound(pnr)
	}
	if tk.Lifecycle == models.LifecycleCancelled {
		return domain.AlreadyCancelled(pnr)
	}
	a := t.s.allocations[pnr]
	if a.BerthID != nil {
		delete(t.s.occupancy[occKey(tk.Key, a.ClassID)], *a.BerthID)
	}
	a.Lifecycle = models.LifecycleCancelled
	a.BerthID = nil
	t.s.allocations[pnr] = a

	cancelledAt := at
	amount := refund
	tk.Lifecycle = models.LifecycleCancelled
	tk.CancelledAt = &cancelledAt
	tk.RefundAmount = &amount
	t.s.tickets[pnr] = tk
	return nil
}
