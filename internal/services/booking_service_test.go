package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/notify"
	"railway/internal/reservation"
)

var svcNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type fakeFares map[int64]float64

func (f fakeFares) Fare(_ context.Context, _, _, _ string, classID int64) (float64, error) {
	fare, ok := f[classID]
	if !ok {
		return 0, domain.FareUnavailable()
	}
	return fare, nil
}

type fakePeople struct {
	users      map[string]models.User
	employees  map[string]models.Employee
	dependents map[string]models.Dependent
}

func (p fakePeople) UserByID(_ context.Context, id string) (models.User, error) {
	u, ok := p.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (p fakePeople) EmployeeByID(_ context.Context, id string) (models.Employee, error) {
	e, ok := p.employees[id]
	if !ok {
		return models.Employee{}, domain.NotFoundError{Resource: "employee " + id}
	}
	return e, nil
}

func (p fakePeople) DependentOf(_ context.Context, employeeID, dependentID string) (models.Dependent, error) {
	d, ok := p.dependents[dependentID]
	if !ok || d.EmployeeID != employeeID {
		return models.Dependent{}, domain.NotFoundError{Resource: "dependent " + dependentID}
	}
	return d, nil
}

func (p fakePeople) Dependents(_ context.Context, employeeID string) ([]models.Dependent, error) {
	var out []models.Dependent
	for _, d := range p.dependents {
		if d.EmployeeID == employeeID {
			out = append(out, d)
		}
	}
	return out, nil
}

type published struct {
	topic string
	ev    notify.TicketEvent
}

type capturePublisher struct {
	mu     sync.Mutex
	events []published
}

func (c *capturePublisher) Publish(topic string, ev notify.TicketEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, published{topic: topic, ev: ev})
	return nil
}

func (c *capturePublisher) topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.topic)
	}
	return out
}

type fixture struct {
	store  *reservation.MemoryStore
	engine *reservation.Engine
	people fakePeople
	events *capturePublisher
	svc    BookingService
}

func newFixture(t *testing.T, berthCount int) *fixture {
	t.Helper()
	store := reservation.NewMemoryStore()
	store.AddRoute("12951", "NDLS", "AGC", "BCT")
	berths := make([]models.Berth, berthCount)
	for i := range berths {
		berths[i] = models.Berth{ID: int64(100 + i), CoachNo: 1, BerthNo: i + 1, SeatType: models.SeatTypes[i%len(models.SeatTypes)]}
	}
	store.AddClass(models.Class{ID: 1, TrainNo: "12951", Name: "Sleeper", CoachType: "SL", Multiplier: 1}, berths...)
	store.AddClass(models.Class{ID: 2, TrainNo: "12951", Name: "AC 3 Tier", CoachType: "3A", Multiplier: 2.5})
	store.AddEmployee("EMP001")

	eng := reservation.NewEngine(store, time.UTC)
	eng.Now = func() time.Time { return svcNow }
	n := 0
	eng.NewPNR = func(prefix string) string {
		n++
		return fmt.Sprintf("%s%010d", prefix, n)
	}

	people := fakePeople{
		users:     map[string]models.User{"U1": {ID: "U1", Name: "Asha Rao", Email: "asha@mail.test"}},
		employees: map[string]models.Employee{"EMP001": {ID: "EMP001", Name: "Ravi Kumar"}},
		dependents: map[string]models.Dependent{
			"DEP1": {ID: "DEP1", EmployeeID: "EMP001", FirstName: "Meena", LastName: "Kumar", Relation: "Spouse"},
		},
	}
	events := &capturePublisher{}
	return &fixture{
		store:  store,
		engine: eng,
		people: people,
		events: events,
		svc: BookingService{
			Engine: eng,
			Fares:  fakeFares{1: 815},
			People: people,
			Events: events,
		},
	}
}

var (
	passenger = domain.Principal{Kind: models.OwnerUser, ID: "U1", Name: "Asha Rao"}
	employee  = domain.Principal{Kind: models.OwnerEmployee, ID: "EMP001", Name: "Ravi Kumar"}
)

func bookingInput(name string) BookingInput {
	return BookingInput{
		TrainNo:       "12951",
		Source:        "ndls",
		Destination:   "BCT",
		JourneyDate:   svcNow.AddDate(0, 0, 7).Format("2006-01-02"),
		ClassID:       1,
		PassengerName: name,
		PassengerAge:  30,
		PreferredSeat: "side_lower",
		PaymentMode:   "UPI",
	}
}

func TestBookingService_PassengerConfirmed(t *testing.T) {
	f := newFixture(t, 5)

	res, err := f.svc.Book(context.Background(), passenger, bookingInput("Asha Rao"))
	require.NoError(t, err)

	assert.Equal(t, "PNR0000000001", res.PNR)
	assert.Equal(t, "confirmed", res.Status)
	assert.Equal(t, "confirmed", res.AllocationStatus)
	assert.Equal(t, "Sleeper", res.ClassName)
	assert.Equal(t, "NDLS", res.Source)
	assert.Equal(t, string(models.SeatSideLower), res.SeatType)
	assert.True(t, res.PreferenceMet)
	assert.Equal(t, 815.0, res.Fare)
	assert.NotEmpty(t, res.TransactionID)
	assert.Nil(t, res.QuotaUsed)

	require.Equal(t, []string{notify.TopicTicketBooked}, f.events.topics())
	assert.Equal(t, int64(103), f.events.events[0].ev.BerthID)
	assert.Equal(t, 1, f.store.Class(1).BookedSeats)
}

func TestBookingService_RejectsBeforeAnyWrite(t *testing.T) {
	cases := []struct {
		name   string
		who    domain.Principal
		mutate func(*BookingInput)
		want   error
	}{
		{"payment mode", passenger, func(in *BookingInput) { in.PaymentMode = "cash" }, domain.ErrInvalidPaymentMode},
		{"missing payment mode", passenger, func(in *BookingInput) { in.PaymentMode = "" }, domain.ErrInvalidPaymentMode},
		{"fare", passenger, func(in *BookingInput) { in.ClassID = 2 }, domain.ErrFareUnavailable},
		{"past date", passenger, func(in *BookingInput) { in.JourneyDate = svcNow.AddDate(0, 0, -1).Format("2006-01-02") }, domain.ErrInvalidJourneyDate},
		{"too far", passenger, func(in *BookingInput) { in.JourneyDate = svcNow.AddDate(0, 0, 121).Format("2006-01-02") }, domain.ErrInvalidJourneyDate},
		{"employee name", employee, func(in *BookingInput) { in.PassengerName = "Someone Else" }, domain.ErrIdentityMismatch},
		{"dependent name", employee, func(in *BookingInput) { in.DependentID = "DEP1"; in.PassengerName = "Ravi Kumar" }, domain.ErrIdentityMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 5)
			in := bookingInput("Ravi Kumar")
			if tc.who.Kind == models.OwnerUser {
				in.PassengerName = "Asha Rao"
			}
			tc.mutate(&in)

			_, err := f.svc.Book(context.Background(), tc.who, in)
			require.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.events.topics())
			assert.Equal(t, 0, f.store.Class(1).BookedSeats)
		})
	}
}

func TestBookingService_ValidationErrors(t *testing.T) {
	f := newFixture(t, 1)
	in := bookingInput("Asha Rao")
	in.JourneyDate = "10/03/2026"
	_, err := f.svc.Book(context.Background(), passenger, in)
	assert.True(t, domain.IsValidation(err))

	in = bookingInput("  ")
	_, err = f.svc.Book(context.Background(), passenger, in)
	assert.True(t, domain.IsValidation(err))

	in = bookingInput("Asha Rao")
	in.Destination = "NDLS"
	_, err = f.svc.Book(context.Background(), passenger, in)
	assert.True(t, domain.IsValidation(err))
}

func TestBookingService_EmployeeSelfAndDependent(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	self, err := f.svc.Book(ctx, employee, bookingInput("ravi  KUMAR"))
	require.NoError(t, err)
	assert.Equal(t, "EPNR0000000001", self.PNR)
	assert.Equal(t, 0.0, self.Fare)
	assert.Equal(t, 815.0, self.OriginalFare)
	assert.Empty(t, self.TransactionID)
	require.NotNil(t, self.QuotaUsed)
	assert.Equal(t, 1, *self.QuotaUsed)
	assert.Equal(t, 9, *self.QuotaRemaining)

	in := bookingInput("Meena Kumar")
	in.DependentID = "DEP1"
	dep, err := f.svc.Book(ctx, employee, in)
	require.NoError(t, err)
	assert.Equal(t, 2, *dep.QuotaUsed)

	hist := f.store.History(dep.PNR)
	require.Len(t, hist, 1)
	assert.Contains(t, hist[0].Details, "Dependent: Meena Kumar (Spouse)")

	in.DependentID = "DEP404"
	_, err = f.svc.Book(ctx, employee, in)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingService_UnknownPreferenceIgnored(t *testing.T) {
	f := newFixture(t, 3)
	in := bookingInput("Asha Rao")
	in.PreferredSeat = "window"

	res, err := f.svc.Book(context.Background(), passenger, in)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", res.Status)
	assert.False(t, res.PreferenceMet)
	assert.False(t, res.AlternativeProvided)
	assert.Equal(t, int64(100), *res.BerthID)
}

func TestBookingService_CancelPromotesAndNotifies(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	first, err := f.svc.Book(ctx, passenger, bookingInput("Asha Rao"))
	require.NoError(t, err)
	rac, err := f.svc.Book(ctx, passenger, bookingInput("Asha Rao"))
	require.NoError(t, err)
	require.Equal(t, "waiting", rac.Status)
	require.Equal(t, "rac", rac.AllocationStatus)

	in := bookingInput("Ravi Kumar")
	w1, err := f.svc.Book(ctx, employee, in)
	require.NoError(t, err)
	require.Equal(t, 1, w1.WaitingPosition)
	w2, err := f.svc.Book(ctx, passenger, bookingInput("Asha Rao"))
	require.NoError(t, err)
	require.Equal(t, 2, w2.WaitingPosition)

	res, err := f.svc.Cancel(ctx, passenger, first.PNR)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Status)
	assert.Equal(t, 692.75, res.Refund)
	assert.True(t, res.BerthFreed)
	require.NotNil(t, res.Promoted)
	assert.Equal(t, w1.PNR, res.Promoted.PNR)
	assert.Equal(t, int64(100), res.Promoted.BerthID)
	require.Len(t, res.PositionUpdates, 1)
	assert.Equal(t, w2.PNR, res.PositionUpdates[0].PNR)

	topics := f.events.topics()
	assert.Equal(t, []string{
		notify.TopicTicketBooked, notify.TopicTicketBooked, notify.TopicTicketBooked, notify.TopicTicketBooked,
		notify.TopicTicketCancelled, notify.TopicTicketPromoted,
	}, topics)
	promoted := f.events.events[len(f.events.events)-1].ev
	assert.Equal(t, models.EmployeeOwner("EMP001"), promoted.Owner)
	assert.Equal(t, w1.PNR, promoted.PNR)

	_, err = f.svc.Cancel(ctx, passenger, first.PNR)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	_, err = f.svc.Cancel(ctx, passenger, w1.PNR)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}
