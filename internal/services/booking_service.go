package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/metrics"
	"railway/internal/notify"
	"railway/internal/reservation"
	"railway/internal/utils"
)

var tracer = otel.Tracer("railway/services")

// FareSource is the fare oracle consulted before every booking.
type FareSource interface {
	Fare(ctx context.Context, trainNo, source, destination string, classID int64) (float64, error)
}

// People resolves the identities a booking may be made for.
type People interface {
	UserByID(ctx context.Context, id string) (models.User, error)
	EmployeeByID(ctx context.Context, id string) (models.Employee, error)
	DependentOf(ctx context.Context, employeeID, dependentID string) (models.Dependent, error)
	Dependents(ctx context.Context, employeeID string) ([]models.Dependent, error)
}

// BookingService applies the owner policy around the reservation engine.
type BookingService struct {
	Engine    *reservation.Engine
	Fares     FareSource
	People    People
	Events    notify.Publisher
	Location  *time.Location
	RequestID string
}

// BookingInput is the caller-supplied part of a booking request. Field rules
// are enforced by gin's binding validator when the request is bound.
type BookingInput struct {
	TrainNo       string `json:"train_no" binding:"required"`
	Source        string `json:"source_station" binding:"required"`
	Destination   string `json:"destination_station" binding:"required"`
	JourneyDate   string `json:"journey_date" binding:"required,datetime=2006-01-02"`
	ClassID       int64  `json:"class_id" binding:"required,gt=0"`
	PassengerName string `json:"passenger_name" binding:"required"`
	PassengerAge  int    `json:"passenger_age" binding:"min=0,max=125"`
	Gender        string `json:"passenger_gender"`
	PreferredSeat string `json:"preferred_seat_type"`
	PaymentMode   string `json:"payment_mode"`
	DependentID   string `json:"dependent_id"`
}

// BookingResult is returned to the caller after commit.
type BookingResult struct {
	PNR                 string  `json:"pnr_no"`
	Status              string  `json:"status"`
	AllocationStatus    string  `json:"allocation_status"`
	TrainNo             string  `json:"train_no"`
	Source              string  `json:"source_station"`
	Destination         string  `json:"destination_station"`
	JourneyDate         string  `json:"journey_date"`
	ClassName           string  `json:"class_name"`
	PassengerName       string  `json:"passenger_name"`
	BerthID             *int64  `json:"berth_id,omitempty"`
	CoachNo             int     `json:"coach_no,omitempty"`
	BerthNo             int     `json:"berth_no,omitempty"`
	SeatType            string  `json:"seat_type,omitempty"`
	PreferenceMet       bool    `json:"preference_met"`
	AlternativeProvided bool    `json:"alternative_provided"`
	WaitingPosition     int     `json:"waiting_list_position,omitempty"`
	Fare                float64 `json:"fare"`
	OriginalFare        float64 `json:"original_fare"`
	TransactionID       string  `json:"transaction_id,omitempty"`
	QuotaUsed           *int    `json:"quota_used,omitempty"`
	QuotaRemaining      *int    `json:"quota_remaining,omitempty"`
	Message             string  `json:"message"`
}

// CancellationResult is returned after a committed cancellation.
type CancellationResult struct {
	PNR             string                       `json:"pnr_no"`
	Status          string                       `json:"status"`
	Refund          float64                      `json:"refund_amount"`
	CancelledAt     time.Time                    `json:"cancellation_time"`
	BerthFreed      bool                         `json:"berth_freed"`
	Promoted        *reservation.PromotedTicket  `json:"waiting_list_promoted"`
	PositionUpdates []reservation.PositionUpdate `json:"waiting_list_updates"`
	Message         string                       `json:"message"`
}

func (s BookingService) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	if s.Engine != nil && s.Engine.Location != nil {
		return s.Engine.Location
	}
	return time.Local
}

// Book validates the request for the caller's owner kind and books one ticket.
func (s BookingService) Book(ctx context.Context, who domain.Principal, in BookingInput) (res BookingResult, err error) {
	ctx, span := tracer.Start(ctx, "booking.book", trace.WithAttributes(
		attribute.String("owner.kind", string(who.Kind)),
		attribute.String("train_no", in.TrainNo),
		attribute.Int64("class_id", in.ClassID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, domain.Code(err))
			metrics.BookingFailuresTotal.WithLabelValues(domain.Code(err)).Inc()
			utils.LogError(s.RequestID, "booking", "book", err)
		}
		span.End()
	}()

	req, err := s.buildRequest(ctx, who, in)
	if err != nil {
		return BookingResult{}, err
	}

	booking, err := s.Engine.Book(ctx, req)
	if err != nil {
		return BookingResult{}, err
	}

	res = toBookingResult(booking)
	span.SetAttributes(attribute.String("pnr_no", res.PNR), attribute.String("status", string(booking.Outcome.Lifecycle)))
	metrics.BookingsTotal.WithLabelValues(string(who.Kind), string(booking.Outcome.Lifecycle)).Inc()
	utils.LogEvent(s.RequestID, "booking", "book", fmt.Sprintf("pnr=%s owner=%s:%s status=%s", res.PNR, who.Kind, who.ID, booking.Outcome.Lifecycle))

	ev := ticketEvent(booking.Ticket, s.RequestID)
	ev.ClassName = booking.ClassName
	ev.Status = string(booking.Outcome.Lifecycle)
	ev.WaitingPosition = booking.Outcome.WaitingPosition
	ev.Fare = booking.Ticket.Fare
	if booking.Allocation.BerthID != nil {
		ev.BerthID = *booking.Allocation.BerthID
	}
	s.publish(notify.TopicTicketBooked, ev)
	return res, nil
}

func (s BookingService) buildRequest(ctx context.Context, who domain.Principal, in BookingInput) (reservation.BookingRequest, error) {
	var req reservation.BookingRequest

	trainNo := strings.TrimSpace(in.TrainNo)
	source := strings.ToUpper(strings.TrimSpace(in.Source))
	destination := strings.ToUpper(strings.TrimSpace(in.Destination))
	name := utils.NormalizeSpace(in.PassengerName)
	switch {
	case source == destination:
		return req, domain.ValidationError{Field: "destination_station", Msg: "must differ from source"}
	case name == "":
		return req, domain.ValidationError{Field: "passenger_name", Msg: "is required"}
	}

	date, err := utils.ParseDate(in.JourneyDate, s.loc())
	if err != nil {
		return req, domain.ValidationError{Field: "journey_date", Msg: "must be YYYY-MM-DD", Err: err}
	}

	// Unknown preferences are ignored rather than rejected.
	preferred, _ := models.ParseSeatType(in.PreferredSeat)

	req = reservation.BookingRequest{
		Key:       models.NewJourneyKey(trainNo, source, destination, date),
		ClassID:   in.ClassID,
		Passenger: models.Passenger{Name: name, Age: in.PassengerAge, Gender: strings.TrimSpace(in.Gender)},
		Preferred: preferred,
		Owner:     who.Owner(),
	}

	switch who.Kind {
	case models.OwnerEmployee:
		label, err := s.checkIdentity(ctx, who.ID, name, strings.TrimSpace(in.DependentID))
		if err != nil {
			return req, err
		}
		req.Label = label
	default:
		mode, err := parsePaymentMode(in.PaymentMode)
		if err != nil {
			return req, err
		}
		req.PaymentMode = mode
	}

	if err := reservation.ValidateJourneyDate(req.Key.Date, s.now()); err != nil {
		return req, err
	}
	fare, err := s.Fares.Fare(ctx, trainNo, source, destination, in.ClassID)
	if err != nil {
		return req, err
	}
	if fare <= 0 {
		return req, domain.FareUnavailable()
	}
	req.Fare = fare
	return req, nil
}

func (s BookingService) now() time.Time {
	if s.Engine != nil && s.Engine.Now != nil {
		return s.Engine.Now().In(s.loc())
	}
	return time.Now().In(s.loc())
}

// checkIdentity enforces that an employee books for themselves or a registered dependent.
func (s BookingService) checkIdentity(ctx context.Context, employeeID, passengerName, dependentID string) (string, error) {
	if dependentID != "" {
		dep, err := s.People.DependentOf(ctx, employeeID, dependentID)
		if err != nil {
			return "", err
		}
		if !utils.SameName(dep.FullName(), passengerName) {
			return "", domain.IdentityMismatch(dep.FullName())
		}
		return fmt.Sprintf("Dependent: %s (%s)", dep.FullName(), dep.Relation), nil
	}
	emp, err := s.People.EmployeeByID(ctx, employeeID)
	if err != nil {
		return "", err
	}
	if !utils.SameName(emp.Name, passengerName) {
		return "", domain.IdentityMismatch(emp.Name)
	}
	return "Self", nil
}

func parsePaymentMode(raw string) (models.PaymentMode, error) {
	mode := models.PaymentMode(strings.ToLower(strings.TrimSpace(raw)))
	if !lo.Contains(models.PaymentModes, mode) {
		allowed := lo.Map(models.PaymentModes, func(m models.PaymentMode, _ int) string { return string(m) })
		return "", domain.InvalidPaymentMode(allowed)
	}
	return mode, nil
}

// Cancel cancels a ticket owned by the caller and notifies whoever was promoted.
func (s BookingService) Cancel(ctx context.Context, who domain.Principal, pnr string) (res CancellationResult, err error) {
	ctx, span := tracer.Start(ctx, "booking.cancel", trace.WithAttributes(
		attribute.String("owner.kind", string(who.Kind)),
		attribute.String("pnr_no", pnr),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, domain.Code(err))
			metrics.BookingFailuresTotal.WithLabelValues(domain.Code(err)).Inc()
			utils.LogError(s.RequestID, "booking", "cancel", err)
		}
		span.End()
	}()

	c, err := s.Engine.Cancel(ctx, strings.TrimSpace(pnr), who.Owner())
	if err != nil {
		return CancellationResult{}, err
	}

	res = CancellationResult{
		PNR:             c.Ticket.PNR,
		Status:          string(models.TicketCancelled),
		Refund:          c.Refund,
		CancelledAt:     c.CancelledAt,
		BerthFreed:      c.BerthFreed,
		Promoted:        c.Promotion.Promoted,
		PositionUpdates: c.Promotion.PositionUpdates,
		Message:         "Ticket cancelled successfully",
	}
	if res.PositionUpdates == nil {
		res.PositionUpdates = []reservation.PositionUpdate{}
	}

	metrics.CancellationsTotal.WithLabelValues(string(who.Kind)).Inc()
	utils.LogEvent(s.RequestID, "booking", "cancel", fmt.Sprintf("pnr=%s refund=%.2f berth_freed=%t", c.Ticket.PNR, c.Refund, c.BerthFreed))

	ev := ticketEvent(c.Ticket, s.RequestID)
	ev.Status = string(models.TicketCancelled)
	ev.Refund = c.Refund
	s.publish(notify.TopicTicketCancelled, ev)

	if p := c.Promotion.Promoted; p != nil {
		metrics.WaitlistPromotionsTotal.Inc()
		utils.LogEvent(s.RequestID, "waitlist", "promote", fmt.Sprintf("pnr=%s berth=%d from_position=%d", p.PNR, p.BerthID, p.PreviousPosition))
		pev := ticketEvent(c.Ticket, s.RequestID)
		pev.PNR = p.PNR
		pev.Owner = p.Owner
		pev.PassengerName = p.PassengerName
		pev.Status = string(models.LifecycleConfirmed)
		pev.BerthID = p.BerthID
		s.publish(notify.TopicTicketPromoted, pev)
	}
	return res, nil
}

// publish runs after commit; a failure is logged and never fails the request.
func (s BookingService) publish(topic string, ev notify.TicketEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(topic, ev); err != nil {
		utils.LogError(s.RequestID, "notify", topic, err)
	}
}

func ticketEvent(t models.Ticket, requestID string) notify.TicketEvent {
	return notify.TicketEvent{
		PNR:           t.PNR,
		Owner:         t.Owner,
		PassengerName: t.Passenger.Name,
		TrainNo:       t.Key.TrainNo,
		Source:        t.Key.Source,
		Destination:   t.Key.Destination,
		JourneyDate:   t.Key.Day(),
		At:            time.Now(),
		RequestID:     requestID,
	}
}

func toBookingResult(b reservation.Booking) BookingResult {
	res := BookingResult{
		PNR:                 b.Ticket.PNR,
		Status:              string(b.Ticket.Status()),
		AllocationStatus:    string(b.Allocation.Status()),
		TrainNo:             b.Ticket.Key.TrainNo,
		Source:              b.Ticket.Key.Source,
		Destination:         b.Ticket.Key.Destination,
		JourneyDate:         b.Ticket.Key.Day(),
		ClassName:           b.ClassName,
		PassengerName:       b.Ticket.Passenger.Name,
		BerthID:             b.Allocation.BerthID,
		PreferenceMet:       b.Outcome.PreferenceMet,
		AlternativeProvided: b.Outcome.AlternativeProvided,
		WaitingPosition:     b.Outcome.WaitingPosition,
		Fare:                b.Ticket.Fare,
		OriginalFare:        b.Ticket.OriginalFare,
	}
	if br := b.Outcome.Berth; br != nil {
		res.CoachNo = br.CoachNo
		res.BerthNo = br.BerthNo
		res.SeatType = string(br.SeatType)
	}
	if b.Payment != nil {
		res.TransactionID = b.Payment.TransactionID
	}
	if b.Ticket.Owner.Kind == models.OwnerEmployee {
		used, remaining := b.QuotaUsed, b.QuotaRemaining
		res.QuotaUsed, res.QuotaRemaining = &used, &remaining
	}

	switch b.Outcome.Lifecycle {
	case models.LifecycleConfirmed:
		res.Message = "Booking confirmed"
		if b.Outcome.AlternativeProvided {
			res.Message = fmt.Sprintf("Booking confirmed with alternative seat type %s", res.SeatType)
		}
	case models.LifecycleRAC:
		res.Message = "Booked under RAC"
	default:
		res.Message = fmt.Sprintf("Booked on waiting list at position %d", b.Outcome.WaitingPosition)
	}
	return res
}
