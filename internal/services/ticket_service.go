package services

import (
	"context"
	"strings"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/reservation"
	"railway/internal/utils"
)

// HistoryReader serves the owner-facing audit trail.
type HistoryReader interface {
	BookingHistory(ctx context.Context, owner models.Owner, limit int) ([]models.HistoryEntry, error)
	Transactions(ctx context.Context, userID string, limit int) ([]models.TransactionEntry, error)
}

// PaymentReader looks up a single payment of a user.
type PaymentReader interface {
	PaymentByTransaction(ctx context.Context, userID, transactionID string) (models.PaymentDetail, error)
}

type TicketService struct {
	Engine    *reservation.Engine
	History   HistoryReader
	Payments  PaymentReader
	RequestID string
}

// PNRStatus is a ticket as shown to its owner.
type PNRStatus struct {
	PNR                string        `json:"pnr_no"`
	Status             string        `json:"status"`
	TicketStatus       string        `json:"ticket_status"`
	AllocationStatus   string        `json:"allocation_status"`
	PassengerName      string        `json:"passenger_name"`
	TrainNo            string        `json:"train_no"`
	Source             string        `json:"source_station"`
	Destination        string        `json:"destination_station"`
	JourneyDate        string        `json:"journey_date"`
	ClassID            int64         `json:"class_id"`
	ClassName          string        `json:"class_name,omitempty"`
	Berth              *models.Berth `json:"berth,omitempty"`
	WaitingPosition    int           `json:"waiting_list_position,omitempty"`
	TotalWaiting       int           `json:"total_waiting,omitempty"`
	ConfirmationChance string        `json:"confirmation_chance,omitempty"`
	Fare               float64       `json:"fare"`
	OriginalFare       float64       `json:"original_fare"`
	BookedAt           time.Time     `json:"booking_time"`
	CancelledAt        *time.Time    `json:"cancellation_time,omitempty"`
	RefundAmount       *float64      `json:"refund_amount,omitempty"`
	Owner              models.Owner  `json:"owner"`
}

func (s TicketService) Status(ctx context.Context, who domain.Principal, pnr string) (PNRStatus, error) {
	st, err := s.Engine.Status(ctx, strings.TrimSpace(pnr), who.Owner())
	if err != nil {
		return PNRStatus{}, err
	}
	utils.LogEvent(s.RequestID, "tickets", "status", "pnr="+st.Ticket.PNR)
	return toPNRStatus(st), nil
}

func toPNRStatus(st reservation.Status) PNRStatus {
	t := st.Ticket
	out := PNRStatus{
		PNR:              t.PNR,
		Status:           strings.ToUpper(string(t.Lifecycle)),
		TicketStatus:     string(t.Status()),
		AllocationStatus: string(st.Allocation.Status()),
		PassengerName:    t.Passenger.Name,
		TrainNo:          t.Key.TrainNo,
		Source:           t.Key.Source,
		Destination:      t.Key.Destination,
		JourneyDate:      t.Key.Day(),
		ClassID:          st.Allocation.ClassID,
		ClassName:        st.ClassName,
		Berth:            st.Berth,
		WaitingPosition:  st.WaitingPosition,
		TotalWaiting:     st.TotalWaiting,
		Fare:             t.Fare,
		OriginalFare:     t.OriginalFare,
		BookedAt:         t.BookedAt,
		CancelledAt:      t.CancelledAt,
		RefundAmount:     t.RefundAmount,
		Owner:            t.Owner,
	}
	if t.Lifecycle == models.LifecycleWaiting {
		out.ConfirmationChance = reservation.Chance(st.WaitingPosition)
	}
	return out
}

func (s TicketService) BookingHistory(ctx context.Context, who domain.Principal, limit int) ([]models.HistoryEntry, error) {
	return s.History.BookingHistory(ctx, who.Owner(), limit)
}

// Transactions lists payments and refunds; employees have none.
func (s TicketService) Transactions(ctx context.Context, who domain.Principal, limit int) ([]models.TransactionEntry, error) {
	if who.Kind != models.OwnerUser {
		return []models.TransactionEntry{}, nil
	}
	return s.History.Transactions(ctx, who.ID, limit)
}

// Payment returns one of the caller's payments; employees never pay.
func (s TicketService) Payment(ctx context.Context, who domain.Principal, transactionID string) (models.PaymentDetail, error) {
	transactionID = strings.TrimSpace(transactionID)
	if who.Kind != models.OwnerUser || transactionID == "" {
		return models.PaymentDetail{}, domain.NotFoundError{Resource: "payment " + transactionID}
	}
	p, err := s.Payments.PaymentByTransaction(ctx, who.ID, transactionID)
	if err != nil {
		return models.PaymentDetail{}, err
	}
	utils.LogEvent(s.RequestID, "tickets", "payment", "transaction_id="+p.TransactionID)
	return p, nil
}
