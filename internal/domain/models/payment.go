package models

import "time"

// PaymentMode is how a passenger paid.
type PaymentMode string

const (
	PaymentCreditCard PaymentMode = "credit_card"
	PaymentDebitCard  PaymentMode = "debit_card"
	PaymentUPI        PaymentMode = "upi"
	PaymentNetBanking PaymentMode = "net_banking"
	PaymentWallet     PaymentMode = "wallet"
)

// PaymentModes is the accepted set.
var PaymentModes = []PaymentMode{PaymentCreditCard, PaymentDebitCard, PaymentUPI, PaymentNetBanking, PaymentWallet}

// Payment is the payment record written alongside a passenger ticket.
type Payment struct {
	TransactionID string      `json:"transaction_id"`
	PNR           string      `json:"pnr_no"`
	UserID        string      `json:"user_id"`
	Amount        float64     `json:"amount"`
	Type          string      `json:"type"`
	Mode          PaymentMode `json:"mode"`
	Status        string      `json:"status"`
	At            time.Time   `json:"transaction_date"`
}

// TransactionEntry is a passenger-facing money movement (payment or refund).
type TransactionEntry struct {
	ID            string    `json:"transaction_history_id" db:"transaction_history_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	PNR           string    `json:"pnr_no" db:"pnr_no"`
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	Type          string    `json:"transaction_type" db:"transaction_type"`
	Amount        float64   `json:"amount" db:"amount"`
	Status        string    `json:"status" db:"status"`
	Description   string    `json:"description" db:"description"`
	At            time.Time `json:"transaction_time" db:"transaction_time"`
}

// PaymentDetail is a payment joined with the ticket it paid for.
type PaymentDetail struct {
	TransactionID string      `json:"transaction_id" db:"transaction_id"`
	PNR           string      `json:"pnr_no" db:"pnr_no"`
	UserID        string      `json:"user_id" db:"user_id"`
	Amount        float64     `json:"amount" db:"amount"`
	Type          string      `json:"type" db:"type"`
	Mode          PaymentMode `json:"mode" db:"mode"`
	Status        string      `json:"status" db:"status"`
	At            time.Time   `json:"transaction_date" db:"transaction_date"`
	PassengerName string      `json:"passenger_name" db:"passenger_name"`
	TrainNo       string      `json:"train_no" db:"train_no"`
	JourneyDate   time.Time   `json:"journey_date" db:"journey_date"`
	FromStation   string      `json:"from_station" db:"from_station"`
	ToStation     string      `json:"to_station" db:"to_station"`
	TicketStatus  string      `json:"ticket_status" db:"ticket_status"`
	RefundAmount  *float64    `json:"refund_amount,omitempty" db:"refund_amount"`
}
