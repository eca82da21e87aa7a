package reservation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"

	"github.com/google/uuid"
)

// MaxAdvanceDays is how far ahead a journey may be booked, inclusive.
const MaxAdvanceDays = 120

// ValidateJourneyDate checks journey against [today, today+MaxAdvanceDays] by
// calendar day in now's location.
func ValidateJourneyDate(journey, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(journey.Year(), journey.Month(), journey.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) || day.After(today.AddDate(0, 0, MaxAdvanceDays)) {
		return domain.InvalidJourneyDate(MaxAdvanceDays)
	}
	return nil
}

// Policy parameterizes booking and cancellation by owner kind.
type Policy struct {
	Kind            models.OwnerKind
	PNRPrefix       string
	ChargesFare     bool
	RequiresPayment bool
	RefundRate      float64
	MonthlyQuota    int
}

var (
	PassengerPolicy = Policy{
		Kind:            models.OwnerUser,
		PNRPrefix:       "PNR",
		ChargesFare:     true,
		RequiresPayment: true,
		RefundRate:      0.85,
	}
	EmployeePolicy = Policy{
		Kind:         models.OwnerEmployee,
		PNRPrefix:    "EPNR",
		MonthlyQuota: 10,
	}
)

// PolicyFor returns the policy of an owner kind.
func PolicyFor(kind models.OwnerKind) Policy {
	if kind == models.OwnerEmployee {
		return EmployeePolicy
	}
	return PassengerPolicy
}

// ChargedFare is what the owner pays for a ticket listed at fare.
func (p Policy) ChargedFare(fare float64) float64 {
	if !p.ChargesFare {
		return 0
	}
	return RoundMoney(fare)
}

// Refund is the amount returned when a ticket that charged paid is cancelled.
func (p Policy) Refund(paid float64) float64 {
	if p.RefundRate <= 0 || paid <= 0 {
		return 0
	}
	return RoundMoney(paid * p.RefundRate)
}

// MonthWindow returns the [start, end) of the calendar month containing now.
func MonthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// RoundMoney rounds to 2 decimals.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// NewPNR builds a PNR such as PNR0123456789 from a random UUID.
func NewPNR(prefix string) string {
	return fmt.Sprintf("%s%010d", prefix, uuid.New().ID())
}

// NewID builds a prefixed record id such as ALLOC-1f0c2a9e4b7d.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(raw[:16])
}
