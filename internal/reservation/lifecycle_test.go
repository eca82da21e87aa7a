package reservation

import (
	"testing"
	"time"

	"railway/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateJourneyDate_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 1, 31, 23, 50, 0, 0, loc)

	assert.NoError(t, ValidateJourneyDate(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), now))
	assert.Error(t, ValidateJourneyDate(time.Date(2026, 1, 30, 23, 59, 0, 0, loc), now))
	assert.NoError(t, ValidateJourneyDate(time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), now))
	assert.Error(t, ValidateJourneyDate(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestPolicyRefund(t *testing.T) {
	assert.Equal(t, 850.0, PassengerPolicy.Refund(1000))
	assert.Equal(t, 1049.29, PassengerPolicy.Refund(1234.46))
	assert.Equal(t, 0.0, PassengerPolicy.Refund(0))
	assert.Equal(t, 0.0, EmployeePolicy.Refund(1000))
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, EmployeePolicy, PolicyFor(models.OwnerEmployee))
	assert.Equal(t, PassengerPolicy, PolicyFor(models.OwnerUser))
	assert.Equal(t, 0.0, EmployeePolicy.ChargedFare(450))
	assert.Equal(t, 450.5, PassengerPolicy.ChargedFare(450.499))
}

func TestMonthWindow(t *testing.T) {
	from, to := MonthWindow(time.Date(2026, 12, 15, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestChance(t *testing.T) {
	assert.Equal(t, "HIGH", Chance(5))
	assert.Equal(t, "MEDIUM", Chance(6))
	assert.Equal(t, "MEDIUM", Chance(10))
	assert.Equal(t, "LOW", Chance(11))
	assert.Equal(t, "", Chance(0))
}

func TestNewPNRShape(t *testing.T) {
	pnr := NewPNR("EPNR")
	assert.Regexp(t, `^EPNR\d{10}$`, pnr)
	assert.Regexp(t, `^ALLOC-[0-9A-F]{16}$`, NewID("ALLOC"))
}
