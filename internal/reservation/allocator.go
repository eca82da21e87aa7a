package reservation

import (
	"context"
	"fmt"

	"railway/internal/domain"
	"railway/internal/domain/models"
)

// RACQuotaPercent is the share of a class's berths that may be held as RAC.
const RACQuotaPercent = 10

// seatAlternatives is the fallback order tried when the preferred type is full.
var seatAlternatives = map[models.SeatType][]models.SeatType{
	models.SeatLower:     {models.SeatSideLower, models.SeatMiddle, models.SeatUpper, models.SeatSideUpper},
	models.SeatMiddle:    {models.SeatLower, models.SeatUpper, models.SeatSideLower, models.SeatSideUpper},
	models.SeatUpper:     {models.SeatSideUpper, models.SeatMiddle, models.SeatLower, models.SeatSideLower},
	models.SeatSideLower: {models.SeatLower, models.SeatMiddle, models.SeatUpper, models.SeatSideUpper},
	models.SeatSideUpper: {models.SeatUpper, models.SeatMiddle, models.SeatLower, models.SeatSideLower},
}

// Alternatives returns the fallback seat types for preferred, in the order they are tried.
func Alternatives(preferred models.SeatType) []models.SeatType {
	return append([]models.SeatType(nil), seatAlternatives[preferred]...)
}

// Outcome is the tagged result of an allocation attempt.
type Outcome struct {
	Lifecycle           models.Lifecycle
	Berth               *models.Berth
	PreferenceMet       bool
	AlternativeProvided bool
	WaitingPosition     int
}

// Inventory is the state the allocation policy decides on.
type Inventory struct {
	Berths   []models.Berth
	Occupied Occupancy
	RAC      int
	Waiting  int
}

// Allocator assigns a berth, or an RAC / waiting-list slot when none is free.
type Allocator struct{}

// Allocate re-validates the route and decides the outcome for one new booking.
// It does not write; the caller persists the outcome in the same transaction.
func (a Allocator) Allocate(ctx context.Context, tx Tx, key models.JourneyKey, classID int64, preferred models.SeatType) (Outcome, error) {
	ok, err := tx.RouteExists(ctx, key, classID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to check route: %w", err)
	}
	if !ok {
		return Outcome{}, domain.RouteNotFound(key.TrainNo, key.Source, key.Destination)
	}

	inv, err := LoadInventory(ctx, tx, key, classID)
	if err != nil {
		return Outcome{}, err
	}
	return Decide(inv, preferred), nil
}

// LoadInventory reads berths, occupancy and tier counts for one (class, journey key).
func LoadInventory(ctx context.Context, tx Tx, key models.JourneyKey, classID int64) (Inventory, error) {
	berths, err := tx.Berths(ctx, classID)
	if err != nil {
		return Inventory{}, fmt.Errorf("failed to load berths: %w", err)
	}
	occupied, err := tx.OccupiedBerths(ctx, key, classID)
	if err != nil {
		return Inventory{}, fmt.Errorf("failed to load occupancy: %w", err)
	}
	rac, err := tx.CountAllocations(ctx, key, classID, models.LifecycleRAC)
	if err != nil {
		return Inventory{}, fmt.Errorf("failed to count rac allocations: %w", err)
	}
	waiting, err := tx.CountAllocations(ctx, key, classID, models.LifecycleWaiting)
	if err != nil {
		return Inventory{}, fmt.Errorf("failed to count waiting allocations: %w", err)
	}
	return Inventory{Berths: berths, Occupied: occupied, RAC: rac, Waiting: waiting}, nil
}

// Decide applies the allocation passes in priority order: preferred type,
// alternatives, any type, RAC, waiting list.
func Decide(inv Inventory, preferred models.SeatType) Outcome {
	if _, known := seatAlternatives[preferred]; !known {
		preferred = ""
	}

	if preferred != "" {
		if b, ok := firstFree(inv, preferred); ok {
			return confirmed(b, true, false)
		}
		for _, alt := range seatAlternatives[preferred] {
			if b, ok := firstFree(inv, alt); ok {
				return confirmed(b, false, true)
			}
		}
	}
	if b, ok := firstFree(inv, ""); ok {
		return confirmed(b, false, false)
	}

	if RACAvailable(inv.RAC, len(inv.Berths)) {
		return Outcome{Lifecycle: models.LifecycleRAC}
	}
	return Outcome{Lifecycle: models.LifecycleWaiting, WaitingPosition: inv.Waiting + 1}
}

// RACAvailable reports whether rac holders are strictly under the RAC share of total berths.
func RACAvailable(rac, totalBerths int) bool {
	return rac*100 < totalBerths*RACQuotaPercent
}

// firstFree returns the lowest (coach, berth) unoccupied berth of seatType, or of any type when empty.
func firstFree(inv Inventory, seatType models.SeatType) (models.Berth, bool) {
	for _, b := range inv.Berths {
		if seatType != "" && b.SeatType != seatType {
			continue
		}
		if inv.Occupied.Has(b.ID) {
			continue
		}
		return b, true
	}
	return models.Berth{}, false
}

func confirmed(b models.Berth, preferenceMet, alternative bool) Outcome {
	return Outcome{
		Lifecycle:           models.LifecycleConfirmed,
		Berth:               &b,
		PreferenceMet:       preferenceMet,
		AlternativeProvided: alternative,
	}
}
