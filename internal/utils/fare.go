package utils

import "math"

// BaseFarePerKm is the second-class base rate before the class multiplier.
const BaseFarePerKm = 0.60

// FareComponents are the per-class inputs read from the schedule.
type FareComponents struct {
	DistanceKm         float64
	Multiplier         float64
	ReservationCharges float64
	SpecialCharges     float64
}

// ComputeFare prices a journey: distance x base rate x class multiplier plus
// fixed charges, rounded to 2 decimals. It returns 0 for a non-positive distance.
func ComputeFare(c FareComponents) float64 {
	if c.DistanceKm <= 0 {
		return 0
	}
	mult := c.Multiplier
	if mult <= 0 {
		mult = 1
	}
	fare := c.DistanceKm*BaseFarePerKm*mult + c.ReservationCharges + c.SpecialCharges
	return math.Round(fare*100) / 100
}
