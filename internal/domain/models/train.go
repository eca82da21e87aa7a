package models

import (
	"fmt"
	"strings"
	"time"
)

// SeatType tags a berth position inside a coach.
type SeatType string

const (
	SeatLower     SeatType = "Lower"
	SeatMiddle    SeatType = "Middle"
	SeatUpper     SeatType = "Upper"
	SeatSideLower SeatType = "Side Lower"
	SeatSideUpper SeatType = "Side Upper"
)

// SeatTypes lists every known seat type in display order.
var SeatTypes = []SeatType{SeatLower, SeatMiddle, SeatUpper, SeatSideLower, SeatSideUpper}

// ParseSeatType accepts the canonical names case-insensitively ("side lower", "SIDE_LOWER").
func ParseSeatType(raw string) (SeatType, bool) {
	norm := strings.ToLower(strings.Join(strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), " "))
	for _, st := range SeatTypes {
		if strings.ToLower(string(st)) == norm {
			return st, true
		}
	}
	return "", false
}

// Train is a scheduled service identified by its number.
type Train struct {
	TrainNo   string `json:"train_no"`
	TrainName string `json:"train_name"`
	TrainType string `json:"train_type,omitempty"`
}

// RouteStop is one station on a train schedule.
type RouteStop struct {
	StationID     string  `json:"station_id"`
	StationName   string  `json:"station_name"`
	StopSequence  int     `json:"stop_sequence"`
	ArrivalTime   string  `json:"arrival_time,omitempty"`
	DepartureTime string  `json:"departure_time,omitempty"`
	Distance      float64 `json:"distance_from_source"`
}

// Class is a class of service on a train. Capacity is the number of its berths.
type Class struct {
	ID          int64   `json:"class_id"`
	TrainNo     string  `json:"train_no"`
	Name        string  `json:"class_name"`
	CoachType   string  `json:"coach_type"`
	Multiplier  float64 `json:"c_multiplier"`
	BookedSeats int     `json:"booked_seats"`
}

// Berth is a physical sleeping slot. Occupancy is never stored on it.
type Berth struct {
	ID       int64    `json:"berth_id"`
	ClassID  int64    `json:"class_id"`
	CoachNo  int      `json:"coach_no"`
	BerthNo  int      `json:"berth_no"`
	SeatType SeatType `json:"seat_type"`
}

// JourneyKey scopes every seat-inventory query.
type JourneyKey struct {
	TrainNo     string
	Source      string
	Destination string
	Date        time.Time
}

// NewJourneyKey strips the time of day from date so keys compare by calendar day.
func NewJourneyKey(trainNo, source, destination string, date time.Time) JourneyKey {
	return JourneyKey{
		TrainNo:     strings.TrimSpace(trainNo),
		Source:      strings.TrimSpace(source),
		Destination: strings.TrimSpace(destination),
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// Day renders the journey date as YYYY-MM-DD.
func (k JourneyKey) Day() string {
	return k.Date.Format("2006-01-02")
}

func (k JourneyKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.TrainNo, k.Source, k.Destination, k.Day())
}
