package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/repositories"
	"railway/internal/reservation"
	"railway/internal/utils"
)

const (
	AvailabilityOpen = "Available"
	AvailabilityRAC  = "RAC Available"
	AvailabilityWL   = "Waiting List"
)

// TrainCatalog answers schedule questions.
type TrainCatalog interface {
	GetTrain(ctx context.Context, trainNo string) (models.Train, error)
	Search(ctx context.Context, source, destination string) ([]repositories.TrainMatch, error)
	Route(ctx context.Context, trainNo string) ([]models.RouteStop, error)
}

type AvailabilityService struct {
	Engine    *reservation.Engine
	Fares     FareSource
	Trains    TrainCatalog
	RequestID string
}

// ClassAvailability is one class row of an availability answer.
type ClassAvailability struct {
	ClassID            int64          `json:"class_id"`
	ClassName          string         `json:"class_name"`
	CoachType          string         `json:"coach_type"`
	TotalBerths        int            `json:"total_berths"`
	Confirmed          int            `json:"confirmed"`
	RAC                int            `json:"rac"`
	Waiting            int            `json:"waiting"`
	Available          int            `json:"available_berths"`
	FreeBySeatType     map[string]int `json:"free_by_seat_type"`
	Fare               float64        `json:"fare"`
	FareAvailable      bool           `json:"fare_available"`
	AvailabilityStatus string         `json:"availability_status"`
}

// Availability lists every class of the train on the journey with live counts.
func (s AvailabilityService) Availability(ctx context.Context, trainNo, source, destination, journeyDate string) ([]ClassAvailability, error) {
	trainNo = strings.TrimSpace(trainNo)
	source = strings.ToUpper(strings.TrimSpace(source))
	destination = strings.ToUpper(strings.TrimSpace(destination))
	if trainNo == "" || source == "" || destination == "" {
		return nil, domain.ValidationError{Field: "train_no", Msg: "train, source and destination are required"}
	}

	loc := time.Local
	if s.Engine.Location != nil {
		loc = s.Engine.Location
	}
	date, err := utils.ParseDate(journeyDate, loc)
	if err != nil {
		return nil, domain.ValidationError{Field: "journey_date", Msg: "must be YYYY-MM-DD", Err: err}
	}
	key := models.NewJourneyKey(trainNo, source, destination, date)

	classes, err := s.Engine.Availability(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, domain.RouteNotFound(trainNo, source, destination)
	}

	out := make([]ClassAvailability, 0, len(classes))
	for _, c := range classes {
		row := ClassAvailability{
			ClassID:            c.Class.ID,
			ClassName:          c.Class.Name,
			CoachType:          c.Class.CoachType,
			TotalBerths:        c.TotalBerths,
			Confirmed:          c.Confirmed,
			RAC:                c.RAC,
			Waiting:            c.Waiting,
			Available:          c.Available,
			FreeBySeatType:     lo.MapKeys(c.FreeBySeat, func(_ int, st models.SeatType) string { return string(st) }),
			AvailabilityStatus: availabilityStatus(c),
		}
		fare, err := s.Fares.Fare(ctx, trainNo, source, destination, c.Class.ID)
		switch {
		case err == nil:
			row.Fare, row.FareAvailable = fare, true
		case errors.Is(err, domain.ErrFareUnavailable):
		default:
			return nil, fmt.Errorf("failed to price class %d: %w", c.Class.ID, err)
		}
		out = append(out, row)
	}
	utils.LogEvent(s.RequestID, "availability", "check", fmt.Sprintf("journey=%s classes=%d", key, len(out)))
	return out, nil
}

func availabilityStatus(c reservation.ClassAvailability) string {
	switch {
	case c.Available > 0:
		return AvailabilityOpen
	case c.RACAvailable:
		return AvailabilityRAC
	default:
		return AvailabilityWL
	}
}

func (s AvailabilityService) Search(ctx context.Context, source, destination string) ([]repositories.TrainMatch, error) {
	source = strings.ToUpper(strings.TrimSpace(source))
	destination = strings.ToUpper(strings.TrimSpace(destination))
	if source == "" || destination == "" {
		return nil, domain.ValidationError{Field: "source", Msg: "source and destination are required"}
	}
	if source == destination {
		return nil, domain.ValidationError{Field: "destination", Msg: "must differ from source"}
	}
	matches, err := s.Trains.Search(ctx, source, destination)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []repositories.TrainMatch{}
	}
	return matches, nil
}

// TrainRoute is a train with its stops in travel order.
type TrainRoute struct {
	Train models.Train       `json:"train"`
	Stops []models.RouteStop `json:"stops"`
}

func (s AvailabilityService) Route(ctx context.Context, trainNo string) (TrainRoute, error) {
	trainNo = strings.TrimSpace(trainNo)
	if trainNo == "" {
		return TrainRoute{}, domain.ValidationError{Field: "train_no", Msg: "is required"}
	}
	train, err := s.Trains.GetTrain(ctx, trainNo)
	if err != nil {
		return TrainRoute{}, err
	}
	stops, err := s.Trains.Route(ctx, trainNo)
	if err != nil {
		return TrainRoute{}, err
	}
	return TrainRoute{Train: train, Stops: stops}, nil
}
