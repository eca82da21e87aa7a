package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "railway/internal/config"
	"railway/internal/domain"
	"railway/internal/domain/models"
)

type TrainRepo struct {
	DB *sql.DB
}

func (r TrainRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// TrainMatch is a train that runs from source to destination in that order.
type TrainMatch struct {
	Train         models.Train `json:"train"`
	DepartureTime string       `json:"departure_time"`
	ArrivalTime   string       `json:"arrival_time"`
	DistanceKm    float64      `json:"distance_km"`
}

func (r TrainRepo) GetTrain(ctx context.Context, trainNo string) (models.Train, error) {
	db := r.db()
	if db == nil {
		return models.Train{}, fmt.Errorf("database not connected")
	}
	var t models.Train
	err := db.QueryRowContext(ctx, `
		SELECT train_no, train_name, COALESCE(train_type, '')
		FROM train WHERE train_no = ?`, trainNo).Scan(&t.TrainNo, &t.TrainName, &t.TrainType)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Train{}, domain.NotFoundError{Resource: "train " + trainNo}
	}
	if err != nil {
		return models.Train{}, fmt.Errorf("failed to load train: %w", err)
	}
	return t, nil
}

// Search lists trains stopping at source before destination.
func (r TrainRepo) Search(ctx context.Context, source, destination string) ([]TrainMatch, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	rows, err := db.QueryContext(ctx, `
		SELECT t.train_no, t.train_name, COALESCE(t.train_type, ''),
		       COALESCE(TIME_FORMAT(src.departure_time, '%H:%i'), ''),
		       COALESCE(TIME_FORMAT(dst.arrival_time, '%H:%i'), ''),
		       dst.distance_from_source - src.distance_from_source
		FROM train t
		JOIN schedule s ON s.train_no = t.train_no
		JOIN route_stop src ON src.schedule_id = s.schedule_id AND src.station_id = ?
		JOIN route_stop dst ON dst.schedule_id = s.schedule_id AND dst.station_id = ?
		WHERE src.stop_sequence < dst.stop_sequence
		ORDER BY src.departure_time, t.train_no`, source, destination)
	if err != nil {
		return nil, fmt.Errorf("failed to search trains: %w", err)
	}
	defer rows.Close()

	var out []TrainMatch
	for rows.Next() {
		var m TrainMatch
		if err := rows.Scan(&m.Train.TrainNo, &m.Train.TrainName, &m.Train.TrainType,
			&m.DepartureTime, &m.ArrivalTime, &m.DistanceKm); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Route returns the stops of a train in travel order.
func (r TrainRepo) Route(ctx context.Context, trainNo string) ([]models.RouteStop, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	rows, err := db.QueryContext(ctx, `
		SELECT rs.station_id, COALESCE(st.station_name, rs.station_id), rs.stop_sequence,
		       COALESCE(TIME_FORMAT(rs.arrival_time, '%H:%i'), ''),
		       COALESCE(TIME_FORMAT(rs.departure_time, '%H:%i'), ''),
		       rs.distance_from_source
		FROM schedule s
		JOIN route_stop rs ON rs.schedule_id = s.schedule_id
		LEFT JOIN station st ON st.station_id = rs.station_id
		WHERE s.train_no = ?
		ORDER BY rs.stop_sequence`, trainNo)
	if err != nil {
		return nil, fmt.Errorf("failed to load route: %w", err)
	}
	defer rows.Close()

	var out []models.RouteStop
	for rows.Next() {
		var st models.RouteStop
		if err := rows.Scan(&st.StationID, &st.StationName, &st.StopSequence,
			&st.ArrivalTime, &st.DepartureTime, &st.Distance); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.NotFoundError{Resource: "route of train " + trainNo}
	}
	return out, nil
}
