package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "railway/internal/config"
	"railway/internal/domain"
	"railway/internal/utils"
)

// FareRepo prices a journey from the schedule distances and class charges.
type FareRepo struct {
	DB *sql.DB
}

func (r FareRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Components loads the fare inputs for one class between two stations.
func (r FareRepo) Components(ctx context.Context, trainNo, source, destination string, classID int64) (utils.FareComponents, error) {
	db := r.db()
	if db == nil {
		return utils.FareComponents{}, fmt.Errorf("database not connected")
	}

	var fc utils.FareComponents
	err := db.QueryRowContext(ctx, `
		SELECT dst.distance_from_source - src.distance_from_source,
		       c.c_multiplier, c.reservation_charges, c.special_charges
		FROM class c
		JOIN schedule s ON s.train_no = c.train_no
		JOIN route_stop src ON src.schedule_id = s.schedule_id AND src.station_id = ?
		JOIN route_stop dst ON dst.schedule_id = s.schedule_id AND dst.station_id = ?
		WHERE c.class_id = ? AND c.train_no = ? AND src.stop_sequence < dst.stop_sequence
		LIMIT 1`, source, destination, classID, trainNo).
		Scan(&fc.DistanceKm, &fc.Multiplier, &fc.ReservationCharges, &fc.SpecialCharges)
	if errors.Is(err, sql.ErrNoRows) {
		return utils.FareComponents{}, domain.FareUnavailable()
	}
	if err != nil {
		return utils.FareComponents{}, fmt.Errorf("failed to load fare components: %w", err)
	}
	return fc, nil
}

// Fare returns the listed fare, or a fare_unavailable error when it cannot be priced.
func (r FareRepo) Fare(ctx context.Context, trainNo, source, destination string, classID int64) (float64, error) {
	fc, err := r.Components(ctx, trainNo, source, destination, classID)
	if err != nil {
		return 0, err
	}
	fare := utils.ComputeFare(fc)
	if fare <= 0 {
		return 0, domain.FareUnavailable()
	}
	return fare, nil
}
