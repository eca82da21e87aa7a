package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	intconfig "railway/internal/config"
	intdb "railway/internal/db"
	"railway/internal/domain"
	"railway/internal/domain/models"
)

// ProfileRepo serves account pages: profiles, ticket stats and payment lookups.
type ProfileRepo struct {
	DB *sql.DB
}

func (r ProfileRepo) dbx() (*sqlx.DB, error) {
	db := r.DB
	if db == nil {
		db = intconfig.DB
	}
	if db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	return sqlx.NewDb(db, "mysql"), nil
}

func (r ProfileRepo) UserProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	db, err := r.dbx()
	if err != nil {
		return models.UserProfile{}, err
	}
	var p models.UserProfile
	err = db.GetContext(ctx, &p, `
		SELECT user_id, user_name, name, email,
		       COALESCE(mobile_no, '') AS mobile_no, COALESCE(gender, '') AS gender, dob,
		       COALESCE(address, '') AS address, COALESCE(city, '') AS city,
		       COALESCE(state, '') AS state, COALESCE(pin_code, '') AS pin_code, created_at
		FROM user WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

func (r ProfileRepo) UpdateUserProfile(ctx context.Context, userID string, u models.ProfileUpdate) error {
	db, err := r.dbx()
	if err != nil {
		return err
	}
	var dob any
	if u.DOB != nil {
		dob = u.DOB.Format("2006-01-02")
	}
	res, err := db.ExecContext(ctx, `
		UPDATE user
		SET name = ?, mobile_no = ?, gender = ?, dob = ?, address = ?, city = ?, state = ?, pin_code = ?
		WHERE user_id = ?`,
		u.Name, intdb.NullIfEmpty(u.MobileNo), intdb.NullIfEmpty(u.Gender), dob,
		intdb.NullIfEmpty(u.Address), intdb.NullIfEmpty(u.City), intdb.NullIfEmpty(u.State),
		intdb.NullIfEmpty(u.PinCode), userID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	// MySQL reports zero affected rows for an unchanged row, so only a
	// missing user is treated as not found.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists int
		if err := db.GetContext(ctx, &exists, `SELECT 1 FROM user WHERE user_id = ?`, userID); errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "user"}
		}
	}
	return nil
}

// UserStats counts the user's tickets by their stored status.
func (r ProfileRepo) UserStats(ctx context.Context, userID string) (models.UserStats, error) {
	db, err := r.dbx()
	if err != nil {
		return models.UserStats{}, err
	}
	var st models.UserStats
	err = db.GetContext(ctx, &st, `
		SELECT
		  COUNT(*) AS total_bookings,
		  COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0) AS confirmed_bookings,
		  COALESCE(SUM(CASE WHEN status = 'waiting' THEN 1 ELSE 0 END), 0) AS waiting_bookings,
		  COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled_bookings,
		  COALESCE(SUM(fare), 0) AS total_spent,
		  COALESCE(SUM(refund_amount), 0) AS total_refunded
		FROM ticket WHERE user_id = ?`, userID)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to read user stats: %w", err)
	}
	return st, nil
}

func (r ProfileRepo) EmployeeProfile(ctx context.Context, employeeID string) (models.EmployeeProfile, error) {
	db, err := r.dbx()
	if err != nil {
		return models.EmployeeProfile{}, err
	}
	var p models.EmployeeProfile
	err = db.GetContext(ctx, &p, `
		SELECT e.employee_id, e.emp_name,
		       COALESCE(e.designation, '') AS designation, COALESCE(e.email, '') AS email,
		       COALESCE(e.phone_no, '') AS phone_no, e.hire_date,
		       COALESCE(e.supervisor_id, '') AS supervisor_id,
		       COALESCE(s.emp_name, '') AS supervisor_name,
		       (SELECT COUNT(*) FROM dependent d WHERE d.employee_id = e.employee_id) AS dependent_count
		FROM employee e
		LEFT JOIN employee s ON s.employee_id = e.supervisor_id
		WHERE e.employee_id = ?`, employeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EmployeeProfile{}, domain.NotFoundError{Resource: "employee " + employeeID}
	}
	if err != nil {
		return models.EmployeeProfile{}, fmt.Errorf("failed to load employee profile: %w", err)
	}
	return p, nil
}

// PaymentByTransaction returns the payment only when userID made it.
func (r ProfileRepo) PaymentByTransaction(ctx context.Context, userID, transactionID string) (models.PaymentDetail, error) {
	db, err := r.dbx()
	if err != nil {
		return models.PaymentDetail{}, err
	}
	var p models.PaymentDetail
	err = db.GetContext(ctx, &p, `
		SELECT p.transaction_id, p.pnr_no, p.user_id, p.amount, p.type, p.mode, p.status, p.transaction_date,
		       t.passenger_name, t.train_no, t.journey_date,
		       COALESCE(src.station_name, t.source_station) AS from_station,
		       COALESCE(dst.station_name, t.destination_station) AS to_station,
		       t.status AS ticket_status, t.refund_amount
		FROM payment p
		JOIN ticket t ON t.pnr_no = p.pnr_no
		LEFT JOIN station src ON src.station_id = t.source_station
		LEFT JOIN station dst ON dst.station_id = t.destination_station
		WHERE p.transaction_id = ? AND p.user_id = ?`, transactionID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentDetail{}, domain.NotFoundError{Resource: "payment " + transactionID}
	}
	if err != nil {
		return models.PaymentDetail{}, fmt.Errorf("failed to load payment: %w", err)
	}
	return p, nil
}
