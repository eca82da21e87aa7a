package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intconfig "railway/internal/config"
	intdb "railway/internal/db"
	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/reservation"
)

// ReservationStore runs the reservation core against MySQL. Every sequence
// executes in a READ COMMITTED transaction and serializes on the class row.
type ReservationStore struct {
	DB *sql.DB
}

func (s ReservationStore) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ReservationStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx reservation.Tx) error) error {
	db := s.db()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return intdb.WithTx(ctx, db, opts, func(tx *sql.Tx) error {
		return fn(ctx, mysqlTx{tx: tx})
	})
}

type mysqlTx struct {
	tx *sql.Tx
}

const journeyJoin = `
	JOIN ticket t ON t.pnr_no = a.pnr_no
	WHERE a.class_id = ?
	  AND t.train_no = ? AND t.source_station = ? AND t.destination_station = ? AND t.journey_date = ?`

func journeyArgs(key models.JourneyKey, classID int64) []any {
	return []any{classID, key.TrainNo, key.Source, key.Destination, key.Day()}
}

func (m mysqlTx) LockClass(ctx context.Context, classID int64) (models.Class, error) {
	var c models.Class
	err := m.tx.QueryRowContext(ctx, `
		SELECT class_id, train_no, class_name, coach_type, c_multiplier, booked_seats
		FROM class WHERE class_id = ? FOR UPDATE`, classID).
		Scan(&c.ID, &c.TrainNo, &c.Name, &c.CoachType, &c.Multiplier, &c.BookedSeats)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Class{}, domain.NotFoundError{Resource: fmt.Sprintf("class %d", classID)}
	}
	if err != nil {
		return models.Class{}, fmt.Errorf("failed to lock class %d: %w", classID, err)
	}
	return c, nil
}

const routeStops = `
	FROM schedule s
	JOIN route_stop src ON src.schedule_id = s.schedule_id AND src.station_id = ?
	JOIN route_stop dst ON dst.schedule_id = s.schedule_id AND dst.station_id = ?
	WHERE s.train_no = ? AND src.stop_sequence < dst.stop_sequence`

func (m mysqlTx) RouteExists(ctx context.Context, key models.JourneyKey, classID int64) (bool, error) {
	var n int
	err := m.tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		`+routeStops+`
		  AND EXISTS (SELECT 1 FROM class c WHERE c.class_id = ? AND c.train_no = s.train_no)`,
		key.Source, key.Destination, key.TrainNo, classID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check route: %w", err)
	}
	return n > 0, nil
}

func (m mysqlTx) ClassesOnRoute(ctx context.Context, key models.JourneyKey) ([]models.Class, error) {
	rows, err := m.tx.QueryContext(ctx, `
		SELECT DISTINCT c.class_id, c.train_no, c.class_name, c.coach_type, c.c_multiplier, c.booked_seats
		FROM class c
		JOIN schedule s ON s.train_no = c.train_no
		JOIN route_stop src ON src.schedule_id = s.schedule_id AND src.station_id = ?
		JOIN route_stop dst ON dst.schedule_id = s.schedule_id AND dst.station_id = ?
		WHERE c.train_no = ? AND src.stop_sequence < dst.stop_sequence
		ORDER BY c.c_multiplier DESC, c.class_id`,
		key.Source, key.Destination, key.TrainNo)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	defer rows.Close()

	var out []models.Class
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.TrainNo, &c.Name, &c.CoachType, &c.Multiplier, &c.BookedSeats); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (m mysqlTx) Berths(ctx context.Context, classID int64) ([]models.Berth, error) {
	rows, err := m.tx.QueryContext(ctx, `
		SELECT berth_id, class_id, coach_no, berth_no, seat_type
		FROM berth WHERE class_id = ?
		ORDER BY coach_no, berth_no`, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list berths: %w", err)
	}
	defer rows.Close()

	var out []models.Berth
	for rows.Next() {
		var b models.Berth
		var seat string
		if err := rows.Scan(&b.ID, &b.ClassID, &b.CoachNo, &b.BerthNo, &seat); err != nil {
			return nil, err
		}
		if st, ok := models.ParseSeatType(seat); ok {
			b.SeatType = st
		} else {
			b.SeatType = models.SeatType(seat)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (m mysqlTx) OccupiedBerths(ctx context.Context, key models.JourneyKey, classID int64) (reservation.Occupancy, error) {
	rows, err := m.tx.QueryContext(ctx, `
		SELECT a.berth_id FROM allocates a`+journeyJoin+`
		  AND a.allocation_status = 'confirmed' AND a.berth_id IS NOT NULL`,
		journeyArgs(key, classID)...)
	if err != nil {
		return nil, fmt.Errorf("failed to read occupancy: %w", err)
	}
	defer rows.Close()

	occ := reservation.Occupancy{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		occ[id] = struct{}{}
	}
	return occ, rows.Err()
}

func (m mysqlTx) CountAllocations(ctx context.Context, key models.JourneyKey, classID int64, state models.Lifecycle) (int, error) {
	args := append(journeyArgs(key, classID), string(state.AllocationStatus()))
	var n int
	err := m.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM allocates a`+journeyJoin+`
		  AND a.allocation_status = ?`, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s allocations: %w", state, err)
	}
	return n, nil
}

func (m mysqlTx) WaitingQueue(ctx context.Context, key models.JourneyKey, classID int64) ([]models.QueueEntry, error) {
	rows, err := m.tx.QueryContext(ctx, `
		SELECT a.allocation_id, a.pnr_no, t.passenger_name,
		       COALESCE(t.user_id, ''), COALESCE(t.employee_id, ''),
		       a.allocation_time, a.seq
		FROM allocates a`+journeyJoin+`
		  AND a.allocation_status = 'waiting' AND a.berth_id IS NULL
		  AND t.status <> 'cancelled'
		ORDER BY a.allocation_time, a.seq`,
		journeyArgs(key, classID)...)
	if err != nil {
		return nil, fmt.Errorf("failed to read waiting list: %w", err)
	}
	defer rows.Close()

	var out []models.QueueEntry
	for rows.Next() {
		var e models.QueueEntry
		var userID, employeeID string
		if err := rows.Scan(&e.AllocationID, &e.PNR, &e.PassengerName, &userID, &employeeID, &e.AllocatedAt, &e.Seq); err != nil {
			return nil, err
		}
		e.Owner = ownerFrom(userID, employeeID)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (m mysqlTx) CountActiveEmployeeBookings(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	var id string
	err := m.tx.QueryRowContext(ctx, `SELECT employee_id FROM employee WHERE employee_id = ? FOR UPDATE`, employeeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFoundError{Resource: "employee " + employeeID}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock employee: %w", err)
	}

	var n int
	err = m.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ticket
		WHERE employee_id = ? AND status <> 'cancelled'
		  AND booking_time >= ? AND booking_time < ?`, employeeID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count employee bookings: %w", err)
	}
	return n, nil
}

func (m mysqlTx) InsertTicket(ctx context.Context, t models.Ticket) error {
	userID, employeeID := ownerColumns(t.Owner)
	_, err := m.tx.ExecContext(ctx, `
		INSERT INTO ticket (pnr_no, train_no, passenger_name, passenger_age, passenger_gender,
			journey_date, source_station, destination_station, status, user_id, employee_id,
			fare, original_fare, booking_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.PNR, t.Key.TrainNo, t.Passenger.Name, nullIfZero(t.Passenger.Age), intdb.NullIfEmpty(t.Passenger.Gender),
		t.Key.Day(), t.Key.Source, t.Key.Destination, string(t.Status()), userID, employeeID,
		t.Fare, t.OriginalFare, t.BookedAt)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return fmt.Errorf("duplicate pnr %s: %w", t.PNR, err)
		}
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

func (m mysqlTx) InsertAllocation(ctx context.Context, a *models.Allocation) error {
	var berth any
	if a.BerthID != nil {
		berth = *a.BerthID
	}
	res, err := m.tx.ExecContext(ctx, `
		INSERT INTO allocates (allocation_id, pnr_no, class_id, berth_id, allocation_status, allocation_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.PNR, a.ClassID, berth, string(a.Status()), a.AllocatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert allocation: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read allocation sequence: %w", err)
	}
	a.Seq = seq
	return nil
}

func (m mysqlTx) InsertPayment(ctx context.Context, p models.Payment) error {
	_, err := m.tx.ExecContext(ctx, `
		INSERT INTO payment (transaction_id, pnr_no, user_id, amount, type, mode, status, transaction_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.TransactionID, p.PNR, p.UserID, p.Amount, p.Type, string(p.Mode), p.Status, p.At)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (m mysqlTx) AppendHistory(ctx context.Context, h models.HistoryEntry) error {
	_, err := m.tx.ExecContext(ctx, `
		INSERT INTO booking_history (history_id, owner_kind, owner_id, pnr_no, action, booking_status, details, action_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, string(h.Owner.Kind), h.Owner.ID, h.PNR, string(h.Action), string(h.Status), h.Details, h.At)
	if err != nil {
		return fmt.Errorf("failed to append booking history: %w", err)
	}
	return nil
}

func (m mysqlTx) AppendTransaction(ctx context.Context, t models.TransactionEntry) error {
	_, err := m.tx.ExecContext(ctx, `
		INSERT INTO transaction_history (transaction_history_id, user_id, pnr_no, transaction_id,
			transaction_type, amount, status, description, transaction_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.PNR, t.TransactionID, t.Type, t.Amount, t.Status, t.Description, t.At)
	if err != nil {
		return fmt.Errorf("failed to append transaction history: %w", err)
	}
	return nil
}

func (m mysqlTx) AdjustBookedSeats(ctx context.Context, classID int64, delta int) error {
	res, err := m.tx.ExecContext(ctx,
		`UPDATE class SET booked_seats = GREATEST(booked_seats + ?, 0) WHERE class_id = ?`, delta, classID)
	if err != nil {
		return fmt.Errorf("failed to adjust booked seats: %w", err)
	}
	return intdb.ExpectOneRow(res, fmt.Errorf("class %d not found", classID))
}

func (m mysqlTx) RecomputeBookedSeats(ctx context.Context, classID int64) (int, error) {
	var n int
	err := m.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM allocates
		WHERE class_id = ? AND allocation_status = 'confirmed'`, classID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmed allocations: %w", err)
	}
	if _, err := m.tx.ExecContext(ctx, `UPDATE class SET booked_seats = ? WHERE class_id = ?`, n, classID); err != nil {
		return 0, fmt.Errorf("failed to store booked seats: %w", err)
	}
	return n, nil
}

func (m mysqlTx) TicketByPNR(ctx context.Context, pnr string, forUpdate bool) (models.Ticket, models.Allocation, error) {
	query := `
		SELECT t.pnr_no, t.train_no, t.source_station, t.destination_station, t.journey_date,
		       t.passenger_name, COALESCE(t.passenger_age, 0), COALESCE(t.passenger_gender, ''),
		       COALESCE(t.user_id, ''), COALESCE(t.employee_id, ''),
		       t.fare, t.original_fare, t.status, t.booking_time, t.cancellation_time, t.refund_amount,
		       COALESCE(a.allocation_id, ''), COALESCE(a.class_id, 0), a.berth_id,
		       COALESCE(a.allocation_status, ''), a.allocation_time, COALESCE(a.seq, 0)
		FROM ticket t
		LEFT JOIN allocates a ON a.pnr_no = t.pnr_no
		WHERE t.pnr_no = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		t                      models.Ticket
		a                      models.Allocation
		train, src, dst        string
		journey                time.Time
		userID, employeeID     string
		ticketStatus, allocSt  string
		cancelledAt, allocTime sql.NullTime
		refund                 sql.NullFloat64
		berth                  sql.NullInt64
	)
	err := m.tx.QueryRowContext(ctx, query, pnr).Scan(
		&t.PNR, &train, &src, &dst, &journey,
		&t.Passenger.Name, &t.Passenger.Age, &t.Passenger.Gender,
		&userID, &employeeID,
		&t.Fare, &t.OriginalFare, &ticketStatus, &t.BookedAt, &cancelledAt, &refund,
		&a.ID, &a.ClassID, &berth, &allocSt, &allocTime, &a.Seq,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ticket{}, models.Allocation{}, domain.TicketNotFound(pnr)
	}
	if err != nil {
		return models.Ticket{}, models.Allocation{}, fmt.Errorf("failed to load ticket %s: %w", pnr, err)
	}

	t.Key = models.NewJourneyKey(train, src, dst, journey)
	t.Owner = ownerFrom(userID, employeeID)
	t.Lifecycle = models.LifecycleOf(models.TicketStatus(ticketStatus), models.AllocationStatus(allocSt))
	if cancelledAt.Valid {
		at := cancelledAt.Time
		t.CancelledAt = &at
	}
	if refund.Valid {
		r := refund.Float64
		t.RefundAmount = &r
	}

	a.PNR = t.PNR
	a.Lifecycle = t.Lifecycle
	if allocTime.Valid {
		a.AllocatedAt = allocTime.Time
	}
	if berth.Valid {
		id := berth.Int64
		a.BerthID = &id
	}
	return t, a, nil
}

func (m mysqlTx) PromoteAllocation(ctx context.Context, allocationID, pnr string, berthID int64, at time.Time) error {
	res, err := m.tx.ExecContext(ctx, `
		UPDATE allocates
		SET berth_id = ?, allocation_status = 'confirmed', allocation_time = ?
		WHERE allocation_id = ? AND pnr_no = ? AND allocation_status = 'waiting'`,
		berthID, at, allocationID, pnr)
	if err != nil {
		return fmt.Errorf("failed to promote allocation: %w", err)
	}
	if err := intdb.ExpectOneRow(res, fmt.Errorf("allocation %s is not waiting", allocationID)); err != nil {
		return err
	}
	if _, err := m.tx.ExecContext(ctx, `UPDATE ticket SET status = 'confirmed' WHERE pnr_no = ?`, pnr); err != nil {
		return fmt.Errorf("failed to confirm ticket: %w", err)
	}
	return nil
}

func (m mysqlTx) CancelTicket(ctx context.Context, pnr string, refund float64, at time.Time) error {
	res, err := m.tx.ExecContext(ctx, `
		UPDATE ticket
		SET status = 'cancelled', cancellation_time = ?, refund_amount = ?
		WHERE pnr_no = ? AND status <> 'cancelled'`, at, refund, pnr)
	if err != nil {
		return fmt.Errorf("failed to cancel ticket: %w", err)
	}
	if err := intdb.ExpectOneRow(res, domain.AlreadyCancelled(pnr)); err != nil {
		return err
	}
	if _, err := m.tx.ExecContext(ctx, `
		UPDATE allocates SET allocation_status = 'cancelled', berth_id = NULL
		WHERE pnr_no = ?`, pnr); err != nil {
		return fmt.Errorf("failed to release allocation: %w", err)
	}
	return nil
}

func ownerFrom(userID, employeeID string) models.Owner {
	if employeeID != "" {
		return models.EmployeeOwner(employeeID)
	}
	return models.UserOwner(userID)
}

func ownerColumns(o models.Owner) (userID, employeeID any) {
	if o.Kind == models.OwnerEmployee {
		return nil, o.ID
	}
	return o.ID, nil
}

func nullIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
