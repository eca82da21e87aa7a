package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	intconfig "railway/internal/config"
	"railway/internal/domain/models"
)

// HistoryRepo serves the owner-facing audit reads.
type HistoryRepo struct {
	DB *sql.DB
}

const defaultHistoryLimit = 100

func (r HistoryRepo) dbx() (*sqlx.DB, error) {
	db := r.DB
	if db == nil {
		db = intconfig.DB
	}
	if db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	return sqlx.NewDb(db, "mysql"), nil
}

func historyLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultHistoryLimit
	}
	return limit
}

// BookingHistory returns the owner's audit entries, newest first.
func (r HistoryRepo) BookingHistory(ctx context.Context, owner models.Owner, limit int) ([]models.HistoryEntry, error) {
	db, err := r.dbx()
	if err != nil {
		return nil, err
	}
	out := []models.HistoryEntry{}
	err = db.SelectContext(ctx, &out, `
		SELECT history_id, pnr_no, action, booking_status, details, action_time
		FROM booking_history
		WHERE owner_kind = ? AND owner_id = ?
		ORDER BY action_time DESC, history_id
		LIMIT ?`, string(owner.Kind), owner.ID, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read booking history: %w", err)
	}
	for i := range out {
		out[i].Owner = owner
	}
	return out, nil
}

// Transactions returns the user's payments and refunds, newest first.
func (r HistoryRepo) Transactions(ctx context.Context, userID string, limit int) ([]models.TransactionEntry, error) {
	db, err := r.dbx()
	if err != nil {
		return nil, err
	}
	out := []models.TransactionEntry{}
	err = db.SelectContext(ctx, &out, `
		SELECT transaction_history_id, user_id, pnr_no, transaction_id, transaction_type,
		       amount, status, description, transaction_time
		FROM transaction_history
		WHERE user_id = ?
		ORDER BY transaction_time DESC, transaction_history_id
		LIMIT ?`, userID, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return out, nil
}
