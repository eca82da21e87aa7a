package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "railway/internal/config"
	intdb "railway/internal/db"
	"railway/internal/domain"
	"railway/internal/domain/models"
)

// DirectoryRepo reads and writes the people a ticket can belong to.
type DirectoryRepo struct {
	DB *sql.DB
}

func (r DirectoryRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r DirectoryRepo) CreateUser(ctx context.Context, u models.User) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO user (user_id, user_name, name, email, password_hash, mobile_no)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.UserName, u.Name, strings.ToLower(u.Email), u.PasswordHash, intdb.NullIfEmpty(u.MobileNo))
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "user", Msg: "user name or email already registered"}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UserByLogin matches either the user name or the email address.
func (r DirectoryRepo) UserByLogin(ctx context.Context, login string) (models.User, error) {
	login = strings.TrimSpace(login)
	return r.scanUser(ctx, `WHERE user_name = ? OR email = ?`, login, strings.ToLower(login))
}

func (r DirectoryRepo) UserByID(ctx context.Context, id string) (models.User, error) {
	return r.scanUser(ctx, `WHERE user_id = ?`, id)
}

func (r DirectoryRepo) scanUser(ctx context.Context, where string, args ...any) (models.User, error) {
	db := r.db()
	if db == nil {
		return models.User{}, fmt.Errorf("database not connected")
	}
	var u models.User
	err := db.QueryRowContext(ctx, `
		SELECT user_id, user_name, name, email, COALESCE(mobile_no, ''), password_hash
		FROM user `+where+` LIMIT 1`, args...).
		Scan(&u.ID, &u.UserName, &u.Name, &u.Email, &u.MobileNo, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (r DirectoryRepo) EmployeeByID(ctx context.Context, id string) (models.Employee, error) {
	db := r.db()
	if db == nil {
		return models.Employee{}, fmt.Errorf("database not connected")
	}
	var e models.Employee
	err := db.QueryRowContext(ctx, `
		SELECT employee_id, emp_name, COALESCE(email, ''), COALESCE(designation, ''), password_hash
		FROM employee WHERE employee_id = ?`, strings.TrimSpace(id)).
		Scan(&e.ID, &e.Name, &e.Email, &e.Designation, &e.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Employee{}, domain.NotFoundError{Resource: "employee " + id}
	}
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to load employee: %w", err)
	}
	return e, nil
}

func (r DirectoryRepo) Dependents(ctx context.Context, employeeID string) ([]models.Dependent, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	rows, err := db.QueryContext(ctx, `
		SELECT dependent_id, employee_id, f_name, l_name, relation, COALESCE(age, 0)
		FROM dependent WHERE employee_id = ?
		ORDER BY f_name, l_name`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependents: %w", err)
	}
	defer rows.Close()

	var out []models.Dependent
	for rows.Next() {
		var d models.Dependent
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.FirstName, &d.LastName, &d.Relation, &d.Age); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DependentOf returns a dependent only if it belongs to employeeID.
func (r DirectoryRepo) DependentOf(ctx context.Context, employeeID, dependentID string) (models.Dependent, error) {
	db := r.db()
	if db == nil {
		return models.Dependent{}, fmt.Errorf("database not connected")
	}
	var d models.Dependent
	err := db.QueryRowContext(ctx, `
		SELECT dependent_id, employee_id, f_name, l_name, relation, COALESCE(age, 0)
		FROM dependent WHERE dependent_id = ? AND employee_id = ?`, dependentID, employeeID).
		Scan(&d.ID, &d.EmployeeID, &d.FirstName, &d.LastName, &d.Relation, &d.Age)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Dependent{}, domain.NotFoundError{Resource: "dependent " + dependentID}
	}
	if err != nil {
		return models.Dependent{}, fmt.Errorf("failed to load dependent: %w", err)
	}
	return d, nil
}

func (r DirectoryRepo) SetUserPassword(ctx context.Context, userID, hash string) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	res, err := db.ExecContext(ctx, `UPDATE user SET password_hash = ? WHERE user_id = ?`, hash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}
