package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"railway/internal/domain"
	"railway/internal/domain/models"
)

func TestProfileRepoUserStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM ticket WHERE user_id = \\?").
		WithArgs("USR-1").
		WillReturnRows(sqlmock.NewRows([]string{"total_bookings", "confirmed_bookings", "waiting_bookings", "cancelled_bookings", "total_spent", "total_refunded"}).
			AddRow(4, 2, 1, 1, 2445.0, 692.75))

	st, err := ProfileRepo{DB: db}.UserStats(context.Background(), "USR-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.TotalBookings != 4 || st.WaitingBookings != 1 || st.TotalRefunded != 692.75 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestProfileRepoUserProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM user WHERE user_id = \\?").
		WithArgs("USR-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_name", "name", "email", "mobile_no", "gender", "dob", "address", "city", "state", "pin_code", "created_at"}).
			AddRow("USR-1", "asha", "Asha Rao", "asha@x.io", "", "female", dob, "", "Pune", "MH", "411001", dob))
	mock.ExpectQuery("FROM user WHERE user_id = \\?").
		WithArgs("USR-9").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	repo := ProfileRepo{DB: db}
	p, err := repo.UserProfile(context.Background(), "USR-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.City != "Pune" || p.DOB == nil || !p.DOB.Equal(dob) {
		t.Fatalf("unexpected profile %+v", p)
	}
	if _, err := repo.UserProfile(context.Background(), "USR-9"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileRepoUpdateUserProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE user").
		WithArgs("Asha Rao", nil, "female", "1990-06-15", nil, "Pune", nil, nil, "USR-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE user").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM user").
		WithArgs("USR-9").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := ProfileRepo{DB: db}
	err = repo.UpdateUserProfile(context.Background(), "USR-1", models.ProfileUpdate{Name: "Asha Rao", Gender: "female", DOB: &dob, City: "Pune"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.UpdateUserProfile(context.Background(), "USR-9", models.ProfileUpdate{Name: "X"}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepoEmployeeProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("LEFT JOIN employee s ON s.employee_id = e.supervisor_id").
		WithArgs("EMP001").
		WillReturnRows(sqlmock.NewRows([]string{"employee_id", "emp_name", "designation", "email", "phone_no", "hire_date", "supervisor_id", "supervisor_name", "dependent_count"}).
			AddRow("EMP001", "Ravi Kumar", "Clerk", "", "", nil, "EMP000", "Lata Iyer", 2))

	p, err := ProfileRepo{DB: db}.EmployeeProfile(context.Background(), "EMP001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SupervisorName != "Lata Iyer" || p.DependentCount != 2 || p.HireDate != nil {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestProfileRepoPaymentOfAnotherUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("WHERE p.transaction_id = \\? AND p.user_id = \\?").
		WithArgs("TXN-1", "USR-2").
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}))

	if _, err := (ProfileRepo{DB: db}).PaymentByTransaction(context.Background(), "USR-2", "TXN-1"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDirectoryRepoSetUserPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE user SET password_hash").
		WithArgs("new-hash", "USR-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE user SET password_hash").
		WithArgs("new-hash", "USR-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := DirectoryRepo{DB: db}
	if err := repo.SetUserPassword(context.Background(), "USR-1", "new-hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SetUserPassword(context.Background(), "USR-9", "new-hash"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
