package models

import (
	"strings"
	"time"
)

// OwnerKind distinguishes the two actor types that can own a ticket.
type OwnerKind string

const (
	OwnerUser     OwnerKind = "user"
	OwnerEmployee OwnerKind = "employee"
)

// Owner identifies the single principal that owns a ticket.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id"`
}

func UserOwner(id string) Owner     { return Owner{Kind: OwnerUser, ID: id} }
func EmployeeOwner(id string) Owner { return Owner{Kind: OwnerEmployee, ID: id} }

// User is a paying passenger account.
type User struct {
	ID           string `json:"user_id"`
	UserName     string `json:"user_name"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNo     string `json:"mobile_no,omitempty"`
	PasswordHash string `json:"-"`
}

// Employee travels for free within a monthly quota.
type Employee struct {
	ID           string `json:"employee_id"`
	Name         string `json:"emp_name"`
	Email        string `json:"email"`
	Designation  string `json:"designation,omitempty"`
	PasswordHash string `json:"-"`
}

// Dependent is a family member an employee may book for.
type Dependent struct {
	ID         string `json:"dependent_id"`
	EmployeeID string `json:"employee_id"`
	FirstName  string `json:"f_name"`
	LastName   string `json:"l_name"`
	Relation   string `json:"relation"`
	Age        int    `json:"age,omitempty"`
}

// FullName is the name a dependent's ticket must carry.
func (d Dependent) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// UserProfile is the editable account view of a passenger.
type UserProfile struct {
	ID        string     `json:"user_id" db:"user_id"`
	UserName  string     `json:"user_name" db:"user_name"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	MobileNo  string     `json:"mobile_no" db:"mobile_no"`
	Gender    string     `json:"gender" db:"gender"`
	DOB       *time.Time `json:"dob" db:"dob"`
	Age       *int       `json:"age" db:"-"`
	Address   string     `json:"address" db:"address"`
	City      string     `json:"city" db:"city"`
	State     string     `json:"state" db:"state"`
	PinCode   string     `json:"pin_code" db:"pin_code"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// ProfileUpdate replaces every editable profile column.
type ProfileUpdate struct {
	Name     string
	MobileNo string
	Gender   string
	DOB      *time.Time
	Address  string
	City     string
	State    string
	PinCode  string
}

// UserStats aggregates a passenger's tickets.
type UserStats struct {
	TotalBookings     int     `json:"total_bookings" db:"total_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings" db:"confirmed_bookings"`
	WaitingBookings   int     `json:"waiting_bookings" db:"waiting_bookings"`
	CancelledBookings int     `json:"cancelled_bookings" db:"cancelled_bookings"`
	TotalSpent        float64 `json:"total_spent" db:"total_spent"`
	TotalRefunded     float64 `json:"total_refunded" db:"total_refunded"`
}

// EmployeeProfile is the employee's own record with supervisor and dependents.
type EmployeeProfile struct {
	ID             string     `json:"employee_id" db:"employee_id"`
	Name           string     `json:"emp_name" db:"emp_name"`
	Designation    string     `json:"designation" db:"designation"`
	Email          string     `json:"email" db:"email"`
	PhoneNo        string     `json:"phone_no" db:"phone_no"`
	HireDate       *time.Time `json:"hire_date" db:"hire_date"`
	SupervisorID   string     `json:"supervisor_id" db:"supervisor_id"`
	SupervisorName string     `json:"supervisor_name" db:"supervisor_name"`
	DependentCount int        `json:"dependent_count" db:"dependent_count"`
}
