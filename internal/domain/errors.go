package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Reservation error kinds. They are wrapped by the typed errors below so callers
// can match either the kind (errors.Is) or the category (IsValidation, ...).
var (
	ErrInvalidJourneyDate = errors.New("invalid journey date")
	ErrRouteNotFound      = errors.New("route not found")
	ErrFareUnavailable    = errors.New("fare unavailable")
	ErrInvalidPaymentMode = errors.New("invalid payment mode")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrIdentityMismatch   = errors.New("identity mismatch")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrAlreadyCancelled   = errors.New("already cancelled")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

func InvalidJourneyDate(maxDays int) error {
	return ValidationError{
		Field: "journey_date",
		Msg:   fmt.Sprintf("must be between today and %d days ahead", maxDays),
		Err:   ErrInvalidJourneyDate,
	}
}

func RouteNotFound(trainNo, source, destination string) error {
	return NotFoundError{
		Resource: fmt.Sprintf("route %s -> %s on train %s", source, destination, trainNo),
		Err:      ErrRouteNotFound,
	}
}

func FareUnavailable() error {
	return ValidationError{Field: "fare", Msg: "not available for this journey and class", Err: ErrFareUnavailable}
}

func InvalidPaymentMode(allowed []string) error {
	return ValidationError{
		Field: "payment_mode",
		Msg:   "must be one of " + strings.Join(allowed, ", "),
		Err:   ErrInvalidPaymentMode,
	}
}

func QuotaExceeded(used, max int) error {
	return ConflictError{
		Resource: "employee quota",
		Msg:      fmt.Sprintf("%d of %d free bookings already used this month", used, max),
		Err:      ErrQuotaExceeded,
	}
}

func IdentityMismatch(expected string) error {
	return ValidationError{
		Field: "passenger_name",
		Msg:   fmt.Sprintf("must match %q", expected),
		Err:   ErrIdentityMismatch,
	}
}

func TicketNotFound(pnr string) error {
	return NotFoundError{Resource: "ticket " + pnr, Err: ErrTicketNotFound}
}

func AlreadyCancelled(pnr string) error {
	return ConflictError{Resource: "ticket " + pnr, Msg: "ticket is already cancelled", Err: ErrAlreadyCancelled}
}

// Code returns a stable machine-readable code for API payloads and metrics.
func Code(err error) string {
	kinds := []struct {
		err  error
		code string
	}{
		{ErrInvalidJourneyDate, "invalid_journey_date"},
		{ErrRouteNotFound, "route_not_found"},
		{ErrFareUnavailable, "fare_unavailable"},
		{ErrInvalidPaymentMode, "invalid_payment_mode"},
		{ErrQuotaExceeded, "quota_exceeded"},
		{ErrIdentityMismatch, "identity_mismatch"},
		{ErrTicketNotFound, "ticket_not_found"},
		{ErrAlreadyCancelled, "already_cancelled"},
		{ErrInvalidCredentials, "invalid_credentials"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	switch {
	case IsValidation(err):
		return "validation_error"
	case IsNotFound(err):
		return "not_found"
	case IsConflict(err):
		return "conflict"
	default:
		return "internal_error"
	}
}
