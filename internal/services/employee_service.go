package services

import (
	"context"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/reservation"
)

type EmployeeService struct {
	Engine    *reservation.Engine
	People    People
	RequestID string
}

// QuotaView is the employee's free-booking allowance for the current month.
type QuotaView struct {
	EmployeeID string `json:"employee_id"`
	Month      string `json:"month"`
	Used       int    `json:"used"`
	Limit      int    `json:"limit"`
	Remaining  int    `json:"remaining"`
}

func (s EmployeeService) Quota(ctx context.Context, who domain.Principal) (QuotaView, error) {
	if who.Kind != models.OwnerEmployee {
		return QuotaView{}, domain.ValidationError{Field: "principal", Msg: "employees only"}
	}
	q, err := s.Engine.QuotaUsage(ctx, who.ID)
	if err != nil {
		return QuotaView{}, err
	}
	remaining := q.Limit - q.Used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaView{
		EmployeeID: who.ID,
		Month:      q.From.Format("2006-01"),
		Used:       q.Used,
		Limit:      q.Limit,
		Remaining:  remaining,
	}, nil
}

func (s EmployeeService) Dependents(ctx context.Context, who domain.Principal) ([]models.Dependent, error) {
	if who.Kind != models.OwnerEmployee {
		return nil, domain.ValidationError{Field: "principal", Msg: "employees only"}
	}
	deps, err := s.People.Dependents(ctx, who.ID)
	if err != nil {
		return nil, err
	}
	if deps == nil {
		deps = []models.Dependent{}
	}
	return deps, nil
}
