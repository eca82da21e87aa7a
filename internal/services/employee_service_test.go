package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railway/internal/domain"
)

func TestEmployeeService_Quota(t *testing.T) {
	f := newFixture(t, 3)
	svc := EmployeeService{Engine: f.engine, People: f.people}
	ctx := context.Background()

	q, err := svc.Quota(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, "2026-03", q.Month)
	assert.Equal(t, 0, q.Used)
	assert.Equal(t, 10, q.Remaining)

	_, err = f.svc.Book(ctx, employee, bookingInput("Ravi Kumar"))
	require.NoError(t, err)
	q, err = svc.Quota(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Used)
	assert.Equal(t, 9, q.Remaining)

	_, err = svc.Quota(ctx, passenger)
	assert.True(t, domain.IsValidation(err))
}

func TestEmployeeService_Dependents(t *testing.T) {
	f := newFixture(t, 1)
	svc := EmployeeService{Engine: f.engine, People: f.people}

	deps, err := svc.Dependents(context.Background(), employee)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "Meena Kumar", deps[0].FullName())

	other := employee
	other.ID = "EMP009"
	deps, err = svc.Dependents(context.Background(), other)
	require.NoError(t, err)
	assert.NotNil(t, deps)
	assert.Empty(t, deps)
}
