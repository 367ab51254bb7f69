package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/postgresql"
)

func TestLeaveBalanceRepository_ConcurrentIncrementUsed(t *testing.T) {
	db, retrier := setupTestDB(t)
	repo := postgresql.NewLeaveBalanceRepository(db, retrier)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementUsed(ctx, "u1", "annual", 2024, 1, 12)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	balance, err := repo.Get(ctx, "u1", "annual", 2024)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, 12, balance.TotalAllowed)
	assert.Equal(t, workers, balance.Used)
	assert.Equal(t, 12-workers, balance.Remaining)
}

func TestLeaveBalanceRepository_CreateIfAbsentKeepsExisting(t *testing.T) {
	db, retrier := setupTestDB(t)
	repo := postgresql.NewLeaveBalanceRepository(db, retrier)
	ctx := context.Background()

	created, err := repo.CreateIfAbsent(ctx, leave.LeaveBalance{UserID: "u1", LeaveType: "sick", Year: 2024, TotalAllowed: 6})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, leave.LeaveBalance{UserID: "u1", LeaveType: "sick", Year: 2024, TotalAllowed: 99})
	require.NoError(t, err)
	assert.False(t, created)

	balance, err := repo.Get(ctx, "u1", "sick", 2024)
	require.NoError(t, err)
	assert.Equal(t, 6, balance.TotalAllowed)

	missing, err := repo.Get(ctx, "u1", "sick", 2025)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLeaveRequestRepository_ApproveOnlyOnce(t *testing.T) {
	db, retrier := setupTestDB(t)
	repo := postgresql.NewLeaveRequestRepository(db, retrier)
	ctx := context.Background()

	req, err := repo.Create(ctx, leave.LeaveRequest{
		UserID:    "u1",
		LeaveType: "annual",
		StartDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		Status:    leave.LeaveRequestStatusPending,
		Reason:    "family trip",
	})
	require.NoError(t, err)

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	approved, err := repo.Approve(ctx, req.ID, "admin-1", 3, at)
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveRequestStatusApproved, approved.Status)
	assert.Equal(t, 3, approved.TotalDays)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "admin-1", *approved.ApprovedBy)

	_, err = repo.Approve(ctx, req.ID, "admin-2", 3, at)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	_, err = repo.Reject(ctx, req.ID, "too late", at)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	_, err = repo.Approve(ctx, "00000000-0000-0000-0000-000000000000", "admin-1", 1, at)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestLeavePolicyRepository_DuplicateLeaveType(t *testing.T) {
	db, retrier := setupTestDB(t)
	repo := postgresql.NewLeavePolicyRepository(db, retrier)
	ctx := context.Background()

	_, err := repo.Create(ctx, leave.LeavePolicy{LeaveType: "annual", Name: "Annual", DaysPerYear: 12, IsActive: true})
	require.NoError(t, err)

	_, err = repo.Create(ctx, leave.LeavePolicy{LeaveType: "annual", Name: "Annual again", DaysPerYear: 10, IsActive: true})
	assert.ErrorIs(t, err, leave.ErrLeavePolicyExists)
}
