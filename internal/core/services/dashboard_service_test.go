package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capex-approval/internal/core/domain"
)

func TestDashboardStats(t *testing.T) {
	svc := NewDashboardService(NewMockStore())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalCount)
	assert.InDelta(t, 10050000, stats.TotalAmount, 0.01)

	// the legacy Draft record counts as Pending
	assert.Equal(t, 4, stats.ByStatus[domain.StatusPending].Count)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusApproved].Count)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusRejected].Count)
	assert.InDelta(t, 7950000, stats.ByStatus[domain.StatusPending].Amount, 0.01)
}

func TestDashboardStatsEmptyStore(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	for _, id := range []string{"mock-001", "mock-002", "mock-003", "mock-004", "mock-005", "mock-006"} {
		require.NoError(t, store.Delete(ctx, id))
	}

	stats, err := NewDashboardService(store).Stats(ctx)
	require.NoError(t, err)

	assert.Zero(t, stats.TotalCount)
	// all three buckets are present at zero
	require.Contains(t, stats.ByStatus, domain.StatusPending)
	require.Contains(t, stats.ByStatus, domain.StatusApproved)
	require.Contains(t, stats.ByStatus, domain.StatusRejected)
	assert.Zero(t, stats.ByStatus[domain.StatusApproved].Count)
	assert.Empty(t, stats.ByCompany)
}

func TestDashboardCompanyGrouping(t *testing.T) {
	svc := NewDashboardService(NewMockStore())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	require.Len(t, stats.ByCompany, 3)

	// largest spend first
	assert.Equal(t, "SPS Alpha", stats.ByCompany[0].Name)
	assert.InDelta(t, 6600000, stats.ByCompany[0].Amount, 0.01)
	assert.Equal(t, "SPS Beta", stats.ByCompany[1].Name)

	// empty company falls into the Unknown group
	assert.Equal(t, domain.UnknownGroup, stats.ByCompany[2].Name)
	assert.Equal(t, 1, stats.ByCompany[2].Count)
}

func TestDashboardMonthOrdering(t *testing.T) {
	svc := NewDashboardService(NewMockStore())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	require.Len(t, stats.ByMonth, 4)
	// months sort chronologically, not by amount
	assert.Equal(t, "2025-06", stats.ByMonth[0].Name)
	assert.Equal(t, "2025-07", stats.ByMonth[1].Name)
	assert.Equal(t, "2025-08", stats.ByMonth[2].Name)
	assert.Equal(t, "2025-09", stats.ByMonth[3].Name)
}

func TestDashboardUserStats(t *testing.T) {
	svc := NewDashboardService(NewMockStore())

	users, err := svc.UserStats(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	// user@company.com carries the larger spend
	assert.Equal(t, "user@company.com", users[0].Email)
	assert.Equal(t, 5, users[0].TotalCount)
	assert.InDelta(t, 8250000, users[0].TotalAmount, 0.01)
	assert.Equal(t, 3, users[0].PendingCount)
	assert.Equal(t, 1, users[0].ApprovedCount)
	assert.Equal(t, 1, users[0].RejectedCount)

	assert.Equal(t, "admin@company.com", users[1].Email)
	assert.Equal(t, 1, users[1].TotalCount)
	assert.Equal(t, 1, users[1].PendingCount)
}

func TestDashboardRecent(t *testing.T) {
	svc := NewDashboardService(NewMockStore())

	recent, err := svc.Recent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "mock-005", recent[0].ID)

	// out-of-range limit falls back to the default of five
	recent, err = svc.Recent(context.Background(), -1)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}
