package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capex-approval/internal/core/domain"
)

func TestMockStoreSeedData(t *testing.T) {
	store := NewMockStore()

	records, err := store.List(context.Background(), domain.RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 6)

	// newest first
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Created.After(records[i-1].Created))
	}
}

func TestMockStoreFilters(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	pending, err := store.List(ctx, domain.RecordFilter{Status: "Pending"})
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	alpha, err := store.List(ctx, domain.RecordFilter{Company: "SPS Alpha"})
	require.NoError(t, err)
	assert.Len(t, alpha, 3)

	july, err := store.List(ctx, domain.RecordFilter{Month: "2025-07", Status: "Pending"})
	require.NoError(t, err)
	assert.Len(t, july, 2)
}

func TestMockStorePagination(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	first, err := store.List(ctx, domain.RecordFilter{Top: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := store.List(ctx, domain.RecordFilter{Top: 2, Skip: 2})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	past, err := store.List(ctx, domain.RecordFilter{Skip: 100})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestMockStoreCreateAssignsID(t *testing.T) {
	store := NewMockStore()

	rec, err := store.Create(context.Background(), &domain.InvestmentRequest{Title: "X"})
	require.NoError(t, err)
	assert.Contains(t, rec.ID, "mock-")
	assert.False(t, rec.Created.IsZero())
}

func TestMockStoreReturnsCopies(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	rec, err := store.GetByID(ctx, "mock-001")
	require.NoError(t, err)

	rec.Title = "mutated"
	rec.Items[0].Amount = -1

	again, err := store.GetByID(ctx, "mock-001")
	require.NoError(t, err)
	assert.Equal(t, "Production line expansion", again.Title)
	assert.Equal(t, float64(1500000), again.Items[0].Amount)
}

func TestMockStoreDelete(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "mock-002"))
	assert.ErrorIs(t, store.Delete(ctx, "mock-002"), domain.ErrNotFound)
}
