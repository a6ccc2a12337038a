package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"capex-approval/internal/config"
	"capex-approval/internal/core/domain"
)

func TestScanPending(t *testing.T) {
	store := NewMockStore()
	cfg := &config.Config{
		AppMode: "dev",
		Reminder: config.ReminderConfig{
			Enabled:      true,
			Schedule:     "30 8 * * *",
			StaleAfterDy: 7,
		},
	}

	svc := NewReminderService(store, cfg)
	require.NoError(t, svc.ScanPending(context.Background()))

	// a request well past the threshold still scans cleanly
	_, err := store.Create(context.Background(), &domain.InvestmentRequest{
		Title:         "Old request",
		Status:        domain.StatusPending,
		RequestedBy:   "user@company.com",
		RequestedDate: time.Now().UTC().AddDate(0, 0, -30),
	})
	require.NoError(t, err)
	require.NoError(t, svc.ScanPending(context.Background()))
}

func TestReminderDisabledStart(t *testing.T) {
	cfg := &config.Config{Reminder: config.ReminderConfig{Enabled: false}}
	svc := NewReminderService(NewMockStore(), cfg)

	require.NoError(t, svc.Start())
}
