package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"capex-approval/internal/config"
	"capex-approval/internal/core/domain"
)

// ReminderService periodically scans for pending requests that have
// gone unreviewed and logs a summary for the admin team.
type ReminderService struct {
	store RecordStore
	cfg   *config.Config
	cron  *cron.Cron
}

// NewReminderService creates a new reminder service
func NewReminderService(store RecordStore, cfg *config.Config) *ReminderService {
	return &ReminderService{
		store: store,
		cfg:   cfg,
		cron:  cron.New(),
	}
}

// Start registers the scan job and starts the scheduler
func (s *ReminderService) Start() error {
	if !s.cfg.Reminder.Enabled {
		log.Println("ℹ️ Pending-request reminders disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Reminder.Schedule, func() {
		if err := s.ScanPending(context.Background()); err != nil {
			log.Printf("❌ Pending-request scan failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("✅ Reminder scheduler started (%s)", s.cfg.Reminder.Schedule)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Reminder scheduler stopped")
}

// ScanPending counts pending requests older than the configured
// threshold and logs the result
func (s *ReminderService) ScanPending(ctx context.Context) error {
	records, err := s.store.List(ctx, domain.RecordFilter{
		Status: string(domain.StatusPending),
		Top:    1000,
	})
	if err != nil {
		return err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.Reminder.StaleAfterDy)

	var stale int
	var staleAmount float64
	for _, rec := range records {
		if rec.RequestedDate.Before(cutoff) {
			stale++
			staleAmount += rec.Amount
		}
	}

	if stale == 0 {
		log.Printf("ℹ️ Pending scan: %d pending, none older than %d days", len(records), s.cfg.Reminder.StaleAfterDy)
		return nil
	}

	log.Printf("⚠️ Pending scan: %d of %d requests older than %d days, %.2f total amount awaiting review",
		stale, len(records), s.cfg.Reminder.StaleAfterDy, staleAmount)
	return nil
}
