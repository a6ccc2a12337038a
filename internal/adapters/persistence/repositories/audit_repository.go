package repositories

import (
	"context"

	"capex-approval/internal/adapters/persistence/models"
	"capex-approval/internal/core/domain"
	"capex-approval/internal/core/services"

	"gorm.io/gorm"
)

// auditRepository implements services.AuditRecorder on the audit
// database
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) services.AuditRecorder {
	return &auditRepository{db: db}
}

// RecordStatusChange writes one row per decision
func (r *auditRepository) RecordStatusChange(ctx context.Context, recordID string, oldStatus, newStatus domain.Status, comment, processedBy string) error {
	entry := &models.StatusChange{
		RecordID:    recordID,
		OldStatus:   string(oldStatus),
		NewStatus:   string(newStatus),
		Comment:     comment,
		ProcessedBy: processedBy,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// HistoryByRecordID returns a record's decisions, newest first
func (r *auditRepository) HistoryByRecordID(ctx context.Context, recordID string) ([]*services.StatusChangeEntry, error) {
	var rows []models.StatusChange
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*services.StatusChangeEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, &services.StatusChangeEntry{
			ID:          row.ID,
			RecordID:    row.RecordID,
			OldStatus:   row.OldStatus,
			NewStatus:   row.NewStatus,
			Comment:     row.Comment,
			ProcessedBy: row.ProcessedBy,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

// Migrate creates the audit tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.StatusChange{})
}
