package models

import (
	"time"
)

// StatusChange represents status_changes table. One row per admin
// decision, written after the upstream record update succeeds.
type StatusChange struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecordID    string    `gorm:"size:64;not null;index" json:"record_id"`
	OldStatus   string    `gorm:"size:20" json:"old_status"`
	NewStatus   string    `gorm:"size:20;not null" json:"new_status"`
	Comment     string    `gorm:"size:1000" json:"comment"`
	ProcessedBy string    `gorm:"size:100;not null" json:"processed_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (StatusChange) TableName() string {
	return "status_changes"
}
