package services

import (
	"context"
	"time"

	"capex-approval/internal/core/domain"
)

// RecordStore is the repository façade over the investment request
// store. The production implementation is the SharePoint list client;
// a mutex-guarded in-memory implementation backs the development mock
// routes. List reads are point-in-time best effort: there is no
// snapshot isolation, and concurrent writers race last-write-wins.
type RecordStore interface {
	Create(ctx context.Context, rec *domain.InvestmentRequest) (*domain.InvestmentRequest, error)
	List(ctx context.Context, filter domain.RecordFilter) ([]*domain.InvestmentRequest, error)
	GetByID(ctx context.Context, id string) (*domain.InvestmentRequest, error)
	Update(ctx context.Context, id string, upd *domain.RecordUpdate) (*domain.InvestmentRequest, error)
	SetStatus(ctx context.Context, id string, status domain.Status, comment, processedBy string, processedAt time.Time) (*domain.InvestmentRequest, error)
	Delete(ctx context.Context, id string) error
}

// IdentityVerifier resolves a session token into a user identity.
// Claims embedded in a valid token are authoritative for the token's
// lifetime; no live re-validation against a user store occurs.
type IdentityVerifier interface {
	Verify(token string) (*domain.UserIdentity, error)
}

// AuditRecorder persists status-change history. Implementations must
// tolerate being nil-checked away: the audit trail is optional.
type AuditRecorder interface {
	RecordStatusChange(ctx context.Context, recordID string, oldStatus, newStatus domain.Status, comment, processedBy string) error
	HistoryByRecordID(ctx context.Context, recordID string) ([]*StatusChangeEntry, error)
}

// StatusChangeEntry is one audited status transition
type StatusChangeEntry struct {
	ID          uint      `json:"id"`
	RecordID    string    `json:"recordId"`
	OldStatus   string    `json:"oldStatus"`
	NewStatus   string    `json:"newStatus"`
	Comment     string    `json:"comment"`
	ProcessedBy string    `json:"processedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
