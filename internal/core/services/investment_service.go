package services

import (
	"context"
	"errors"
	"log"
	"time"

	"capex-approval/internal/core/domain"
)

// Investment service errors
var (
	ErrInvestmentNotFound = errors.New("investment request not found")
	ErrNotOwner           = errors.New("only the requester or an admin may modify this request")
	ErrAdminRequired      = errors.New("admin role required")
	ErrInvalidStatusValue = errors.New("status must be one of Approved, Rejected, Pending")
	ErrTitleRequired      = errors.New("title is required")
)

// InvestmentService handles investment request business logic against
// a record store.
type InvestmentService struct {
	store RecordStore
	audit AuditRecorder // nil disables the audit trail
}

// NewInvestmentService creates a new investment service
func NewInvestmentService(store RecordStore, audit AuditRecorder) *InvestmentService {
	return &InvestmentService{
		store: store,
		audit: audit,
	}
}

// CreateInput represents create request input
type CreateInput struct {
	Title      string              `json:"title"`
	Company    string              `json:"company"`
	Team       string              `json:"team"`
	User       string              `json:"user"`
	Category   string              `json:"category"`
	Detail     string              `json:"detail"`
	Amount     float64             `json:"amount"`
	DetailSum  float64             `json:"detailAmount"`
	Items      []domain.DetailItem `json:"detailItems"`
	Month      string              `json:"month"`
	Project    string              `json:"project"`
	ProjectSOP string              `json:"projectSOP"`
}

// ListInput represents list filters and pagination
type ListInput struct {
	Status  string
	Company string
	Month   string
	Page    int
	Limit   int
}

// Create stores a new request owned by the caller, always Pending
func (s *InvestmentService) Create(ctx context.Context, input *CreateInput, caller *domain.UserIdentity) (*domain.InvestmentRequest, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	rec := &domain.InvestmentRequest{
		Title:      input.Title,
		Company:    input.Company,
		Team:       input.Team,
		User:       input.User,
		Category:   input.Category,
		Detail:     input.Detail,
		Amount:     input.Amount,
		DetailSum:  input.DetailSum,
		Items:      input.Items,
		Month:      input.Month,
		Project:    input.Project,
		ProjectSOP: input.ProjectSOP,

		Status:        domain.StatusPending,
		RequestedBy:   caller.Email,
		RequestedDate: time.Now().UTC(),
		AdminComment:  "",
	}

	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return nil, err
	}

	if diff := created.AmountDifference(); diff != 0 {
		// informational only, never blocks persistence
		log.Printf("ℹ️ Request %s amount differs from line-item sum by %.2f", created.ID, diff)
	}

	return created, nil
}

// List fetches requests matching the filters, newest first
func (s *InvestmentService) List(ctx context.Context, input *ListInput) ([]*domain.InvestmentRequest, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 10
	}

	return s.store.List(ctx, domain.RecordFilter{
		Status:  input.Status,
		Company: input.Company,
		Month:   input.Month,
		Top:     limit,
		Skip:    (page - 1) * limit,
	})
}

// GetByID fetches a single request
func (s *InvestmentService) GetByID(ctx context.Context, id string) (*domain.InvestmentRequest, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvestmentNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Update modifies content fields. Non-admin callers may only update
// their own requests; the ownership check requires reading the record
// first, which is an accepted extra round trip.
func (s *InvestmentService) Update(ctx context.Context, id string, upd *domain.RecordUpdate, caller *domain.UserIdentity) (*domain.InvestmentRequest, error) {
	if err := s.checkOwnership(ctx, id, caller); err != nil {
		return nil, err
	}

	rec, err := s.store.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvestmentNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Delete removes a request under the same ownership rule as Update
func (s *InvestmentService) Delete(ctx context.Context, id string, caller *domain.UserIdentity) error {
	if err := s.checkOwnership(ctx, id, caller); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvestmentNotFound
		}
		return err
	}
	return nil
}

// ChangeStatus applies an admin decision to a request. Approved and
// Rejected are not terminal: any of the three targets may be applied
// again later. Concurrent decisions race last-write-wins.
func (s *InvestmentService) ChangeStatus(ctx context.Context, id string, status domain.Status, comment string, caller *domain.UserIdentity) (*domain.InvestmentRequest, error) {
	if !caller.IsAdmin {
		return nil, ErrAdminRequired
	}
	if !status.IsValidTransition() {
		return nil, ErrInvalidStatusValue
	}

	var oldStatus domain.Status
	if s.audit != nil {
		if existing, err := s.store.GetByID(ctx, id); err == nil {
			oldStatus = existing.Status
		}
	}

	rec, err := s.store.SetStatus(ctx, id, status, comment, caller.Email, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvestmentNotFound
		}
		return nil, err
	}

	if s.audit != nil {
		if err := s.audit.RecordStatusChange(ctx, id, oldStatus, status, comment, caller.Email); err != nil {
			// the decision itself already succeeded
			log.Printf("❌ Failed to record status change for %s: %v", id, err)
		}
	}

	log.Printf("✅ Request %s set to %s by %s", id, status, caller.Email)
	return rec, nil
}

// History returns the audited status transitions of a request
func (s *InvestmentService) History(ctx context.Context, id string) ([]*StatusChangeEntry, error) {
	if s.audit == nil {
		return []*StatusChangeEntry{}, nil
	}
	return s.audit.HistoryByRecordID(ctx, id)
}

// checkOwnership allows admins through and otherwise requires the
// caller's email to match the record's requester
func (s *InvestmentService) checkOwnership(ctx context.Context, id string, caller *domain.UserIdentity) error {
	if caller.IsAdmin {
		return nil
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvestmentNotFound
		}
		return err
	}

	if !rec.IsOwnedBy(caller.Email) {
		return ErrNotOwner
	}
	return nil
}
