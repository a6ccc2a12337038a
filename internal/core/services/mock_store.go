package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"capex-approval/internal/core/domain"
)

// MockStore is an in-memory RecordStore used by the temp-login flow
// and the mock API surface in development mode. All mutations happen
// under a single mutex; returned records are copies so callers cannot
// mutate stored state.
type MockStore struct {
	mu      sync.Mutex
	records map[string]*domain.InvestmentRequest
}

// NewMockStore creates a store pre-seeded with sample requests
func NewMockStore() *MockStore {
	s := &MockStore{records: map[string]*domain.InvestmentRequest{}}
	for _, rec := range seedRecords() {
		s.records[rec.ID] = rec
	}
	return s
}

// Create assigns an ID and stores a copy of the record
func (s *MockStore) Create(_ context.Context, rec *domain.InvestmentRequest) (*domain.InvestmentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneRecord(rec)
	stored.ID = fmt.Sprintf("mock-%s", uuid.New().String()[:8])
	stored.Created = time.Now().UTC()
	s.records[stored.ID] = stored

	return cloneRecord(stored), nil
}

// List returns records matching the filter, newest first
func (s *MockStore) List(_ context.Context, filter domain.RecordFilter) ([]*domain.InvestmentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*domain.InvestmentRequest, 0, len(s.records))
	for _, rec := range s.records {
		if filter.Status != "" && string(rec.Status) != filter.Status {
			continue
		}
		if filter.Company != "" && rec.Company != filter.Company {
			continue
		}
		if filter.Month != "" && rec.Month != filter.Month {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Created.After(matched[j].Created)
	})

	if filter.Skip > 0 {
		if filter.Skip >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Skip:]
		}
	}
	if filter.Top > 0 && filter.Top < len(matched) {
		matched = matched[:filter.Top]
	}

	out := make([]*domain.InvestmentRequest, 0, len(matched))
	for _, rec := range matched {
		out = append(out, cloneRecord(rec))
	}
	return out, nil
}

// GetByID returns a copy of the record or domain.ErrNotFound
func (s *MockStore) GetByID(_ context.Context, id string) (*domain.InvestmentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// Update applies the non-nil fields of upd
func (s *MockStore) Update(_ context.Context, id string, upd *domain.RecordUpdate) (*domain.InvestmentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if upd.Title != nil {
		rec.Title = *upd.Title
	}
	if upd.Company != nil {
		rec.Company = *upd.Company
	}
	if upd.Team != nil {
		rec.Team = *upd.Team
	}
	if upd.User != nil {
		rec.User = *upd.User
	}
	if upd.Category != nil {
		rec.Category = *upd.Category
	}
	if upd.Detail != nil {
		rec.Detail = *upd.Detail
	}
	if upd.Amount != nil {
		rec.Amount = *upd.Amount
	}
	if upd.DetailSum != nil {
		rec.DetailSum = *upd.DetailSum
	}
	if upd.Items != nil {
		rec.Items = append([]domain.DetailItem(nil), upd.Items...)
	}
	if upd.Month != nil {
		rec.Month = *upd.Month
	}
	if upd.Project != nil {
		rec.Project = *upd.Project
	}
	if upd.ProjectSOP != nil {
		rec.ProjectSOP = *upd.ProjectSOP
	}

	return cloneRecord(rec), nil
}

// SetStatus records an admin decision on the record
func (s *MockStore) SetStatus(_ context.Context, id string, status domain.Status, comment, processedBy string, processedAt time.Time) (*domain.InvestmentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	rec.Status = status
	rec.AdminComment = comment
	rec.ProcessedBy = processedBy
	at := processedAt
	rec.ProcessedDate = &at

	return cloneRecord(rec), nil
}

// Delete removes the record or returns domain.ErrNotFound
func (s *MockStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func cloneRecord(rec *domain.InvestmentRequest) *domain.InvestmentRequest {
	out := *rec
	if rec.Items != nil {
		out.Items = append([]domain.DetailItem(nil), rec.Items...)
	}
	if rec.ProcessedDate != nil {
		at := *rec.ProcessedDate
		out.ProcessedDate = &at
	}
	return &out
}

func seedRecords() []*domain.InvestmentRequest {
	now := time.Now().UTC()
	day := func(n int) time.Time { return now.AddDate(0, 0, -n) }
	processed := day(2)

	return []*domain.InvestmentRequest{
		{
			ID:     "mock-001",
			Title:  "Production line expansion",
			Company: "SPS Alpha", Team: "Manufacturing", User: "Somchai P.",
			Category: "Machinery", Detail: "Second assembly line for plant 2",
			Amount: 2500000, DetailSum: 2500000,
			Items: []domain.DetailItem{
				{Description: "Conveyor system", Amount: 1500000},
				{Description: "Installation", Amount: 1000000},
			},
			Month: "2025-07", Project: "PLX-2025", ProjectSOP: "SOP-114",
			Status:      domain.StatusPending,
			RequestedBy: "user@company.com", RequestedDate: day(5), Created: day(5),
		},
		{
			ID:     "mock-002",
			Title:  "Warehouse forklift replacement",
			Company: "SPS Alpha", Team: "Logistics", User: "Anong K.",
			Category: "Equipment", Detail: "Replace two aging forklifts",
			Amount: 900000, DetailSum: 900000,
			Month: "2025-06", Project: "WH-OPS", ProjectSOP: "SOP-090",
			Status:       domain.StatusApproved,
			AdminComment: "Approved within annual equipment budget",
			RequestedBy:  "user@company.com", RequestedDate: day(20), Created: day(20),
			ProcessedBy: "admin@company.com", ProcessedDate: &processed,
		},
		{
			ID:     "mock-003",
			Title:  "Office renovation phase 1",
			Company: "SPS Beta", Team: "Facilities", User: "Wichai T.",
			Category: "Building", Detail: "Renovate 3rd floor meeting rooms",
			Amount: 1200000, DetailSum: 1150000,
			Items: []domain.DetailItem{
				{Description: "Construction", Amount: 800000},
				{Description: "Furniture", Amount: 350000},
			},
			Month: "2025-08", Project: "OFF-REN", ProjectSOP: "",
			Status:       domain.StatusRejected,
			AdminComment: "Defer to next fiscal year",
			RequestedBy:  "user@company.com", RequestedDate: day(15), Created: day(15),
			ProcessedBy: "admin@company.com", ProcessedDate: &processed,
		},
		{
			ID:     "mock-004",
			Title:  "ERP server upgrade",
			Company: "SPS Beta", Team: "IT", User: "Admin",
			Category: "IT Infrastructure", Detail: "Replace ERP database servers",
			Amount: 1800000, DetailSum: 1800000,
			Month: "2025-07", Project: "ERP-2025", ProjectSOP: "SOP-201",
			Status:      domain.StatusPending,
			RequestedBy: "admin@company.com", RequestedDate: day(3), Created: day(3),
		},
		{
			ID:     "mock-005",
			Title:  "Delivery fleet addition",
			Company: "SPS Alpha", Team: "Logistics", User: "Anong K.",
			Category: "Vehicles", Detail: "Two additional delivery trucks",
			Amount: 3200000, DetailSum: 3200000,
			Month: "2025-09", Project: "FLEET-25", ProjectSOP: "SOP-077",
			Status:      domain.StatusPending,
			RequestedBy: "user@company.com", RequestedDate: day(1), Created: day(1),
		},
		{
			// legacy record carrying a status outside the active set
			ID:     "mock-006",
			Title:  "Solar rooftop feasibility study",
			Company: "", Team: "Engineering", User: "Somchai P.",
			Category: "", Detail: "External consultant study",
			Amount: 450000, DetailSum: 0,
			Month: "2025-08", Project: "SOLAR-FS", ProjectSOP: "",
			Status:      domain.StatusDraft,
			RequestedBy: "user@company.com", RequestedDate: day(10), Created: day(10),
		},
	}
}
