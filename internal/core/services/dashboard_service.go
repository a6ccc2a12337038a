package services

import (
	"context"
	"sort"

	"capex-approval/internal/core/domain"
)

// statsWindow is how many records an aggregation pass reads
const statsWindow = 1000

// DashboardService computes aggregate views over investment requests.
// Every call recomputes from a fresh fetch, there is no caching layer.
type DashboardService struct {
	store RecordStore
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store RecordStore) *DashboardService {
	return &DashboardService{store: store}
}

// StatusBucket holds the count and amount sum for one status
type StatusBucket struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// GroupStat holds the count and amount sum for one grouping key
type GroupStat struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// UserStat is the per-requester cross tabulation of statuses
type UserStat struct {
	Email          string  `json:"email"`
	TotalCount     int     `json:"totalCount"`
	TotalAmount    float64 `json:"totalAmount"`
	PendingCount   int     `json:"pendingCount"`
	PendingAmount  float64 `json:"pendingAmount"`
	ApprovedCount  int     `json:"approvedCount"`
	ApprovedAmount float64 `json:"approvedAmount"`
	RejectedCount  int     `json:"rejectedCount"`
	RejectedAmount float64 `json:"rejectedAmount"`
}

// DashboardStats is the full aggregate payload
type DashboardStats struct {
	TotalCount  int                             `json:"totalCount"`
	TotalAmount float64                         `json:"totalAmount"`
	ByStatus    map[domain.Status]*StatusBucket `json:"byStatus"`
	ByCompany   []*GroupStat                    `json:"byCompany"`
	ByMonth     []*GroupStat                    `json:"byMonth"`
	ByCategory  []*GroupStat                    `json:"byCategory"`
}

// Stats aggregates the most recent records in a single pass
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	records, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		// all three buckets present even when empty
		ByStatus: map[domain.Status]*StatusBucket{
			domain.StatusPending:  {},
			domain.StatusApproved: {},
			domain.StatusRejected: {},
		},
	}

	companies := map[string]*GroupStat{}
	months := map[string]*GroupStat{}
	categories := map[string]*GroupStat{}

	for _, rec := range records {
		stats.TotalCount++
		stats.TotalAmount += rec.Amount

		bucket := stats.ByStatus[activeStatus(rec.Status)]
		bucket.Count++
		bucket.Amount += rec.Amount

		accumulate(companies, rec.Company, rec.Amount)
		accumulate(months, rec.Month, rec.Amount)
		accumulate(categories, rec.Category, rec.Amount)
	}

	stats.ByCompany = sortByAmount(companies)
	stats.ByMonth = sortByName(months)
	stats.ByCategory = sortByAmount(categories)

	return stats, nil
}

// UserStats cross-tabulates statuses per requester, largest spend first
func (s *DashboardService) UserStats(ctx context.Context) ([]*UserStat, error) {
	records, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	users := map[string]*UserStat{}
	for _, rec := range records {
		email := rec.RequestedBy
		if email == "" {
			email = domain.UnknownGroup
		}

		us, ok := users[email]
		if !ok {
			us = &UserStat{Email: email}
			users[email] = us
		}

		us.TotalCount++
		us.TotalAmount += rec.Amount

		switch activeStatus(rec.Status) {
		case domain.StatusApproved:
			us.ApprovedCount++
			us.ApprovedAmount += rec.Amount
		case domain.StatusRejected:
			us.RejectedCount++
			us.RejectedAmount += rec.Amount
		default:
			us.PendingCount++
			us.PendingAmount += rec.Amount
		}
	}

	out := make([]*UserStat, 0, len(users))
	for _, us := range users {
		out = append(out, us)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

// Recent returns the latest requests, newest first
func (s *DashboardService) Recent(ctx context.Context, limit int) ([]*domain.InvestmentRequest, error) {
	if limit < 1 || limit > statsWindow {
		limit = 5
	}
	return s.store.List(ctx, domain.RecordFilter{Top: limit})
}

func (s *DashboardService) fetch(ctx context.Context) ([]*domain.InvestmentRequest, error) {
	return s.store.List(ctx, domain.RecordFilter{Top: statsWindow})
}

// activeStatus folds legacy and unrecognized states into Pending so
// every record lands in one of the three fixed buckets
func activeStatus(s domain.Status) domain.Status {
	switch s {
	case domain.StatusApproved, domain.StatusRejected:
		return s
	}
	return domain.StatusPending
}

func accumulate(groups map[string]*GroupStat, key string, amount float64) {
	if key == "" {
		key = domain.UnknownGroup
	}
	g, ok := groups[key]
	if !ok {
		g = &GroupStat{Name: key}
		groups[key] = g
	}
	g.Count++
	g.Amount += amount
}

func sortByAmount(groups map[string]*GroupStat) []*GroupStat {
	out := collect(groups)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// sortByName orders months like "2025-01" chronologically
func sortByName(groups map[string]*GroupStat) []*GroupStat {
	out := collect(groups)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func collect(groups map[string]*GroupStat) []*GroupStat {
	out := make([]*GroupStat, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	return out
}
