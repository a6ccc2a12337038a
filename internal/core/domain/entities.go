package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// UnknownGroup is the fallback grouping key for records missing a
// company, month or category value.
const UnknownGroup = "Unknown"

// DetailItem is a single line item of an investment request.
type DetailItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// InvestmentRequest represents one CapEx approval request as stored in
// the record store. The ID is opaque and assigned by the store at
// creation time.
type InvestmentRequest struct {
	ID string `json:"id"`

	Title      string       `json:"title"`
	Company    string       `json:"company,omitempty"`
	Team       string       `json:"team,omitempty"`
	User       string       `json:"user,omitempty"`
	Category   string       `json:"category,omitempty"`
	Detail     string       `json:"detail,omitempty"`
	Amount     float64      `json:"amount"`
	DetailSum  float64      `json:"detailAmount"`
	Items      []DetailItem `json:"detailItems,omitempty"`
	Month      string       `json:"month,omitempty"`
	Project    string       `json:"project,omitempty"`
	ProjectSOP string       `json:"projectSOP,omitempty"`

	Status        Status     `json:"status"`
	RequestedBy   string     `json:"requestedBy"`
	RequestedDate time.Time  `json:"requestedDate"`
	ProcessedBy   string     `json:"processedBy,omitempty"`
	ProcessedDate *time.Time `json:"processedDate,omitempty"`
	AdminComment  string     `json:"adminComment"`

	// Created is the store's item creation timestamp, set by the
	// record store and never written back.
	Created time.Time `json:"created,omitempty"`
}

// AmountDifference returns the gap between the top-level amount and the
// sum of detail line items. A non-zero value is informational only; it
// never blocks persistence.
func (r *InvestmentRequest) AmountDifference() float64 {
	var sum float64
	for _, item := range r.Items {
		sum += item.Amount
	}
	return r.Amount - sum
}

// IsOwnedBy reports whether email matches the requester identity.
// Ownership is determined solely by this email match; there is no
// local user table.
func (r *InvestmentRequest) IsOwnedBy(email string) bool {
	return r.RequestedBy != "" && r.RequestedBy == email
}

// UserIdentity is the identity resolved from a verified session token
// or, at login time, from the identity provider.
type UserIdentity struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	IsAdmin    bool   `json:"isAdmin"`
	IsTempUser bool   `json:"isTempUser,omitempty"`
}

// ParseAmount converts a raw stored amount value (number or numeric
// string) to a float64. Missing or unparseable values degrade to zero;
// this matches the stored data's historical behavior and is an accepted
// data-integrity gap rather than an error.
func ParseAmount(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// DecodeDetailItems parses the JSON-encoded line-item array stored in
// the record store's DetailItems field. Malformed payloads yield an
// empty slice.
func DecodeDetailItems(raw string) []DetailItem {
	if raw == "" {
		return nil
	}
	var items []DetailItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

// EncodeDetailItems serializes line items for storage. A nil slice is
// stored as an empty array, matching existing records.
func EncodeDetailItems(items []DetailItem) string {
	if items == nil {
		items = []DetailItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}
