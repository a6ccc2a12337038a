package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"capex-approval/internal/config"
	"capex-approval/internal/core/domain"
)

// listTop is the cap applied when a listing asks for "everything",
// matching the dashboard's full-scan reads.
const listTop = 1000

// TokenSource supplies a bearer token for record store calls. The
// token comes from the identity provider, never from the application's
// own session tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SharePointStore is the record store façade over a SharePoint list
// reached through the Microsoft Graph items API.
type SharePointStore struct {
	cfg        config.SharePointConfig
	tokens     TokenSource
	httpClient *http.Client

	// BaseURL is overridable for tests
	BaseURL string
}

// NewSharePointStore creates a new SharePoint record store client
func NewSharePointStore(cfg config.SharePointConfig, tokens TokenSource, timeout time.Duration) *SharePointStore {
	return &SharePointStore{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		BaseURL:    defaultGraphBase,
	}
}

// itemEnvelope is a Graph list item with its field bag expanded
type itemEnvelope struct {
	ID      string                 `json:"id"`
	Created time.Time              `json:"createdDateTime"`
	Fields  map[string]interface{} `json:"fields"`
}

// itemsURL builds the list items collection URL
func (s *SharePointStore) itemsURL() string {
	return fmt.Sprintf("%s/sites/%s/lists/%s/items", s.BaseURL, s.cfg.SiteID, s.cfg.ListID)
}

// List fetches records matching the filter, newest first
func (s *SharePointStore) List(ctx context.Context, filter domain.RecordFilter) ([]*domain.InvestmentRequest, error) {
	top := filter.Top
	if top <= 0 {
		top = listTop
	}

	params := url.Values{}
	params.Set("expand", "fields")
	params.Set("$top", strconv.Itoa(top))
	params.Set("$orderby", "createdDateTime desc")
	if filter.Skip > 0 {
		params.Set("$skip", strconv.Itoa(filter.Skip))
	}
	if q := buildFilterQuery(filter); q != "" {
		params.Set("$filter", q)
	}

	body, err := s.do(ctx, "GET", s.itemsURL()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Value []itemEnvelope `json:"value"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &domain.UpstreamError{Service: "graph", Err: err}
	}

	records := make([]*domain.InvestmentRequest, 0, len(result.Value))
	for _, item := range result.Value {
		records = append(records, recordFromFields(item))
	}
	return records, nil
}

// GetByID fetches a single record
func (s *SharePointStore) GetByID(ctx context.Context, id string) (*domain.InvestmentRequest, error) {
	endpoint := fmt.Sprintf("%s/%s?expand=fields", s.itemsURL(), url.PathEscape(id))

	body, err := s.do(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	var item itemEnvelope
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, &domain.UpstreamError{Service: "graph", Err: err}
	}

	return recordFromFields(item), nil
}

// Create stores a new record and returns it with the assigned ID
func (s *SharePointStore) Create(ctx context.Context, rec *domain.InvestmentRequest) (*domain.InvestmentRequest, error) {
	payload := map[string]interface{}{
		"fields": fieldsFromRecord(rec),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	body, err := s.do(ctx, "POST", s.itemsURL(), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var item itemEnvelope
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, &domain.UpstreamError{Service: "graph", Err: err}
	}

	return recordFromFields(item), nil
}

// Update patches content fields on a record, then re-reads it
func (s *SharePointStore) Update(ctx context.Context, id string, upd *domain.RecordUpdate) (*domain.InvestmentRequest, error) {
	fields := fieldsFromUpdate(upd)
	if len(fields) == 0 {
		return s.GetByID(ctx, id)
	}

	if err := s.patchFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// SetStatus overwrites the workflow fields of a record. Last write
// wins; there is no optimistic-concurrency check.
func (s *SharePointStore) SetStatus(ctx context.Context, id string, status domain.Status, comment, processedBy string, processedAt time.Time) (*domain.InvestmentRequest, error) {
	fields := map[string]interface{}{
		"Status":        status.String(),
		"AdminComment":  comment,
		"ProcessedBy":   processedBy,
		"ProcessedDate": processedAt.UTC().Format(time.RFC3339),
	}

	if err := s.patchFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a record from the list
func (s *SharePointStore) Delete(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/%s", s.itemsURL(), url.PathEscape(id))
	_, err := s.do(ctx, "DELETE", endpoint, nil)
	return err
}

// patchFields patches the field bag of a list item
func (s *SharePointStore) patchFields(ctx context.Context, id string, fields map[string]interface{}) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/fields", s.itemsURL(), url.PathEscape(id))
	_, err = s.do(ctx, "PATCH", endpoint, bytes.NewReader(data))
	return err
}

// do executes one authenticated call against the Graph API
func (s *SharePointStore) do(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "graph", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "graph", Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{
			Service: "graph",
			Status:  resp.StatusCode,
			Detail:  extractGraphError(respBody),
		}
	}

	return respBody, nil
}

// buildFilterQuery builds an OData $filter expression from the filter
func buildFilterQuery(filter domain.RecordFilter) string {
	var clauses []string
	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("fields/Status eq '%s'", escapeODataValue(filter.Status)))
	}
	if filter.Company != "" {
		clauses = append(clauses, fmt.Sprintf("fields/Company eq '%s'", escapeODataValue(filter.Company)))
	}
	if filter.Month != "" {
		clauses = append(clauses, fmt.Sprintf("fields/Month eq '%s'", escapeODataValue(filter.Month)))
	}

	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	default:
		q := clauses[0]
		for _, c := range clauses[1:] {
			q += " and " + c
		}
		return q
	}
}

// escapeODataValue doubles single quotes per OData string literal rules
func escapeODataValue(v string) string {
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		if v[i] == '\'' {
			out = append(out, '\'', '\'')
		} else {
			out = append(out, v[i])
		}
	}
	return string(out)
}

// recordFromFields maps a SharePoint field bag onto the typed record.
// Missing fields default to empty strings; amounts degrade to zero on
// parse failure.
func recordFromFields(item itemEnvelope) *domain.InvestmentRequest {
	fields := item.Fields
	rec := &domain.InvestmentRequest{
		ID:         item.ID,
		Created:    item.Created,
		Title:      stringField(fields, "Title"),
		Company:    stringField(fields, "Company"),
		Team:       stringField(fields, "Team"),
		User:       stringField(fields, "User"),
		Category:   stringField(fields, "Category"),
		Detail:     stringField(fields, "Detail"),
		Amount:     domain.ParseAmount(fields["Amount"]),
		DetailSum:  domain.ParseAmount(fields["DetailAmount"]),
		Items:      domain.DecodeDetailItems(stringField(fields, "DetailItems")),
		Month:      stringField(fields, "Month"),
		Project:    stringField(fields, "Project"),
		ProjectSOP: stringField(fields, "ProjectSOP"),

		Status:       domain.NormalizeStatus(stringField(fields, "Status")),
		RequestedBy:  stringField(fields, "RequestedBy"),
		ProcessedBy:  stringField(fields, "ProcessedBy"),
		AdminComment: stringField(fields, "AdminComment"),
	}

	rec.RequestedDate = parseTimeField(fields, "RequestedDate")
	if t := parseTimeField(fields, "ProcessedDate"); !t.IsZero() {
		rec.ProcessedDate = &t
	}

	return rec
}

// fieldsFromRecord maps a typed record onto the SharePoint field bag
func fieldsFromRecord(rec *domain.InvestmentRequest) map[string]interface{} {
	fields := map[string]interface{}{
		"Title":         rec.Title,
		"Company":       rec.Company,
		"Team":          rec.Team,
		"User":          rec.User,
		"Category":      rec.Category,
		"Detail":        rec.Detail,
		"Amount":        rec.Amount,
		"DetailAmount":  rec.DetailSum,
		"DetailItems":   domain.EncodeDetailItems(rec.Items),
		"Month":         rec.Month,
		"Project":       rec.Project,
		"ProjectSOP":    rec.ProjectSOP,
		"Status":        rec.Status.String(),
		"RequestedBy":   rec.RequestedBy,
		"RequestedDate": rec.RequestedDate.UTC().Format(time.RFC3339),
		"AdminComment":  rec.AdminComment,
	}
	if rec.ProcessedBy != "" {
		fields["ProcessedBy"] = rec.ProcessedBy
	}
	if rec.ProcessedDate != nil {
		fields["ProcessedDate"] = rec.ProcessedDate.UTC().Format(time.RFC3339)
	}
	return fields
}

// fieldsFromUpdate maps the non-nil update fields onto the field bag
func fieldsFromUpdate(upd *domain.RecordUpdate) map[string]interface{} {
	fields := map[string]interface{}{}
	if upd == nil {
		return fields
	}
	if upd.Title != nil {
		fields["Title"] = *upd.Title
	}
	if upd.Company != nil {
		fields["Company"] = *upd.Company
	}
	if upd.Team != nil {
		fields["Team"] = *upd.Team
	}
	if upd.User != nil {
		fields["User"] = *upd.User
	}
	if upd.Category != nil {
		fields["Category"] = *upd.Category
	}
	if upd.Detail != nil {
		fields["Detail"] = *upd.Detail
	}
	if upd.Amount != nil {
		fields["Amount"] = *upd.Amount
	}
	if upd.DetailSum != nil {
		fields["DetailAmount"] = *upd.DetailSum
	}
	if upd.Items != nil {
		fields["DetailItems"] = domain.EncodeDetailItems(upd.Items)
	}
	if upd.Month != nil {
		fields["Month"] = *upd.Month
	}
	if upd.Project != nil {
		fields["Project"] = *upd.Project
	}
	if upd.ProjectSOP != nil {
		fields["ProjectSOP"] = *upd.ProjectSOP
	}
	return fields
}

// stringField reads a field as a string, defaulting to ""
func stringField(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// parseTimeField reads an RFC3339 timestamp field, zero on failure
func parseTimeField(fields map[string]interface{}, key string) time.Time {
	raw := stringField(fields, key)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// extractGraphError pulls the message out of a Graph error body
func extractGraphError(body []byte) string {
	var graphErr struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
		return graphErr.Error.Message
	}
	return string(body)
}
