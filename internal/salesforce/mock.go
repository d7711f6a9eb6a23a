package salesforce

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spec-kit/lead-lens/internal/soql"
)

// MockClient is an in-memory org used for staging and tests. Queries are evaluated against
// fixture records with the same condition tree that renders the SOQL.
type MockClient struct {
	mu       sync.RWMutex
	objects  map[string][]map[string]any
	describe map[string]*DescribeResult
	now      func() time.Time
}

// NewMock returns a mock org seeded with the standard fixtures.
func NewMock() *MockClient {
	return NewMockWith(FixtureContacts())
}

// NewMockWith returns a mock org seeded with the given contacts.
func NewMockWith(contacts []map[string]any) *MockClient {
	return &MockClient{
		objects: map[string][]map[string]any{
			"Contact":        contacts,
			"Task":           FixtureTasks(),
			"ContactHistory": FixtureHistory(),
		},
		describe: map[string]*DescribeResult{"Contact": FixtureDescribe()},
		now:      time.Now,
	}
}

// Query evaluates q against the stored records.
func (m *MockClient) Query(_ context.Context, q soql.Query) (*QueryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records, ok := m.objects[q.Object]
	if !ok {
		return nil, &APIError{Operation: "query", StatusCode: 400, Body: fmt.Sprintf("sObject type '%s' is not supported", q.Object)}
	}
	rows, total := q.Apply(records)
	for i, r := range rows {
		rows[i] = withAttributes(q.Object, r)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return &QueryResult{TotalSize: total, Done: true, Records: rows}, nil
}

// Update applies field patches. Unknown ids fail per record.
func (m *MockClient) Update(_ context.Context, object string, records []Record) ([]SaveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.objects[object]
	if !ok {
		return nil, &APIError{Operation: "update", StatusCode: 400, Body: fmt.Sprintf("sObject type '%s' is not supported", object)}
	}

	index := make(map[string]map[string]any, len(stored))
	for _, r := range stored {
		if id, ok := r["Id"].(string); ok {
			index[id] = r
		}
	}

	results := make([]SaveResult, 0, len(records))
	for _, rec := range records {
		target, ok := index[rec.ID]
		if !ok {
			results = append(results, SaveResult{
				ID:      rec.ID,
				Success: false,
				Errors:  []SaveError{{StatusCode: "ENTITY_IS_DELETED", Message: "entity is deleted"}},
			})
			continue
		}
		for k, v := range rec.Fields {
			target[k] = v
		}
		target["LastModifiedDate"] = m.now().UTC().Format("2006-01-02T15:04:05.000Z")
		results = append(results, SaveResult{ID: rec.ID, Success: true, Errors: []SaveError{}})
	}
	return results, nil
}

// Describe returns the fixture describe for object.
func (m *MockClient) Describe(_ context.Context, object string) (*DescribeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.describe[object]
	if !ok {
		return nil, &APIError{Operation: "describe", StatusCode: 404, Body: "NOT_FOUND"}
	}
	return d, nil
}

func withAttributes(object string, record map[string]any) map[string]any {
	out := make(map[string]any, len(record)+1)
	for k, v := range record {
		out[k] = v
	}
	out["attributes"] = map[string]any{
		"type": object,
		"url":  fmt.Sprintf("/services/data/v62.0/sobjects/%s/%v", object, record["Id"]),
	}
	return out
}
