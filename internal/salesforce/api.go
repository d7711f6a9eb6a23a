// Package salesforce talks to the Salesforce REST API: SOQL queries, composite updates and
// object describes.
package salesforce

import (
	"context"
	"fmt"

	"github.com/spec-kit/lead-lens/internal/soql"
)

// API is the subset of Salesforce the dashboard depends on.
type API interface {
	Query(ctx context.Context, q soql.Query) (*QueryResult, error)
	Update(ctx context.Context, object string, records []Record) ([]SaveResult, error)
	Describe(ctx context.Context, object string) (*DescribeResult, error)
}

// QueryResult is a page of query results.
type QueryResult struct {
	TotalSize      int              `json:"totalSize"`
	Done           bool             `json:"done"`
	NextRecordsURL string           `json:"nextRecordsUrl,omitempty"`
	Records        []map[string]any `json:"records"`
}

// Record is one sObject patch.
type Record struct {
	ID     string
	Fields map[string]any
}

// SaveError describes why a single record was rejected.
type SaveError struct {
	StatusCode string   `json:"statusCode"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields,omitempty"`
}

// SaveResult is the per-record outcome of a composite update.
type SaveResult struct {
	ID      string      `json:"id"`
	Success bool        `json:"success"`
	Errors  []SaveError `json:"errors"`
}

// FirstError returns the first error message, if any.
func (r SaveResult) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// PicklistEntry is one value of a picklist field.
type PicklistEntry struct {
	Active bool   `json:"active"`
	Value  string `json:"value"`
	Label  string `json:"label"`
}

// DescribeField is a field of an sObject describe.
type DescribeField struct {
	Name           string          `json:"name"`
	Label          string          `json:"label"`
	Type           string          `json:"type"`
	PicklistValues []PicklistEntry `json:"picklistValues"`
}

// DescribeResult is the subset of an sObject describe the dashboard reads.
type DescribeResult struct {
	Fields []DescribeField `json:"fields"`
}

// ActivePicklist returns the active values of fieldName, or nil when absent.
func (d *DescribeResult) ActivePicklist(fieldName string) []PicklistEntry {
	for _, f := range d.Fields {
		if f.Name != fieldName {
			continue
		}
		out := make([]PicklistEntry, 0, len(f.PicklistValues))
		for _, p := range f.PicklistValues {
			if p.Active {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// APIError is a non-2xx response from Salesforce.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("salesforce %s failed: %d %s", e.Operation, e.StatusCode, e.Body)
}

var (
	_ API = (*Client)(nil)
	_ API = (*MockClient)(nil)
)
