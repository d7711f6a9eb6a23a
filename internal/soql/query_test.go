package soql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	tests := map[string]string{
		"O'Brien":       `O\'Brien`,
		`back\slash`:    `back\\slash`,
		"line\nbreak":   `line\nbreak`,
		"tab\there":     `tab\there`,
		`' OR Id != '`:  `\' OR Id != \'`,
		"plain value 1": "plain value 1",
	}
	for in, want := range tests {
		assert.Equal(t, want, Escape(in), in)
	}
}

func TestConditionRendering(t *testing.T) {
	day := time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cond Condition
		want string
	}{
		{name: "equals", cond: Equals{Field: "Status__c", Value: "New"}, want: "Status__c = 'New'"},
		{name: "equals escaped", cond: Equals{Field: "Marat__c", Value: "O'Neil"}, want: `Marat__c = 'O\'Neil'`},
		{name: "in", cond: In{Field: "Id", Values: []string{"a", "b'"}}, want: `Id IN ('a','b\'')`},
		{name: "contains", cond: Contains{Field: "Name", Value: "50%_x"}, want: `Name LIKE '%50\%\_x%'`},
		{name: "on or after", cond: OnOrAfter{Field: "CreatedDate", Date: day}, want: "CreatedDate >= 2025-03-04T00:00:00Z"},
		{name: "on or before", cond: OnOrBefore{Field: "CreatedDate", Date: day}, want: "CreatedDate <= 2025-03-04T23:59:59Z"},
		{
			name: "or",
			cond: Or{Equals{Field: "A", Value: "x"}, Equals{Field: "B", Value: "x"}},
			want: "(A = 'x' OR B = 'x')",
		},
		{name: "single or", cond: Or{Equals{Field: "A", Value: "x"}}, want: "(A = 'x')"},
		{name: "or with match all", cond: Or{Equals{Field: "A", Value: "x"}, MatchAll}, want: ""},
		{
			name: "and drops match all",
			cond: And{MatchAll, Equals{Field: "A", Value: "x"}, Or{Equals{Field: "B", Value: "y"}}},
			want: "A = 'x' AND (B = 'y')",
		},
		{name: "match all", cond: MatchAll, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.SOQL())
		})
	}
}

func TestQueryString(t *testing.T) {
	q := Query{
		Object:  "Contact",
		Fields:  []string{"Id", "Name"},
		Where:   And{Equals{Field: "Status__c", Value: "New"}},
		OrderBy: []Order{{Field: "LastModifiedDate", Desc: true}},
		Limit:   50,
		Offset:  100,
	}
	assert.Equal(t,
		"SELECT Id, Name FROM Contact WHERE Status__c = 'New' ORDER BY LastModifiedDate DESC LIMIT 50 OFFSET 100",
		q.String())

	q.CountOnly = true
	assert.Equal(t, "SELECT COUNT() FROM Contact WHERE Status__c = 'New'", q.String())

	all := Query{Object: "Contact", Fields: []string{"Id"}, Where: MatchAll}
	assert.Equal(t, "SELECT Id FROM Contact", all.String())
}

func TestQueryApply(t *testing.T) {
	records := []map[string]any{
		{"Id": "1", "Name": "John Smith", "Status__c": "Active", "CreatedDate": "2025-11-15T10:00:00.000Z", "Owner": map[string]any{"Name": "Leon"}},
		{"Id": "2", "Name": "Jane Doe", "Status__c": "New", "CreatedDate": "2026-01-10T12:00:00.000Z", "Owner": map[string]any{"Name": "Marat"}},
		{"Id": "3", "Name": "Jack Jones", "Status__c": "Active", "CreatedDate": "2026-02-01T08:00:00.000Z", "Owner": map[string]any{"Name": "Leon"}},
	}

	t.Run("filter sort and page", func(t *testing.T) {
		q := Query{
			Object:  "Contact",
			Fields:  []string{"Id", "Owner.Name"},
			Where:   Equals{Field: "Status__c", Value: "Active"},
			OrderBy: []Order{{Field: "CreatedDate", Desc: true}},
			Limit:   1,
		}
		rows, total := q.Apply(records)
		assert.Equal(t, 2, total)
		require.Len(t, rows, 1)
		assert.Equal(t, "3", rows[0]["Id"])
		assert.Equal(t, map[string]any{"Name": "Leon"}, rows[0]["Owner"])
		assert.NotContains(t, rows[0], "Name")
	})

	t.Run("nested lookup", func(t *testing.T) {
		q := Query{Object: "Contact", Where: Equals{Field: "Owner.Name", Value: "Marat"}, CountOnly: true}
		_, total := q.Apply(records)
		assert.Equal(t, 1, total)
	})

	t.Run("date range and contains", func(t *testing.T) {
		q := Query{
			Object: "Contact",
			Fields: []string{"Id"},
			Where: And{
				Contains{Field: "Name", Value: "ja"},
				OnOrAfter{Field: "CreatedDate", Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
				OnOrBefore{Field: "CreatedDate", Date: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)},
			},
		}
		rows, total := q.Apply(records)
		assert.Equal(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, "2", rows[0]["Id"])
	})

	t.Run("offset beyond results", func(t *testing.T) {
		q := Query{Object: "Contact", Fields: []string{"Id"}, Offset: 10}
		rows, total := q.Apply(records)
		assert.Equal(t, 3, total)
		assert.Empty(t, rows)
	})
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, ValidIdentifier("Loan_Partners__c"))
	assert.True(t, ValidIdentifier("Owner.Name"))
	assert.False(t, ValidIdentifier(""))
	assert.False(t, ValidIdentifier("Name = 'x' OR Id"))
	assert.False(t, ValidIdentifier("1Field"))
}
