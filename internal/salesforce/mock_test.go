package salesforce

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-lens/internal/soql"
)

func TestMockQueryFilters(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	res, err := m.Query(ctx, soql.Query{
		Object:  "Contact",
		Fields:  []string{"Id", "Name"},
		Where:   soql.Equals{Field: "MtgPlanner_CRM__Referred_By_Text__c", Value: "Test Agent"},
		OrderBy: []soql.Order{{Field: "LastModifiedDate", Desc: true}},
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalSize)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "003MOCK000000006", res.Records[0]["Id"])
	assert.Equal(t, "Contact", res.Records[0]["attributes"].(map[string]any)["type"])

	count, err := m.Query(ctx, soql.Query{Object: "Contact", Where: soql.Equals{Field: "Status__c", Value: "Active"}, CountOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 3, count.TotalSize)
	assert.Empty(t, count.Records)

	_, err = m.Query(ctx, soql.Query{Object: "Lead"})
	assert.Error(t, err)
}

func TestMockUpdate(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	results, err := m.Update(ctx, "Contact", []Record{
		{ID: "003MOCK000000003", Fields: map[string]any{"Status__c": "Dead"}},
		{ID: "003MISSING000000", Fields: map[string]any{"Status__c": "Dead"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, "ENTITY_IS_DELETED", results[1].Errors[0].StatusCode)

	res, err := m.Query(ctx, soql.Query{Object: "Contact", Fields: []string{"Status__c"}, Where: soql.Equals{Field: "Id", Value: "003MOCK000000003"}})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Dead", res.Records[0]["Status__c"])
}

func TestMockDescribe(t *testing.T) {
	d, err := NewMock().Describe(context.Background(), "Contact")
	require.NoError(t, err)
	stages := d.ActivePicklist("MtgPlanner_CRM__Stage__c")
	assert.Len(t, stages, 5)
}
