package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailRecord_View(t *testing.T) {
	spatial := "vector"
	created := "2020-01-01"
	parent := RecordSummary{UUID: "p", Title: "Parent"}

	d := &DetailRecord{
		Record: Record{
			UUID:                      "a",
			Title:                     "Roads",
			Type:                      TypeDataset,
			SpatialRepresentationType: &spatial,
			DateCreated:               &created,
			DistributionFormats:       []Distribution{{Name: "GML"}},
		},
		Parent: &parent,
	}

	v := d.View()

	assert.Equal(t, "a", v.UUID)
	assert.Equal(t, &spatial, v.SpatialType)
	assert.Equal(t, &created, v.Created)
	assert.Len(t, v.Distributions, 1)
	assert.Equal(t, "p", v.Parent.UUID)
	assert.NotNil(t, v.Children)
	assert.NotNil(t, v.OperatesOn)
	assert.NotNil(t, v.OperatedOnBy)
}

func TestDetailView_JSONFieldNames(t *testing.T) {
	spatial := "grid"
	d := &DetailRecord{Record: Record{UUID: "a", SpatialRepresentationType: &spatial}}

	data, err := json.Marshal(d.View())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "grid", got["spatialType"])
	assert.Equal(t, []any{}, got["children"])
	assert.Equal(t, []any{}, got["operatesOn"])
	assert.Equal(t, []any{}, got["operatedOnBy"])
	assert.NotContains(t, got, "parent")
	assert.NotContains(t, got, "parentUuid")
	assert.NotContains(t, got, "spatialRepresentationType")
	assert.NotContains(t, got, "created")
}

func TestDetailView_KeepsParentReferenceWithoutParentRecord(t *testing.T) {
	parentID := "gone"
	d := &DetailRecord{Record: Record{UUID: "a", ParentUUID: &parentID}}

	data, err := json.Marshal(d.View())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "gone", got["parentUuid"])
	assert.NotContains(t, got, "parent")
}
