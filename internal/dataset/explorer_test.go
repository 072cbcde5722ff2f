package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriinsight/internal/domain"
)

func table() domain.Table {
	return domain.Table{
		Columns: []string{"state", "commodity", "production"},
		Rows: []domain.Record{
			{"state": "Kerala", "commodity": "Rice", "production": "1"},
			{"state": "Punjab", "commodity": "Wheat", "production": "2"},
			{"state": "Kerala", "commodity": "Coconut", "production": "3"},
			{"commodity": "Rice", "production": "4"},
		},
	}
}

func TestApply(t *testing.T) {
	all := Apply(table(), Filter{})
	assert.Equal(t, 4, all.Len())

	kerala := Apply(table(), Filter{States: []string{"Kerala"}})
	require.Equal(t, 2, kerala.Len())
	assert.Equal(t, table().Columns, kerala.Columns)

	rice := Apply(table(), Filter{Crops: []string{"Rice"}})
	assert.Equal(t, 2, rice.Len())

	both := Apply(table(), Filter{States: []string{"Kerala", "Punjab"}, Crops: []string{"Wheat", "Coconut"}})
	require.Equal(t, 2, both.Len())
	assert.Equal(t, "2", both.Rows[0]["production"])
	assert.Equal(t, "3", both.Rows[1]["production"])

	none := Apply(table(), Filter{States: []string{"kerala"}})
	assert.True(t, none.Empty(), "exact match only")
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"Kerala", "Punjab"}, Distinct(table(), "state"))
	assert.Equal(t, []string{"Coconut", "Rice", "Wheat"}, Distinct(table(), "commodity"))
	assert.Empty(t, Distinct(table(), "district"))
}

func TestHead(t *testing.T) {
	assert.Equal(t, 2, Head(table(), 2).Len())
	assert.Equal(t, 4, Head(table(), 200).Len())
	assert.Equal(t, 0, Head(table(), 0).Len())
}
