package loader

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifor-platform/statstore/pkg/apperrors"
	"github.com/wifor-platform/statstore/pkg/schema"
)

func testEntityType() *schema.EntityType {
	return &schema.EntityType{
		Table:      "lfsa_egan2",
		Identifier: "nuts_id",
		Columns: []schema.Column{
			{Name: "nuts_id", Type: schema.TypeString, Size: 10},
			{Name: "year", Type: schema.TypeDate},
			{Name: "employed", Type: schema.TypeFloat},
		},
	}
}

func TestLoad(t *testing.T) {
	et := testEntityType()
	year := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

	ds := &Dataset{
		Columns: []string{"nuts_id", "year", "employed", "freq"},
		Rows: []map[string]any{
			{"nuts_id": "DE21", "year": year, "employed": 104.3, "freq": "A"},
			{"nuts_id": "DE22", "year": year, "employed": nil, "freq": "A"},
		},
	}

	records, err := Load(et, ds)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Declared columns are selected, extras dropped, system columns unset.
	assert.Equal(t, "DE21", records[0].Identifier())
	assert.Equal(t, 104.3, records[0].Get("employed"))
	assert.Nil(t, records[0].Get("freq"))
	assert.Equal(t, 0, records[0].VersionNumber)
	assert.Nil(t, records[0].ExpiryDate)

	// Missing observations stay null.
	assert.Nil(t, records[1].Get("employed"))
}

func TestLoadMissingColumn(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"nuts_id", "year"},
		Rows: []map[string]any{
			{"nuts_id": "DE21", "year": "2022-01-01"},
		},
	}

	_, err := Load(testEntityType(), ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrShape))
	assert.Contains(t, err.Error(), `missing column "employed"`)
}

func TestLoadBadCellValue(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"nuts_id", "year", "employed"},
		Rows: []map[string]any{
			{"nuts_id": "DE21", "year": "2022-01-01", "employed": 104.3},
			{"nuts_id": "DE22", "year": "2022-01-01", "employed": "n/a"},
		},
	}

	_, err := Load(testEntityType(), ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrShape))
	assert.Contains(t, err.Error(), "row 1")
}

func TestDatasetRename(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"geo", "year"},
		Rows: []map[string]any{
			{"geo": "DE21", "year": "2022"},
		},
	}

	require.NoError(t, ds.Rename("geo", "nuts_id"))
	assert.Equal(t, []string{"nuts_id", "year"}, ds.Columns)
	assert.Equal(t, "DE21", ds.Rows[0]["nuts_id"])
	_, ok := ds.Rows[0]["geo"]
	assert.False(t, ok)

	err := ds.Rename("geo", "nuts_id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrShape))
}
