package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifor-platform/statstore/pkg/apperrors"
	"github.com/wifor-platform/statstore/pkg/config"
	"github.com/wifor-platform/statstore/pkg/schema"
)

func TestDialect(t *testing.T) {
	d := dialect{}

	assert.Equal(t, "sqlite", d.Name())
	assert.Equal(t, "?", d.Placeholder(3))
	assert.Equal(t, `"nuts_id"`, d.QuoteIdentifier("nuts_id"))
	assert.Empty(t, d.LockHint())
	assert.Empty(t, d.LockSuffix())
}

func TestColumnDDL(t *testing.T) {
	d := dialect{}

	tests := []struct {
		col  schema.Column
		want string
	}{
		{col: schema.Column{Type: schema.TypeString, Size: 10}, want: "VARCHAR(10)"},
		{col: schema.Column{Type: schema.TypeString}, want: "TEXT"},
		{col: schema.Column{Type: schema.TypeFloat}, want: "REAL"},
		{col: schema.Column{Type: schema.TypeDate}, want: "DATE"},
		{col: schema.Column{Type: schema.TypeBoolean}, want: "BOOLEAN"},
	}
	for _, tt := range tests {
		got, err := d.ColumnDDL(tt.col)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestInsertSQLUsesLastInsertID(t *testing.T) {
	d := dialect{}
	query, returning := d.InsertSQL("REGIONS", []string{"nuts_id", "version_number"})
	assert.False(t, returning)
	assert.Equal(t, `INSERT INTO "REGIONS" ("nuts_id", "version_number") VALUES (?, ?)`, query)
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN(&config.Config{SQLite: config.SQLiteConfig{Path: "statstore.db"}})
	require.NoError(t, err)
	assert.Contains(t, dsn, "file:statstore.db")
	assert.Contains(t, dsn, "journal_mode(WAL)")

	_, err = buildDSN(&config.Config{})
	require.ErrorIs(t, err, apperrors.ErrConfiguration)
}
