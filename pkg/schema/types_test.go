package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifor-platform/statstore/pkg/apperrors"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType ColumnType
		wantSize int
		wantErr  bool
	}{
		{name: "plain string", input: "String", wantType: TypeString},
		{name: "bounded string", input: "String(120)", wantType: TypeString, wantSize: 120},
		{name: "text", input: "Text", wantType: TypeText},
		{name: "integer", input: "Integer", wantType: TypeInteger},
		{name: "big integer", input: "BigInteger", wantType: TypeBigInteger},
		{name: "float", input: "Float", wantType: TypeFloat},
		{name: "date", input: "Date", wantType: TypeDate},
		{name: "datetime", input: "DateTime", wantType: TypeDateTime},
		{name: "boolean", input: "Boolean", wantType: TypeBoolean},
		{name: "whitespace in length", input: "String( 50 )", wantType: TypeString, wantSize: 50},
		{name: "unknown type", input: "Decimal", wantErr: true},
		{name: "zero length", input: "String(0)", wantErr: true},
		{name: "negative length", input: "String(-5)", wantErr: true},
		{name: "non-numeric length", input: "String(abc)", wantErr: true},
		{name: "unclosed paren", input: "String(50", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			colType, size, err := ParseType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrSchema))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, colType)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestEntityTypeColumnLookup(t *testing.T) {
	et := &EntityType{
		Table:      "REGIONS",
		Identifier: "nuts_id",
		Columns: []Column{
			{Name: "nuts_id", Type: TypeString, Size: 10},
			{Name: "levl_code", Type: TypeInteger},
		},
	}

	assert.Equal(t, []string{"nuts_id", "levl_code"}, et.ColumnNames())

	col, ok := et.Column("levl_code")
	require.True(t, ok)
	assert.Equal(t, TypeInteger, col.Type)

	_, ok = et.Column("missing")
	assert.False(t, ok)
}
