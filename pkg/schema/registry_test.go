package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifor-platform/statstore/pkg/apperrors"
)

func validDescriptor() *Descriptor {
	return &Descriptor{
		TableName:  "lfsa_egan2",
		Identifier: "nuts_id",
		Columns: []DescriptorColumn{
			{Name: "nuts_id", Type: "String(10)"},
			{Name: "sex", Type: "String(3)"},
			{Name: "year", Type: "Date"},
			{Name: "employed", Type: "Float"},
		},
	}
}

func TestRegistryDefine(t *testing.T) {
	r := NewRegistry()

	et, err := r.Define(validDescriptor())
	require.NoError(t, err)
	assert.Equal(t, "lfsa_egan2", et.Table)
	assert.Equal(t, "nuts_id", et.Identifier)
	require.Len(t, et.Columns, 4)
	assert.Equal(t, Column{Name: "nuts_id", Type: TypeString, Size: 10}, et.Columns[0])

	got, ok := r.Lookup("lfsa_egan2")
	require.True(t, ok)
	assert.Same(t, et, got)
}

func TestRegistryDefineIdenticalReturnsExisting(t *testing.T) {
	r := NewRegistry()

	first, err := r.Define(validDescriptor())
	require.NoError(t, err)

	second, err := r.Define(validDescriptor())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRegistryDefineConflictFails(t *testing.T) {
	r := NewRegistry()

	_, err := r.Define(validDescriptor())
	require.NoError(t, err)

	conflicting := validDescriptor()
	conflicting.Columns[3].Type = "Integer"
	_, err = r.Define(conflicting)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSchema))
	assert.Contains(t, err.Error(), "different layout")
}

func TestRegistryDefineValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Descriptor)
		wantMsg string
	}{
		{
			name:    "missing table name",
			mutate:  func(d *Descriptor) { d.TableName = "" },
			wantMsg: "missing table_name",
		},
		{
			name:    "missing identifier",
			mutate:  func(d *Descriptor) { d.Identifier = "" },
			wantMsg: "missing identifier",
		},
		{
			name:    "no columns",
			mutate:  func(d *Descriptor) { d.Columns = nil },
			wantMsg: "no columns",
		},
		{
			name:    "unnamed column",
			mutate:  func(d *Descriptor) { d.Columns[1].Name = "" },
			wantMsg: "unnamed column",
		},
		{
			name:    "duplicate column",
			mutate:  func(d *Descriptor) { d.Columns[1].Name = "nuts_id" },
			wantMsg: "duplicate column",
		},
		{
			name: "identifier not declared",
			mutate: func(d *Descriptor) {
				d.Identifier = "country"
			},
			wantMsg: "not a declared column",
		},
		{
			name: "system column shadowed",
			mutate: func(d *Descriptor) {
				d.Columns = append(d.Columns, DescriptorColumn{Name: "version_number", Type: "Integer"})
			},
			wantMsg: "shadows a system column",
		},
		{
			name: "expiry date shadowed",
			mutate: func(d *Descriptor) {
				d.Columns = append(d.Columns, DescriptorColumn{Name: "expiry_date", Type: "Date"})
			},
			wantMsg: "shadows a system column",
		},
		{
			name:    "bad column type",
			mutate:  func(d *Descriptor) { d.Columns[2].Type = "Timestamp" },
			wantMsg: "unsupported storage type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := validDescriptor()
			tt.mutate(desc)

			_, err := NewRegistry().Define(desc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrSchema))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRegistryDefineNilDescriptor(t *testing.T) {
	_, err := NewRegistry().Define(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSchema))
}
