// Package loader adapts external tabular datasets into candidate records.
package loader

import (
	"fmt"

	"github.com/wifor-platform/statstore/pkg/apperrors"
	"github.com/wifor-platform/statstore/pkg/schema"
)

// Dataset is an ordered tabular dataset: named columns and one map per row.
// It may carry more columns than an entity declares; the loader selects the
// declared subset.
type Dataset struct {
	Columns []string
	Rows    []map[string]any
}

// HasColumn reports whether the dataset declares a column.
func (ds *Dataset) HasColumn(name string) bool {
	for _, c := range ds.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Rename renames a column in place, in the header and in every row.
func (ds *Dataset) Rename(from, to string) error {
	if !ds.HasColumn(from) {
		return fmt.Errorf("%w: no column %q to rename", apperrors.ErrShape, from)
	}
	for i, c := range ds.Columns {
		if c == from {
			ds.Columns[i] = to
		}
	}
	for _, row := range ds.Rows {
		if v, ok := row[from]; ok {
			delete(row, from)
			row[to] = v
		}
	}
	return nil
}

// Load selects the entity's declared columns from the dataset and builds one
// candidate record per row, system columns unset. A declared column missing
// from the dataset fails the whole load; no partial candidate list is returned.
func Load(et *schema.EntityType, ds *Dataset) ([]*schema.Record, error) {
	for _, col := range et.Columns {
		if !ds.HasColumn(col.Name) {
			return nil, fmt.Errorf("%w: dataset for table %q is missing column %q",
				apperrors.ErrShape, et.Table, col.Name)
		}
	}

	records := make([]*schema.Record, 0, len(ds.Rows))
	for i, row := range ds.Rows {
		rec := schema.NewRecord(et)
		for _, col := range et.Columns {
			if err := rec.Set(col.Name, row[col.Name]); err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", apperrors.ErrShape, i, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
