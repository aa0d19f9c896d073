// Package geo reads region metadata out of GeoJSON feature collections.
// Only feature properties are ingested; geometries are not persisted.
package geo

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/wifor-platform/statstore/pkg/loader"
)

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties map[string]any `json:"properties"`
}

// ReadFeatures parses a FeatureCollection into a tabular dataset, one row
// per feature. rename maps source property names to dataset column names
// (e.g. NUTS_ID -> nuts_id); unmapped properties keep their name.
func ReadFeatures(r io.Reader, rename map[string]string) (*loader.Dataset, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode GeoJSON: %w", err)
	}

	columnSet := make(map[string]bool)
	rows := make([]map[string]any, 0, len(fc.Features))
	for _, f := range fc.Features {
		row := make(map[string]any, len(f.Properties))
		for name, value := range f.Properties {
			if mapped, ok := rename[name]; ok {
				name = mapped
			}
			row[name] = value
			columnSet[name] = true
		}
		rows = append(rows, row)
	}

	columns := make([]string, 0, len(columnSet))
	for name := range columnSet {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	return &loader.Dataset{Columns: columns, Rows: rows}, nil
}

// ReadFile reads a GeoJSON file from disk.
func ReadFile(path string, rename map[string]string) (*loader.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open GeoJSON file: %w", err)
	}
	defer f.Close()
	return ReadFeatures(f, rename)
}
