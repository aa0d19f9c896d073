package eurostat

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wifor-platform/statstore/pkg/loader"
)

// ParseTSV parses the Eurostat bulk TSV layout. The first header field names
// the combined dimensions ("freq,unit,sex,age,geo\TIME_PERIOD"); the
// remaining header fields are reporting periods. Observation cells carry a
// numeric value optionally followed by flag letters; ":" marks missing.
func ParseTSV(data []byte) (*loader.Dataset, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty TSV document")
	}
	header := strings.Split(scanner.Text(), "\t")
	if len(header) < 2 {
		return nil, fmt.Errorf("malformed TSV header %q", scanner.Text())
	}

	dimPart, _, found := strings.Cut(header[0], `\`)
	if !found {
		return nil, fmt.Errorf("malformed dimension header %q", header[0])
	}
	dims := strings.Split(dimPart, ",")

	periods := make([]string, 0, len(header)-1)
	for _, p := range header[1:] {
		periods = append(periods, strings.TrimSpace(p))
	}

	columns := append(append([]string{}, dims...), periods...)
	ds := &loader.Dataset{Columns: columns}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(periods)+1 {
			return nil, fmt.Errorf("row has %d fields, want %d: %q", len(fields), len(periods)+1, line)
		}

		dimValues := strings.Split(fields[0], ",")
		if len(dimValues) != len(dims) {
			return nil, fmt.Errorf("row has %d dimension values, want %d: %q", len(dimValues), len(dims), fields[0])
		}

		row := make(map[string]any, len(columns))
		for i, d := range dims {
			row[d] = strings.TrimSpace(dimValues[i])
		}
		for i, p := range periods {
			row[p] = parseObservation(fields[i+1])
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read TSV: %w", err)
	}
	return ds, nil
}

// parseObservation strips flag letters from a cell and returns the numeric
// value, or nil for missing observations.
func parseObservation(cell string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == ":" {
		return nil
	}
	// "123.4 b" carries flags after the value; ": c" is missing with a flag.
	value, _, _ := strings.Cut(cell, " ")
	if value == ":" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return f
}

// Melt reshapes a wide dataset to long form: the id columns are repeated per
// value column, whose name lands in varName and whose cell lands in valueName.
func Melt(ds *loader.Dataset, idVars []string, varName, valueName string) (*loader.Dataset, error) {
	idSet := make(map[string]bool, len(idVars))
	for _, id := range idVars {
		if !ds.HasColumn(id) {
			return nil, fmt.Errorf("id column %q not in dataset", id)
		}
		idSet[id] = true
	}

	var valueVars []string
	for _, c := range ds.Columns {
		if !idSet[c] {
			valueVars = append(valueVars, c)
		}
	}

	long := &loader.Dataset{
		Columns: append(append([]string{}, idVars...), varName, valueName),
	}
	for _, row := range ds.Rows {
		for _, vc := range valueVars {
			melted := make(map[string]any, len(idVars)+2)
			for _, id := range idVars {
				melted[id] = row[id]
			}
			melted[varName] = vc
			melted[valueName] = row[vc]
			long.Rows = append(long.Rows, melted)
		}
	}
	return long, nil
}

// ParseYearColumn converts a column of "2008"-style period labels to dates
// (January 1st of the year), matching how the import pipeline stores years.
func ParseYearColumn(ds *loader.Dataset, column string) error {
	if !ds.HasColumn(column) {
		return fmt.Errorf("column %q not in dataset", column)
	}
	for _, row := range ds.Rows {
		label, ok := row[column].(string)
		if !ok {
			return fmt.Errorf("column %q holds %T, want string", column, row[column])
		}
		year, err := strconv.Atoi(strings.TrimSpace(label))
		if err != nil {
			return fmt.Errorf("column %q: unparseable year %q", column, label)
		}
		row[column] = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return nil
}
