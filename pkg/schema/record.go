package schema

import (
	"fmt"
	"time"
)

// Record is one instance of an entity type: the declared column values plus
// the four system columns. Candidates produced by the loader leave the
// system columns unset; the versioned store assigns them at persistence time.
type Record struct {
	Type *EntityType

	ID            int64
	VersionNumber int
	EffectiveDate time.Time
	ExpiryDate    *time.Time

	values map[string]any
}

// NewRecord creates an empty candidate for the given entity type.
func NewRecord(et *EntityType) *Record {
	return &Record{
		Type:   et,
		values: make(map[string]any, len(et.Columns)),
	}
}

// Set stores a declared column value, coerced to its canonical form.
func (r *Record) Set(name string, value any) error {
	col, ok := r.Type.Column(name)
	if !ok {
		return fmt.Errorf("table %q has no column %q", r.Type.Table, name)
	}
	v, err := Coerce(col, value)
	if err != nil {
		return fmt.Errorf("column %q of table %q: %w", name, r.Type.Table, err)
	}
	r.values[name] = v
	return nil
}

// Get returns a declared column value (nil when unset or null).
func (r *Record) Get(name string) any {
	return r.values[name]
}

// Identifier returns the value of the entity's unique-identifier column.
func (r *Record) Identifier() any {
	return r.values[r.Type.Identifier]
}

// EqualValues reports whether two records match on every declared column.
// System columns are excluded; nulls compare equal only to each other.
func (r *Record) EqualValues(other *Record) bool {
	if r.Type.Table != other.Type.Table {
		return false
	}
	for _, col := range r.Type.Columns {
		if !valueEqual(r.values[col.Name], other.values[col.Name]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}

// Coerce converts a raw value to the canonical in-memory form for a column
// type: string, int64, float64, bool or UTC time.Time. Values already in
// canonical form pass through. Nil stays nil.
func Coerce(col Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch col.Type {
	case TypeString, TypeText:
		switch v := value.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		default:
			return fmt.Sprintf("%v", v), nil
		}

	case TypeInteger, TypeBigInteger:
		switch v := value.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case int16:
			return int64(v), nil
		case int8:
			return int64(v), nil
		case uint:
			return int64(v), nil
		case uint32:
			return int64(v), nil
		case uint64:
			return int64(v), nil
		case float64:
			if v != float64(int64(v)) {
				return nil, fmt.Errorf("value %v is not an integer", v)
			}
			return int64(v), nil
		default:
			return nil, fmt.Errorf("cannot store %T as %s", value, col.Type)
		}

	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case int:
			return float64(v), nil
		default:
			return nil, fmt.Errorf("cannot store %T as %s", value, col.Type)
		}

	case TypeBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		default:
			return nil, fmt.Errorf("cannot store %T as %s", value, col.Type)
		}

	case TypeDate, TypeDateTime:
		t, err := coerceTime(value)
		if err != nil {
			return nil, err
		}
		if col.Type == TypeDate {
			t = t.Truncate(24 * time.Hour)
		}
		return t, nil

	default:
		return nil, fmt.Errorf("unsupported column type %s", col.Type)
	}
}

// Layouts accepted when a temporal value arrives as text, which happens
// when reading back from engines that store dates as strings.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func coerceTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable time value %q", v)
	case []byte:
		return coerceTime(string(v))
	default:
		return time.Time{}, fmt.Errorf("cannot store %T as a temporal value", value)
	}
}
