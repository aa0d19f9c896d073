package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wifor-platform/statstore/pkg/apperrors"
)

// ColumnType enumerates the primitive storage types an entity may declare.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeText
	TypeInteger
	TypeBigInteger
	TypeFloat
	TypeDate
	TypeDateTime
	TypeBoolean
)

// String returns the descriptor spelling of the type.
func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeText:
		return "Text"
	case TypeInteger:
		return "Integer"
	case TypeBigInteger:
		return "BigInteger"
	case TypeFloat:
		return "Float"
	case TypeDate:
		return "Date"
	case TypeDateTime:
		return "DateTime"
	case TypeBoolean:
		return "Boolean"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Column is one declared column of an entity.
type Column struct {
	Name string
	Type ColumnType
	Size int // length parameter for bounded String types, 0 otherwise
}

// ParseType parses a descriptor type string, optionally parameterized
// with a length, e.g. "String(120)" or "Integer".
func ParseType(s string) (ColumnType, int, error) {
	base := s
	size := 0

	if idx := strings.Index(s, "("); idx >= 0 {
		if !strings.HasSuffix(s, ")") {
			return 0, 0, fmt.Errorf("%w: malformed type %q", apperrors.ErrSchema, s)
		}
		base = s[:idx]
		param := s[idx+1 : len(s)-1]
		n, err := strconv.Atoi(strings.TrimSpace(param))
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("%w: invalid length in type %q", apperrors.ErrSchema, s)
		}
		size = n
	}

	switch strings.TrimSpace(base) {
	case "String":
		return TypeString, size, nil
	case "Text":
		return TypeText, 0, nil
	case "Integer":
		return TypeInteger, 0, nil
	case "BigInteger":
		return TypeBigInteger, 0, nil
	case "Float":
		return TypeFloat, 0, nil
	case "Date":
		return TypeDate, 0, nil
	case "DateTime":
		return TypeDateTime, 0, nil
	case "Boolean":
		return TypeBoolean, 0, nil
	default:
		return 0, 0, fmt.Errorf("%w: unsupported storage type %q", apperrors.ErrSchema, s)
	}
}

// EntityType is the schema-derived record definition for one logical table.
// Immutable once produced by the registry.
type EntityType struct {
	Table      string
	Identifier string
	Columns    []Column
}

// ColumnNames returns the declared column names in definition order.
func (et *EntityType) ColumnNames() []string {
	names := make([]string, len(et.Columns))
	for i, c := range et.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a declared column by name.
func (et *EntityType) Column(name string) (Column, bool) {
	for _, c := range et.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// equal reports whether two entity types describe the same table layout.
func (et *EntityType) equal(other *EntityType) bool {
	if et.Table != other.Table || et.Identifier != other.Identifier {
		return false
	}
	if len(et.Columns) != len(other.Columns) {
		return false
	}
	for i := range et.Columns {
		if et.Columns[i] != other.Columns[i] {
			return false
		}
	}
	return true
}
