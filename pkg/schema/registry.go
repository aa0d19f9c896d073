package schema

import (
	"fmt"
	"sync"

	"github.com/wifor-platform/statstore/pkg/apperrors"
)

// Registry materializes entity types from descriptors and guards against
// two descriptors claiming the same table with incompatible layouts in one run.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*EntityType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*EntityType),
	}
}

// Define validates a descriptor and produces its entity type.
// Re-defining an identical descriptor returns the already-registered type;
// a conflicting definition for the same table fails.
func (r *Registry) Define(desc *Descriptor) (*EntityType, error) {
	et, err := buildEntityType(desc)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[et.Table]; ok {
		if !existing.equal(et) {
			return nil, fmt.Errorf("%w: table %q already defined with a different layout", apperrors.ErrSchema, et.Table)
		}
		return existing, nil
	}

	r.types[et.Table] = et
	return et, nil
}

// Lookup returns the entity type registered for a table, if any.
func (r *Registry) Lookup(table string) (*EntityType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	et, ok := r.types[table]
	return et, ok
}

func buildEntityType(desc *Descriptor) (*EntityType, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: nil descriptor", apperrors.ErrSchema)
	}
	if desc.TableName == "" {
		return nil, fmt.Errorf("%w: missing table_name", apperrors.ErrSchema)
	}
	if desc.Identifier == "" {
		return nil, fmt.Errorf("%w: missing identifier for table %q", apperrors.ErrSchema, desc.TableName)
	}
	if len(desc.Columns) == 0 {
		return nil, fmt.Errorf("%w: no columns for table %q", apperrors.ErrSchema, desc.TableName)
	}

	columns := make([]Column, 0, len(desc.Columns))
	seen := make(map[string]bool, len(desc.Columns))
	identifierFound := false

	for _, dc := range desc.Columns {
		if dc.Name == "" {
			return nil, fmt.Errorf("%w: unnamed column in table %q", apperrors.ErrSchema, desc.TableName)
		}
		if seen[dc.Name] {
			return nil, fmt.Errorf("%w: duplicate column %q in table %q", apperrors.ErrSchema, dc.Name, desc.TableName)
		}
		if isSystemColumn(dc.Name) {
			return nil, fmt.Errorf("%w: column %q in table %q shadows a system column", apperrors.ErrSchema, dc.Name, desc.TableName)
		}
		seen[dc.Name] = true

		colType, size, err := ParseType(dc.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q in table %q: %w", dc.Name, desc.TableName, err)
		}
		columns = append(columns, Column{Name: dc.Name, Type: colType, Size: size})

		if dc.Name == desc.Identifier {
			identifierFound = true
		}
	}

	if !identifierFound {
		return nil, fmt.Errorf("%w: identifier %q is not a declared column of table %q", apperrors.ErrSchema, desc.Identifier, desc.TableName)
	}

	return &EntityType{
		Table:      desc.TableName,
		Identifier: desc.Identifier,
		Columns:    columns,
	}, nil
}

// System column names reserved for the versioning discipline.
const (
	ColID            = "id"
	ColVersionNumber = "version_number"
	ColEffectiveDate = "effective_date"
	ColExpiryDate    = "expiry_date"
)

func isSystemColumn(name string) bool {
	switch name {
	case ColID, ColVersionNumber, ColEffectiveDate, ColExpiryDate:
		return true
	}
	return false
}
