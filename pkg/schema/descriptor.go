package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wifor-platform/statstore/pkg/apperrors"
)

// Descriptor is the declarative entity definition consumed by the registry.
// Descriptors are YAML documents; JSON documents parse through the same path.
type Descriptor struct {
	TableName  string             `yaml:"table_name"`
	Identifier string             `yaml:"identifier"`
	Columns    []DescriptorColumn `yaml:"columns"`
}

// DescriptorColumn is one declared column of a descriptor.
type DescriptorColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadDescriptor reads and parses a single descriptor document.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read descriptor %s: %v", apperrors.ErrSchema, path, err)
	}

	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("%w: parse descriptor %s: %v", apperrors.ErrSchema, path, err)
	}
	return &desc, nil
}

// LoadDescriptorDir reads every .yaml/.yml/.json descriptor in dir,
// keyed by table name.
func LoadDescriptorDir(dir string) (map[string]*Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read descriptor dir %s: %v", apperrors.ErrSchema, dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	descriptors := make(map[string]*Descriptor, len(names))
	for _, name := range names {
		desc, err := LoadDescriptor(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if _, ok := descriptors[desc.TableName]; ok {
			return nil, fmt.Errorf("%w: duplicate descriptor for table %q", apperrors.ErrSchema, desc.TableName)
		}
		descriptors[desc.TableName] = desc
	}
	return descriptors, nil
}
