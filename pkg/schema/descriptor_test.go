package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifor-platform/statstore/pkg/apperrors"
)

const regionsYAML = `table_name: REGIONS
identifier: nuts_id
columns:
  - name: nuts_id
    type: String(10)
  - name: nuts_name
    type: String(255)
`

const datasetJSON = `{
  "table_name": "lfsa_egan2",
  "identifier": "nuts_id",
  "columns": [
    {"name": "nuts_id", "type": "String(10)"},
    {"name": "employed", "type": "Float"}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "regions.yaml", regionsYAML)

	desc, err := LoadDescriptor(path)
	require.NoError(t, err)
	assert.Equal(t, "REGIONS", desc.TableName)
	assert.Equal(t, "nuts_id", desc.Identifier)
	require.Len(t, desc.Columns, 2)
	assert.Equal(t, DescriptorColumn{Name: "nuts_id", Type: "String(10)"}, desc.Columns[0])
}

func TestLoadDescriptorMissingFile(t *testing.T) {
	_, err := LoadDescriptor(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSchema))
}

func TestLoadDescriptorMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.yaml", "table_name: [unclosed")

	_, err := LoadDescriptor(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSchema))
}

func TestLoadDescriptorDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "regions.yaml", regionsYAML)
	writeFile(t, dir, "lfsa_egan2.json", datasetJSON)
	writeFile(t, dir, "notes.txt", "ignored")

	descriptors, err := LoadDescriptorDir(dir)
	require.NoError(t, err)
	require.Len(t, descriptors, 2)
	assert.Contains(t, descriptors, "REGIONS")
	assert.Contains(t, descriptors, "lfsa_egan2")
}

func TestLoadDescriptorDirDuplicateTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", regionsYAML)
	writeFile(t, dir, "b.yaml", regionsYAML)

	_, err := LoadDescriptorDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSchema))
	assert.Contains(t, err.Error(), "duplicate descriptor")
}
