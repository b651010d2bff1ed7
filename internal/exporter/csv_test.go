package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WriteSimpleCSV(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	err := writer.WriteSimpleCSV("out.csv", []string{"id", "value"}, [][]string{
		{"a", "1"},
		{"b", "2.5"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)

	// BOM prefix for Excel
	require.True(t, len(data) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
	assert.Equal(t, "id,value\na,1\nb,2.5\n", string(data[3:]))
}

func TestCSVWriter_CreatesNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	err := writer.WriteSimpleCSV(filepath.Join("nested", "deep", "out.csv"), []string{"id"}, [][]string{{"a"}})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "nested", "deep", "out.csv"))
	assert.NoError(t, err)
}

func TestCSVWriter_Append(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	require.NoError(t, writer.WriteCSV("out.csv", WriteOptions{
		Headers: []string{"id"},
		Records: [][]string{{"a"}},
	}))
	require.NoError(t, writer.AppendToCSV("out.csv", [][]string{{"b"}}))

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id\na\nb\n", string(data))
}

func TestStreamWriter(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"id", "value"})
	require.NoError(t, err)

	require.NoError(t, stream.WriteRecord([]string{"a", "1"}))
	require.NoError(t, stream.WriteRecord([]string{"b", "2"}))
	require.NoError(t, stream.Close())

	data, err := os.ReadFile(filepath.Join(dir, "stream.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,value\na,1\nb,2\n", string(data[3:]))
}
