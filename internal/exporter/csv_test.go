package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_BasicWrite(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	err := writer.WriteCSV("out.csv", WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}, {"3", "4"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}}, records)
}

func TestWriteCSV_BOMPrefix(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	err := writer.WriteCSV("bom.csv", WriteOptions{
		Headers:   []string{"a"},
		Records:   [][]string{{"1"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "bom.csv"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
}

func TestWriteCSV_Append(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	require.NoError(t, writer.WriteCSV("a.csv", WriteOptions{
		Headers: []string{"a"},
		Records: [][]string{{"1"}},
	}))
	require.NoError(t, writer.WriteCSV("a.csv", WriteOptions{
		Records: [][]string{{"2"}},
		Append:  true,
	}))

	data, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
}

func TestWriteCSV_CreatesNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	err := writer.WriteCSV(filepath.Join("nested", "deep", "out.csv"), WriteOptions{
		Records: [][]string{{"x"}},
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "nested", "deep", "out.csv"))
	assert.NoError(t, err)
}

func TestWriteScheduleCSV(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	require.NoError(t, writer.WriteScheduleCSV("schedule.csv", sampleRows()))

	data, err := os.ReadFile(filepath.Join(dir, "schedule.csv"))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ScheduleHeaders, records[0])
	assert.Equal(t, []string{"101", "Aisha Khan", "01.09.2025", "English", "ENG-101", "54321"}, records[1])
	assert.Equal(t, "NOT IN DATE SHEET", records[2][2])
}

func TestResolvePath_AbsolutePathBypassesOutputDir(t *testing.T) {
	writer := NewCSVWriter("output")

	abs := filepath.Join(t.TempDir(), "direct.csv")
	assert.Equal(t, abs, writer.resolvePath(abs))
	assert.Equal(t, filepath.Join("output", "rel.csv"), writer.resolvePath("rel.csv"))
}
