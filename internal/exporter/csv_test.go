package exporter

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCSVWriter(nil, logger), t.TempDir()
}

func readCSV(t *testing.T, path string) (bool, [][]string) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	hasBOM := bytes.HasPrefix(content, utf8BOM)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return hasBOM, records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	tests := []struct {
		name      string
		options   WriteOptions
		wantBOM   bool
		wantLines int
	}{
		{
			name: "headers and records with BOM",
			options: WriteOptions{
				Headers:   []string{"date", "latest"},
				Records:   [][]string{{"2024-01-02", "16788.55"}, {"2024-01-03", "16645.98"}},
				BOMPrefix: true,
			},
			wantBOM:   true,
			wantLines: 3,
		},
		{
			name: "no BOM",
			options: WriteOptions{
				Headers: []string{"date"},
				Records: [][]string{{"2024-01-02"}},
			},
			wantLines: 2,
		},
		{
			name: "quoted values",
			options: WriteOptions{
				Headers: []string{"name"},
				Records: [][]string{{"a, b"}, {`say "hi"`}},
			},
			wantLines: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, "sub", tt.name+".csv")
			require.NoError(t, writer.WriteCSV(path, tt.options))

			hasBOM, records := readCSV(t, path)
			assert.Equal(t, tt.wantBOM, hasBOM)
			assert.Len(t, records, tt.wantLines)
			assert.Equal(t, tt.options.Headers, records[0])
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	writer, tempDir := setupTestEnv(t)
	path := filepath.Join(tempDir, "append.csv")

	require.NoError(t, writer.WriteSimpleCSV(path, []string{"a"}, [][]string{{"1"}}))
	require.NoError(t, writer.WriteCSV(path, WriteOptions{
		Headers: []string{"ignored"},
		Records: [][]string{{"2"}},
		Append:  true,
	}))

	hasBOM, records := readCSV(t, path)
	assert.True(t, hasBOM)
	assert.Equal(t, [][]string{{"a"}, {"1"}, {"2"}}, records)
}

func TestCSVWriter_WriteWithBackup(t *testing.T) {
	writer, tempDir := setupTestEnv(t)
	path := filepath.Join(tempDir, "south_money_daily.csv")
	now := time.Date(2024, 6, 3, 18, 30, 0, 0, time.Local)

	backup, err := writer.WriteWithBackup(path, []string{"date", "net_buy_amount"}, [][]string{{"2024-06-03", "1.5"}}, now)
	require.NoError(t, err)
	assert.Empty(t, backup, "first write has nothing to back up")

	backup, err = writer.WriteWithBackup(path, []string{"date", "net_buy_amount"}, [][]string{{"2024-06-04", "2.5"}}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "south_money_daily_20240603_1830.csv"), backup)

	_, old := readCSV(t, backup)
	assert.Equal(t, "2024-06-03", old[1][0])

	hasBOM, current := readCSV(t, path)
	assert.True(t, hasBOM)
	assert.Equal(t, "2024-06-04", current[1][0])
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "", FormatFloat(math.NaN()))
	assert.Equal(t, "", FormatFloat(math.Inf(-1)))
	assert.Equal(t, "16788.55", FormatFloat(16788.55))
	assert.Equal(t, "-3", FormatFloat(-3))
	assert.Equal(t, "42", FormatInt(42))
}
