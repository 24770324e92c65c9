package sentiment

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "hkpulse/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// dateColumns are the accepted headers of the date column.
var dateColumns = []string{"date", "trade_date", "日期", "交易日期"}

// Source describes one persisted input file and how its value column is
// renamed to a canonical alias.
type Source struct {
	Series       string   // canonical alias, e.g. ColHSI
	File         string   // file name inside the data directory
	ValueColumns []string // accepted header names for the value column, in priority order
}

// Sources maps the acquisition output onto the scoring inputs.
var Sources = []Source{
	{Series: ColHSI, File: "hsi_daily.csv", ValueColumns: []string{"latest", "close", "最新价", "收盘"}},
	{Series: ColVHSI, File: "vhsi_daily.csv", ValueColumns: []string{"latest", "close", "最新价", "收盘"}},
	{Series: ColNetBuy, File: "south_money_daily.csv", ValueColumns: []string{"net_buy_amount", "net_buy", "当日成交净买额", "净买额"}},
	{Series: ColAHPremium, File: "ah_premium_daily.csv", ValueColumns: []string{"latest", "close", "最新价", "收盘"}},
}

// ReadSeries parses a CSV stream into a named series. The date column and
// the first matching value column are located by header, case-insensitively.
// An empty value cell is kept as NaN; an unparseable date or number, a
// missing column, a file without rows or a column without a single value
// fails the read.
func ReadSeries(r io.Reader, name string, valueColumns []string) (Series, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return Series{}, apperrors.NewParsingError(apperrors.StageScoring, name, "read CSV records", err)
	}
	if len(records) == 0 {
		return Series{}, apperrors.NewValidationError(apperrors.StageScoring, name, "empty CSV file")
	}

	header := records[0]
	dateIdx := findColumn(header, dateColumns)
	if dateIdx < 0 {
		return Series{}, apperrors.NewValidationError(apperrors.StageScoring, name,
			fmt.Sprintf("missing date column (header %v)", header))
	}
	valueIdx := findColumn(header, valueColumns)
	if valueIdx < 0 {
		return Series{}, apperrors.NewValidationError(apperrors.StageScoring, name,
			fmt.Sprintf("missing value column, want one of %v", valueColumns))
	}

	points := make([]Point, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if isBlankRecord(record) {
			continue
		}
		lineNum := i + 1

		if dateIdx >= len(record) {
			return Series{}, apperrors.NewParsingError(apperrors.StageScoring, name,
				fmt.Sprintf("line %d: missing date cell", lineNum), nil)
		}
		date, err := ParseDate(strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return Series{}, apperrors.NewParsingError(apperrors.StageScoring, name,
				fmt.Sprintf("line %d", lineNum), err)
		}

		value := math.NaN()
		if valueIdx < len(record) {
			value, err = parseValue(record[valueIdx])
			if err != nil {
				return Series{}, apperrors.NewParsingError(apperrors.StageScoring, name,
					fmt.Sprintf("line %d: parse %s", lineNum, header[valueIdx]), err)
			}
		}

		points = append(points, Point{Date: date, Value: value})
	}

	if len(points) == 0 {
		return Series{}, apperrors.NewValidationError(apperrors.StageScoring, name, "series has no rows")
	}

	s := Series{Name: name, Points: points}
	if s.Defined() == 0 {
		return Series{}, apperrors.NewValidationError(apperrors.StageScoring, name,
			fmt.Sprintf("no defined values in column %s", header[valueIdx]))
	}
	return s, nil
}

// LoadSeries reads one series from a CSV file
func LoadSeries(path, name string, valueColumns []string) (Series, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Series{}, apperrors.NewNotFoundError(apperrors.StageScoring, path).WithSeries(name)
		}
		return Series{}, apperrors.NewStorageError(apperrors.StageScoring, "open input", err).WithSeries(name)
	}
	defer file.Close()

	return ReadSeries(file, name, valueColumns)
}

// LoadSources reads every source from dataDir. The first failure aborts
// the load.
func LoadSources(ctx context.Context, dataDir string, sources []Source) ([]Series, error) {
	logger := slog.Default()

	series := make([]Series, 0, len(sources))
	for _, src := range sources {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during input loading: %w", ctx.Err())
		default:
		}

		path := filepath.Join(dataDir, src.File)
		s, err := LoadSeries(path, src.Series, src.ValueColumns)
		if err != nil {
			return nil, err
		}

		logger.InfoContext(ctx, "loaded input series",
			"series", src.Series,
			"file", src.File,
			"rows", s.Len(),
		)
		series = append(series, s)
	}
	return series, nil
}

// ParseDate accepts the date layouts produced by the provider and by
// spreadsheet round-trips.
func ParseDate(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"2006-01-02 15:04:05",
		"2006/01/02 15:04:05",
		"20060102",
		"2006-1-2",
		"2006/1/2",
		time.RFC3339,
	}

	for _, layout := range layouts {
		if date, err := time.Parse(layout, s); err == nil {
			return dateKey(date), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %q", s)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || s == "-" {
		return math.NaN(), nil
	}
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

// findColumn returns the index of the first candidate present in header
func findColumn(header []string, candidates []string) int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, c := range candidates {
		want := strings.ToLower(c)
		for i, h := range normalized {
			if h == want {
				return i
			}
		}
	}
	return -1
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
