package chart

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "hkpulse/internal/errors"
	"hkpulse/internal/sentiment"
)

// Point is one plotted day. FearGreed is NaN before the composite is
// defined.
type Point struct {
	Date      time.Time
	HSI       float64
	FearGreed float64
}

// LoadResult reads the date, hsi and fear_greed columns of the index CSV
func LoadResult(path string) ([]Point, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(apperrors.StageVisualization, path)
		}
		return nil, apperrors.NewStorageError(apperrors.StageVisualization, "read "+path, err)
	}
	return ReadResult(bytes.NewReader(content))
}

// ReadResult parses an index table from r
func ReadResult(r io.Reader) ([]Point, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParsingError(apperrors.StageVisualization, "", "read header", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range []string{sentiment.ColDate, sentiment.ColHSI, sentiment.ColFearGreed} {
		if _, ok := cols[name]; !ok {
			return nil, apperrors.NewValidationError(apperrors.StageVisualization, name, "missing column "+name)
		}
	}

	var points []Point
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(apperrors.StageVisualization, "", fmt.Sprintf("line %d", line), err)
		}

		date, err := sentiment.ParseDate(field(record, cols[sentiment.ColDate]))
		if err != nil {
			return nil, apperrors.NewParsingError(apperrors.StageVisualization, sentiment.ColDate, fmt.Sprintf("line %d", line), err)
		}
		hsi, err := parseCell(field(record, cols[sentiment.ColHSI]))
		if err != nil {
			return nil, apperrors.NewParsingError(apperrors.StageVisualization, sentiment.ColHSI, fmt.Sprintf("line %d", line), err)
		}
		fg, err := parseCell(field(record, cols[sentiment.ColFearGreed]))
		if err != nil {
			return nil, apperrors.NewParsingError(apperrors.StageVisualization, sentiment.ColFearGreed, fmt.Sprintf("line %d", line), err)
		}
		points = append(points, Point{Date: date, HSI: hsi, FearGreed: fg})
	}
	return points, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func parseCell(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// FilterFrom keeps the points dated on or after start
func FilterFrom(points []Point, start time.Time) []Point {
	var out []Point
	for _, p := range points {
		if !p.Date.Before(start) {
			out = append(out, p)
		}
	}
	return out
}
