package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

const defaultPreambleLines = 1

var (
	houseNumberPattern = regexp.MustCompile(`\d+`)

	timestampLayouts = []string{
		"02/01/2006 15:04:05",
		"02/01/2006 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
)

// SensorOptions controls how vendor sensor exports are read.
type SensorOptions struct {
	Aliases ColumnAliases
	// Location interprets the wall-clock date and hour columns. Defaults to UTC.
	Location *time.Location
	// PreambleLines is the number of lines preceding the CSV header. A negative
	// value means none; zero means the vendor default of one.
	PreambleLines int
}

func (o SensorOptions) withDefaults() SensorOptions {
	if o.Aliases == nil {
		o.Aliases = DefaultColumnAliases()
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.PreambleLines == 0 {
		o.PreambleLines = defaultPreambleLines
	}
	return o
}

// ReadSensorCSV parses a semicolon separated export of the sensor collector.
func ReadSensorCSV(r io.Reader, opts SensorOptions) ([]models.RawSample, error) {
	opts = opts.withDefaults()

	br := bufio.NewReader(r)
	for i := 0; i < opts.PreambleLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: sensor export has no header", models.ErrMissingColumn)
			}
			return nil, fmt.Errorf("skip preamble: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: sensor export has no header", models.ErrMissingColumn)
		}
		return nil, fmt.Errorf("read sensor header: %w", err)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sensor rows: %w", err)
	}

	return ParseSensorRows(header, rows, opts)
}

// ParseSensorRows converts tabular sensor rows into raw samples. Rows with a
// non-numeric value, a collector without a house number or an unparseable
// date and hour are dropped; if every row fails on its timestamp the whole
// input is rejected.
func ParseSensorRows(header []string, rows [][]string, opts SensorOptions) ([]models.RawSample, error) {
	opts = opts.withDefaults()

	cols, err := opts.Aliases.Resolve(header, sensorFields...)
	if err != nil {
		return nil, err
	}

	get := func(row []string, field string) string {
		idx := cols[field]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	samples := make([]models.RawSample, 0, len(rows))
	withValue := 0
	badTimestamps := 0

	for _, row := range rows {
		kg, err := ParseDecimal(get(row, FieldValue))
		if err != nil {
			continue
		}
		withValue++

		ts, err := parseTimestamp(get(row, FieldDate), get(row, FieldHour), opts.Location)
		if err != nil {
			badTimestamps++
			continue
		}

		house, ok := HouseNumber(get(row, FieldCollector))
		if !ok {
			continue
		}

		samples = append(samples, models.RawSample{
			Timestamp: ts,
			HouseID:   house,
			ChannelID: get(row, FieldChannel),
			WeightKg:  kg,
		})
	}

	if withValue > 0 && badTimestamps == withValue {
		return nil, fmt.Errorf("%w: none of %d rows has a valid date and hour", models.ErrUnparseableTimestamp, withValue)
	}

	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Timestamp.Before(samples[j].Timestamp) })
	return samples, nil
}

// HouseNumber extracts the first run of digits of a collector identifier.
func HouseNumber(collector string) (int, bool) {
	digits := houseNumberPattern.FindString(collector)
	if digits == "" {
		return 0, false
	}
	n := 0
	for _, d := range digits {
		n = n*10 + int(d-'0')
		if n > 1_000_000 {
			return 0, false
		}
	}
	return n, true
}

// Houses lists the distinct house numbers present in samples, ascending.
func Houses(samples []models.RawSample) []int {
	seen := make(map[int]struct{})
	houses := make([]int, 0)
	for _, s := range samples {
		if _, ok := seen[s.HouseID]; ok {
			continue
		}
		seen[s.HouseID] = struct{}{}
		houses = append(houses, s.HouseID)
	}
	sort.Ints(houses)
	return houses
}

func parseTimestamp(date, hour string, loc *time.Location) (time.Time, error) {
	if date == "" || hour == "" {
		return time.Time{}, models.ErrUnparseableTimestamp
	}
	value := date + " " + hour
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", models.ErrUnparseableTimestamp, value)
}
