package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

// Canonical sensor fields.
const (
	FieldValue     = "value"
	FieldDate      = "date"
	FieldHour      = "hour"
	FieldCollector = "collector"
	FieldChannel   = "channel"
)

// Canonical reference table fields.
const (
	FieldAge         = "age"
	FieldConsumption = "consumption"
)

var sensorFields = []string{FieldValue, FieldDate, FieldHour, FieldCollector, FieldChannel}

// ColumnAliases maps a canonical field to the header names vendors use for it.
type ColumnAliases map[string][]string

// DefaultColumnAliases accepts the English and Portuguese exports of the
// collector software and the usual reference table headers.
func DefaultColumnAliases() ColumnAliases {
	return ColumnAliases{
		FieldValue:       {"value", "valor"},
		FieldDate:        {"date", "data"},
		FieldHour:        {"hour", "hora"},
		FieldCollector:   {"collector", "coletor"},
		FieldChannel:     {"channel", "canal"},
		FieldAge:         {"dia de vida", "idade", "age", "day"},
		FieldConsumption: {"consumo", "consumo_gr_ave_dia", "consumption", "grams_per_bird_day"},
	}
}

// LoadColumnAliases reads a YAML mapping of canonical field to accepted names
// and merges it over the defaults. An empty path or a missing file yields the
// defaults.
func LoadColumnAliases(path string) (ColumnAliases, error) {
	aliases := DefaultColumnAliases()
	if path == "" {
		return aliases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return aliases, nil
		}
		return nil, fmt.Errorf("read column aliases %s: %w", path, err)
	}

	var extra map[string][]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse column aliases %s: %w", path, err)
	}
	for field, names := range extra {
		aliases[strings.ToLower(field)] = appendUnique(aliases[strings.ToLower(field)], names...)
	}
	return aliases, nil
}

// Resolve locates each requested field in the header and returns its column
// index. A field with no matching header fails with ErrMissingColumn.
func (a ColumnAliases) Resolve(header []string, fields ...string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	resolved := make(map[string]int, len(fields))
	for _, field := range fields {
		names := a[field]
		if len(names) == 0 {
			names = []string{field}
		}
		found := false
		for _, name := range names {
			if idx, ok := index[normalizeHeader(name)]; ok {
				resolved[field] = idx
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s (accepted: %s)", models.ErrMissingColumn, field, strings.Join(names, ", "))
		}
	}
	return resolved, nil
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if strings.EqualFold(existing, v) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
