package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

var housingDateLayouts = []string{"2006-01-02", "02/01/2006"}

// ParseDecimal reads numbers written with a decimal comma and dot thousands
// separators ("1.234,5"), falling back to plain dot decimals ("1234.5").
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty numeric value")
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case isDotGrouped(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite numeric value %q", s)
	}
	return f, nil
}

// isDotGrouped reports whether s looks like "12.345" or "1.234.567".
func isDotGrouped(s string) bool {
	parts := strings.Split(strings.TrimPrefix(s, "-"), ".")
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

// ParseHousingDate accepts ISO dates and the dd/mm/yyyy form used on farm.
func ParseHousingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range housingDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: housing date %q is not YYYY-MM-DD or DD/MM/YYYY", models.ErrInvalidParameter, s)
}
