package models

import (
	"fmt"
	"sort"
)

// ConsumptionTableRow is the reference intake of one bird on a given day of life.
type ConsumptionTableRow struct {
	AgeDays         int     `bson:"age_days" json:"age_days"`
	GramsPerBirdDay float64 `bson:"grams_per_bird_day" json:"grams_per_bird_day"`
}

// ConsumptionTable is the age to intake curve of a genetic line. It is shared
// read-only between forecast runs once built.
type ConsumptionTable struct {
	Line string                `bson:"line" json:"line"`
	Rows []ConsumptionTableRow `bson:"rows" json:"rows"`
}

// NewConsumptionTable sorts the rows by age and rejects empty tables and
// duplicated ages.
func NewConsumptionTable(line string, rows []ConsumptionTableRow) (ConsumptionTable, error) {
	if len(rows) == 0 {
		return ConsumptionTable{}, fmt.Errorf("%w: line %q has no rows", ErrInvalidTable, line)
	}

	sorted := make([]ConsumptionTableRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AgeDays < sorted[j].AgeDays })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].AgeDays == sorted[i-1].AgeDays {
			return ConsumptionTable{}, fmt.Errorf("%w: line %q repeats age %d", ErrInvalidTable, line, sorted[i].AgeDays)
		}
	}

	return ConsumptionTable{Line: line, Rows: sorted}, nil
}

// RateForAge returns grams per bird per day for the given age. An age without
// its own row, whether before the first row, in a hole or past the end,
// resolves to the last row.
func (t ConsumptionTable) RateForAge(age int) float64 {
	if len(t.Rows) == 0 {
		return 0
	}

	idx := sort.Search(len(t.Rows), func(i int) bool { return t.Rows[i].AgeDays >= age })
	if idx < len(t.Rows) && t.Rows[idx].AgeDays == age {
		return t.Rows[idx].GramsPerBirdDay
	}
	return t.Rows[len(t.Rows)-1].GramsPerBirdDay
}

// MaxAge is the last age defined by the table.
func (t ConsumptionTable) MaxAge() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return t.Rows[len(t.Rows)-1].AgeDays
}
