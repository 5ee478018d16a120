package ingest

import (
	"fmt"
	"math"
	"strings"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

// ParseTableRows reads a reference consumption table from tabular rows. Rows
// with a blank or non-numeric age or intake are skipped.
func ParseTableRows(line string, header []string, rows [][]string, aliases ColumnAliases) (models.ConsumptionTable, error) {
	if aliases == nil {
		aliases = DefaultColumnAliases()
	}

	cols, err := aliases.Resolve(header, FieldAge, FieldConsumption)
	if err != nil {
		return models.ConsumptionTable{}, err
	}

	parsed := make([]models.ConsumptionTableRow, 0, len(rows))
	for _, row := range rows {
		if cols[FieldAge] >= len(row) || cols[FieldConsumption] >= len(row) {
			continue
		}
		age, err := ParseDecimal(row[cols[FieldAge]])
		if err != nil || age < 0 || age != math.Trunc(age) {
			continue
		}
		grams, err := ParseDecimal(row[cols[FieldConsumption]])
		if err != nil {
			continue
		}
		parsed = append(parsed, models.ConsumptionTableRow{AgeDays: int(age), GramsPerBirdDay: grams})
	}

	return models.NewConsumptionTable(models.NormalizeLine(line), parsed)
}

// StringRows renders loosely typed cells, such as spreadsheet API values, as strings.
func StringRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			cells[j] = strings.TrimSpace(fmt.Sprint(cell))
		}
		rows[i] = cells
	}
	return rows
}
