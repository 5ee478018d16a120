package excel

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func TestTableRepositoryLoadsWorkbook(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "cobb.xlsx"), [][]interface{}{
		{"Dia de vida", "Peso", "Consumo"},
		{1, 42, 12},
		{2, 50, 18.5},
		{3, 61, 22},
	})

	repo := NewTableRepository(dir, nil, nil)
	table, err := repo.ConsumptionTable(context.Background(), "COBB")
	if err != nil {
		t.Fatalf("ConsumptionTable returned error: %v", err)
	}
	if table.Line != "cobb" || len(table.Rows) != 3 {
		t.Fatalf("unexpected table %+v", table)
	}
	if got := table.RateForAge(2); got != 18.5 {
		t.Fatalf("expected 18.5 g at day 2, got %v", got)
	}
	if got := table.RateForAge(40); got != 22 {
		t.Fatalf("expected last row beyond the table, got %v", got)
	}
}

func TestTableRepositoryCachesTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ross.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"idade", "consumo"},
		{1, 10},
	})

	repo := NewTableRepository(dir, nil, nil)
	if _, err := repo.ConsumptionTable(context.Background(), "ross"); err != nil {
		t.Fatalf("first load: %v", err)
	}

	writeWorkbook(t, path, [][]interface{}{
		{"idade", "consumo"},
		{1, 99},
	})
	table, err := repo.ConsumptionTable(context.Background(), "ross")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if table.Rows[0].GramsPerBirdDay != 10 {
		t.Fatalf("expected cached value 10, got %v", table.Rows[0].GramsPerBirdDay)
	}
}

func TestTableRepositoryUnknownLine(t *testing.T) {
	repo := NewTableRepository(t.TempDir(), nil, nil)

	for _, line := range []string{"hubbard", "", "../cobb"} {
		_, err := repo.ConsumptionTable(context.Background(), line)
		if !errors.Is(err, models.ErrUnknownLine) {
			t.Fatalf("line %q: expected ErrUnknownLine, got %v", line, err)
		}
		if !errors.Is(err, models.ErrInvalidParameter) {
			t.Fatalf("line %q: expected ErrInvalidParameter, got %v", line, err)
		}
	}
}

func TestTableRepositoryRejectsBadTable(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "cobb.xlsx"), [][]interface{}{
		{"dia de vida", "consumo"},
		{1, 10},
		{1, 12},
	})

	_, err := NewTableRepository(dir, nil, nil).ConsumptionTable(context.Background(), "cobb")
	if !errors.Is(err, models.ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
}

func TestTableRepositoryLines(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"cobb.xlsx", "ross.xlsx"} {
		writeWorkbook(t, filepath.Join(dir, name), [][]interface{}{{"idade", "consumo"}, {1, 1}})
	}

	lines, err := NewTableRepository(dir, nil, nil).Lines()
	if err != nil {
		t.Fatalf("Lines returned error: %v", err)
	}
	sort.Strings(lines)
	if len(lines) != 2 || lines[0] != "cobb" || lines[1] != "ross" {
		t.Fatalf("unexpected lines %v", lines)
	}
}

func TestSplitHeaderSkipsBlankRows(t *testing.T) {
	header, body := splitHeader([][]string{{}, {"", " "}, {"idade", "consumo"}, {"1", "2"}})
	if len(header) != 2 || header[0] != "idade" || len(body) != 1 {
		t.Fatalf("unexpected split %v / %v", header, body)
	}
	if h, _ := splitHeader(nil); h != nil {
		t.Fatalf("expected nil header, got %v", h)
	}
}
