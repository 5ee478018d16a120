package excel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/silofeed/internal/domain/models"
	"github.com/mamadbah2/silofeed/internal/ingest"
)

// TableRepository serves reference consumption tables stored as <line>.xlsx
// workbooks in a directory. Tables are parsed once and cached.
type TableRepository struct {
	dir     string
	aliases ingest.ColumnAliases
	logger  *zap.Logger

	mu     sync.RWMutex
	tables map[string]models.ConsumptionTable
}

// NewTableRepository builds a repository rooted at dir.
func NewTableRepository(dir string, aliases ingest.ColumnAliases, logger *zap.Logger) *TableRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aliases == nil {
		aliases = ingest.DefaultColumnAliases()
	}

	return &TableRepository{
		dir:     dir,
		aliases: aliases,
		logger:  logger,
		tables:  make(map[string]models.ConsumptionTable),
	}
}

// ConsumptionTable returns the table of the given genetic line.
func (r *TableRepository) ConsumptionTable(ctx context.Context, line string) (models.ConsumptionTable, error) {
	line = models.NormalizeLine(line)
	if line == "" || strings.ContainsAny(line, `/\`) || line == "." || line == ".." {
		return models.ConsumptionTable{}, fmt.Errorf("%w: %q", models.ErrUnknownLine, line)
	}

	r.mu.RLock()
	table, ok := r.tables[line]
	r.mu.RUnlock()
	if ok {
		return table, nil
	}

	if err := ctx.Err(); err != nil {
		return models.ConsumptionTable{}, err
	}

	table, err := r.load(line)
	if err != nil {
		return models.ConsumptionTable{}, err
	}

	r.mu.Lock()
	r.tables[line] = table
	r.mu.Unlock()

	r.logger.Info("consumption table loaded", zap.String("line", line), zap.Int("rows", len(table.Rows)))
	return table, nil
}

// Lines lists the genetic lines that have a workbook in the directory.
func (r *TableRepository) Lines() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, "*.xlsx"))
	if err != nil {
		return nil, fmt.Errorf("list tables in %s: %w", r.dir, err)
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, models.NormalizeLine(strings.TrimSuffix(filepath.Base(m), ".xlsx")))
	}
	return lines, nil
}

func (r *TableRepository) load(line string) (models.ConsumptionTable, error) {
	path := filepath.Join(r.dir, line+".xlsx")

	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.ConsumptionTable{}, fmt.Errorf("%w: %q has no table at %s", models.ErrUnknownLine, line, path)
		}
		return models.ConsumptionTable{}, fmt.Errorf("open table %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			r.logger.Warn("close workbook failed", zap.String("path", path), zap.Error(cerr))
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return models.ConsumptionTable{}, fmt.Errorf("%w: workbook %s has no sheets", models.ErrInvalidTable, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return models.ConsumptionTable{}, fmt.Errorf("read sheet %s of %s: %w", sheets[0], path, err)
	}

	header, body := splitHeader(rows)
	if header == nil {
		return models.ConsumptionTable{}, fmt.Errorf("%w: workbook %s is empty", models.ErrInvalidTable, path)
	}

	table, err := ingest.ParseTableRows(line, header, body, r.aliases)
	if err != nil {
		return models.ConsumptionTable{}, fmt.Errorf("table %s: %w", path, err)
	}
	return table, nil
}

// splitHeader treats the first non-blank row as the header.
func splitHeader(rows [][]string) ([]string, [][]string) {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return row, rows[i+1:]
			}
		}
	}
	return nil, nil
}
