package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/silofeed/internal/config"
	"github.com/mamadbah2/silofeed/internal/domain/models"
	"github.com/mamadbah2/silofeed/internal/ingest"
)

// RangeReader fetches a rectangular range of cell values.
type RangeReader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// GoogleSheetRepository reads ranges through the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	r.logger.Debug("sheet range read", zap.String("range", sheetRange), zap.Int("rows", len(resp.Values)))
	return resp.Values, nil
}

// SensorSource reads sensor exports pasted into a spreadsheet range whose
// first row is the header.
type SensorSource struct {
	reader     RangeReader
	sheetRange string
	opts       ingest.SensorOptions
}

// NewSensorSource binds a range reader to the range holding sensor rows.
func NewSensorSource(reader RangeReader, sheetRange string, opts ingest.SensorOptions) *SensorSource {
	return &SensorSource{reader: reader, sheetRange: sheetRange, opts: opts}
}

// Samples reads the range and parses it into raw samples.
func (s *SensorSource) Samples(ctx context.Context) ([]models.RawSample, error) {
	values, err := s.reader.ReadRange(ctx, s.sheetRange)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: range %s is empty", models.ErrMissingColumn, s.sheetRange)
	}

	rows := ingest.StringRows(values)
	samples, err := ingest.ParseSensorRows(rows[0], rows[1:], s.opts)
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", s.sheetRange, err)
	}
	return samples, nil
}
