package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

// CSVFileSource reads sensor samples from an export on disk. The file is
// re-read on every call so scheduled runs pick up new exports.
type CSVFileSource struct {
	path string
	opts SensorOptions
}

// NewCSVFileSource binds a source to the export at path.
func NewCSVFileSource(path string, opts SensorOptions) *CSVFileSource {
	return &CSVFileSource{path: path, opts: opts}
}

// Samples parses the export.
func (s *CSVFileSource) Samples(ctx context.Context) ([]models.RawSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open sensor export: %w", err)
	}
	defer f.Close()

	samples, err := ReadSensorCSV(f, s.opts)
	if err != nil {
		return nil, fmt.Errorf("sensor export %s: %w", s.path, err)
	}
	return samples, nil
}
