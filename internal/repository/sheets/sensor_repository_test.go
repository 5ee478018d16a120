package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/mamadbah2/silofeed/internal/domain/models"
	"github.com/mamadbah2/silofeed/internal/ingest"
)

type stubRangeReader struct {
	values    [][]interface{}
	err       error
	lastRange string
}

func (s *stubRangeReader) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	s.lastRange = sheetRange
	return s.values, s.err
}

func TestSensorSourceParsesRange(t *testing.T) {
	reader := &stubRangeReader{values: [][]interface{}{
		{"Valor", "Data", "Hora", "Coletor", "Canal"},
		{"1.250,0", "10/03/2025", "08:00:00", "Aviario 3", "1"},
		{"1200", "10/03/2025", "09:00:00", "Aviario 3", 1},
		{"x", "10/03/2025", "10:00:00", "Aviario 3", "1"},
	}}

	src := NewSensorSource(reader, "Sensores!A1:E", ingest.SensorOptions{})
	samples, err := src.Samples(context.Background())
	if err != nil {
		t.Fatalf("Samples returned error: %v", err)
	}
	if reader.lastRange != "Sensores!A1:E" {
		t.Fatalf("unexpected range %q", reader.lastRange)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %+v", samples)
	}
	if samples[0].HouseID != 3 || samples[0].WeightKg != 1250 || samples[1].ChannelID != "1" {
		t.Fatalf("unexpected samples %+v", samples)
	}
}

func TestSensorSourceEmptyRange(t *testing.T) {
	src := NewSensorSource(&stubRangeReader{}, "Sensores!A1:E", ingest.SensorOptions{})
	if _, err := src.Samples(context.Background()); !errors.Is(err, models.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestSensorSourcePropagatesReadError(t *testing.T) {
	boom := errors.New("quota exceeded")
	src := NewSensorSource(&stubRangeReader{err: boom}, "Sensores!A1:E", ingest.SensorOptions{})
	if _, err := src.Samples(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
}
