package forecasting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mamadbah2/silofeed/internal/domain/models"
	"github.com/mamadbah2/silofeed/internal/forecast"
)

var housing = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

type fakeTables struct {
	tables map[string]models.ConsumptionTable
	calls  int
}

func (f *fakeTables) ConsumptionTable(_ context.Context, line string) (models.ConsumptionTable, error) {
	f.calls++
	table, ok := f.tables[line]
	if !ok {
		return models.ConsumptionTable{}, fmt.Errorf("%w: %q", models.ErrUnknownLine, line)
	}
	return table, nil
}

type fakeSensors struct {
	samples []models.RawSample
	err     error
}

func (f fakeSensors) Samples(context.Context) ([]models.RawSample, error) {
	return f.samples, f.err
}

func cobbTables() *fakeTables {
	return &fakeTables{tables: map[string]models.ConsumptionTable{
		"cobb": {Line: "cobb", Rows: []models.ConsumptionTableRow{{AgeDays: 1, GramsPerBirdDay: 150}}},
	}}
}

func declining(house, hours int, initial, slope float64) []models.RawSample {
	samples := make([]models.RawSample, 0, hours)
	for i := 0; i < hours; i++ {
		samples = append(samples, models.RawSample{
			Timestamp: housing.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			HouseID:   house,
			ChannelID: "1",
			WeightKg:  initial + slope*float64(i),
		})
	}
	return samples
}

func newService(tables TableSource, sensors SensorSource) *Service {
	return NewService(forecast.NewEngine(forecast.Options{}, nil), tables, sensors, nil)
}

func TestForecastNormalizesLine(t *testing.T) {
	svc := newService(cobbTables(), nil)
	run := models.ForecastRun{HouseID: 1, HousingDate: housing, Line: " COBB ", BirdCount: 20000, DilutionStartAge: 19}

	report, err := svc.Forecast(context.Background(), run, declining(1, 48, 10000, -50))
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if report.Run.Line != "cobb" || report.DepletionAt == nil {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestForecastErrors(t *testing.T) {
	samples := declining(1, 48, 10000, -50)
	tests := []struct {
		name string
		run  models.ForecastRun
		want error
	}{
		{"unknown line", models.NewForecastRun(1, housing, "hubbard", 100), models.ErrUnknownLine},
		{"no birds", models.NewForecastRun(1, housing, "cobb", 0), models.ErrInvalidParameter},
		{"absent house", models.NewForecastRun(9, housing, "cobb", 100), models.ErrEmptyHouseData},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newService(cobbTables(), nil).Forecast(context.Background(), tc.run, samples)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFullReportRunsEveryHouse(t *testing.T) {
	tables := cobbTables()
	svc := newService(tables, nil)

	samples := append(declining(3, 48, 10000, -50), declining(1, 48, 8000, -40)...)
	samples = append(samples, declining(2, 1, 5000, 0)...)

	results, err := svc.FullReport(context.Background(), models.NewForecastRun(0, housing, "cobb", 20000), samples)
	if err != nil {
		t.Fatalf("FullReport returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 houses, got %d", len(results))
	}
	for i, want := range []int{1, 2, 3} {
		if results[i].HouseID != want {
			t.Fatalf("expected house %d at %d, got %d", want, i, results[i].HouseID)
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("expected houses 1 and 3 to succeed: %v / %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, models.ErrInsufficientData) {
		t.Fatalf("expected house 2 to lack data, got %v", results[1].Err)
	}
	if results[0].Report.Run.HouseID != 1 || results[2].Report.Run.HouseID != 3 {
		t.Fatal("reports not bound to their houses")
	}
	if tables.calls != 1 {
		t.Fatalf("expected the table to be fetched once, got %d", tables.calls)
	}
}

func TestFullReportWithoutSamples(t *testing.T) {
	_, err := newService(cobbTables(), nil).FullReport(context.Background(), models.NewForecastRun(0, housing, "cobb", 10), nil)
	if !errors.Is(err, models.ErrEmptyHouseData) {
		t.Fatalf("expected ErrEmptyHouseData, got %v", err)
	}
}

func TestLoadSamples(t *testing.T) {
	if _, err := newService(cobbTables(), nil).LoadSamples(context.Background()); !errors.Is(err, ErrNoSensorSource) {
		t.Fatalf("expected ErrNoSensorSource, got %v", err)
	}

	boom := errors.New("disk gone")
	if _, err := newService(cobbTables(), fakeSensors{err: boom}).LoadSamples(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}

	samples, err := newService(cobbTables(), fakeSensors{samples: declining(1, 2, 10, 0)}).LoadSamples(context.Background())
	if err != nil || len(samples) != 2 {
		t.Fatalf("unexpected load result %d, %v", len(samples), err)
	}
}
