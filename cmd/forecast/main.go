// Command forecast projects silo feed autonomy from a sensor export without
// running the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/silofeed/internal/domain/models"
	"github.com/mamadbah2/silofeed/internal/forecast"
	"github.com/mamadbah2/silofeed/internal/ingest"
	"github.com/mamadbah2/silofeed/internal/report"
	"github.com/mamadbah2/silofeed/internal/repository/excel"
	forecastingsvc "github.com/mamadbah2/silofeed/internal/service/forecasting"
	"github.com/mamadbah2/silofeed/pkg/logger"
)

func main() {
	sensorsPath := flag.String("sensors", "", "sensor CSV export (required)")
	tablesDir := flag.String("tables", "tables", "directory holding <line>.xlsx consumption tables")
	aliasesPath := flag.String("aliases", "", "optional YAML file of extra column names")
	house := flag.Int("house", 0, "house number; 0 forecasts every house in the export")
	housingDate := flag.String("housing-date", "", "flock housing date, YYYY-MM-DD or DD/MM/YYYY (required)")
	line := flag.String("line", "cobb", "genetic line")
	birds := flag.Int("birds", 0, "number of housed birds (required)")
	dilutionAge := flag.Int("dilution-age", models.DefaultDilutionStartAge, "age in days from which leftover feed is counted again")
	leftover := flag.Float64("leftover", 0, "leftover feed in the silo at housing, kg")
	threshold := flag.Float64("threshold", 500, "hourly weight gain counted as a delivery, kg")
	timezone := flag.String("tz", "America/Sao_Paulo", "timezone of the sensor clock")
	asJSON := flag.Bool("json", false, "print JSON instead of text")
	listLines := flag.Bool("lines", false, "list the genetic lines with a table and exit")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	log, err := logger.New(*logLevel)
	if err != nil {
		die("logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	aliases, err := ingest.LoadColumnAliases(*aliasesPath)
	if err != nil {
		die("%v", err)
	}
	tables := excel.NewTableRepository(*tablesDir, aliases, log.Named("repo.excel"))

	if *listLines {
		lines, err := tables.Lines()
		if err != nil {
			die("%v", err)
		}
		fmt.Println(strings.Join(lines, "\n"))
		return
	}

	if *sensorsPath == "" || *housingDate == "" || *birds == 0 {
		flag.Usage()
		os.Exit(2)
	}

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		die("timezone %q: %v", *timezone, err)
	}

	housing, err := ingest.ParseHousingDate(*housingDate)
	if err != nil {
		die("%v", err)
	}
	run := models.NewForecastRun(*house, housing, *line, *birds)
	run.DilutionStartAge = *dilutionAge
	run.InitialLeftoverKg = *leftover

	ctx := context.Background()
	source := ingest.NewCSVFileSource(*sensorsPath, ingest.SensorOptions{Aliases: aliases, Location: loc})
	engine := forecast.NewEngine(forecast.Options{DeliveryThresholdKg: *threshold}, log.Named("forecast"))
	svc := forecastingsvc.NewService(engine, tables, source, log.Named("svc.forecasting"))

	samples, err := svc.LoadSamples(ctx)
	if err != nil {
		die("%v", err)
	}

	if *house != 0 {
		rep, err := svc.Forecast(ctx, run, samples)
		if err != nil {
			die("%v", err)
		}
		if *asJSON {
			printJSON(rep)
			return
		}
		fmt.Print(report.FormatReport(rep, *threshold))
		return
	}

	results, err := svc.FullReport(ctx, run, samples)
	if err != nil {
		die("%v", err)
	}
	if *asJSON {
		printJSON(batchJSON(results))
	} else {
		fmt.Print(report.FormatBatch(results, *threshold))
	}

	for _, res := range results {
		if res.Err != nil {
			log.Warn("house forecast failed", zap.Int("house", res.HouseID), zap.Error(res.Err))
		}
	}
}

type houseJSON struct {
	HouseID int            `json:"house_id"`
	Report  *models.Report `json:"report,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func batchJSON(results []forecast.HouseResult) []houseJSON {
	out := make([]houseJSON, len(results))
	for i, res := range results {
		out[i] = houseJSON{HouseID: res.HouseID, Report: res.Report}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	return out
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		die("encode: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "forecast: "+format+"\n", args...)
	os.Exit(1)
}
