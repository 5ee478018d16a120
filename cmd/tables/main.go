// Command tables imports <line>.xlsx consumption tables into MongoDB.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/silofeed/internal/ingest"
	"github.com/mamadbah2/silofeed/internal/repository/excel"
	"github.com/mamadbah2/silofeed/internal/repository/mongodb"
	"github.com/mamadbah2/silofeed/pkg/logger"
)

func main() {
	dir := flag.String("dir", "tables", "directory holding <line>.xlsx workbooks")
	uri := flag.String("mongo-uri", os.Getenv("MONGODB_URI"), "MongoDB connection string")
	db := flag.String("db", envOr("MONGODB_DB_NAME", "silofeed"), "MongoDB database")
	aliasesPath := flag.String("aliases", os.Getenv("COLUMN_ALIASES_FILE"), "optional YAML file of extra column names")
	flag.Parse()

	if *uri == "" {
		die("-mongo-uri or MONGODB_URI is required")
	}

	log := logger.Must(logger.New("info"))
	defer func() { _ = log.Sync() }()

	aliases, err := ingest.LoadColumnAliases(*aliasesPath)
	if err != nil {
		die("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := mongodb.NewTableRepository(ctx, *uri, *db, log.Named("repo.mongodb"))
	if err != nil {
		die("%v", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	files := excel.NewTableRepository(*dir, aliases, log.Named("repo.excel"))
	lines, err := files.Lines()
	if err != nil {
		die("%v", err)
	}
	if len(lines) == 0 {
		die("no .xlsx tables in %s", *dir)
	}

	for _, line := range lines {
		table, err := files.ConsumptionTable(ctx, line)
		if err != nil {
			die("%v", err)
		}
		if err := store.SaveConsumptionTable(ctx, table); err != nil {
			die("%v", err)
		}
		fmt.Printf("imported %s (%d rows)\n", line, len(table.Rows))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "tables: "+format+"\n", args...)
	os.Exit(1)
}
