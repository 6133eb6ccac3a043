// cmd/backfill/main.go
// Re-ingests historical daily race batch files straight through the
// ingestion pipeline, bypassing the HTTP layer.
//
// Usage:
//
//	go run ./cmd/backfill -dir ./batches
//	go run ./cmd/backfill batch-04-27-25.json batch-04-28-25.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/padraicbc/trackapi/config"
	bundb "github.com/padraicbc/trackapi/db"
	"github.com/padraicbc/trackapi/ingest"
	applog "github.com/padraicbc/trackapi/logger"
)

func main() {
	dir := flag.String("dir", "", "directory of *.json batch files (alternative to file args)")
	flag.Parse()

	files := flag.Args()
	if *dir != "" {
		matches, err := filepath.Glob(filepath.Join(*dir, "*.json"))
		if err != nil {
			log.Fatalf("glob %s: %v", *dir, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		log.Fatal("no batch files: pass file args or -dir")
	}

	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	ingestor := ingest.New(db, ingest.Policy{
		RaceNumberMin:    cfg.RaceNumberMin,
		DateFutureWindow: cfg.DateFutureWindow,
	}, logger)

	var failed int
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read batch file", zap.String("file", path), zap.Error(err))
			failed++
			continue
		}

		var req ingest.DailyRaceRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			logger.Error("decode batch file", zap.String("file", path), zap.Error(err))
			failed++
			continue
		}
		if err := ingest.ValidateRequest(&req); err != nil {
			logger.Error("invalid batch file", zap.String("file", path), zap.Error(err))
			failed++
			continue
		}

		res := ingestor.ProcessDailyRaceData(ctx, &req)
		logger.Info("batch done",
			zap.String("file", path),
			zap.Bool("success", res.Success),
			zap.Int("races_processed", res.Statistics.RacesProcessed),
			zap.Int("entries_processed", res.Statistics.EntriesProcessed),
			zap.Int("races_skipped", res.Statistics.RacesSkipped),
			zap.Strings("errors", res.Statistics.Errors),
		)
		if !res.Success {
			failed++
		}
	}

	if failed > 0 {
		logger.Fatal("backfill finished with failures", zap.Int("failed", failed))
	}
	logger.Info("backfill complete", zap.Int("files", len(files)))
}
