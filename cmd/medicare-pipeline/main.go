// Command medicare-pipeline runs the claims lake pipeline: raw DE-SynPUF
// extracts are normalized into bronze parquet, dirty partitions are
// recomputed into the silver dimensional model, gold aggregates are merged
// incrementally, and the serving tables are optionally published to
// PostgreSQL.
//
// Usage:
//
//	medicare-pipeline -raw ./data/raw -lake ./data/lake -steps convert,transform
//	medicare-pipeline -lake ./data/lake -steps load -pg postgres://localhost/claims
//	medicare-pipeline -lake ./data/lake -steps validate
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/johnwalz97/medicare-pipeline/internal/bronze"
	"github.com/johnwalz97/medicare-pipeline/internal/merge"
	"github.com/johnwalz97/medicare-pipeline/internal/pgload"
	"github.com/johnwalz97/medicare-pipeline/internal/validate"
)

const defaultSteps = "convert,transform,validate"

func main() {
	var (
		rawDir  = flag.String("raw", "", "directory holding raw source files (convert step)")
		lakeDir = flag.String("lake", "./lake", "lake root directory")
		steps   = flag.String("steps", defaultSteps, "comma-separated steps: convert,transform,analytics,load,validate")
		workers = flag.Int("workers", 4, "max partitions recomputed in parallel")
		pgConn  = flag.String("pg", "", "postgres connection string (load step)")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg := zap.NewProductionConfig()
	if *verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, *rawDir, *lakeDir, *steps, *workers, *pgConn); err != nil {
		log.Error("pipeline failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.Logger, rawDir, lakeDir, steps string, workers int, pgConn string) error {
	for _, step := range strings.Split(steps, ",") {
		step = strings.TrimSpace(step)
		if step == "" {
			continue
		}
		log.Info("step start", zap.String("step", step))
		var err error
		switch step {
		case "convert":
			err = runConvert(log, rawDir, lakeDir)
		case "transform":
			err = runTransform(ctx, log, lakeDir, workers)
		case "analytics":
			err = merge.NewCoordinator(lakeDir, workers, log).RebuildGold(ctx)
		case "load":
			err = runLoad(ctx, log, lakeDir, pgConn)
		case "validate":
			err = runValidate(log, lakeDir)
		default:
			err = fmt.Errorf("unknown step %q", step)
		}
		if err != nil {
			return fmt.Errorf("step %s: %w", step, err)
		}
	}
	return nil
}

// runConvert ingests every recognizable file under rawDir into bronze.
// Files whose name matches no record type are skipped with a warning; a file
// whose columns contradict its detected type aborts the step.
func runConvert(log *zap.Logger, rawDir, lakeDir string) error {
	if rawDir == "" {
		return fmt.Errorf("convert requires -raw")
	}
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".csv" && ext != ".txt" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	normalizer := bronze.NewNormalizer(lakeDir, log)
	var rows, rejected, coerced int64
	ingested := 0
	for _, name := range names {
		rt, err := bronze.DetectRecordType(name)
		if err != nil {
			log.Warn("skipping unrecognized file", zap.String("file", name))
			continue
		}
		summary, err := normalizer.IngestFile(bronze.FileIngest{
			Path: filepath.Join(rawDir, name),
			Type: rt,
		})
		if err != nil {
			return err
		}
		rows += summary.Rows
		rejected += summary.Rejected
		coerced += summary.Coerced
		ingested++
	}
	if ingested == 0 {
		return fmt.Errorf("no recognizable source files in %s", rawDir)
	}

	log.Info("convert complete",
		zap.Int("files", ingested),
		zap.Int64("rows", rows),
		zap.Int64("rejected_rows", rejected),
		zap.Int64("coerced_fields", coerced))
	return nil
}

func runTransform(ctx context.Context, log *zap.Logger, lakeDir string, workers int) error {
	report, err := merge.NewCoordinator(lakeDir, workers, log).Run(ctx)
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d partitions failed: %s",
			len(report.Failed), report.Partitions, strings.Join(report.Failed, ", "))
	}
	return nil
}

func runLoad(ctx context.Context, log *zap.Logger, lakeDir, pgConn string) error {
	if pgConn == "" {
		return fmt.Errorf("load requires -pg")
	}
	loader, err := pgload.Connect(ctx, pgConn, log)
	if err != nil {
		return err
	}
	defer loader.Close()

	rows, err := loader.LoadAll(ctx, lakeDir)
	if err != nil {
		return err
	}
	log.Info("load complete", zap.Int64("rows", rows))
	return nil
}

func runValidate(log *zap.Logger, lakeDir string) error {
	report, err := validate.Inspect(lakeDir, log)
	if err != nil {
		return err
	}
	path := filepath.Join(lakeDir, "_validation_report.json")
	if err := validate.WriteReport(report, path); err != nil {
		return err
	}
	log.Info("validation report written",
		zap.String("path", path),
		zap.String("status", report.Status))
	return nil
}
