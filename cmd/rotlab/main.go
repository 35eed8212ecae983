package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"

	"rotlab/adapters/postgres"
	"rotlab/adapters/rng"
	"rotlab/adapters/tables"
	"rotlab/adapters/verdictengine"
	"rotlab/app"
	"rotlab/domain/core"
	"rotlab/domain/params"
	"rotlab/domain/verdict"
	"rotlab/internal/config"
	"rotlab/internal/errors"
	"rotlab/internal/logging"
	"rotlab/internal/manifest"
	"rotlab/internal/report"
	"rotlab/ports"
	"rotlab/ui"
)

func main() {
	// Load environment from .env if present (ignore if missing)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	seed := flag.Int64("seed", cfg.Run.Seed, "RNG seed for the shared stream")
	workers := flag.Int("workers", cfg.Run.Workers, "replicate workers; >1 switches to parallel sub-stream mode")
	outDir := flag.String("out", cfg.Paths.OutDir, "output pack directory")
	refPath := flag.String("reference", cfg.Paths.ReferenceFile, "reference baseline file for the verdict")
	freeze := flag.Bool("freeze-reference", false, "write the measured clean summary as the new reference baseline and skip the verdict")
	serve := flag.Bool("serve", false, "serve the finished pack over HTTP after the run")
	port := flag.String("port", cfg.Server.Port, "viewer port when -serve is set")
	flag.Parse()

	if err := run(cfg, *seed, *workers, *outDir, *refPath, *freeze, *serve, *port); err != nil {
		log.Fatalf("rotlab: %v", err)
	}
}

func run(cfg *config.Config, seed int64, workers int, outDir, refPath string, freeze, serve bool, port string) error {
	logger := logging.NewDefaultLogger()
	ctx := context.Background()

	p := params.Canonical()
	p.Seed = seed
	if cfg.Run.Mode == "parallel" && workers < 2 {
		workers = 4
	}

	service, err := app.NewExperimentService(p, rng.NewSeededAdapter(), logger)
	if err != nil {
		return err
	}
	service.SetWorkers(workers)

	logger.Info("[Run] seed=%d mode=%s out=%s", p.Seed, service.Mode(), outDir)
	result, err := service.Run(ctx)
	if err != nil {
		if core.IsAcceptanceExhausted(err) {
			return errors.WithCode(errors.CodeAcceptanceExhaustion, err)
		}
		return err
	}

	var details *verdict.Details
	if freeze {
		baseline, err := verdictengine.FreezeBaseline(result.FitSummaries)
		if err != nil {
			return err
		}
		if err := verdictengine.WriteBaseline(refPath, baseline); err != nil {
			return err
		}
		logger.Info("[Run] reference baseline frozen to %s", refPath)
		// A frozen run still ships a pack; it trivially passes against itself.
		details, err = verdictengine.NewEngine(params.DefaultTolerances()).Evaluate(result.FitSummaries, baseline)
		if err != nil {
			return err
		}
	} else {
		baseline, err := verdictengine.LoadBaseline(refPath)
		if err != nil {
			return errors.WithCode(errors.CodeMissingReference,
				errors.Wrapf(err, "load reference baseline %s", refPath))
		}
		details, err = verdictengine.NewEngine(params.DefaultTolerances()).Evaluate(result.FitSummaries, baseline)
		if err != nil {
			return err
		}
	}
	logger.Info("[Run] verdict: %s", details.Verdict)

	packHash, err := writePack(outDir, result, *details)
	if err != nil {
		return err
	}
	logger.Info("[Run] pack written to %s, pack hash %s", outDir, packHash)

	if cfg.Database.URL != "" {
		dsn := postgres.DSN(cfg.Database.URL, cfg.Database.SSLMode)
		if err := archiveRun(ctx, dsn, result, *details, logger); err != nil {
			// Archival is best-effort; the pack on disk is the deliverable.
			logger.Warn("[Run] archive failed: %v", err)
		}
	}

	if serve {
		return ui.NewServer(outDir).Start("localhost:" + port)
	}
	return nil
}

// writePack writes every pack artifact: raw tables, summaries, verdict,
// reports, the run manifest, the xlsx workbook, and last the hash manifest
// covering all of it.
func writePack(outDir string, result *app.ExperimentResult, details verdict.Details) (core.PackHash, error) {
	pack := tables.NewCSVPack(outDir)
	if err := pack.WriteRawCurves(result.RawPoints); err != nil {
		return "", err
	}
	if err := pack.WriteCoherenceMetrics(result.Coherence); err != nil {
		return "", err
	}
	if err := pack.WriteFitRecords(result.FitRecords); err != nil {
		return "", err
	}
	if err := pack.WriteCurveSummaries(result.CurveSummaries); err != nil {
		return "", err
	}
	if err := pack.WriteFitSummaries(result.FitSummaries); err != nil {
		return "", err
	}
	if err := pack.WriteVerdict(details); err != nil {
		return "", err
	}

	exporter := tables.NewExcelExporter(outDir)
	if err := exporter.Export(result.FitSummaries, result.CurveSummaries); err != nil {
		return "", err
	}

	paperDir := filepath.Join(outDir, "paper_ready")
	m := report.NewRunManifest(result.Params, string(result.Mode), details.Verdict)
	if err := report.WriteRunManifest(paperDir, m); err != nil {
		return "", err
	}
	if err := report.WriteMethodsResults(paperDir, result.Params, details); err != nil {
		return "", err
	}

	// Hash last so the manifest covers everything above.
	return manifest.Write(paperDir)
}

func archiveRun(ctx context.Context, databaseURL string, result *app.ExperimentResult, details verdict.Details, logger *logging.Logger) error {
	db, err := postgres.Connect(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	archive := postgres.NewRunArchive(db)
	if err := archive.EnsureSchema(ctx); err != nil {
		return err
	}

	paramsJSON, err := json.Marshal(result.Params)
	if err != nil {
		return err
	}
	rec := ports.RunRecord{
		RunID:       core.RunID(core.NewID()),
		Fingerprint: core.Hash(result.Params.Hash()),
		Seed:        result.Params.Seed,
		ParamsJSON:  paramsJSON,
		Mode:        string(result.Mode),
		Verdict:     details.Verdict,
		CreatedAt:   core.Now(),
		Summaries:   result.FitSummaries,
	}
	if err := archive.SaveRun(ctx, rec); err != nil {
		return err
	}
	logger.Info("[Run] archived run %s", rec.RunID)
	return nil
}

