package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gallerycurator/cluster"
	"gallerycurator/config"
	"gallerycurator/curator"
	"gallerycurator/database"
	"gallerycurator/imageprocessor"
	"gallerycurator/logging"
	"gallerycurator/scanner"
	"gallerycurator/signalhandler"
	"gallerycurator/similarity"
	"gallerycurator/types"
	"gallerycurator/utils"
)

// summary is what curate prints on stdout
type summary struct {
	Processed       int    `json:"processed"`
	Kept            int    `json:"kept"`
	Deleted         int    `json:"deleted"`
	DuplicateGroups int    `json:"duplicate_groups"`
	Manifest        string `json:"manifest"`
	DryRun          bool   `json:"dry_run,omitempty"`
	RunID           int64  `json:"run_id,omitempty"`
}

// comparison is what compare prints on stdout
type comparison struct {
	Image     string               `json:"image"`
	Other     string               `json:"other"`
	Distances similarity.Distances `json:"distances"`
	Similar   bool                 `json:"similar"`
	Tier      int                  `json:"tier,omitempty"`
}

func main() {
	args := utils.ParseArguments(os.Args[1:])
	if _, ok := args["command"]; !ok {
		utils.PrintUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(args)
	if err != nil {
		fmt.Printf("Error: %v\n\n", err)
		utils.PrintUsage()
		os.Exit(1)
	}

	if err := logging.SetupLogger(cfg.LogFile, cfg.Debug); err != nil {
		fmt.Printf("Warning: Failed to setup logging: %v\n", err)
	}
	defer logging.CloseLogger()

	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	ctx, stop := signalhandler.SetupHandler()
	defer stop()

	switch cfg.Command {
	case "curate":
		err = handleCurateCommand(ctx, cfg)
	case "report":
		err = handleReportCommand(ctx, cfg)
	case "compare":
		err = handleCompareCommand(cfg)
	}
	if err != nil {
		logging.LogError("%s failed: %v", cfg.Command, err)
		logging.CloseLogger()
		log.Fatalf("Error: %v", err)
	}
}

// scanAndCluster builds the corpus under cfg.Root and groups it
func scanAndCluster(ctx context.Context, cfg config.Config) ([]types.ImageRecord, []types.Cluster, error) {
	opts := scanner.ScanOptions{
		FolderPath:   cfg.Root,
		Extensions:   cfg.Extensions,
		Recursive:    cfg.Recursive,
		ExcludeDirs:  []string{filepath.FromSlash(cfg.OutputDir)},
		MaxWorkers:   cfg.Workers,
		DebugMode:    cfg.Debug,
		ShowProgress: cfg.Debug,
	}

	if cfg.UseExif {
		reader, err := imageprocessor.NewExifDateReader()
		if err != nil {
			logging.LogWarning("exiftool unavailable, dates come from file names only: %v", err)
		} else {
			defer reader.Close()
			opts.DateReader = reader
		}
	}

	corpus, stats, err := scanner.ScanFolder(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("error scanning folder: %w", err)
	}
	logging.LogInfo("decoded %d of %d candidates in %v", stats.Decoded, stats.Candidates, stats.Elapsed.Round(time.Millisecond))
	if stats.Skipped > 0 {
		logging.LogWarning("%d candidates could not be decoded and were left in place", stats.Skipped)
	}

	classifier := similarity.NewClassifier(cfg.Thresholds)
	clusters := cluster.Build(corpus, classifier, cfg.Workers)
	return corpus, clusters, nil
}

func handleCurateCommand(ctx context.Context, cfg config.Config) error {
	startedAt := time.Now()

	corpus, clusters, err := scanAndCluster(ctx, cfg)
	if err != nil {
		return err
	}
	if len(corpus) == 0 {
		fmt.Println("No root-level images found for processing.")
		return nil
	}

	opts := curator.DefaultOptions(cfg.Root)
	opts.AssetDir = cfg.OutputDir
	opts.PhotoDir = cfg.PhotoDir()
	opts.Extensions = cfg.Extensions
	opts.DryRun = cfg.DryRun

	res, err := curator.Curate(corpus, clusters, opts)
	if err != nil {
		return fmt.Errorf("error curating %s: %w", cfg.Root, err)
	}
	logging.LogInfo("kept %d, deleted %d, rewrote %d files", res.Report.KeptCount, res.Report.DeletedCount, len(res.Rewritten))

	out := summary{
		Processed:       res.Report.ProcessedCount,
		Kept:            res.Report.KeptCount,
		Deleted:         res.Report.DeletedCount,
		DuplicateGroups: res.Report.DuplicateGroupCount,
		Manifest:        res.ManifestPath,
		DryRun:          cfg.DryRun,
	}

	if cfg.Catalog != "" && !cfg.DryRun {
		out.RunID, err = recordRun(ctx, cfg, startedAt, res)
		if err != nil {
			return err
		}
	}

	return printJSON(out)
}

func recordRun(ctx context.Context, cfg config.Config, startedAt time.Time, res *curator.Result) (int64, error) {
	catalog, err := database.Open(ctx, cfg.Catalog)
	if err != nil {
		return 0, fmt.Errorf("error opening catalog: %w", err)
	}
	defer catalog.Close()

	id, err := catalog.RecordRun(ctx, types.RunRecord{
		StartedAt: startedAt.Format(time.RFC3339),
		Root:      cfg.Root,
		Report:    res.Report,
		Manifest:  res.Manifest,
	})
	if err != nil {
		return 0, fmt.Errorf("error recording run: %w", err)
	}
	logging.DebugLog("recorded run %d in catalog", id)
	return id, nil
}

func handleReportCommand(ctx context.Context, cfg config.Config) error {
	corpus, clusters, err := scanAndCluster(ctx, cfg)
	if err != nil {
		return err
	}
	if len(corpus) == 0 {
		fmt.Println("No root-level images found for processing.")
		return nil
	}
	return printJSON(cluster.Summarize(corpus, clusters))
}

func handleCompareCommand(cfg config.Config) error {
	registry := imageprocessor.NewImageLoaderRegistry()

	load := func(index int, path string) (types.ImageRecord, error) {
		info, err := os.Stat(path)
		if err != nil {
			return types.ImageRecord{}, fmt.Errorf("cannot access %s: %w", path, err)
		}
		img, err := registry.LoadImage(path)
		if err != nil {
			return types.ImageRecord{}, err
		}
		return imageprocessor.BuildRecord(index, path, info.Size(), img), nil
	}

	a, err := load(0, cfg.Image)
	if err != nil {
		return err
	}
	b, err := load(1, cfg.Other)
	if err != nil {
		return err
	}

	classifier := similarity.NewClassifier(cfg.Thresholds)
	tier, ok := classifier.Match(&a, &b)
	return printJSON(comparison{
		Image:     a.Path,
		Other:     b.Path,
		Distances: similarity.Measure(&a, &b),
		Similar:   ok,
		Tier:      tier,
	})
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
