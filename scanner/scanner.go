// Package scanner turns a folder of candidate images into an ordered corpus
// of feature records.
package scanner

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"gallerycurator/imageprocessor"
	"gallerycurator/logging"
	"gallerycurator/types"

	"golang.org/x/sync/errgroup"
)

// ScanFolder decodes every candidate in options.FolderPath and extracts its
// features. Files that cannot be decoded are logged and left out. The corpus
// keeps the case-insensitive name order of the candidates, and each record
// keeps its candidate position as Index.
func ScanFolder(ctx context.Context, options ScanOptions) ([]types.ImageRecord, ScanStats, error) {
	var stats ScanStats
	startTime := time.Now()

	extensions := options.Extensions
	if len(extensions) == 0 {
		extensions = imageprocessor.DefaultCandidateExtensions
	}

	paths, err := CollectCandidates(options.FolderPath, extensions, options.Recursive, options.ExcludeDirs...)
	if err != nil {
		return nil, stats, fmt.Errorf("cannot list %s: %w", options.FolderPath, err)
	}
	stats.Candidates = len(paths)

	if options.DebugMode {
		logging.DebugLog("Found %d candidate images in %s", len(paths), options.FolderPath)
	}

	workers := options.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	out := io.Discard
	if options.ShowProgress {
		out = os.Stderr
	}
	resultsChan := make(chan ProcessImageResult, 100)
	tracker := NewProgressTracker(len(paths), resultsChan, out)

	registry := imageprocessor.NewImageLoaderRegistry()
	slots := make([]*types.ImageRecord, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := processImage(registry, i, path, options.DateReader)
			slots[i] = result.Record
			resultsChan <- result
			return nil
		})
	}
	waitErr := g.Wait()
	close(resultsChan)
	tracker.Stop()
	if options.ShowProgress {
		fmt.Fprintln(out)
	}

	if waitErr != nil {
		return nil, stats, waitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	corpus := make([]types.ImageRecord, 0, len(paths))
	for _, rec := range slots {
		if rec != nil {
			corpus = append(corpus, *rec)
		}
	}

	stats.Decoded = len(corpus)
	stats.Skipped = stats.Candidates - stats.Decoded
	stats.Elapsed = time.Since(startTime)

	if options.DebugMode {
		processed, failed := tracker.Counts()
		logging.DebugLog("Scan completed in %v. Processed: %d, Errors: %d", stats.Elapsed, processed, failed)
	}
	return corpus, stats, nil
}

// processImage decodes one file and builds its record. Decoder panics on
// corrupt input are turned into a failed result.
func processImage(registry *imageprocessor.ImageLoaderRegistry, index int, path string, dates DateReader) (result ProcessImageResult) {
	result.Path = path

	defer func() {
		if r := recover(); r != nil {
			logging.LogError("Panic during image loading: %v, file: %s\nStack trace: %s", r, path, string(debug.Stack()))
			result = ProcessImageResult{
				Path:  path,
				Error: fmt.Errorf("panic during image loading: %v", r),
			}
		}
	}()

	fileInfo, err := os.Stat(path)
	if err != nil {
		result.Error = fmt.Errorf("cannot stat file %s: %w", path, err)
		return result
	}

	img, err := registry.LoadImage(path)
	if err != nil {
		result.Error = err
		return result
	}

	record := imageprocessor.BuildRecord(index, path, fileInfo.Size(), img)
	if record.Date == "" && dates != nil {
		record.Date = dates.ReadDate(path)
	}

	result.Record = &record
	result.Success = true
	return result
}
