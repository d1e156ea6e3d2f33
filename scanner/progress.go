package scanner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gallerycurator/logging"
)

// ProgressTracker tracks progress of the scan operation
type ProgressTracker struct {
	processed  int
	errors     int
	totalFiles int
	ticker     *time.Ticker
	done       chan struct{}
	drained    chan struct{}
	mu         sync.Mutex
	out        io.Writer
}

// NewProgressTracker starts consuming results. Progress lines go to out
// every 500ms; pass io.Discard to keep quiet.
func NewProgressTracker(totalFiles int, resultsChan <-chan ProcessImageResult, out io.Writer) *ProgressTracker {
	tracker := &ProgressTracker{
		totalFiles: totalFiles,
		ticker:     time.NewTicker(500 * time.Millisecond),
		done:       make(chan struct{}),
		drained:    make(chan struct{}),
		out:        out,
	}

	go tracker.displayProgress()
	go tracker.processResults(resultsChan)

	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Fprintf(p.out, "\rProgress: %d/%d (Errors: %d)", p.processed, p.totalFiles, p.errors)
			} else {
				fmt.Fprintf(p.out, "\rProgress: %d/%d", p.processed, p.totalFiles)
			}
			p.mu.Unlock()
		}
	}
}

// processResults updates the tracker state based on processing results
func (p *ProgressTracker) processResults(resultsChan <-chan ProcessImageResult) {
	defer close(p.drained)

	for result := range resultsChan {
		p.mu.Lock()
		p.processed++
		if !result.Success {
			p.errors++
		}
		p.mu.Unlock()

		errMsg := ""
		if result.Error != nil {
			errMsg = result.Error.Error()
		}
		logging.LogImageProcessed(result.Path, result.Success, errMsg)
	}
}

// Stop waits for the closed results channel to drain and ends the display
func (p *ProgressTracker) Stop() {
	<-p.drained
	p.ticker.Stop()
	close(p.done)
}

// Counts returns the processed and failed totals
func (p *ProgressTracker) Counts() (processed, errors int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.errors
}
