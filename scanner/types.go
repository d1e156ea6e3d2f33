package scanner

import (
	"time"

	"gallerycurator/types"
)

// DateReader looks up the capture date of an image file as YYYY-MM-DD
type DateReader interface {
	ReadDate(path string) string
}

// ScanOptions defines the options for scanning
type ScanOptions struct {
	FolderPath   string
	Extensions   []string // candidate extensions, lowercase with dot
	Recursive    bool
	ExcludeDirs  []string // skipped by a recursive walk, e.g. the gallery output
	MaxWorkers   int
	DebugMode    bool
	ShowProgress bool
	DateReader   DateReader // optional, consulted when the name has no date
}

// ProcessImageResult holds the result of processing an image
type ProcessImageResult struct {
	Path    string
	Success bool
	Error   error
	Record  *types.ImageRecord
}

// ScanStats summarises a scan
type ScanStats struct {
	Candidates int
	Decoded    int
	Skipped    int
	Elapsed    time.Duration
}
