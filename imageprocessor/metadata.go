package imageprocessor

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"gallerycurator/logging"

	"github.com/barasher/go-exiftool"
)

const dateLayout = "2006-01-02"

var dateRe = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// ParseDate extracts the first YYYY-MM-DD sequence from a file name. It
// returns "" when there is none or when it is not a real calendar date.
func ParseDate(name string) string {
	match := dateRe.FindString(name)
	if match == "" {
		return ""
	}
	t, err := time.Parse(dateLayout, match)
	if err != nil || t.Year() < 1 {
		return ""
	}
	return t.Format(dateLayout)
}

// exifDateTags are tried in order
var exifDateTags = []string{"DateTimeOriginal", "CreateDate", "ModifyDate"}

// ExifDateReader reads capture dates through a long-running exiftool process
type ExifDateReader struct {
	et *exiftool.Exiftool
	mu sync.Mutex
}

// NewExifDateReader starts exiftool. It fails when the exiftool binary is
// not installed.
func NewExifDateReader() (*ExifDateReader, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("cannot start exiftool: %w", err)
	}
	return &ExifDateReader{et: et}, nil
}

// ReadDate returns the capture date of path as YYYY-MM-DD, or ""
func (r *ExifDateReader) ReadDate(path string) string {
	r.mu.Lock()
	fileInfos := r.et.ExtractMetadata(path)
	r.mu.Unlock()

	if len(fileInfos) == 0 {
		return ""
	}
	if fileInfos[0].Err != nil {
		logging.DebugLog("exiftool could not read %s: %v", path, fileInfos[0].Err)
		return ""
	}

	for _, tag := range exifDateTags {
		value, err := fileInfos[0].GetString(tag)
		if err != nil {
			continue
		}
		if date := parseExifDate(value); date != "" {
			return date
		}
	}
	return ""
}

// Close stops the exiftool process
func (r *ExifDateReader) Close() error {
	return r.et.Close()
}

// parseExifDate turns "2006:01:02 15:04:05" (and date-only variants) into YYYY-MM-DD
func parseExifDate(value string) string {
	value = strings.TrimSpace(value)
	if len(value) < len(dateLayout) {
		return ""
	}
	t, err := time.Parse("2006:01:02", value[:len(dateLayout)])
	if err != nil || t.Year() < 1 {
		return ""
	}
	return t.Format(dateLayout)
}
