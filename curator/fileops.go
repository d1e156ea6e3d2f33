package curator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
)

// fileExists checks if a path exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// moveFile renames src to dst, copying across filesystems when needed
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// writeJSON writes v as two-space indented JSON
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// newReferenceReplacer replaces every old name with its new path in a single
// pass. Longer names go first so a name that is a suffix of another (a.jpg in
// banana.jpg) cannot steal the match.
func newReferenceReplacer(mapping map[string]string) *strings.Replacer {
	olds := make([]string, 0, len(mapping))
	for old := range mapping {
		olds = append(olds, old)
	}
	sort.Slice(olds, func(i, j int) bool {
		if len(olds[i]) != len(olds[j]) {
			return len(olds[i]) > len(olds[j])
		}
		return olds[i] < olds[j]
	})

	pairs := make([]string, 0, 2*len(olds))
	for _, old := range olds {
		pairs = append(pairs, old, mapping[old])
	}
	return strings.NewReplacer(pairs...)
}

// RewriteReferences replaces old file names with their new relative paths in
// every file under root matching glob. It returns the rewritten file paths.
func RewriteReferences(root, glob string, mapping map[string]string, dryRun bool) ([]string, error) {
	if glob == "" || len(mapping) == 0 {
		return nil, nil
	}

	matches, err := filepath.Glob(filepath.Join(root, glob))
	if err != nil {
		return nil, fmt.Errorf("bad rewrite pattern %q: %w", glob, err)
	}
	sort.Strings(matches)

	replacer := newReferenceReplacer(mapping)
	var rewritten []string
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return rewritten, fmt.Errorf("cannot read %s: %w", path, err)
		}
		updated := replacer.Replace(string(content))
		if updated == string(content) {
			continue
		}

		if !dryRun {
			if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
				return rewritten, fmt.Errorf("cannot write %s: %w", path, err)
			}
		}
		rewritten = append(rewritten, path)
	}
	return rewritten, nil
}
