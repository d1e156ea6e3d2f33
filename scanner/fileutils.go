package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsCandidate checks if path has one of the candidate extensions
func IsCandidate(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// CollectCandidates lists the regular files under folder with a candidate
// extension, sorted by lower-cased file name. Only the top level is read
// unless recursive is set; the relative path breaks name ties. Directories in
// exclude, absolute or relative to folder, are not descended into.
func CollectCandidates(folder string, extensions []string, recursive bool, exclude ...string) ([]string, error) {
	var paths []string

	skip := make(map[string]bool, len(exclude))
	for _, dir := range exclude {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(folder, dir)
		}
		skip[filepath.Clean(dir)] = true
	}

	if !recursive {
		entries, err := os.ReadDir(folder)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || !IsCandidate(e.Name(), extensions) {
				continue
			}
			paths = append(paths, filepath.Join(folder, e.Name()))
		}
	} else {
		err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// unreadable subtrees are skipped
				if d != nil && d.IsDir() && path != folder {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() && path != folder && skip[filepath.Clean(path)] {
				return filepath.SkipDir
			}
			if d.Type().IsRegular() && IsCandidate(path, extensions) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(paths, func(i, j int) bool {
		ni := strings.ToLower(filepath.Base(paths[i]))
		nj := strings.ToLower(filepath.Base(paths[j]))
		if ni != nj {
			return ni < nj
		}
		return paths[i] < paths[j]
	})
	return paths, nil
}
