// Package curator materialises a clustering: it renames the representative
// of every cluster into the gallery, removes the other members, rewrites
// references to the old names and writes the manifest and dedupe report.
package curator

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gallerycurator/logging"
	"gallerycurator/types"
)

const (
	unknown = "unknown"

	// ReportFile and ManifestFile are written into the asset directory
	ReportFile   = "dedupe_report.json"
	ManifestFile = "gallery_manifest.json"

	fallbackExtension = ".jpeg"
)

// Options controls where and how the curated set is written
type Options struct {
	Root        string   // folder the corpus was scanned from
	AssetDir    string   // slash-separated, relative to Root
	PhotoDir    string   // slash-separated, relative to Root
	Extensions  []string // extensions kept on renamed files
	Categories  []string
	RewriteGlob string // files under Root whose references are rewritten
	DryRun      bool
}

// DefaultOptions returns the gallery layout used by the site
func DefaultOptions(root string) Options {
	return Options{
		Root:        root,
		AssetDir:    "assets/gallery",
		PhotoDir:    "assets/gallery/photos",
		Extensions:  []string{".jpeg", ".jpg", ".png"},
		Categories:  DefaultCategories,
		RewriteGlob: "*.html",
	}
}

// Result is the outcome of a curation run
type Result struct {
	Report       types.Report
	Manifest     []types.ManifestEntry
	Mapping      map[string]string // old path -> new path, both relative to Root
	Rewritten    []string
	ReportPath   string // relative to Root, slash separated
	ManifestPath string
}

// abs turns a slash-separated path relative to Root into a filesystem path
func (o Options) abs(rel string) string {
	return filepath.Join(o.Root, filepath.FromSlash(rel))
}

// rel is p relative to Root in slash form; top-level files map to their name
func (o Options) rel(p string) string {
	r, err := filepath.Rel(o.Root, p)
	if err != nil || strings.HasPrefix(r, "..") {
		return filepath.Base(p)
	}
	return filepath.ToSlash(r)
}

func (o Options) keepExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range o.Extensions {
		if ext == e {
			return ext
		}
	}
	return fallbackExtension
}

// Curate walks clusters in order, numbering kept assets photo_001, photo_002
// and so on. A name already taken on disk is skipped by advancing the
// counter. Clusters must come from cluster.Build over the same corpus.
func Curate(corpus []types.ImageRecord, clusters []types.Cluster, opts Options) (*Result, error) {
	res := &Result{
		Mapping:      make(map[string]string),
		ReportPath:   path.Join(opts.AssetDir, ReportFile),
		ManifestPath: path.Join(opts.AssetDir, ManifestFile),
	}

	if !opts.DryRun {
		if err := os.MkdirAll(opts.abs(opts.PhotoDir), 0755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", opts.PhotoDir, err)
		}
	}

	report := types.Report{DuplicateGroups: []types.DuplicateGroup{}}
	manifest := make([]types.ManifestEntry, 0, len(clusters))
	// names claimed earlier in a dry run, which never reach the disk
	claimed := make(map[string]bool)

	counter := 1
	for _, c := range clusters {
		rep := &corpus[c.Representative]
		ext := opts.keepExtension(rep.Name)

		newName := fmt.Sprintf("photo_%03d%s", counter, ext)
		newRel := path.Join(opts.PhotoDir, newName)
		for fileExists(opts.abs(newRel)) || claimed[newRel] {
			counter++
			newName = fmt.Sprintf("photo_%03d%s", counter, ext)
			newRel = path.Join(opts.PhotoDir, newName)
		}
		claimed[newRel] = true

		if !opts.DryRun {
			if err := moveFile(rep.Path, opts.abs(newRel)); err != nil {
				return nil, fmt.Errorf("cannot move %s to %s: %w", rep.Path, newRel, err)
			}
		}
		report.KeptCount++
		logging.DebugLog("kept %s as %s (cluster of %d)", rep.Name, newRel, c.Size())

		members := make([]string, 0, c.Size())
		for _, m := range c.Members {
			item := &corpus[m]
			res.Mapping[opts.rel(item.Path)] = newRel
			members = append(members, item.Name)

			if m == c.Representative || item.Path == rep.Path || !fileExists(item.Path) {
				continue
			}
			if !opts.DryRun {
				if err := os.Remove(item.Path); err != nil {
					return nil, fmt.Errorf("cannot delete duplicate %s: %w", item.Path, err)
				}
			}
			report.DeletedCount++
			logging.DebugLog("removed duplicate %s of %s", item.Name, rep.Name)
		}

		manifest = append(manifest, manifestEntry(rep, newRel, counter, c.Size(), opts.Categories))

		if c.Size() > 1 {
			sort.Strings(members)
			report.DuplicateGroups = append(report.DuplicateGroups, types.DuplicateGroup{
				Representative: rep.Name,
				KeptAs:         newRel,
				ClusterSize:    c.Size(),
				Members:        members,
			})
		}

		counter++
	}

	rewritten, err := RewriteReferences(opts.Root, opts.RewriteGlob, res.Mapping, opts.DryRun)
	if err != nil {
		return nil, err
	}
	res.Rewritten = rewritten

	report.ProcessedCount = len(corpus)
	report.DuplicateGroupCount = len(report.DuplicateGroups)

	sort.SliceStable(manifest, func(i, j int) bool {
		if manifest[i].Date != manifest[j].Date {
			return manifest[i].Date < manifest[j].Date
		}
		return manifest[i].Src < manifest[j].Src
	})

	res.Report = report
	res.Manifest = manifest

	if opts.DryRun {
		return res, nil
	}
	if err := writeJSON(opts.abs(res.ReportPath), report); err != nil {
		return nil, err
	}
	if err := writeJSON(opts.abs(res.ManifestPath), manifest); err != nil {
		return nil, err
	}
	return res, nil
}

func manifestEntry(rep *types.ImageRecord, src string, counter, clusterSize int, categories []string) types.ManifestEntry {
	date := rep.Date
	if date == "" {
		date = unknown
	}
	year, month := splitDate(date)

	return types.ManifestEntry{
		Src:            src,
		Alt:            fmt.Sprintf("Campus image %03d", counter),
		Date:           date,
		Year:           year,
		Month:          month,
		Orientation:    Orientation(rep.Width, rep.Height),
		Quality:        QualityLabel(rep.Width, rep.Height),
		Width:          rep.Width,
		Height:         rep.Height,
		Category:       Category(categories, counter-1),
		ClusterSize:    clusterSize,
		Source:         rep.Name,
		AverageHash:    rep.AverageHash.String(),
		DifferenceHash: rep.DifferenceHash.String(),
		PerceptualHash: fmt.Sprintf("%016x", rep.PerceptualHash),
		MeanColor:      rep.MeanColor,
	}
}
