package curator

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallerycurator/cluster"
	"gallerycurator/scanner"
	"gallerycurator/similarity"
)

// writeImage saves a gradient; images with different aspect ratios never match
func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 90, A: 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, imaging.Save(img, path))
}

func curateTree(t *testing.T, root string) *Result {
	t.Helper()
	opts := DefaultOptions(root)

	corpus, _, err := scanner.ScanFolder(context.Background(), scanner.ScanOptions{
		FolderPath:  root,
		Extensions:  opts.Extensions,
		Recursive:   true,
		MaxWorkers:  2,
		ExcludeDirs: []string{filepath.FromSlash(opts.AssetDir)},
	})
	require.NoError(t, err)

	clusters := cluster.Build(corpus, similarity.NewClassifier(similarity.DefaultThresholds()), 2)
	res, err := Curate(corpus, clusters, opts)
	require.NoError(t, err)
	return res
}

func TestCurateRecursiveTwice(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "b.png"), 64, 64)
	writeImage(t, filepath.Join(root, "sub", "b.png"), 96, 64)
	writeFile(t, filepath.Join(root, "index.html"), `<img src="b.png"><img src="sub/b.png">`)

	first := curateTree(t, root)
	assert.Equal(t, 2, first.Report.KeptCount)
	assert.Equal(t, map[string]string{
		"b.png":     "assets/gallery/photos/photo_001.png",
		"sub/b.png": "assets/gallery/photos/photo_002.png",
	}, first.Mapping)

	html, err := os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)
	want := `<img src="assets/gallery/photos/photo_001.png"><img src="assets/gallery/photos/photo_002.png">`
	assert.Equal(t, want, string(html))

	writeImage(t, filepath.Join(root, "new.png"), 128, 64)
	writeFile(t, filepath.Join(root, "index.html"), want+`<img src="new.png">`)

	second := curateTree(t, root)
	assert.Equal(t, 1, second.Report.ProcessedCount, "earlier gallery output is not rescanned")
	assert.Equal(t, map[string]string{"new.png": "assets/gallery/photos/photo_003.png"}, second.Mapping)

	html, err = os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, want+`<img src="assets/gallery/photos/photo_003.png">`, string(html))

	photos := filepath.Join(root, "assets", "gallery", "photos")
	for _, name := range []string{"photo_001.png", "photo_002.png", "photo_003.png"} {
		assert.FileExists(t, filepath.Join(photos, name))
	}
}
