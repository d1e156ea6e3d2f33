package scanner

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

type fixedDates map[string]string

func (d fixedDates) ReadDate(path string) string {
	return d[filepath.Base(path)]
}

func TestCollectCandidatesOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "A.jpg", "c.jpeg", "notes.txt", "d.gif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "a.png"), []byte("x"), 0644))

	exts := []string{".jpeg", ".jpg", ".png"}
	paths, err := CollectCandidates(dir, exts, false)
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"A.jpg", "b.PNG", "c.jpeg"}, names)

	paths, err = CollectCandidates(dir, exts, true)
	require.NoError(t, err)
	require.Len(t, paths, 4)
	// nested files sort by base name alongside the top level
	assert.Equal(t, filepath.Join(dir, "A.jpg"), paths[0])
	assert.Equal(t, filepath.Join(dir, "sub", "a.png"), paths[1])
}

func TestCollectCandidatesMissingFolder(t *testing.T) {
	_, err := CollectCandidates(filepath.Join(t.TempDir(), "nope"), []string{".png"}, false)
	assert.Error(t, err)
}

func TestScanFolderSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "beta.png"), 64, 48)
	writePNG(t, filepath.Join(dir, "2023-05-14_alpha.png"), 32, 32)
	writePNG(t, filepath.Join(dir, "gamma.png"), 40, 20)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0644))

	for _, workers := range []int{1, 4} {
		corpus, stats, err := ScanFolder(context.Background(), ScanOptions{
			FolderPath: dir,
			Extensions: []string{".png"},
			MaxWorkers: workers,
			DateReader: fixedDates{"gamma.png": "2020-01-02"},
		})
		require.NoError(t, err)

		assert.Equal(t, 4, stats.Candidates)
		assert.Equal(t, 3, stats.Decoded)
		assert.Equal(t, 1, stats.Skipped)

		require.Len(t, corpus, 3)
		assert.Equal(t, "2023-05-14_alpha.png", corpus[0].Name)
		assert.Equal(t, 0, corpus[0].Index)
		assert.Equal(t, "2023-05-14", corpus[0].Date)

		// broken.png held index 2 in candidate order
		assert.Equal(t, "beta.png", corpus[1].Name)
		assert.Equal(t, 1, corpus[1].Index)
		assert.Equal(t, 64, corpus[1].Width)
		assert.Equal(t, 48, corpus[1].Height)
		assert.Equal(t, 64*48, corpus[1].Area)
		assert.InDelta(t, 64.0/48.0, corpus[1].Aspect, 1e-9)
		assert.Empty(t, corpus[1].Date)

		assert.Equal(t, "gamma.png", corpus[2].Name)
		assert.Equal(t, 3, corpus[2].Index)
		assert.Equal(t, "2020-01-02", corpus[2].Date)
		assert.Positive(t, corpus[2].SizeBytes)
	}
}

func TestScanFolderEmpty(t *testing.T) {
	corpus, stats, err := ScanFolder(context.Background(), ScanOptions{FolderPath: t.TempDir(), MaxWorkers: 2})
	require.NoError(t, err)
	assert.Empty(t, corpus)
	assert.Zero(t, stats.Candidates)
}

func TestScanFolderCancelled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 16, 16)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ScanFolder(ctx, ScanOptions{FolderPath: dir, Extensions: []string{".png"}, MaxWorkers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectCandidatesExcludesDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets", "gallery", "photos"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.png"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "logo.png"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "gallery", "photos", "photo_001.png"), []byte("x"), 0644))

	paths, err := CollectCandidates(dir, []string{".png"}, true, filepath.Join("assets", "gallery"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "assets", "logo.png"), filepath.Join(dir, "top.png")}, paths)

	paths, err = CollectCandidates(dir, []string{".png"}, true, filepath.Join(dir, "assets"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "top.png")}, paths)
}
