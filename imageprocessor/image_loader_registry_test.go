package imageprocessor

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	img   image.Image
	err   error
	calls int
}

func (s *stubLoader) CanLoad(path string) bool { return true }

func (s *stubLoader) LoadImage(path string) (image.Image, error) {
	s.calls++
	return s.img, s.err
}

func TestRegistryKnowsFormats(t *testing.T) {
	r := NewImageLoaderRegistry()
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.webp", "e.tif", "f.bmp"} {
		assert.True(t, r.CanLoadFile(name), name)
	}
	assert.False(t, r.CanLoadFile("notes.txt"))

	_, err := r.LoadImage("notes.txt")
	assert.Error(t, err)
}

func TestRegistryDecodesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.png")
	src := image.NewRGBA(image.Rect(0, 0, 12, 9))
	src.Set(3, 3, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	img, err := NewImageLoaderRegistry().LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 9, img.Bounds().Dy())
}

func TestRegistryFallback(t *testing.T) {
	want := image.NewGray(image.Rect(0, 0, 2, 2))
	primary := &stubLoader{err: errors.New("primary failed")}
	fallback := &stubLoader{img: want}

	r := NewImageLoaderRegistry()
	r.RegisterLoader("png", primary)
	r.SetFallbackLoader(fallback)

	img, err := r.LoadImage("x.png")
	require.NoError(t, err)
	assert.Same(t, want, img)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)

	fallback.err = errors.New("fallback failed")
	fallback.img = nil
	_, err = r.LoadImage("x.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary failed")
	assert.Contains(t, err.Error(), "fallback failed")

	r.SetFallbackLoader(nil)
	_, err = r.LoadImage("x.png")
	assert.EqualError(t, err, "primary failed")
}
