package imageprocessor

import (
	"image"

	"gallerycurator/types"

	"github.com/artyom/phash"
	"github.com/disintegration/imaging"
)

const (
	// HashSize is the side of the sample grid for the average and difference hashes
	HashSize = 16

	// ColorGridSize is the side of the RGB grid averaged into the mean color
	ColorGridSize = 8
)

// flatten drops the alpha channel and keeps the stored colour of every pixel,
// including fully transparent ones. Opaque images are returned as is.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	flat := imaging.Clone(img)
	for i := 3; i < len(flat.Pix); i += 4 {
		flat.Pix[i] = 0xff
	}
	return flat
}

// grayscaleSamples converts img to luma and resamples it to w x h with a
// Lanczos filter. Samples are returned in raster order in the 0-255 range.
func grayscaleSamples(img image.Image, w, h int) []float64 {
	thumb := imaging.Resize(imaging.Grayscale(flatten(img)), w, h, imaging.Lanczos)

	samples := make([]float64, 0, w*h)
	for y := 0; y < thumb.Bounds().Dy(); y++ {
		row := thumb.Pix[y*thumb.Stride:]
		for x := 0; x < thumb.Bounds().Dx(); x++ {
			samples = append(samples, float64(row[x*4]))
		}
	}
	return samples
}

// ComputeAverageHash sets bit i iff grid sample i is at least the mean of all
// samples. Uniform brightness shifts leave the hash unchanged.
func ComputeAverageHash(img image.Image) types.Hash {
	var hash types.Hash

	samples := grayscaleSamples(img, HashSize, HashSize)
	if len(samples) == 0 {
		return hash
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(len(samples))

	for i, v := range samples {
		if v >= mean {
			hash.SetBit(i)
		}
	}
	return hash
}

// ComputeDifferenceHash compares each of the 16 horizontally adjacent pairs
// in every row of a 17x16 grid; a pair sets its bit when left >= right.
func ComputeDifferenceHash(img image.Image) types.Hash {
	var hash types.Hash

	const stride = HashSize + 1
	samples := grayscaleSamples(img, stride, HashSize)
	if len(samples) != stride*HashSize {
		return hash
	}

	bit := 0
	for y := 0; y < HashSize; y++ {
		row := samples[y*stride : (y+1)*stride]
		for x := 0; x < HashSize; x++ {
			if row[x] >= row[x+1] {
				hash.SetBit(bit)
			}
			bit++
		}
	}
	return hash
}

// ComputeMeanColor averages each channel of an 8x8 resample of img, ignoring alpha
func ComputeMeanColor(img image.Image) [3]float64 {
	var mean [3]float64

	thumb := imaging.Resize(flatten(img), ColorGridSize, ColorGridSize, imaging.Lanczos)
	bounds := thumb.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return mean
	}

	for y := 0; y < bounds.Dy(); y++ {
		row := thumb.Pix[y*thumb.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			px := row[x*4 : x*4+3]
			mean[0] += float64(px[0])
			mean[1] += float64(px[1])
			mean[2] += float64(px[2])
		}
	}

	for c := range mean {
		mean[c] /= float64(total)
	}
	return mean
}

// ComputePerceptualHash returns the 64-bit DCT hash of img. It is recorded in
// the manifest and catalog but plays no part in clustering.
func ComputePerceptualHash(img image.Image) (uint64, error) {
	return phash.Get(flatten(img), func(img image.Image, w, h int) image.Image {
		return imaging.Resize(img, w, h, imaging.Lanczos)
	})
}

// AspectRatio returns width/height, or 1.0 for a zero height
func AspectRatio(width, height int) float64 {
	if height == 0 {
		return 1.0
	}
	return float64(width) / float64(height)
}
