package imageprocessor

import (
	"image"
	"path/filepath"

	"gallerycurator/logging"
	"gallerycurator/types"
)

// Features holds everything extracted from the pixels of one image
type Features struct {
	Width          int
	Height         int
	AverageHash    types.Hash
	DifferenceHash types.Hash
	PerceptualHash uint64
	MeanColor      [3]float64
	Aspect         float64
}

// ExtractFeatures computes the feature set of a decoded image. It performs no
// I/O and has no failure mode for a well-formed image.
func ExtractFeatures(img image.Image) Features {
	bounds := img.Bounds()
	f := Features{
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		AverageHash:    ComputeAverageHash(img),
		DifferenceHash: ComputeDifferenceHash(img),
		MeanColor:      ComputeMeanColor(img),
	}
	f.Aspect = AspectRatio(f.Width, f.Height)

	// phash rejects images it cannot resize; the record stays usable without it
	if p, err := ComputePerceptualHash(img); err == nil {
		f.PerceptualHash = p
	} else {
		logging.DebugLog("perceptual hash unavailable: %v", err)
	}
	return f
}

// BuildRecord assembles the immutable record for the image decoded from path
func BuildRecord(index int, path string, sizeBytes int64, img image.Image) types.ImageRecord {
	f := ExtractFeatures(img)
	return types.ImageRecord{
		Index:          index,
		Path:           path,
		Name:           filepath.Base(path),
		Format:         string(GetFileFormat(path)),
		Width:          f.Width,
		Height:         f.Height,
		Area:           f.Width * f.Height,
		SizeBytes:      sizeBytes,
		AverageHash:    f.AverageHash,
		DifferenceHash: f.DifferenceHash,
		PerceptualHash: f.PerceptualHash,
		MeanColor:      f.MeanColor,
		Aspect:         f.Aspect,
		Date:           ParseDate(filepath.Base(path)),
	}
}
