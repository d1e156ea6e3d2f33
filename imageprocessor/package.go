// Package imageprocessor decodes candidate images and extracts the visual
// features used for similarity clustering: a 16x16 average hash, a 17x16
// difference hash, an 8x8 mean color and an informational DCT hash.
package imageprocessor

import (
	// Register additional decoders with the image package
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)
