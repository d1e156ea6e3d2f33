package types

import (
	"fmt"
	"math/bits"
)

// HashBits is the width of the perceptual hashes (a 16x16 grid).
const HashBits = 256

// Hash is a fixed-width perceptual hash. Bit 0 of the sample grid is the most
// significant bit of word 0, so the packing is MSB first in raster order.
type Hash [HashBits / 64]uint64

// SetBit sets grid bit i.
func (h *Hash) SetBit(i int) {
	h[i/64] |= 1 << (63 - uint(i%64))
}

// Bit reports whether grid bit i is set.
func (h Hash) Bit(i int) bool {
	return h[i/64]&(1<<(63-uint(i%64))) != 0
}

// Hamming returns the number of differing bits between two hashes.
func (h Hash) Hamming(other Hash) int {
	dist := 0
	for i := range h {
		dist += bits.OnesCount64(h[i] ^ other[i])
	}
	return dist
}

// String renders the hash as 64 lowercase hex digits.
func (h Hash) String() string {
	return fmt.Sprintf("%016x%016x%016x%016x", h[0], h[1], h[2], h[3])
}
