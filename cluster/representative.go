package cluster

import "gallerycurator/types"

// better reports whether a outranks b by area, byte size, width, then height
func better(a, b *types.ImageRecord) bool {
	if a.Area != b.Area {
		return a.Area > b.Area
	}
	if a.SizeBytes != b.SizeBytes {
		return a.SizeBytes > b.SizeBytes
	}
	if a.Width != b.Width {
		return a.Width > b.Width
	}
	return a.Height > b.Height
}

// PickRepresentative returns the member with the highest quality ordering.
// Only a strictly better record replaces the current best, so full ties go to
// the first member in corpus order. It returns -1 for an empty member list.
func PickRepresentative(records []types.ImageRecord, members []int) int {
	if len(members) == 0 {
		return -1
	}

	best := members[0]
	for _, m := range members[1:] {
		if better(&records[m], &records[best]) {
			best = m
		}
	}
	return best
}
