package curator

// DefaultCategories are assigned round-robin to kept assets
var DefaultCategories = []string{"academic", "cultural", "sports", "celebrations", "infrastructure"}

// Orientation labels an image square, landscape or portrait
func Orientation(width, height int) string {
	if width == height {
		return "square"
	}
	if width > height {
		return "landscape"
	}
	return "portrait"
}

// QualityLabel grades an image by its longest side
func QualityLabel(width, height int) string {
	longest := max(width, height)
	switch {
	case longest >= 1900:
		return "ultra"
	case longest >= 1400:
		return "high"
	case longest >= 1000:
		return "medium"
	default:
		return "standard"
	}
}

// Category picks the category for the asset at position
func Category(categories []string, position int) string {
	if len(categories) == 0 {
		return ""
	}
	return categories[position%len(categories)]
}

// splitDate returns year and month of a YYYY-MM-DD date, or "unknown" for both
func splitDate(date string) (string, string) {
	if date == "" || date == unknown || len(date) < 7 {
		return unknown, unknown
	}
	return date[:4], date[5:7]
}
