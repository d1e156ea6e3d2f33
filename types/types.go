package types

// ImageRecord holds the decoded dimensions and visual features of one
// candidate image. Records are built once during ingestion and never mutated.
type ImageRecord struct {
	Index          int        `json:"index"`
	Path           string     `json:"path"`
	Name           string     `json:"name"`
	Format         string     `json:"format"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Area           int        `json:"area"`
	SizeBytes      int64      `json:"size_bytes"`
	AverageHash    Hash       `json:"-"`
	DifferenceHash Hash       `json:"-"`
	PerceptualHash uint64     `json:"-"`
	MeanColor      [3]float64 `json:"mean_color"`
	Aspect         float64    `json:"aspect"`
	Date           string     `json:"date,omitempty"`
}

// Cluster is a group of corpus positions that reduce to the same root.
// Members are ascending; Representative is one of them.
type Cluster struct {
	Members        []int
	Representative int
}

// Size returns the number of members in the cluster
func (c Cluster) Size() int {
	return len(c.Members)
}

// ClusterSummary is the external form of a cluster: original file names of
// the members in corpus order plus the chosen representative.
type ClusterSummary struct {
	Members        []string `json:"members"`
	Representative string   `json:"representative"`
}

// ManifestEntry describes one kept asset in the gallery manifest
type ManifestEntry struct {
	Src            string `json:"src"`
	Alt            string `json:"alt"`
	Date           string `json:"date"`
	Year           string `json:"year"`
	Month          string `json:"month"`
	Orientation    string `json:"orientation"`
	Quality        string `json:"quality"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Category       string `json:"category"`
	ClusterSize    int    `json:"cluster_size"`
	Source         string `json:"source"`
	AverageHash    string `json:"average_hash"`
	DifferenceHash string `json:"difference_hash"`
	PerceptualHash string `json:"perceptual_hash"`

	// MeanColor is carried to the catalog only
	MeanColor [3]float64 `json:"-"`
}

// DuplicateGroup records a cluster of more than one image that was merged
type DuplicateGroup struct {
	Representative string   `json:"representative"`
	KeptAs         string   `json:"kept_as"`
	ClusterSize    int      `json:"cluster_size"`
	Members        []string `json:"members"`
}

// Report summarises what a curation run merged
type Report struct {
	ProcessedCount      int              `json:"processed_count"`
	KeptCount           int              `json:"kept_count"`
	DeletedCount        int              `json:"deleted_count"`
	DuplicateGroupCount int              `json:"duplicate_group_count"`
	DuplicateGroups     []DuplicateGroup `json:"duplicate_groups"`
}

// RunRecord is what the catalog stores for one curation run
type RunRecord struct {
	StartedAt string
	Root      string
	Report    Report
	Manifest  []ManifestEntry
}
