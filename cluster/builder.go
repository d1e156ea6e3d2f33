// Package cluster groups a corpus of image records into similarity clusters
// and picks one representative per cluster.
package cluster

import (
	"sort"
	"strings"

	"gallerycurator/logging"
	"gallerycurator/types"

	"golang.org/x/sync/errgroup"
)

// Similarity is the pairwise decision the builder runs over the corpus
type Similarity interface {
	IsSimilar(a, b *types.ImageRecord) bool
}

// pair is a matching (i, j) with i < j
type pair struct {
	i, j int
}

// Build partitions records into clusters. Every unordered pair is classified
// and matching pairs are merged in a disjoint set, so similarity is closed
// transitively. Clusters come back ordered by size descending, then by the
// lower-cased name of their first member; each carries its representative.
//
// With workers > 1 the pair loop is spread over a worker pool; the unions are
// still applied by a single goroutine, so the result does not depend on the
// worker count.
func Build(records []types.ImageRecord, sim Similarity, workers int) []types.Cluster {
	n := len(records)
	if n == 0 {
		return nil
	}

	dsu := NewDisjointSet(n)
	var merges int
	if workers <= 1 {
		merges = compareSequential(records, sim, dsu)
	} else {
		merges = compareParallel(records, sim, dsu, workers)
	}

	groups := dsu.Groups()
	logging.DebugLog("compared %d pairs, %d merges, %d clusters", n*(n-1)/2, merges, len(groups))

	clusters := make([]types.Cluster, len(groups))
	for i, members := range groups {
		clusters[i] = types.Cluster{
			Members:        members,
			Representative: PickRepresentative(records, members),
		}
	}
	SortClusters(records, clusters)
	return clusters
}

func compareSequential(records []types.ImageRecord, sim Similarity, dsu *DisjointSet) int {
	merges := 0
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			if sim.IsSimilar(&records[i], &records[j]) && dsu.Union(i, j) {
				merges++
			}
		}
	}
	return merges
}

// compareParallel classifies rows on a bounded worker pool. Each row writes
// only its own slot, then the matches are unioned in ascending (i, j) order.
func compareParallel(records []types.ImageRecord, sim Similarity, dsu *DisjointSet, workers int) int {
	rows := make([][]pair, len(records))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range records {
		g.Go(func() error {
			var matches []pair
			for j := i + 1; j < len(records); j++ {
				if sim.IsSimilar(&records[i], &records[j]) {
					matches = append(matches, pair{i, j})
				}
			}
			rows[i] = matches
			return nil
		})
	}
	// the row functions never fail
	_ = g.Wait()

	merges := 0
	for _, matches := range rows {
		for _, p := range matches {
			if dsu.Union(p.i, p.j) {
				merges++
			}
		}
	}
	return merges
}

// SortClusters orders clusters by size descending, then by the
// case-insensitive name of the first member, then by first member position.
func SortClusters(records []types.ImageRecord, clusters []types.Cluster) {
	sort.SliceStable(clusters, func(a, b int) bool {
		ca, cb := clusters[a], clusters[b]
		if ca.Size() != cb.Size() {
			return ca.Size() > cb.Size()
		}
		na := strings.ToLower(records[ca.Members[0]].Name)
		nb := strings.ToLower(records[cb.Members[0]].Name)
		if na != nb {
			return na < nb
		}
		return ca.Members[0] < cb.Members[0]
	})
}

// Summarize converts clusters to their external form using record names
func Summarize(records []types.ImageRecord, clusters []types.Cluster) []types.ClusterSummary {
	out := make([]types.ClusterSummary, len(clusters))
	for i, c := range clusters {
		names := make([]string, len(c.Members))
		for k, m := range c.Members {
			names[k] = records[m].Name
		}
		out[i] = types.ClusterSummary{
			Members:        names,
			Representative: records[c.Representative].Name,
		}
	}
	return out
}
