package cluster

// DisjointSet is a union-find over the indices 0..n-1 backed by flat parent
// and rank slices.
type DisjointSet struct {
	parent []int
	rank   []int
}

// NewDisjointSet creates n singleton sets
func NewDisjointSet(n int) *DisjointSet {
	d := &DisjointSet{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range d.parent {
		d.parent[i] = i
	}
	return d
}

// Len returns the number of elements
func (d *DisjointSet) Len() int {
	return len(d.parent)
}

// Find returns the root of x, halving the path as it walks
func (d *DisjointSet) Find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

// Union merges the sets of a and b by rank. It reports whether the two were
// in different sets.
func (d *DisjointSet) Union(a, b int) bool {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return false
	}

	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
	return true
}

// Groups returns the sets keyed by root. Each member list is ascending and
// the groups appear in order of their smallest member.
func (d *DisjointSet) Groups() [][]int {
	byRoot := make(map[int]int)
	var groups [][]int
	for i := range d.parent {
		root := d.Find(i)
		pos, ok := byRoot[root]
		if !ok {
			pos = len(groups)
			byRoot[root] = pos
			groups = append(groups, nil)
		}
		groups[pos] = append(groups[pos], i)
	}
	return groups
}
