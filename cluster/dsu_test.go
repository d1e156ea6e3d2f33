package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisjointSetUnionFind(t *testing.T) {
	d := NewDisjointSet(6)
	assert.Equal(t, 6, d.Len())

	assert.True(t, d.Union(0, 1))
	assert.True(t, d.Union(1, 2))
	assert.False(t, d.Union(0, 2), "already merged")
	assert.True(t, d.Union(4, 5))

	assert.Equal(t, d.Find(0), d.Find(2))
	assert.Equal(t, d.Find(4), d.Find(5))
	assert.NotEqual(t, d.Find(0), d.Find(3))
	assert.NotEqual(t, d.Find(0), d.Find(4))
}

func TestDisjointSetGroupsOrdered(t *testing.T) {
	d := NewDisjointSet(5)
	d.Union(4, 1)
	d.Union(3, 0)

	assert.Equal(t, [][]int{{0, 3}, {1, 4}, {2}}, d.Groups())
}

func TestDisjointSetLongChain(t *testing.T) {
	const n = 1000
	d := NewDisjointSet(n)
	for i := 1; i < n; i++ {
		d.Union(i-1, i)
	}
	root := d.Find(0)
	for i := 0; i < n; i++ {
		assert.Equal(t, root, d.Find(i))
	}
	assert.Len(t, d.Groups(), 1)
}
