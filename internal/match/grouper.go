// Package match partitions image records into duplicate clusters. Two
// records are joined when their fingerprint distance is within the
// threshold; clusters are the connected components, so chains of
// re-encodes group together even when the endpoints differ by more than
// the threshold. That chaining is deliberate and must not be tightened
// to an all-pairs rule.
package match

import "similarimages/internal/models"

// DefaultThreshold is the Hamming distance bound for the 64-bit average
// hash. 0 reproduces exact-hash grouping.
const DefaultThreshold = 10

// Grouper partitions records into clusters of similar images.
type Grouper struct {
	threshold int
}

// NewGrouper creates a Grouper. Negative thresholds fall back to the
// default.
func NewGrouper(threshold int) *Grouper {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Grouper{threshold: threshold}
}

// Threshold returns the grouping threshold.
func (g *Grouper) Threshold() int {
	return g.threshold
}

// Clusters partitions records into clusters: every record lands in exactly
// one cluster, singletons included. Clusters are ordered by their
// first-seen member and members keep first-seen order, so the result is a
// pure function of the input sequence.
func (g *Grouper) Clusters(records []*models.ImageRecord) []*models.Cluster {
	n := len(records)
	if n == 0 {
		return nil
	}

	uf := newUnionFind(n)

	// BK-tree pruning replaces the O(n²) all-pairs scan; the union result
	// is identical because every within-threshold pair is still found.
	tree := newBKTree()
	for i, rec := range records {
		for _, j := range tree.findWithinDistance(rec.Fingerprint, g.threshold) {
			uf.union(i, j)
		}
		tree.insert(rec.Fingerprint, i)
	}

	// Collect components in first-seen order of their earliest member.
	clusterOf := make(map[int]*models.Cluster)
	var clusters []*models.Cluster
	for i, rec := range records {
		root := uf.find(i)
		c, ok := clusterOf[root]
		if !ok {
			c = &models.Cluster{}
			clusterOf[root] = c
			clusters = append(clusters, c)
		}
		c.Members = append(c.Members, rec)
	}

	return clusters
}

// Duplicates filters a partition down to the clusters with two or more
// members and assigns their user-facing IDs, 1-based in first-seen order.
func Duplicates(clusters []*models.Cluster) []*models.Cluster {
	var dups []*models.Cluster
	for _, c := range clusters {
		if len(c.Members) < 2 {
			continue
		}
		c.ID = len(dups) + 1
		dups = append(dups, c)
	}
	return dups
}

// unionFind is a disjoint-set structure over record indices.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	rank := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: rank}
}

func (uf *unionFind) find(x int) int {
	if uf.parent[x] != x {
		uf.parent[x] = uf.find(uf.parent[x]) // path compression
	}
	return uf.parent[x]
}

func (uf *unionFind) union(x, y int) {
	px, py := uf.find(x), uf.find(y)
	if px == py {
		return
	}
	// union by rank
	if uf.rank[px] < uf.rank[py] {
		px, py = py, px
	}
	uf.parent[py] = px
	if uf.rank[px] == uf.rank[py] {
		uf.rank[px]++
	}
}
