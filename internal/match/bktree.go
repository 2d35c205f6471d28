package match

import "similarimages/internal/models"

// bkTree is a BK-tree over fingerprints for metric-space similarity
// search. Lookup prunes by the triangle inequality, giving O(log n)
// average-case queries instead of scanning every stored fingerprint.
type bkTree struct {
	root *bkNode
}

type bkNode struct {
	fp       models.Fingerprint
	index    int
	children map[int]*bkNode // distance -> child node
}

func newBKTree() *bkTree {
	return &bkTree{}
}

// insert adds a fingerprint with its record index to the tree.
func (t *bkTree) insert(fp models.Fingerprint, index int) {
	node := &bkNode{
		fp:       fp,
		index:    index,
		children: make(map[int]*bkNode),
	}

	if t.root == nil {
		t.root = node
		return
	}

	current := t.root
	for {
		dist := fp.Distance(current.fp)
		if child, exists := current.children[dist]; exists {
			current = child
		} else {
			current.children[dist] = node
			return
		}
	}
}

// findWithinDistance returns the indices of all stored fingerprints within
// threshold of fp.
func (t *bkTree) findWithinDistance(fp models.Fingerprint, threshold int) []int {
	if t.root == nil {
		return nil
	}

	var results []int
	t.searchNode(t.root, fp, threshold, &results)
	return results
}

func (t *bkTree) searchNode(node *bkNode, fp models.Fingerprint, threshold int, results *[]int) {
	dist := fp.Distance(node.fp)

	if dist <= threshold {
		*results = append(*results, node.index)
	}

	// Triangle inequality: only children with edge distance in
	// [dist - threshold, dist + threshold] can hold matches.
	minDist := dist - threshold
	if minDist < 0 {
		minDist = 0
	}
	maxDist := dist + threshold

	for childDist, child := range node.children {
		if childDist >= minDist && childDist <= maxDist {
			t.searchNode(child, fp, threshold, results)
		}
	}
}

// size returns the number of stored fingerprints.
func (t *bkTree) size() int {
	if t.root == nil {
		return 0
	}
	return t.countNodes(t.root)
}

func (t *bkTree) countNodes(node *bkNode) int {
	count := 1
	for _, child := range node.children {
		count += t.countNodes(child)
	}
	return count
}
