// Package quality decides which of two near-duplicate images is "better".
// Byte size and pixel count are compared independently; "best" only exists
// when both orderings agree. Disagreement is a conflict carried as data,
// never silently resolved.
package quality

import (
	"fmt"

	"similarimages/internal/models"
)

// Ordering is the result of comparing one metric across two records.
type Ordering int

const (
	// ALarger means the first record wins the metric.
	ALarger Ordering = iota
	// BLarger means the second record wins the metric.
	BLarger
	// Equal means the metric ties.
	Equal
)

// CompareBytes orders two records by file size.
func CompareBytes(a, b *models.ImageRecord) Ordering {
	switch {
	case a.ByteSize > b.ByteSize:
		return ALarger
	case a.ByteSize < b.ByteSize:
		return BLarger
	default:
		return Equal
	}
}

// ComparePixels orders two records by pixel count. Unknown dimensions
// (pixel count 0) simply compare as smallest.
func ComparePixels(a, b *models.ImageRecord) Ordering {
	switch {
	case a.PixelCount > b.PixelCount:
		return ALarger
	case a.PixelCount < b.PixelCount:
		return BLarger
	default:
		return Equal
	}
}

// CompareBest combines both metrics. ok is false when the orderings
// disagree and neither record dominates.
func CompareBest(a, b *models.ImageRecord) (Ordering, bool) {
	bytes := CompareBytes(a, b)
	pixels := ComparePixels(a, b)

	switch {
	case bytes == pixels:
		return bytes, true
	case bytes == Equal:
		return pixels, true
	case pixels == Equal:
		return bytes, true
	default:
		return Equal, false
	}
}

// maxBytesIndices returns the member indices sharing the maximum byte size.
func maxBytesIndices(members []*models.ImageRecord) map[int]bool {
	indices := make(map[int]bool)
	var max int64 = -1
	for i, m := range members {
		switch {
		case m.ByteSize > max:
			max = m.ByteSize
			indices = map[int]bool{i: true}
		case m.ByteSize == max:
			indices[i] = true
		}
	}
	return indices
}

// maxPixelsIndices returns the member indices sharing the maximum pixel count.
func maxPixelsIndices(members []*models.ImageRecord) map[int]bool {
	indices := make(map[int]bool)
	max := -1
	for i, m := range members {
		switch {
		case m.PixelCount > max:
			max = m.PixelCount
			indices = map[int]bool{i: true}
		case m.PixelCount == max:
			indices[i] = true
		}
	}
	return indices
}

func firstIndex(set map[int]bool, n int) int {
	for i := 0; i < n; i++ {
		if set[i] {
			return i
		}
	}
	return -1
}

// MostBytesIndex returns the first-seen member with the maximum byte size.
func MostBytesIndex(members []*models.ImageRecord) int {
	return firstIndex(maxBytesIndices(members), len(members))
}

// MostPixelsIndex returns the first-seen member with the maximum pixel count.
func MostPixelsIndex(members []*models.ImageRecord) int {
	return firstIndex(maxPixelsIndices(members), len(members))
}

// BestIndex returns the first-seen member that simultaneously has the
// maximum byte size and the maximum pixel count. ok is false when no
// member dominates both metrics.
func BestIndex(members []*models.ImageRecord) (int, bool) {
	bytes := maxBytesIndices(members)
	pixels := maxPixelsIndices(members)

	best := make(map[int]bool)
	for i := range bytes {
		if pixels[i] {
			best[i] = true
		}
	}
	if len(best) == 0 {
		return -1, false
	}
	return firstIndex(best, len(members)), true
}

// Obvious reports whether one member dominates the cluster under both
// metrics at once.
func Obvious(members []*models.ImageRecord) bool {
	_, ok := BestIndex(members)
	return ok
}

// Conflict names the disagreeing pair when no member dominates: the
// first-seen byte-size winner against the first-seen pixel-count winner.
type Conflict struct {
	ByBytes  *models.ImageRecord
	ByPixels *models.ImageRecord
}

func (c *Conflict) String() string {
	return fmt.Sprintf("%s (%d bytes, %d px) vs %s (%d bytes, %d px)",
		c.ByBytes.Path, c.ByBytes.ByteSize, c.ByBytes.PixelCount,
		c.ByPixels.Path, c.ByPixels.ByteSize, c.ByPixels.PixelCount)
}

// FindConflict returns the conflicting pair, or nil when the cluster is
// obvious.
func FindConflict(members []*models.ImageRecord) *Conflict {
	if Obvious(members) {
		return nil
	}
	return &Conflict{
		ByBytes:  members[MostBytesIndex(members)],
		ByPixels: members[MostPixelsIndex(members)],
	}
}

// Evaluation labels a member's standing within its cluster.
type Evaluation string

const (
	EvalBest       Evaluation = "best"
	EvalMostBytes  Evaluation = "most-bytes"
	EvalMostPixels Evaluation = "most-pixels"
	EvalDelete     Evaluation = "delete"
)

// Evaluate labels every member: "best" for the dominating member, or when
// none exists the byte and pixel winners individually, and "delete" for
// the rest.
func Evaluate(members []*models.ImageRecord) []Evaluation {
	labels := make([]Evaluation, len(members))
	for i := range labels {
		labels[i] = EvalDelete
	}

	if best, ok := BestIndex(members); ok {
		labels[best] = EvalBest
		return labels
	}

	labels[MostBytesIndex(members)] = EvalMostBytes
	labels[MostPixelsIndex(members)] = EvalMostPixels
	return labels
}
