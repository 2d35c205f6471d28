package models

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"
	"time"
)

// FingerprintBytes is the width of a perceptual fingerprint. Fingerprints
// are 64-bit average hashes, stored as raw bytes so the store and grouper
// can treat them as opaque bit vectors.
const FingerprintBytes = 8

// ErrInvalidFingerprint reports a fingerprint of the wrong width reaching
// the store or the cache. This indicates an integration bug, not bad input.
var ErrInvalidFingerprint = errors.New("invalid fingerprint width")

// Fingerprint is a fixed-width perceptual descriptor comparable via
// Hamming distance.
type Fingerprint []byte

// FingerprintFromHash converts a 64-bit perceptual hash into a Fingerprint.
func FingerprintFromHash(h uint64) Fingerprint {
	f := make(Fingerprint, FingerprintBytes)
	for i := 0; i < FingerprintBytes; i++ {
		f[i] = byte(h >> (8 * (FingerprintBytes - 1 - i)))
	}
	return f
}

// ParseFingerprint decodes the hex form produced by String.
func ParseFingerprint(s string) (Fingerprint, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFingerprint, err)
	}
	if len(b) != FingerprintBytes {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidFingerprint, len(b), FingerprintBytes)
	}
	return Fingerprint(b), nil
}

// Valid reports whether the fingerprint has the expected width.
func (f Fingerprint) Valid() bool {
	return len(f) == FingerprintBytes
}

// String returns the hex form used for cache persistence.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f)
}

// Distance returns the Hamming distance between two fingerprints.
// Both fingerprints must be valid.
func (f Fingerprint) Distance(other Fingerprint) int {
	d := 0
	for i := range f {
		d += bits.OnesCount8(f[i] ^ other[i])
	}
	return d
}

// ImageRecord holds the comparable metrics for one input file. Records are
// built once per run by the analyzer (or the cache) and immutable after.
type ImageRecord struct {
	Path        string
	Fingerprint Fingerprint
	Digest      string // SHA-1 of file contents, the cache key
	ByteSize    int64
	PixelCount  int // width*height, 0 when dimensions are unknown
	Width       int
	Height      int
	Format      string
	ModTime     time.Time
	HasExif     bool
}

// Cluster is a set of records mutually connected under the similarity
// relation, members in first-seen order. ID is 0 for singletons and 1-based
// in first-seen order for duplicate clusters.
type Cluster struct {
	ID      int
	Members []*ImageRecord
}

// KeepBy selects which member of a cluster is kept.
type KeepBy int

const (
	KeepByBest KeepBy = iota
	KeepByMostPixels
	KeepByMostBytes
	KeepByFirst
)

// ParseKeepBy parses the CLI form of a keep policy.
func ParseKeepBy(s string) (KeepBy, error) {
	switch s {
	case "best":
		return KeepByBest, nil
	case "most-pixels":
		return KeepByMostPixels, nil
	case "most-bytes":
		return KeepByMostBytes, nil
	case "first":
		return KeepByFirst, nil
	}
	return 0, fmt.Errorf("unknown keep-by policy %q (want best, most-pixels, most-bytes or first)", s)
}

func (k KeepBy) String() string {
	switch k {
	case KeepByBest:
		return "best"
	case KeepByMostPixels:
		return "most-pixels"
	case KeepByMostBytes:
		return "most-bytes"
	case KeepByFirst:
		return "first"
	}
	return "unknown"
}

// NameBy selects which path the kept content ends up under.
type NameBy int

const (
	// NameByKeep keeps the winner under its own path.
	NameByKeep NameBy = iota
	// NameByFirst renames the winner to the first-seen member's path.
	NameByFirst
)

// ParseNameBy parses the CLI form of a name policy.
func ParseNameBy(s string) (NameBy, error) {
	switch s {
	case "keep-by":
		return NameByKeep, nil
	case "first":
		return NameByFirst, nil
	}
	return 0, fmt.Errorf("unknown name-by policy %q (want keep-by or first)", s)
}

func (n NameBy) String() string {
	switch n {
	case NameByKeep:
		return "keep-by"
	case NameByFirst:
		return "first"
	}
	return "unknown"
}
