// Package analyze turns image files into comparable records: a perceptual
// fingerprint, a content digest and the quality metrics the resolver
// compares on.
package analyze

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"similarimages/internal/models"
)

// DecodeError reports a file that could not be analyzed. It is local to the
// file: the run continues and the file is excluded from clustering.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot analyze %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Analyzer computes fingerprints and metrics for images.
type Analyzer struct{}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze decodes the image at path and returns its record. Failures are
// wrapped in *DecodeError so callers can treat them as skipped files.
func (a *Analyzer) Analyze(path string) (*models.ImageRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	// Decode consumes the reader, so probe for EXIF on a separate handle.
	hasExif := checkExif(path)

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	hash, err := goimagehash.AverageHash(img)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	digest, err := fileDigest(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	return &models.ImageRecord{
		Path:        path,
		Fingerprint: models.FingerprintFromHash(hash.GetHash()),
		Digest:      digest,
		ByteSize:    stat.Size(),
		PixelCount:  width * height,
		Width:       width,
		Height:      height,
		Format:      strings.ToLower(format),
		ModTime:     stat.ModTime(),
		HasExif:     hasExif,
	}, nil
}

// AnalyzeWithTimeout analyzes an image, giving up after timeout. Some
// malformed files make decoders spin; the worker must not hang on them.
func (a *Analyzer) AnalyzeWithTimeout(path string, timeout time.Duration) (*models.ImageRecord, error) {
	done := make(chan struct{})
	var rec *models.ImageRecord
	var err error

	go func() {
		rec, err = a.Analyze(path)
		close(done)
	}()

	select {
	case <-done:
		return rec, err
	case <-time.After(timeout):
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("timeout after %v", timeout)}
	}
}

// checkExif reports whether the file carries EXIF metadata.
func checkExif(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	_, err = exif.Decode(file)
	return err == nil
}

// fileDigest returns the SHA-1 digest of the file contents. The digest is
// the cache key, so renamed but unchanged files stay cache hits.
func fileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha1.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Digest exposes fileDigest for the scanner's cache lookup, which needs the
// digest before deciding whether to decode at all.
func Digest(path string) (string, error) {
	return fileDigest(path)
}

// IsSupportedImage checks if a file has a supported image extension.
func IsSupportedImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".tif":
		return true
	default:
		return false
	}
}
