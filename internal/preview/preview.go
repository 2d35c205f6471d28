// Package preview materializes duplicate clusters as a directory tree of
// symlinks, one subdirectory per cluster, so the user can eyeball groups
// in any file browser before acting on them.
package preview

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"similarimages/internal/resolve"
)

// counterFormat returns a zero-padded format wide enough for max, so
// preview entries sort correctly in directory listings.
func counterFormat(max int) string {
	width := 1 + int(math.Log10(float64(max)))
	return fmt.Sprintf("%%0%dd", width)
}

// Write populates previewDir with one subdirectory per cluster plan,
// named obvious-NN or unclear-NN, each holding relative symlinks to the
// members named NN-MM-<evaluation><ext>. An existing previewDir is only
// replaced with force.
func Write(previewDir string, force bool, plans []*resolve.ClusterPlan) error {
	if info, err := os.Stat(previewDir); err == nil && info.IsDir() {
		if !force {
			return fmt.Errorf("%s already exists - please remove first", previewDir)
		}
		if err := os.RemoveAll(previewDir); err != nil {
			return fmt.Errorf("failed to remove existing preview dir: %w", err)
		}
	}
	if err := os.MkdirAll(previewDir, 0755); err != nil {
		return fmt.Errorf("failed to create preview dir: %w", err)
	}

	if len(plans) == 0 {
		return nil
	}

	maxMembers := 0
	for _, cp := range plans {
		if len(cp.Cluster.Members) > maxMembers {
			maxMembers = len(cp.Cluster.Members)
		}
	}

	dirFmt := "%s-" + counterFormat(len(plans))
	fileFmt := counterFormat(len(plans)) + "-" + counterFormat(maxMembers) + "-%s%s"

	for _, cp := range plans {
		prefix := "unclear"
		if cp.Obvious {
			prefix = "obvious"
		}
		clusterDir := filepath.Join(previewDir, fmt.Sprintf(dirFmt, prefix, cp.Cluster.ID))
		if err := os.Mkdir(clusterDir, 0755); err != nil {
			return fmt.Errorf("failed to create cluster dir: %w", err)
		}

		for j, member := range cp.Cluster.Members {
			target, err := linkTarget(clusterDir, member.Path)
			if err != nil {
				return err
			}
			name := fmt.Sprintf(fileFmt, cp.Cluster.ID, j+1, cp.Evaluations[j], filepath.Ext(member.Path))
			if err := os.Symlink(target, filepath.Join(clusterDir, name)); err != nil {
				return fmt.Errorf("failed to link %s: %w", member.Path, err)
			}
		}
	}

	return nil
}

// linkTarget prefers a relative symlink so the preview tree survives the
// whole collection being moved; absolute is the fallback.
func linkTarget(clusterDir, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	absDir, err := filepath.Abs(clusterDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", clusterDir, err)
	}
	rel, err := filepath.Rel(absDir, abs)
	if err != nil {
		return abs, nil
	}
	return rel, nil
}
