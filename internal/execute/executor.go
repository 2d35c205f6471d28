// Package execute applies resolved cluster plans to the filesystem. It is
// the only component that mutates files; everything upstream is pure
// computation over the assembled records.
package execute

import (
	"context"
	"fmt"
	"os"

	"similarimages/internal/fileutil"
	"similarimages/internal/resolve"
)

// Executor applies cluster plans. Removes go to the system trash unless
// Permanent is set.
type Executor struct {
	Permanent bool
}

// Outcome tallies what an Apply run did.
type Outcome struct {
	Removed int
	Renamed int
	Failed  int
	Errors  []error
}

// Apply executes the given cluster plans. Unresolved clusters are skipped.
// Within a cluster all removes run before the rename, so under name-by
// first the displaced first file gets the same trash treatment as any
// other remove before the keeper slides into its place. Per-file failures
// are collected; the context is checked between clusters.
func (e *Executor) Apply(ctx context.Context, plans []*resolve.ClusterPlan) (*Outcome, error) {
	out := &Outcome{}

	for _, cp := range plans {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if cp.Unresolved {
			continue
		}

		var rename *resolve.Action
		for i := range cp.Actions {
			action := &cp.Actions[i]
			switch action.Kind {
			case resolve.ActionRemove:
				if err := e.remove(action.Record.Path); err != nil {
					out.Failed++
					out.Errors = append(out.Errors, fmt.Errorf("remove %s: %w", action.Record.Path, err))
					continue
				}
				out.Removed++
			case resolve.ActionRename:
				rename = action
			}
		}

		if rename != nil {
			if err := fileutil.RenameReplace(rename.Record.Path, rename.RenameTo); err != nil {
				out.Failed++
				out.Errors = append(out.Errors, fmt.Errorf("rename %s to %s: %w", rename.Record.Path, rename.RenameTo, err))
				continue
			}
			out.Renamed++
		}
	}

	return out, nil
}

func (e *Executor) remove(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err // already gone; count as failure, not silence
	}
	if e.Permanent {
		return os.Remove(path)
	}
	return fileutil.MoveToTrash(path)
}
