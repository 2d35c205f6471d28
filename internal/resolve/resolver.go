// Package resolve turns duplicate clusters into deterministic action
// plans: one member kept, the rest removed or renamed, or the whole
// cluster left unresolved when the chosen policy cannot pick a winner.
package resolve

import (
	"errors"
	"fmt"

	"similarimages/internal/models"
	"similarimages/internal/quality"
)

// ErrEmptyCluster reports a cluster with no members. The grouper never
// produces one, so this aborts the run as an invariant violation.
var ErrEmptyCluster = errors.New("empty cluster")

// ActionKind says what happens to one member of a cluster.
type ActionKind int

const (
	// ActionKeep keeps the member under its own path.
	ActionKeep ActionKind = iota
	// ActionRemove removes the member's file.
	ActionRemove
	// ActionRename keeps the member's content under another member's path.
	ActionRename
)

// Action is the decision for a single cluster member.
type Action struct {
	Record   *models.ImageRecord
	Kind     ActionKind
	RenameTo string // destination path, set for ActionRename
}

func (a Action) String() string {
	switch a.Kind {
	case ActionKeep:
		return fmt.Sprintf("keep %s", a.Record.Path)
	case ActionRemove:
		return fmt.Sprintf("rm %s", a.Record.Path)
	case ActionRename:
		return fmt.Sprintf("mv %s %s", a.Record.Path, a.RenameTo)
	}
	return "unknown"
}

// ClusterPlan is the resolved plan for one cluster. Either Keep is set and
// Actions covers every member exactly once, or Unresolved is true and the
// cluster contributes no destructive action.
type ClusterPlan struct {
	Cluster     *models.Cluster
	Obvious     bool
	Unresolved  bool
	Conflict    *quality.Conflict // set when Unresolved
	Keep        *models.ImageRecord
	Actions     []Action // member order
	Evaluations []quality.Evaluation
}

// Resolve produces the plan for one cluster under the given policies.
func Resolve(c *models.Cluster, keepBy models.KeepBy, nameBy models.NameBy) (*ClusterPlan, error) {
	members := c.Members
	if len(members) == 0 {
		return nil, fmt.Errorf("cluster %d: %w", c.ID, ErrEmptyCluster)
	}

	plan := &ClusterPlan{
		Cluster:     c,
		Obvious:     quality.Obvious(members),
		Evaluations: quality.Evaluate(members),
	}

	keep := -1
	switch keepBy {
	case models.KeepByBest:
		best, ok := quality.BestIndex(members)
		if !ok {
			// Policy conflict: surfaced in the plan, not thrown, so a
			// batch run reports every conflict in one pass.
			plan.Unresolved = true
			plan.Conflict = quality.FindConflict(members)
			return plan, nil
		}
		keep = best
	case models.KeepByMostPixels:
		keep = quality.MostPixelsIndex(members)
	case models.KeepByMostBytes:
		keep = quality.MostBytesIndex(members)
	case models.KeepByFirst:
		keep = 0
	default:
		return nil, fmt.Errorf("cluster %d: unknown keep-by policy %d", c.ID, int(keepBy))
	}

	plan.Keep = members[keep]
	plan.Actions = buildActions(members, keep, nameBy)
	return plan, nil
}

// buildActions assigns one action per member. Under name-by=first the
// winning content replaces the first-seen file's name; when the keeper
// already is the first member this degenerates to the keep-by case.
func buildActions(members []*models.ImageRecord, keep int, nameBy models.NameBy) []Action {
	renameToFirst := nameBy == models.NameByFirst && keep != 0

	actions := make([]Action, len(members))
	for i, m := range members {
		switch {
		case renameToFirst && i == keep:
			actions[i] = Action{Record: m, Kind: ActionRename, RenameTo: members[0].Path}
		case !renameToFirst && i == keep:
			actions[i] = Action{Record: m, Kind: ActionKeep}
		default:
			actions[i] = Action{Record: m, Kind: ActionRemove}
		}
	}
	return actions
}
