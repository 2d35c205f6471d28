package resolve

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"similarimages/internal/models"
)

// Plan is the aggregated report over all duplicate clusters, indexed by
// cluster ID.
type Plan struct {
	KeepBy   models.KeepBy
	NameBy   models.NameBy
	Clusters []*ClusterPlan // cluster ID order
}

// BuildPlan resolves every cluster under the given policies. The context
// is checked between cluster resolutions so an interrupt stops further
// computation; no side effects need rolling back.
func BuildPlan(ctx context.Context, clusters []*models.Cluster, keepBy models.KeepBy, nameBy models.NameBy) (*Plan, error) {
	plan := &Plan{KeepBy: keepBy, NameBy: nameBy}

	for _, c := range clusters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cp, err := Resolve(c, keepBy, nameBy)
		if err != nil {
			return nil, err
		}
		plan.Clusters = append(plan.Clusters, cp)
	}

	return plan, nil
}

// Unresolved returns the clusters the plan could not resolve.
func (p *Plan) Unresolved() []*ClusterPlan {
	var out []*ClusterPlan
	for _, cp := range p.Clusters {
		if cp.Unresolved {
			out = append(out, cp)
		}
	}
	return out
}

// Selector picks which clusters an action applies to: everything, only the
// obvious ones, or an explicit ID set.
type Selector struct {
	All     bool
	Obvious bool
	IDs     map[int]bool
}

// ParseSelector parses a --dups value: empty means all clusters, the
// literal "obvious" means all obvious clusters, anything else is a
// comma-separated list of cluster IDs.
func ParseSelector(s string) (*Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return &Selector{All: true}, nil
	}
	if s == "obvious" {
		return &Selector{Obvious: true}, nil
	}

	ids := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid --dups selector %q: %v", s, err)
		}
		ids[id] = true
	}
	return &Selector{IDs: ids}, nil
}

// Select returns the cluster plans the selector picks, in plan order, and
// the selector IDs that match no cluster. Unknown IDs are warnings for the
// caller, never failures, and selection never recomputes a plan.
func (p *Plan) Select(sel *Selector) ([]*ClusterPlan, []int) {
	switch {
	case sel.All:
		return p.Clusters, nil

	case sel.Obvious:
		var out []*ClusterPlan
		for _, cp := range p.Clusters {
			if cp.Obvious {
				out = append(out, cp)
			}
		}
		return out, nil

	default:
		known := make(map[int]bool)
		var out []*ClusterPlan
		for _, cp := range p.Clusters {
			if sel.IDs[cp.Cluster.ID] {
				out = append(out, cp)
				known[cp.Cluster.ID] = true
			}
		}
		var unknown []int
		for id := range sel.IDs {
			if !known[id] {
				unknown = append(unknown, id)
			}
		}
		sort.Ints(unknown)
		return out, unknown
	}
}
