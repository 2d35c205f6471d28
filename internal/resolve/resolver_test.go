package resolve

import (
	"errors"
	"strings"
	"testing"

	"similarimages/internal/models"
)

func rec(path string, bytes int64, pixels int) *models.ImageRecord {
	return &models.ImageRecord{Path: path, ByteSize: bytes, PixelCount: pixels}
}

func cluster(id int, members ...*models.ImageRecord) *models.Cluster {
	return &models.Cluster{ID: id, Members: members}
}

func TestResolve_EmptyCluster(t *testing.T) {
	_, err := Resolve(cluster(1), models.KeepByFirst, models.NameByKeep)
	if !errors.Is(err, ErrEmptyCluster) {
		t.Errorf("Resolve on empty cluster = %v, want ErrEmptyCluster", err)
	}
}

func TestResolve_Singleton(t *testing.T) {
	plan, err := Resolve(cluster(1, rec("only.jpg", 100, 500)), models.KeepByBest, models.NameByFirst)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if plan.Unresolved {
		t.Error("singleton cluster must always resolve")
	}
	if !plan.Obvious {
		t.Error("singleton cluster is trivially obvious")
	}
	if plan.Keep.Path != "only.jpg" {
		t.Errorf("Keep = %s, want only.jpg", plan.Keep.Path)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Kind != ActionKeep {
		t.Errorf("expected a single keep action, got %v", plan.Actions)
	}
}

func TestResolve_MostBytes(t *testing.T) {
	c := cluster(1, rec("x.jpg", 100, 500), rec("y.jpg", 200, 800))

	plan, err := Resolve(c, models.KeepByMostBytes, models.NameByKeep)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if plan.Keep.Path != "y.jpg" {
		t.Errorf("Keep = %s, want y.jpg", plan.Keep.Path)
	}
	if plan.Actions[0].Kind != ActionRemove || plan.Actions[0].Record.Path != "x.jpg" {
		t.Errorf("expected x.jpg removed, got %v", plan.Actions[0])
	}
	if plan.Actions[1].Kind != ActionKeep {
		t.Errorf("expected y.jpg kept, got %v", plan.Actions[1])
	}
}

func TestResolve_BestDominating(t *testing.T) {
	c := cluster(1, rec("x.jpg", 100, 500), rec("y.jpg", 200, 800))

	plan, err := Resolve(c, models.KeepByBest, models.NameByKeep)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if plan.Unresolved {
		t.Fatal("y.jpg dominates both metrics; cluster must resolve")
	}
	if !plan.Obvious {
		t.Error("dominated cluster should be obvious")
	}
	if plan.Keep.Path != "y.jpg" {
		t.Errorf("Keep = %s, want y.jpg", plan.Keep.Path)
	}
}

func TestResolve_BestConflict(t *testing.T) {
	// x wins pixels, y wins bytes.
	c := cluster(1, rec("x.jpg", 100, 800), rec("y.jpg", 200, 500))

	plan, err := Resolve(c, models.KeepByBest, models.NameByKeep)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !plan.Unresolved {
		t.Fatal("conflicting cluster under keep-by=best must be unresolved")
	}
	if plan.Keep != nil {
		t.Error("unresolved plan must not designate a keeper")
	}
	if len(plan.Actions) != 0 {
		t.Errorf("unresolved plan must contribute no actions, got %d", len(plan.Actions))
	}
	if plan.Conflict == nil {
		t.Fatal("unresolved plan must carry the conflict")
	}
	detail := plan.Conflict.String()
	if !strings.Contains(detail, "x.jpg") || !strings.Contains(detail, "y.jpg") {
		t.Errorf("conflict detail %q should name both members", detail)
	}

	// The same cluster resolves fine under keep-by=first.
	plan, err = Resolve(c, models.KeepByFirst, models.NameByKeep)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if plan.Unresolved {
		t.Error("keep-by=first never leaves a cluster unresolved")
	}
	if plan.Keep.Path != "x.jpg" {
		t.Errorf("Keep = %s, want first-seen x.jpg", plan.Keep.Path)
	}
}

func TestResolve_NameByFirst(t *testing.T) {
	// Keeper y.jpg is second-seen: its content replaces x.jpg's path and
	// x.jpg's own file is removed.
	c := cluster(1, rec("x.jpg", 100, 500), rec("y.jpg", 200, 800))

	plan, err := Resolve(c, models.KeepByBest, models.NameByFirst)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if plan.Actions[0].Kind != ActionRemove || plan.Actions[0].Record.Path != "x.jpg" {
		t.Errorf("expected x.jpg removed, got %v", plan.Actions[0])
	}
	if plan.Actions[1].Kind != ActionRename || plan.Actions[1].RenameTo != "x.jpg" {
		t.Errorf("expected y.jpg renamed to x.jpg, got %v", plan.Actions[1])
	}
}

func TestResolve_NameByFirst_KeeperIsFirst(t *testing.T) {
	c := cluster(1, rec("x.jpg", 200, 800), rec("y.jpg", 100, 500))

	plan, err := Resolve(c, models.KeepByBest, models.NameByFirst)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// Degenerates to the keep-by naming case: no rename.
	if plan.Actions[0].Kind != ActionKeep {
		t.Errorf("expected x.jpg kept in place, got %v", plan.Actions[0])
	}
	if plan.Actions[1].Kind != ActionRemove {
		t.Errorf("expected y.jpg removed, got %v", plan.Actions[1])
	}
}

func TestResolve_TiesBrokenByFirstSeen(t *testing.T) {
	c := cluster(1, rec("a.jpg", 100, 500), rec("b.jpg", 100, 500))

	for _, keepBy := range []models.KeepBy{models.KeepByBest, models.KeepByMostBytes, models.KeepByMostPixels, models.KeepByFirst} {
		plan, err := Resolve(c, keepBy, models.NameByKeep)
		if err != nil {
			t.Fatalf("Resolve(%v) failed: %v", keepBy, err)
		}
		if plan.Keep.Path != "a.jpg" {
			t.Errorf("keep-by=%v: Keep = %s, want first-seen a.jpg", keepBy, plan.Keep.Path)
		}
	}
}

// Every resolved plan must cover every member exactly once with exactly
// one keep (or rename-to-keep), regardless of policy combination.
func TestResolve_KeepInvariantAcrossAllPolicies(t *testing.T) {
	clusters := []*models.Cluster{
		cluster(1, rec("a.jpg", 100, 500), rec("b.jpg", 200, 800), rec("c.jpg", 50, 100)),
		cluster(2, rec("d.jpg", 100, 800), rec("e.jpg", 200, 500)), // conflicted
		cluster(3, rec("f.jpg", 100, 500)),
	}
	keepPolicies := []models.KeepBy{models.KeepByBest, models.KeepByMostPixels, models.KeepByMostBytes, models.KeepByFirst}
	namePolicies := []models.NameBy{models.NameByKeep, models.NameByFirst}

	for _, c := range clusters {
		for _, keepBy := range keepPolicies {
			for _, nameBy := range namePolicies {
				plan, err := Resolve(c, keepBy, nameBy)
				if err != nil {
					t.Fatalf("Resolve(cluster %d, %v, %v) failed: %v", c.ID, keepBy, nameBy, err)
				}
				if plan.Unresolved {
					if keepBy != models.KeepByBest {
						t.Errorf("only keep-by=best may leave clusters unresolved, got %v", keepBy)
					}
					continue
				}

				if len(plan.Actions) != len(c.Members) {
					t.Fatalf("cluster %d (%v/%v): %d actions for %d members", c.ID, keepBy, nameBy, len(plan.Actions), len(c.Members))
				}
				keeps := 0
				seen := make(map[string]bool)
				for _, action := range plan.Actions {
					if seen[action.Record.Path] {
						t.Errorf("member %s has more than one action", action.Record.Path)
					}
					seen[action.Record.Path] = true
					if action.Kind == ActionKeep || action.Kind == ActionRename {
						keeps++
					}
				}
				if keeps != 1 {
					t.Errorf("cluster %d (%v/%v): %d keep/rename actions, want exactly 1", c.ID, keepBy, nameBy, keeps)
				}
			}
		}
	}
}

func TestAction_String(t *testing.T) {
	r := rec("a.jpg", 1, 1)

	tests := []struct {
		action Action
		want   string
	}{
		{Action{Record: r, Kind: ActionKeep}, "keep a.jpg"},
		{Action{Record: r, Kind: ActionRemove}, "rm a.jpg"},
		{Action{Record: r, Kind: ActionRename, RenameTo: "b.jpg"}, "mv a.jpg b.jpg"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
