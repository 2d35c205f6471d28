package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"similarimages/internal/execute"
	"similarimages/internal/resolve"
)

var (
	dedupKeepBy    string
	dedupNameBy    string
	dedupDups      string
	dedupDryRun    bool
	dedupPermanent bool
	dedupYes       bool
)

var dedupCmd = &cobra.Command{
	Use:   "dedup <dir>...",
	Short: "Perform the actions listed by \"show\"",
	Long: `Resolve duplicate groups and apply the resulting file operations:
removed files go to the system trash (or are deleted with --permanent),
and under --name-by first the kept content replaces the first-seen file.

Groups the policy cannot resolve are skipped with a warning; use
"show" first to see what would happen.

Example:
  similarimages dedup --dry-run ./photos
  similarimages dedup --dups obvious ./photos
  similarimages dedup --keep-by most-bytes --yes --permanent ./photos`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDedup,
}

func init() {
	dedupCmd.Flags().StringVar(&dedupKeepBy, "keep-by", "best", "Keep policy: best, most-pixels, most-bytes or first")
	dedupCmd.Flags().StringVar(&dedupNameBy, "name-by", "keep-by", "Name policy: keep-by or first")
	dedupCmd.Flags().StringVar(&dedupDups, "dups", "", `Which groups to act on: "obvious" or comma-separated group numbers (default all)`)
	dedupCmd.Flags().BoolVar(&dedupDryRun, "dry-run", false, "Print the actions without touching any file")
	dedupCmd.Flags().BoolVar(&dedupPermanent, "permanent", false, "Delete files permanently instead of moving them to trash")
	dedupCmd.Flags().BoolVarP(&dedupYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(dedupCmd)
}

func runDedup(cmd *cobra.Command, args []string) error {
	_, selected, err := buildSelectedPlan(cmd, args, dedupKeepBy, dedupNameBy, dedupDups)
	if err != nil {
		return err
	}

	// Unresolved groups never contribute destructive actions; surface them
	// and act on the rest.
	var actionable []*resolve.ClusterPlan
	removals := 0
	var reclaimable int64
	for _, cp := range selected {
		if cp.Unresolved {
			color.New(color.FgRed).Fprintf(os.Stderr, "unclear-%d: unclear which is best: %s\n", cp.Cluster.ID, cp.Conflict)
			continue
		}
		actionable = append(actionable, cp)
		for _, action := range cp.Actions {
			if action.Kind == resolve.ActionRemove {
				removals++
				reclaimable += action.Record.ByteSize
			}
		}
	}

	if len(actionable) == 0 || removals == 0 {
		fmt.Println("Nothing to do.")
		return nil
	}

	verb := "move to trash"
	if dedupPermanent {
		verb = "permanently delete"
	}
	fmt.Printf("Will %s %d files (%s) across %d groups\n\n", verb, removals, formatSize(reclaimable), len(actionable))

	if dedupDryRun {
		for _, cp := range actionable {
			for _, action := range cp.Actions {
				if action.Kind != resolve.ActionKeep {
					fmt.Printf("  %s\n", action)
				}
			}
		}
		fmt.Println()
		fmt.Println("(Dry run - no files were modified)")
		return nil
	}

	if !dedupYes {
		fmt.Printf("Are you sure you want to %s %d files? [y/N]: ", verb, removals)
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	executor := &execute.Executor{Permanent: dedupPermanent}
	outcome, err := executor.Apply(cmd.Context(), actionable)
	if err != nil {
		return err
	}

	for _, e := range outcome.Errors {
		fmt.Fprintf(os.Stderr, "failed: %v\n", e)
	}

	fmt.Println()
	if dedupPermanent {
		fmt.Printf("Permanently deleted %d files\n", outcome.Removed)
	} else {
		fmt.Printf("Moved %d files to trash\n", outcome.Removed)
	}
	if outcome.Renamed > 0 {
		fmt.Printf("Renamed %d files\n", outcome.Renamed)
	}
	if outcome.Failed > 0 {
		fmt.Printf("Failed: %d files\n", outcome.Failed)
	}
	fmt.Printf("Space reclaimed: %s\n", formatSize(reclaimable))

	return nil
}
