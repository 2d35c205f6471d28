package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"similarimages/internal/models"
	"similarimages/internal/resolve"
)

var (
	showKeepBy string
	showNameBy string
	showDups   string
)

var showCmd = &cobra.Command{
	Use:   "show <dir>...",
	Short: "Show the dedup actions that would be taken",
	Long: `Group similar images and print, per duplicate group, which file would be
kept and which would be removed or renamed under the selected policies.

Policies:
  --keep-by best         keep the file that wins on bytes AND pixels;
                         groups where the two metrics disagree are left
                         unresolved with a warning (default)
  --keep-by most-pixels  keep the highest-resolution file
  --keep-by most-bytes   keep the largest file
  --keep-by first        keep the first-seen file

  --name-by keep-by      kept file stays under its own name (default)
  --name-by first        kept content is renamed onto the first-seen
                         file's path

  --dups obvious         only groups with an undisputed best
  --dups 5,7,11          only these group numbers

Example:
  similarimages show ./photos
  similarimages show --keep-by most-pixels --dups obvious ./photos ./backup`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showKeepBy, "keep-by", "best", "Keep policy: best, most-pixels, most-bytes or first")
	showCmd.Flags().StringVar(&showNameBy, "name-by", "keep-by", "Name policy: keep-by or first")
	showCmd.Flags().StringVar(&showDups, "dups", "", `Which groups to include: "obvious" or comma-separated group numbers (default all)`)
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	plan, selected, err := buildSelectedPlan(cmd, args, showKeepBy, showNameBy, showDups)
	if err != nil {
		return err
	}

	if len(plan.Clusters) == 0 {
		fmt.Println("No duplicate groups found.")
		return nil
	}
	if len(selected) == 0 {
		fmt.Println("No duplicate groups match the selection.")
		return nil
	}

	// Obvious groups first, unclear after, as two blocks.
	for _, cp := range selected {
		if cp.Obvious {
			printClusterPlan(cp)
		}
	}
	for _, cp := range selected {
		if !cp.Obvious {
			printClusterPlan(cp)
		}
	}

	return nil
}

// buildSelectedPlan parses the shared policy flags, runs the pipeline and
// applies the --dups selection. Unknown group numbers only warn.
func buildSelectedPlan(cmd *cobra.Command, dirs []string, keepByStr, nameByStr, dupsStr string) (*resolve.Plan, []*resolve.ClusterPlan, error) {
	keepBy, err := models.ParseKeepBy(keepByStr)
	if err != nil {
		return nil, nil, err
	}
	nameBy, err := models.ParseNameBy(nameByStr)
	if err != nil {
		return nil, nil, err
	}
	selector, err := resolve.ParseSelector(dupsStr)
	if err != nil {
		return nil, nil, err
	}

	res, err := runPipeline(cmd.Context(), dirs)
	if err != nil {
		return nil, nil, err
	}

	plan, err := resolve.BuildPlan(cmd.Context(), res.dups, keepBy, nameBy)
	if err != nil {
		return nil, nil, err
	}

	selected, unknown := plan.Select(selector)
	for _, id := range unknown {
		color.New(color.FgRed).Fprintf(os.Stderr, "warning: no duplicate group %d, ignoring\n", id)
	}

	return plan, selected, nil
}

// printClusterPlan prints one group: header, actions (or the conflict
// warning), then every member with its evaluation.
func printClusterPlan(cp *resolve.ClusterPlan) {
	if cp.Obvious {
		color.New(color.FgGreen).Printf("obvious-%d\n", cp.Cluster.ID)
	} else {
		color.New(color.FgMagenta).Printf("unclear-%d\n", cp.Cluster.ID)
	}

	if cp.Unresolved {
		color.New(color.FgRed).Printf("    *Warning*: unclear which is best: %s\n", cp.Conflict)
		printMembers(cp)
		return
	}

	for _, action := range cp.Actions {
		if action.Kind != resolve.ActionKeep {
			fmt.Printf("    %s\n", action)
		}
	}
	printMembers(cp)
}

func printMembers(cp *resolve.ClusterPlan) {
	blue := color.New(color.FgBlue)
	for j, member := range cp.Cluster.Members {
		blue.Printf("    # %d: %-11s: %s\n", j+1, cp.Evaluations[j], member.Path)
	}
}
