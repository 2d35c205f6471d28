package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"similarimages/internal/models"
	"similarimages/internal/preview"
	"similarimages/internal/resolve"
)

var (
	previewDir   string
	previewForce bool
)

var previewCmd = &cobra.Command{
	Use:   "preview -p <preview-dir> <dir>...",
	Short: "Write a preview directory of similar-image groups",
	Long: `Write one subdirectory per duplicate group, each holding symlinks to the
group's members, so the groups can be inspected in any file browser.

Directories are named obvious-NN or unclear-NN depending on whether one
member is the undisputed best; link names carry each member's evaluation
(best, most-bytes, most-pixels or delete).

Example:
  similarimages preview -p ./preview ./photos
  similarimages preview -p ./preview -f ./photos ./backup`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewDir, "preview-dir", "p", "", "Directory to write the preview tree into (required)")
	previewCmd.Flags().BoolVarP(&previewForce, "force", "f", false, "Remove and recreate an existing preview dir. *Be careful*")
	previewCmd.MarkFlagRequired("preview-dir")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	res, err := runPipeline(cmd.Context(), args)
	if err != nil {
		return err
	}

	// The preview only needs obviousness and evaluations; policies do not
	// change what it shows.
	plan, err := resolve.BuildPlan(cmd.Context(), res.dups, models.KeepByBest, models.NameByKeep)
	if err != nil {
		return err
	}

	if err := preview.Write(previewDir, previewForce, plan.Clusters); err != nil {
		return err
	}

	if len(plan.Clusters) == 0 {
		fmt.Println("No duplicate groups found; preview dir is empty.")
		return nil
	}

	obvious := 0
	for _, cp := range plan.Clusters {
		if cp.Obvious {
			obvious++
		}
	}
	fmt.Printf("Wrote %d groups (%d obvious, %d unclear) to %s\n",
		len(plan.Clusters), obvious, len(plan.Clusters)-obvious, previewDir)

	return nil
}
