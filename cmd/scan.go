package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>...",
	Short: "Scan directories and warm the fingerprint cache",
	Long: `Walk the given directories, fingerprint every supported image and store
the results in the cache, so later preview/show/dedup runs start fast.

Example:
  similarimages scan ./photos
  similarimages scan ./photos ./backup --threshold 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	res, err := runPipeline(cmd.Context(), args)
	if err != nil {
		return err
	}

	totalDuplicates := 0
	for _, c := range res.dups {
		totalDuplicates += len(c.Members) - 1
	}

	fmt.Printf("Images found:     %d\n", res.scan.Total)
	fmt.Printf("From cache:       %d\n", res.scan.Cached)
	fmt.Printf("Freshly analyzed: %d\n", res.scan.Analyzed)
	if len(res.scan.Skipped) > 0 {
		fmt.Printf("Skipped:          %d\n", len(res.scan.Skipped))
	}
	fmt.Println()
	fmt.Printf("Duplicate groups: %d (%d duplicates)\n", len(res.dups), totalDuplicates)

	if len(res.dups) > 0 {
		fmt.Println()
		fmt.Println("Run 'similarimages show <dir>...' to see planned actions")
		fmt.Println("Run 'similarimages preview -p <dir> <dir>...' to browse groups")
	}

	return nil
}
