package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cacheDir   string
	threshold  int
	workers    int
	noProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "similarimages",
	Short: "Find and clean up visually similar images",
	Long: `similarimages finds groups of visually similar images across one or
more directories and resolves each group into keep/remove/rename actions.

It uses perceptual hashing, so re-encoded, resized or re-exported copies of
the same picture group together even when no two files are byte-identical.
Directory order matters: the first directory's files win first-seen
tie-breaks, so list the better-organized directory first.

Example usage:
  similarimages scan ./photos ./backup     # Warm the fingerprint cache
  similarimages preview -p ./prev ./photos # Browse groups as symlink dirs
  similarimages show ./photos ./backup     # Show planned actions
  similarimages dedup --dry-run ./photos   # Preview file operations
  similarimages dedup --dups obvious ./photos`,
}

// Execute runs the CLI. An interrupt cancels the context; computation
// stops between phases and no partial filesystem state is left behind.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	userCache, err := os.UserCacheDir()
	if err != nil {
		userCache = "."
	}
	defaultCache := filepath.Join(userCache, "similarimages")

	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", defaultCache, "Directory for the fingerprint cache")
	rootCmd.PersistentFlags().IntVar(&threshold, "threshold", 10, "Hamming distance threshold (0-64, lower = stricter, 0 = identical hashes)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 8, "Number of parallel analysis workers")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "Disable the analysis progress bar")
}
