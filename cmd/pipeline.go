package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"similarimages/internal/cache"
	"similarimages/internal/match"
	"similarimages/internal/models"
	"similarimages/internal/scan"
)

// minAnalyzeForProgress is how many cache-missing files it takes before a
// progress bar is worth drawing.
const minAnalyzeForProgress = 200

// pipelineResult is everything the subcommands need from one scan+group run.
type pipelineResult struct {
	scan     *scan.Result
	clusters []*models.Cluster // full partition, singletons included
	dups     []*models.Cluster // numbered duplicate clusters
}

// runPipeline scans dirs and groups the records into clusters. Skipped
// files are reported on stderr; they never abort the run.
func runPipeline(ctx context.Context, dirs []string) (*pipelineResult, error) {
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("directory not found: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("not a directory: %s", dir)
		}
	}

	c, err := cache.Open(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open fingerprint cache: %w", err)
	}
	defer c.Close()

	opts := []scan.Option{scan.WithWorkers(workers)}
	if !noProgress {
		opts = append(opts, scan.WithProgress(analysisProgress()))
	}

	scanner := scan.NewScanner(c, opts...)
	res, err := scanner.Scan(ctx, dirs)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	for _, skipped := range res.Skipped {
		color.New(color.FgYellow).Fprintf(os.Stderr, "skipped %s: %v\n", skipped.Path, skipped.Err)
	}

	grouper := match.NewGrouper(threshold)
	clusters := grouper.Clusters(res.Records.All())

	return &pipelineResult{
		scan:     res,
		clusters: clusters,
		dups:     match.Duplicates(clusters),
	}, nil
}

// analysisProgress returns a scan progress callback that lazily creates a
// progress bar once it is clear the analysis phase is big enough to watch.
// The callback runs on the scanner's single collector goroutine.
func analysisProgress() func(done, total int, current string) {
	var bar *progressbar.ProgressBar
	return func(done, total int, current string) {
		if bar == nil {
			if total < minAnalyzeForProgress {
				return
			}
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("analyzing"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Set(done)
	}
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
