package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"tfidx/config"
	"tfidx/internal/adapter/analyzer"
	"tfidx/internal/adapter/fs"
	"tfidx/internal/adapter/store"
	"tfidx/internal/usecase"
)

var (
	buildOutput     string
	buildNoProgress bool
)

var buildCmd = &cobra.Command{
	Use:   "build <source>",
	Short: "Build an index from a TSV corpus",
	Long: `Build an inverted index from a tab-separated corpus file, or from every
file matching index.includes under a directory. Each line must hold exactly
three tab-separated fields: id, title and body. A single malformed line aborts
the build and nothing is written.

The snapshot is written next to the source as _index.db unless --output is set.

Examples:
  tfidx build wiki.tsv
  tfidx build ./corpus -o /tmp/wiki.db`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "snapshot path (default: _index.db next to the source)")
	buildCmd.Flags().BoolVar(&buildNoProgress, "no-progress", false, "disable the progress indicator")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	source, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	out := buildOutput
	if out == "" {
		out = config.SnapshotPath(source, cfg.Index.SnapshotName)
	}

	tokenizer := analyzer.NewTokenizer(cfg.Index.Delimiters)
	walker := fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)
	buildUC := usecase.NewBuildUseCase(walker, tokenizer, cfg.Index, GetMetrics())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stderr, "Building index from %s...\n", source)

	var progress usecase.ProgressFunc
	if !buildNoProgress {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("docs"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
		defer bar.Finish()
		progress = func(docs int, currentFile string) {
			bar.Set(docs)
			if currentFile != "" {
				bar.Describe(fmt.Sprintf("[cyan]Indexing[reset] %s", filepath.Base(currentFile)))
			}
		}
	}

	result, err := buildUC.Run(ctx, source, out, store.NewSchemaInfo(cfg), progress)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	stats := result.Index.Stats()
	fmt.Printf("\nIndex build complete:\n")
	fmt.Printf("  Files read:   %d\n", result.Files)
	fmt.Printf("  Documents:    %d\n", stats.TotalDocs)
	fmt.Printf("  Tokens:       %d\n", stats.TotalTokens)
	fmt.Printf("  Terms:        %d\n", stats.TotalTerms)
	fmt.Printf("  Took:         %s\n", formatDuration(result.Duration))
	fmt.Printf("\nIndex written to: %s\n", out)
	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
