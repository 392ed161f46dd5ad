package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query <index>",
	Short: "Answer a single query against an index",
	Long: `Load an index snapshot, answer one query and exit.

Examples:
  tfidx query _index.db -q "cat dog"
  tfidx query _index.db -q "bird" --top-k 10 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	serveUC, err := newServeUseCase(cfg, args[0], queryJSON)
	if err != nil {
		return err
	}

	k := topK(cfg, queryTopK)
	result, err := serveUC.Query(queryText, k)
	if err != nil {
		return err
	}
	return serveUC.Render(os.Stdout, result, k)
}
