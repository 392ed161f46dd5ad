package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"tfidx/config"
	"tfidx/internal/adapter/analyzer"
	"tfidx/internal/adapter/cache"
	"tfidx/internal/adapter/retriever"
	"tfidx/internal/port"
	"tfidx/internal/usecase"
)

var (
	serveTopK int
	serveJSON bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <index>",
	Short: "Load an index and answer queries interactively",
	Long: `Load an index snapshot and answer one query per input line, printing the
titles of the top results. An empty line or end of input ends the session.

Examples:
  tfidx serve _index.db
  tfidx serve _index.db -k 10 --json < queries.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&serveTopK, "top-k", "k", 0, "number of results (default from config)")
	serveCmd.Flags().BoolVar(&serveJSON, "json", false, "output as JSON")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	fmt.Fprintln(os.Stderr, "loading index ...")
	serveUC, err := newServeUseCase(cfg, args[0], serveJSON)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "index loaded ...")
	fmt.Fprintln(os.Stderr)

	session := usecase.Session{
		In:   os.Stdin,
		Out:  os.Stdout,
		Text: cfg.Serve.Prompt,
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		session.Prompt = os.Stderr
	}

	return serveUC.Serve(session, topK(cfg, serveTopK))
}

func newServeUseCase(cfg *config.Config, path string, asJSON bool) (*usecase.ServeUseCase, error) {
	idx, err := usecase.LoadIndex(path, cfg)
	if err != nil {
		return nil, err
	}

	tokenizer := analyzer.NewTokenizer(cfg.Index.Delimiters)
	var r port.Retriever = retriever.NewTFIDFRetriever(idx, tokenizer)
	if cfg.Serve.CacheSize > 0 {
		r = cache.NewCachedRetriever(r, cache.NewQueryCache(cfg.Serve.CacheSize, cfg.Serve.CacheTTL), GetMetrics())
	}

	return usecase.NewServeUseCase(r, usecase.NewPresenter(asJSON), GetMetrics()), nil
}

func topK(cfg *config.Config, flag int) int {
	if flag > 0 {
		return flag
	}
	return cfg.Serve.TopK
}
