package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"tfidx/config"
	"tfidx/internal/logger"
	"tfidx/internal/metrics"
)

var (
	cfgFile   string
	cfg       *config.Config
	rootDir   string
	logLevel  string
	mets      *metrics.Metrics
	metricSrv *http.Server
)

var rootCmd = &cobra.Command{
	Use:   "tfidx",
	Short: "Build a tf-idf inverted index from a TSV corpus and query it",
	Long: `tfidx builds an inverted index from a tab-separated corpus
(one "id<TAB>title<TAB>body" record per line) and answers term queries,
ranking the documents that contain every known query term with tf-idf.

Example usage:
  tfidx build corpus.tsv            # Write _index.db next to corpus.tsv
  tfidx serve _index.db             # Interactive queries, 3 results each
  tfidx query _index.db -q "cat"    # Answer one query`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

		registry := prometheus.NewRegistry()
		mets = metrics.New(registry)
		if cfg.Metrics.Addr != "" {
			metricSrv = metrics.Serve(cfg.Metrics.Addr, registry)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if metricSrv == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return metricSrv.Shutdown(ctx)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tfidx.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "directory to look for tfidx.yaml in (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetMetrics() *metrics.Metrics {
	return mets
}
