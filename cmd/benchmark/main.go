package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"tfidx/config"
	"tfidx/internal/adapter/analyzer"
	"tfidx/internal/adapter/retriever"
	"tfidx/internal/usecase"
)

func main() {
	indexPath := flag.String("index", "_index.db", "Path to index snapshot")
	queries := flag.String("queries", "", "File with one query per line")
	topK := flag.Int("k", 3, "Number of results")
	rounds := flag.Int("n", 1, "Times to run the query set")
	flag.Parse()

	if *queries == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -index _index.db -queries queries.txt")
		fmt.Println("\nReports:")
		fmt.Println("  1. Load time of the snapshot")
		fmt.Println("  2. Query latency percentiles")
		fmt.Println("  3. Candidate set sizes and match rate")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	lines, err := readQueries(*queries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading queries: %v\n", err)
		os.Exit(1)
	}
	if len(lines) == 0 {
		fmt.Fprintln(os.Stderr, "No queries to run")
		os.Exit(1)
	}

	start := time.Now()
	idx, err := usecase.LoadIndex(*indexPath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening index: %v\n", err)
		os.Exit(1)
	}
	loadTime := time.Since(start)

	r := retriever.NewTFIDFRetriever(idx, analyzer.NewTokenizer(cfg.Index.Delimiters))

	fmt.Println("TF-IDF QUERY BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	stats := idx.Stats()
	fmt.Printf("Documents: %d\n", stats.TotalDocs)
	fmt.Printf("Terms:     %d\n", stats.TotalTerms)
	fmt.Printf("Load time: %s\n", loadTime)
	fmt.Printf("Queries:   %d x %d rounds, top %d\n", len(lines), *rounds, *topK)
	fmt.Println(strings.Repeat("-", 70))

	var (
		latencies  []time.Duration
		candidates int
		matched    int
	)
	for round := 0; round < *rounds; round++ {
		for _, q := range lines {
			t0 := time.Now()
			result, err := r.Search(q, *topK)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
				os.Exit(1)
			}
			latencies = append(latencies, time.Since(t0))
			candidates += result.Candidates
			if len(result.Results) > 0 {
				matched++
			}
		}
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	total := len(latencies)

	fmt.Printf("QUERY METRICS:\n")
	fmt.Printf("  p50 latency:     %s\n", percentile(latencies, 0.50))
	fmt.Printf("  p95 latency:     %s\n", percentile(latencies, 0.95))
	fmt.Printf("  p99 latency:     %s\n", percentile(latencies, 0.99))
	fmt.Printf("  max latency:     %s\n", latencies[total-1])
	fmt.Printf("  avg candidates:  %.1f\n", float64(candidates)/float64(total))
	fmt.Printf("  match rate:      %.1f%%\n", 100*float64(matched)/float64(total))
}

func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line != "" {
			out = append(out, line)
		}
	}
	return out, scanner.Err()
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	i := int(float64(len(sorted)-1) * p)
	return sorted[i]
}
