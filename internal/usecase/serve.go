package usecase

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"tfidx/config"
	"tfidx/internal/adapter/store"
	"tfidx/internal/domain"
	"tfidx/internal/index"
	"tfidx/internal/logger"
	"tfidx/internal/metrics"
	"tfidx/internal/port"
)

// LoadIndex restores the snapshot at path. A snapshot built with different
// tokenizer settings than cfg still loads, with a warning.
func LoadIndex(path string, cfg *config.Config) (*index.Index, error) {
	log := logger.WithComponent("serve")
	start := time.Now()

	st, err := store.OpenBoltStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	idx, info, err := st.Restore()
	if err != nil {
		return nil, fmt.Errorf("failed to restore index: %w", err)
	}
	if !info.Matches(cfg) {
		log.Warn("index was built with different tokenizer settings; queries may miss matches",
			"path", path, "index_hash", info.ConfigHash, "config_hash", store.ComputeConfigHash(cfg))
	}

	log.Info("index loaded", "path", path, "docs", idx.TotalDocs(), "duration", time.Since(start))
	return idx, nil
}

// ServeUseCase answers queries one at a time.
type ServeUseCase struct {
	retriever port.Retriever
	presenter *Presenter
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// NewServeUseCase creates a new serve use case.
func NewServeUseCase(retriever port.Retriever, presenter *Presenter, m *metrics.Metrics) *ServeUseCase {
	return &ServeUseCase{
		retriever: retriever,
		presenter: presenter,
		metrics:   m,
		log:       logger.WithComponent("serve"),
	}
}

// Query answers a single query. An empty query returns domain.ErrEmptyQuery.
func (u *ServeUseCase) Query(query string, k int) (domain.SearchResult, error) {
	if query == "" {
		return domain.SearchResult{}, domain.ErrEmptyQuery
	}

	start := time.Now()
	result, err := u.retriever.Search(query, k)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("search failed: %w", err)
	}
	elapsed := time.Since(start)
	u.metrics.ObserveQuery(result.Candidates, elapsed)

	u.log.Debug("query answered",
		"query", query,
		"tokens", result.Tokens,
		"candidates", result.Candidates,
		"duration", elapsed,
	)
	return result, nil
}

// Session is the terminal side of an interactive serving loop.
type Session struct {
	In     io.Reader
	Out    io.Writer
	Prompt io.Writer // nil disables the prompt and separators
	Text   string
}

// Serve reads one query per line from s.In and writes the top k titles for
// each to s.Out. It returns nil on an empty line or end of input.
func (u *ServeUseCase) Serve(s Session, k int) error {
	scanner := bufio.NewScanner(s.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if s.Prompt != nil {
			fmt.Fprint(s.Prompt, s.Text)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read query: %w", err)
			}
			return nil
		}

		line := strings.TrimSuffix(scanner.Text(), "\r")
		result, err := u.Query(line, k)
		if errors.Is(err, domain.ErrEmptyQuery) {
			return nil
		}
		if err != nil {
			return err
		}

		if s.Prompt != nil {
			fmt.Fprintln(s.Prompt, " ------------------------")
		}
		if err := u.presenter.Render(s.Out, result, k); err != nil {
			return fmt.Errorf("failed to render results: %w", err)
		}
		if s.Prompt != nil {
			fmt.Fprintln(s.Prompt, " ------------------------")
			fmt.Fprintln(s.Prompt)
		}
	}
}

// Render writes the top k results of a query answered by Query.
func (u *ServeUseCase) Render(w io.Writer, result domain.SearchResult, k int) error {
	return u.presenter.Render(w, result, k)
}
