package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"tfidx/config"
	"tfidx/internal/adapter/corpus"
	"tfidx/internal/adapter/fs"
	"tfidx/internal/adapter/store"
	"tfidx/internal/domain"
	"tfidx/internal/index"
	"tfidx/internal/logger"
	"tfidx/internal/metrics"
	"tfidx/internal/port"
)

// ProgressFunc is called periodically during a build with the number of
// documents indexed so far and the file being read.
type ProgressFunc func(docs int, currentFile string)

// BuildUseCase builds an index from a tab-separated corpus.
type BuildUseCase struct {
	walker        *fs.Walker
	tokenizer     port.Tokenizer
	fieldSep      string
	progressEvery int
	metrics       *metrics.Metrics
	log           *slog.Logger
}

// NewBuildUseCase creates a new build use case.
func NewBuildUseCase(
	walker *fs.Walker,
	tokenizer port.Tokenizer,
	cfg config.IndexConfig,
	m *metrics.Metrics,
) *BuildUseCase {
	progressEvery := cfg.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 10000
	}
	return &BuildUseCase{
		walker:        walker,
		tokenizer:     tokenizer,
		fieldSep:      cfg.FieldSeparator,
		progressEvery: progressEvery,
		metrics:       m,
		log:           logger.WithComponent("build"),
	}
}

// BuildResult contains the results of a build.
type BuildResult struct {
	Index    *index.Index
	Files    int
	Docs     int
	Tokens   int
	Duration time.Duration
}

// Build reads every record of source in order and returns the finished
// index. Any malformed record or read failure aborts the whole build.
func (u *BuildUseCase) Build(ctx context.Context, source string, progress ProgressFunc) (*BuildResult, error) {
	start := time.Now()

	files, err := u.walker.Resolve(source)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		u.log.Warn("no corpus files matched", "source", source)
	}

	u.log.Info("building index", "source", source, "files", len(files))

	builder := index.NewBuilder()
	result := &BuildResult{Files: len(files)}
	for _, file := range files {
		if err := u.indexFile(ctx, file.Path, builder, result, progress); err != nil {
			return nil, err
		}
	}

	idx, err := builder.Finalize()
	if err != nil {
		return nil, fmt.Errorf("failed to finalize index: %w", err)
	}

	result.Index = idx
	result.Docs = idx.TotalDocs()
	result.Duration = time.Since(start)
	if progress != nil {
		progress(result.Docs, "")
	}
	u.metrics.ObserveBuild(result.Docs, result.Duration)

	u.log.Info("index built",
		"docs", result.Docs,
		"tokens", result.Tokens,
		"terms", len(idx.Tokens()),
		"duration", result.Duration,
	)
	return result, nil
}

// indexFile streams one corpus file into the builder.
func (u *BuildUseCase) indexFile(ctx context.Context, path string, b *index.Builder, result *BuildResult, progress ProgressFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w: %v", domain.ErrUnreadableSource, err)
	}
	defer f.Close()

	reader := corpus.NewReader(f, path, u.fieldSep)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("build interrupted: %w", err)
		}

		rec, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read corpus: %w", err)
		}

		if n := b.Len(); n%u.progressEvery == 0 {
			u.log.Debug("build progress", "docs", n, "file", path)
			if progress != nil {
				progress(n, path)
			}
		}

		tokens := u.tokenizer.Tokenize(rec.Body)
		if _, err := b.Add(rec.Title, tokens); err != nil {
			return err
		}
		result.Tokens += len(tokens)
	}
}

// Snapshot writes idx to path. The snapshot is written to a temporary file
// and renamed into place, so an existing snapshot survives a failed write.
func (u *BuildUseCase) Snapshot(path string, idx *index.Index, info store.SchemaInfo) error {
	tmp := path + ".tmp"
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale %s: %w", tmp, err)
	}

	st, err := store.NewBoltStore(tmp)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	if err := st.Snapshot(idx, info); err != nil {
		st.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := st.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	u.log.Info("snapshot written", "path", path, "docs", idx.TotalDocs())
	return nil
}

// Run builds an index from source and snapshots it to out. Nothing is
// written when the build fails.
func (u *BuildUseCase) Run(ctx context.Context, source, out string, info store.SchemaInfo, progress ProgressFunc) (*BuildResult, error) {
	result, err := u.Build(ctx, source, progress)
	if err != nil {
		return nil, err
	}
	if err := u.Snapshot(out, result.Index, info); err != nil {
		return nil, err
	}
	return result, nil
}
