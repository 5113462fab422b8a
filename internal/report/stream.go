// internal/report/stream.go
package report

import (
	"context"
	"iter"
	"log/slog"
	"strings"

	custom_errors "oss-tldr/internal/errors"
	"oss-tldr/internal/model"
)

// cachedChunkSize is the number of runes per chunk when replaying a cached TL;DR.
const cachedChunkSize = 50

// Stream is a TL;DR delivered chunk by chunk. Chunks yields each text
// fragment in order; a non-nil error is always the last value yielded.
type Stream struct {
	Cached bool
	Chunks iter.Seq2[string, error]
}

// TLDR serves the tldr section. On a miss it never regenerates prs or
// issues: both must already exist, otherwise ErrDependencyMissing is
// returned and nothing is written.
func (e *Engine) TLDR(ctx context.Context, req Request) (*Stream, error) {
	key, logger, err := e.prepare(ctx, req, model.SectionTLDR)
	if err != nil {
		return nil, err
	}

	if req.Force {
		logger.Info("Force refresh")
	} else {
		text, found, err := e.store.ReadTLDR(ctx, key, false)
		if err != nil {
			return nil, err
		}
		if found {
			logger.Info("Cache hit", "length", len(text))
			return &Stream{Cached: true, Chunks: chunkText(text, cachedChunkSize)}, nil
		}
		logger.Info("Cache miss")
	}

	prs, prsFound, err := e.store.ReadItems(ctx, key, model.SectionPRs, true)
	if err != nil {
		return nil, err
	}
	issues, issuesFound, err := e.store.ReadItems(ctx, key, model.SectionIssues, true)
	if err != nil {
		return nil, err
	}
	if !prsFound || !issuesFound {
		logger.Info("Refusing to generate TL;DR without dependencies", "prs_missing", !prsFound, "issues_missing", !issuesFound)
		return nil, custom_errors.ErrDependencyMissing
	}

	corpus := joinSummaries(prs, issues)
	if corpus == "" {
		logger.Info("No summaries to aggregate")
		return &Stream{Chunks: func(func(string, error) bool) {}}, nil
	}
	return &Stream{Chunks: e.generateTLDR(ctx, key, corpus, logger)}, nil
}

// generateTLDR forwards aggregator chunks as they arrive and persists the
// accumulated text once, after the last chunk. If the consumer stops early,
// the context ends, or the aggregator fails, nothing is written.
func (e *Engine) generateTLDR(ctx context.Context, key Key, corpus string, logger *slog.Logger) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		actx, cancel := context.WithTimeout(ctx, e.opts.AggregateTimeout)
		defer cancel()

		var sb strings.Builder
		for chunk, err := range e.aggregator.AggregateStream(actx, corpus) {
			if err != nil {
				logger.Error("TL;DR stream failed", "error", err, "received", sb.Len())
				yield("", &custom_errors.PipelineError{Section: string(model.SectionTLDR), Stage: custom_errors.StageAggregate, Err: err})
				return
			}
			sb.WriteString(chunk)
			if !yield(chunk, nil) {
				logger.Info("TL;DR consumer stopped early, discarding partial text", "received", sb.Len())
				return
			}
		}
		if err := actx.Err(); err != nil {
			logger.Warn("TL;DR stream ended without completing", "error", err)
			yield("", &custom_errors.PipelineError{Section: string(model.SectionTLDR), Stage: custom_errors.StageAggregate, Err: err})
			return
		}

		text := sb.String()
		if text == "" {
			return
		}
		report, err := e.store.GetOrCreate(ctx, key.RepositoryID, key.Timeframe)
		if err == nil {
			_, err = e.store.WriteTLDR(ctx, report.ID, text)
		}
		if err != nil {
			logger.Error("Failed to persist TL;DR", "error", err)
			yield("", err)
			return
		}
		logger.Info("TL;DR persisted", "length", len(text))
	}
}

func joinSummaries(prs, issues []model.ActivityItem) string {
	var lines []string
	for _, items := range [][]model.ActivityItem{prs, issues} {
		for _, item := range items {
			if item.Summary != "" {
				lines = append(lines, item.Summary)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// chunkText replays text in fixed-size rune chunks.
func chunkText(text string, size int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		runes := []rune(text)
		for start := 0; start < len(runes); start += size {
			end := min(start+size, len(runes))
			if !yield(string(runes[start:end]), nil) {
				return
			}
		}
	}
}
