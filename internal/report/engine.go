// internal/report/engine.go
package report

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"oss-tldr/internal/database"
	custom_errors "oss-tldr/internal/errors"
	"oss-tldr/internal/github"
	"oss-tldr/internal/llm"
	"oss-tldr/internal/model"
	"oss-tldr/internal/timeframe"
	"oss-tldr/internal/tracker"
)

// Source is the requesting user's view of GitHub.
type Source interface {
	GetRepository(ctx context.Context, owner, name string) (*model.Repository, error)
	FetchActivity(ctx context.Context, q github.ActivityQuery) ([]model.ActivityItem, error)
}

// Tracker records that a user looked at a repository and returns its row.
type Tracker interface {
	Track(ctx context.Context, src tracker.RepositorySource, user model.User, owner, name string) (database.Repository, error)
}

// Summarizer attaches a summary to each item, reporting failures per item.
type Summarizer interface {
	Summarize(ctx context.Context, items []model.ActivityItem) []llm.Result
}

// Aggregator turns a block of summaries into a digest.
type Aggregator interface {
	Aggregate(ctx context.Context, text string) (string, error)
	AggregateStream(ctx context.Context, text string) iter.Seq2[string, error]
}

// Options tunes the section pipelines.
type Options struct {
	MaxItems         int
	FetchTimeout     time.Duration
	SummarizeTimeout time.Duration
	AggregateTimeout time.Duration
	// SingleFlight collapses concurrent misses for the same section within
	// this process. Without it concurrent misses each run the pipeline and
	// the last write wins.
	SingleFlight bool
}

// Request describes one section request.
type Request struct {
	User      model.User
	Owner     string
	Name      string
	Timeframe timeframe.Timeframe
	Force     bool
	Source    Source
}

// Result is a section payload plus whether it came from the cache.
type Result[T any] struct {
	Data   T
	Cached bool
}

// Engine assembles report sections on top of the Store.
type Engine struct {
	store      *Store
	tracker    Tracker
	summarizer Summarizer
	aggregator Aggregator
	opts       Options
	logger     *slog.Logger
	flight     singleflight.Group
}

// NewEngine creates an Engine.
func NewEngine(store *Store, tracker Tracker, summarizer Summarizer, aggregator Aggregator, opts Options, logger *slog.Logger) *Engine {
	if opts.MaxItems <= 0 {
		opts.MaxItems = 10
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 60 * time.Second
	}
	for _, d := range []*time.Duration{&opts.SummarizeTimeout, &opts.AggregateTimeout} {
		if *d <= 0 {
			*d = 90 * time.Second
		}
	}
	return &Engine{
		store:      store,
		tracker:    tracker,
		summarizer: summarizer,
		aggregator: aggregator,
		opts:       opts,
		logger:     logger,
	}
}

// PullRequests serves the prs section.
func (e *Engine) PullRequests(ctx context.Context, req Request) (Result[[]model.ActivityItem], error) {
	return e.items(ctx, req, model.SectionPRs)
}

// Issues serves the issues section.
func (e *Engine) Issues(ctx context.Context, req Request) (Result[[]model.ActivityItem], error) {
	return e.items(ctx, req, model.SectionIssues)
}

// prepare validates the request and runs the tracking side effect, which
// happens before and independently of the cache decision.
func (e *Engine) prepare(ctx context.Context, req Request, section model.Section) (Key, *slog.Logger, error) {
	tf, err := timeframe.Parse(string(req.Timeframe))
	if err != nil {
		return Key{}, nil, err
	}
	logger := e.logger.With("owner", req.Owner, "repo", req.Name, "timeframe", tf, "section", section)

	repo, err := e.tracker.Track(ctx, req.Source, req.User, req.Owner, req.Name)
	if err != nil {
		return Key{}, nil, err
	}
	return Key{RepositoryID: repo.ID, Timeframe: tf}, logger.With("repository_id", repo.ID), nil
}

func (e *Engine) items(ctx context.Context, req Request, section model.Section) (Result[[]model.ActivityItem], error) {
	key, logger, err := e.prepare(ctx, req, section)
	if err != nil {
		return Result[[]model.ActivityItem]{}, err
	}

	if req.Force {
		logger.Info("Force refresh")
	} else {
		items, found, err := e.store.ReadItems(ctx, key, section, false)
		if err != nil {
			return Result[[]model.ActivityItem]{}, err
		}
		if found {
			logger.Info("Cache hit", "count", len(items))
			return Result[[]model.ActivityItem]{Data: items, Cached: true}, nil
		}
		logger.Info("Cache miss")
	}

	items, err := deduplicated(ctx, e, key, section, func(ctx context.Context) ([]model.ActivityItem, error) {
		items, err := e.generateItems(ctx, req, key, section, logger)
		if err != nil {
			return nil, err
		}
		report, err := e.store.GetOrCreate(ctx, key.RepositoryID, key.Timeframe)
		if err != nil {
			return nil, err
		}
		if _, err := e.store.WriteItems(ctx, report.ID, section, items); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return Result[[]model.ActivityItem]{}, err
	}
	return Result[[]model.ActivityItem]{Data: items}, nil
}

// generateItems runs fetch and summarize for an item section without persisting.
func (e *Engine) generateItems(ctx context.Context, req Request, key Key, section model.Section, logger *slog.Logger) ([]model.ActivityItem, error) {
	items, err := e.fetch(ctx, req.Source, req.Owner, req.Name, key.Timeframe.Resolve(e.store.now()), section)
	if err != nil {
		return nil, err
	}
	logger.Info("Fetched activity", "section", section, "count", len(items))
	if len(items) == 0 {
		return []model.ActivityItem{}, nil
	}
	return e.summarize(ctx, items, section, logger)
}

func (e *Engine) fetch(ctx context.Context, src Source, owner, name string, rng timeframe.Range, section model.Section) ([]model.ActivityItem, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.FetchTimeout)
	defer cancel()

	items, err := src.FetchActivity(ctx, github.ActivityQuery{
		Owner: owner,
		Name:  name,
		Kind:  section.Kind(),
		Range: rng,
	})
	if err != nil {
		return nil, &custom_errors.PipelineError{Section: string(section), Stage: custom_errors.StageFetch, Err: err}
	}
	if len(items) > e.opts.MaxItems {
		items = items[:e.opts.MaxItems]
	}
	return items, nil
}

func (e *Engine) summarize(ctx context.Context, items []model.ActivityItem, section model.Section, logger *slog.Logger) ([]model.ActivityItem, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.SummarizeTimeout)
	defer cancel()

	results := e.summarizer.Summarize(ctx, items)
	if err := ctx.Err(); err != nil {
		return nil, &custom_errors.PipelineError{Section: string(section), Stage: custom_errors.StageSummarize, Err: err}
	}

	out := make([]model.ActivityItem, len(items))
	failed := 0
	for i, item := range items {
		if i < len(results) {
			if results[i].Err != nil {
				failed++
				logger.Warn("Failed to summarize item", "number", item.Number, "error", results[i].Err)
			} else {
				item.Summary = results[i].Summary
			}
		}
		out[i] = item
	}
	if failed > 0 {
		logger.Warn("Summarization finished with failures", "failed", failed, "total", len(items))
	}
	return out, nil
}

// deduplicated runs fn, sharing one in-flight computation per
// (repository, timeframe, section) when single flight is enabled. Waiters
// stop waiting when their own context ends; the shared computation does not.
func deduplicated[T any](ctx context.Context, e *Engine, key Key, section model.Section, fn func(context.Context) (T, error)) (T, error) {
	if !e.opts.SingleFlight {
		return fn(ctx)
	}

	var zero T
	flightKey := fmt.Sprintf("%d/%s/%s", key.RepositoryID, key.Timeframe, section)
	ch := e.flight.DoChan(flightKey, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
