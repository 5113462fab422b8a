// internal/report/group.go
package report

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	custom_errors "oss-tldr/internal/errors"
	"oss-tldr/internal/model"
	"oss-tldr/internal/timeframe"
)

const (
	groupSection     = "group"
	groupConcurrency = 4
)

// GroupRequest asks for a digest across several repositories, each given
// as "owner/name".
type GroupRequest struct {
	Repos     []string
	Timeframe timeframe.Timeframe
	Source    Source
}

// RepositoryDigest is one repository's share of a group digest.
type RepositoryDigest struct {
	FullName string               `json:"full_name"`
	URL      string               `json:"html_url"`
	PRs      []model.ActivityItem `json:"prs"`
	Issues   []model.ActivityItem `json:"issues"`
	TLDR     *string              `json:"tldr"`
}

// GroupDigest is a group report. TLDR is nil when nothing was summarized.
type GroupDigest struct {
	Timeframe timeframe.Timeframe
	TLDR      *string
	Repos     []RepositoryDigest
}

// Group builds a digest across repositories. It is computed on every call
// and never touches the report cache or the tracking tables. Repositories
// are processed concurrently; the first failing repository fails the digest.
func (e *Engine) Group(ctx context.Context, req GroupRequest) (*GroupDigest, error) {
	tf, err := timeframe.Parse(string(req.Timeframe))
	if err != nil {
		return nil, err
	}
	repos := dedupe(req.Repos)
	logger := e.logger.With("timeframe", tf, "repos", len(repos))
	rng := tf.Resolve(e.store.now())

	digests := make([]RepositoryDigest, len(repos))
	tagged := make([][]string, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(groupConcurrency)
	for i, repo := range repos {
		g.Go(func() error {
			d, lines, err := e.repositoryDigest(gctx, req.Source, repo, rng, logger)
			if err != nil {
				return err
			}
			digests[i], tagged[i] = d, lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var corpus []string
	for _, lines := range tagged {
		corpus = append(corpus, lines...)
	}
	tldr, err := e.aggregateText(ctx, corpus, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Group digest generated", "summaries", len(corpus))
	return &GroupDigest{Timeframe: tf, TLDR: tldr, Repos: digests}, nil
}

// repositoryDigest fetches and summarizes both item sections of one
// repository and returns its summaries tagged with the repository name.
func (e *Engine) repositoryDigest(ctx context.Context, src Source, repo string, rng timeframe.Range, logger *slog.Logger) (RepositoryDigest, []string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepositoryDigest{}, nil, &custom_errors.ErrInvalidRepoFormat{Repo: repo}
	}
	logger = logger.With("owner", owner, "repo", name)

	meta, err := src.GetRepository(ctx, owner, name)
	if err != nil {
		return RepositoryDigest{}, nil, err
	}

	sections := [2]model.Section{model.SectionPRs, model.SectionIssues}
	var results [2][]model.ActivityItem
	g, gctx := errgroup.WithContext(ctx)
	for i, section := range sections {
		g.Go(func() error {
			items, err := e.fetch(gctx, src, owner, name, rng, section)
			if err != nil {
				return err
			}
			if len(items) > 0 {
				items, err = e.summarize(gctx, items, section, logger)
				if err != nil {
					return err
				}
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RepositoryDigest{}, nil, err
	}

	d := RepositoryDigest{
		FullName: meta.FullName,
		URL:      meta.URL,
		PRs:      nonNil(results[0]),
		Issues:   nonNil(results[1]),
	}
	if d.FullName == "" {
		d.FullName = repo
	}

	var lines []string
	for _, items := range results {
		for _, item := range items {
			if item.Summary != "" {
				lines = append(lines, "["+d.FullName+"] "+item.Summary)
			}
		}
	}
	d.TLDR, err = e.aggregateText(ctx, lines, logger)
	if err != nil {
		return RepositoryDigest{}, nil, err
	}
	return d, lines, nil
}

// aggregateText digests lines in one call. A failed digest is logged and
// left out; only the caller's context ending is an error.
func (e *Engine) aggregateText(ctx context.Context, lines []string, logger *slog.Logger) (*string, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	actx, cancel := context.WithTimeout(ctx, e.opts.AggregateTimeout)
	defer cancel()

	text, err := e.aggregator.Aggregate(actx, strings.Join(lines, "\n"))
	if err != nil {
		if ctx.Err() != nil {
			return nil, &custom_errors.PipelineError{Section: groupSection, Stage: custom_errors.StageAggregate, Err: ctx.Err()}
		}
		logger.Warn("Failed to generate digest", "error", err)
		return nil, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	return &text, nil
}

func dedupe(repos []string) []string {
	out := make([]string, 0, len(repos))
	seen := make(map[string]struct{}, len(repos))
	for _, r := range repos {
		key := strings.ToLower(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func nonNil(items []model.ActivityItem) []model.ActivityItem {
	if items == nil {
		return []model.ActivityItem{}
	}
	return items
}
