// internal/report/people.go
package report

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	custom_errors "oss-tldr/internal/errors"
	"oss-tldr/internal/model"
)

const (
	maxContributors = 5
	ghostLogin      = "ghost"
)

// People serves the people section: per-author digests built from the
// already summarized prs and issues sections.
func (e *Engine) People(ctx context.Context, req Request) (Result[[]model.Contributor], error) {
	key, logger, err := e.prepare(ctx, req, model.SectionPeople)
	if err != nil {
		return Result[[]model.Contributor]{}, err
	}

	if req.Force {
		logger.Info("Force refresh")
	} else {
		people, found, err := e.store.ReadPeople(ctx, key, false)
		if err != nil {
			return Result[[]model.Contributor]{}, err
		}
		if found {
			logger.Info("Cache hit", "count", len(people))
			return Result[[]model.Contributor]{Data: people, Cached: true}, nil
		}
		logger.Info("Cache miss")
	}

	people, err := deduplicated(ctx, e, key, model.SectionPeople, func(ctx context.Context) ([]model.Contributor, error) {
		return e.refreshPeople(ctx, req, key, logger)
	})
	if err != nil {
		return Result[[]model.Contributor]{}, err
	}
	return Result[[]model.Contributor]{Data: people}, nil
}

func (e *Engine) refreshPeople(ctx context.Context, req Request, key Key, logger *slog.Logger) ([]model.Contributor, error) {
	// Existence is all that matters for dependencies; their age is ignored.
	prs, prsFound, err := e.store.ReadItems(ctx, key, model.SectionPRs, true)
	if err != nil {
		return nil, err
	}
	issues, issuesFound, err := e.store.ReadItems(ctx, key, model.SectionIssues, true)
	if err != nil {
		return nil, err
	}

	if !prsFound || !issuesFound {
		logger.Info("Regenerating people dependencies", "prs_missing", !prsFound, "issues_missing", !issuesFound)
		g, gctx := errgroup.WithContext(ctx)
		regenerate := func(section model.Section, dst *[]model.ActivityItem) {
			g.Go(func() error {
				items, err := e.generateItems(gctx, req, key, section, logger)
				if err != nil {
					return err
				}
				*dst = items
				return nil
			})
		}
		if !prsFound {
			regenerate(model.SectionPRs, &prs)
		}
		if !issuesFound {
			regenerate(model.SectionIssues, &issues)
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		// The row is created only once both dependencies exist, so a failed
		// regeneration leaves nothing behind.
		report, err := e.store.GetOrCreate(ctx, key.RepositoryID, key.Timeframe)
		if err != nil {
			return nil, err
		}
		if !prsFound {
			if _, err := e.store.WriteItems(ctx, report.ID, model.SectionPRs, prs); err != nil {
				return nil, err
			}
		}
		if !issuesFound {
			if _, err := e.store.WriteItems(ctx, report.ID, model.SectionIssues, issues); err != nil {
				return nil, err
			}
		}
	}

	people := groupByAuthor(prs, issues)
	if len(people) > maxContributors {
		people = people[:maxContributors]
	}
	if err := e.digest(ctx, people, logger); err != nil {
		return nil, err
	}

	report, err := e.store.GetOrCreate(ctx, key.RepositoryID, key.Timeframe)
	if err != nil {
		return nil, err
	}
	if _, err := e.store.WritePeople(ctx, report.ID, people); err != nil {
		return nil, err
	}
	return people, nil
}

// groupByAuthor buckets items by author login in first-seen order and sorts
// the result by total item count, keeping first-seen order among ties.
func groupByAuthor(prs, issues []model.ActivityItem) []model.Contributor {
	var order []string
	byLogin := make(map[string]*model.Contributor)

	bucket := func(item model.ActivityItem) *model.Contributor {
		login := item.Author.Login
		if login == "" {
			login = ghostLogin
		}
		c, ok := byLogin[login]
		if !ok {
			profile := item.Author.ProfileURL
			if profile == "" {
				profile = "https://github.com/" + login
			}
			c = &model.Contributor{
				Username:   login,
				AvatarURL:  item.Author.AvatarURL,
				ProfileURL: profile,
				PRs:        []model.ActivityItem{},
				Issues:     []model.ActivityItem{},
			}
			byLogin[login] = c
			order = append(order, login)
		}
		c.TotalItems++
		return c
	}

	for _, item := range prs {
		c := bucket(item)
		c.PRs = append(c.PRs, item)
	}
	for _, item := range issues {
		c := bucket(item)
		c.Issues = append(c.Issues, item)
	}

	people := make([]model.Contributor, 0, len(order))
	for _, login := range order {
		people = append(people, *byLogin[login])
	}
	sort.SliceStable(people, func(i, j int) bool {
		return people[i].TotalItems > people[j].TotalItems
	})
	return people
}

// digest fills in each contributor's TLDR. A failure for one author leaves
// that digest empty; only running out of time fails the section.
func (e *Engine) digest(ctx context.Context, people []model.Contributor, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.AggregateTimeout)
	defer cancel()

	var g errgroup.Group
	for i := range people {
		text := digestInput(people[i], e.opts.MaxItems)
		if text == "" {
			continue
		}
		g.Go(func() error {
			tldr, err := e.aggregator.Aggregate(ctx, text)
			if err != nil {
				logger.Warn("Failed to generate contributor digest", "login", people[i].Username, "error", err)
				return nil
			}
			people[i].TLDR = strings.TrimSpace(tldr)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return &custom_errors.PipelineError{Section: string(model.SectionPeople), Stage: custom_errors.StageAggregate, Err: err}
	}
	return nil
}

func digestInput(c model.Contributor, limit int) string {
	var lines []string
	collect := func(items []model.ActivityItem) {
		n := 0
		for _, item := range items {
			if n == limit {
				return
			}
			if item.Summary == "" {
				continue
			}
			lines = append(lines, item.Summary)
			n++
		}
	}
	collect(c.PRs)
	collect(c.Issues)
	return strings.Join(lines, "\n")
}
