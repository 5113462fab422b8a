// internal/github/search.go
package github

import (
	"context"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"oss-tldr/internal/model"
	"oss-tldr/internal/timeframe"
)

const (
	searchPageSize   = 100
	mergeConcurrency = 5
	searchDateLayout = "2006-01-02"
)

// ActivityQuery selects issues and pull requests of one repository.
type ActivityQuery struct {
	Owner  string
	Name   string
	Kind   model.ItemKind
	Range  timeframe.Range
	Author string
}

// String renders the GitHub search query.
func (q ActivityQuery) String() string {
	parts := []string{"repo:" + q.Owner + "/" + q.Name}
	switch q.Kind {
	case model.KindPR:
		parts = append(parts, "is:pr")
	case model.KindIssue:
		parts = append(parts, "is:issue")
	}
	if q.Author != "" {
		parts = append(parts, "author:"+q.Author)
	}
	if !q.Range.Start.IsZero() {
		parts = append(parts, "created:"+q.Range.Start.UTC().Format(searchDateLayout)+".."+q.Range.End.UTC().Format(searchDateLayout))
	}
	return strings.Join(parts, " ")
}

// FetchActivity searches for matching items, most commented first, and
// returns at most maxItems of them ranked by engagement and author relevance.
func (c *Client) FetchActivity(ctx context.Context, q ActivityQuery) ([]model.ActivityItem, error) {
	logger := c.logger.With("owner", q.Owner, "repo", q.Name, "kind", q.Kind)
	query := q.String()
	logger.Debug("Searching GitHub", "query", query)

	opts := &github.SearchOptions{
		Sort:        "comments",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: searchPageSize},
	}
	var result *github.IssuesSearchResult
	err := c.withRetry(ctx, "search issues", func() (*github.Response, error) {
		r, resp, err := c.gh.Search.Issues(ctx, query, opts)
		result = r
		return resp, err
	})
	if err != nil {
		return nil, classify(q.Owner+"/"+q.Name, err)
	}

	seen := make(map[int64]struct{}, len(result.Issues))
	items := make([]model.ActivityItem, 0, len(result.Issues))
	for _, issue := range result.Issues {
		if _, dup := seen[issue.GetID()]; dup {
			continue
		}
		seen[issue.GetID()] = struct{}{}
		items = append(items, toActivityItem(issue))
	}
	logger.Debug("Search finished", "total", result.GetTotal(), "unique", len(items))
	if len(items) == 0 {
		return items, nil
	}

	top := c.topContributors(ctx, q.Owner, q.Name)
	ranked := rank(items, top, c.maxItems)
	c.resolveMerged(ctx, q.Owner, q.Name, ranked)
	return ranked, nil
}

// topContributors returns the ten non-bot authors with the most commits.
// Statistics still being computed by GitHub count as no data.
func (c *Client) topContributors(ctx context.Context, owner, name string) map[string]struct{} {
	stats, _, err := c.gh.Repositories.ListContributorsStats(ctx, owner, name)
	if err != nil {
		c.logger.Debug("Contributor statistics unavailable", "owner", owner, "repo", name, "error", err)
		return map[string]struct{}{}
	}
	return pickTopContributors(stats, topContributorCount)
}

// resolveMerged fills in Merged for pull requests. Lookups that fail leave it unknown.
func (c *Client) resolveMerged(ctx context.Context, owner, name string, items []model.ActivityItem) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mergeConcurrency)
	for i := range items {
		if !items[i].IsPullRequest {
			continue
		}
		g.Go(func() error {
			merged, _, err := c.gh.PullRequests.IsMerged(gctx, owner, name, items[i].Number)
			if err != nil {
				c.logger.Warn("Failed to determine merged state", "owner", owner, "repo", name, "number", items[i].Number, "error", err)
				return nil
			}
			items[i].Merged = &merged
			return nil
		})
	}
	_ = g.Wait()
}

func toActivityItem(i *github.Issue) model.ActivityItem {
	labels := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, l.GetName())
	}
	var assignees []model.Author
	for _, a := range i.Assignees {
		assignees = append(assignees, toAuthor(a))
	}

	return model.ActivityItem{
		ID:                i.GetID(),
		Number:            i.GetNumber(),
		Title:             i.GetTitle(),
		Body:              i.GetBody(),
		Author:            toAuthor(i.GetUser()),
		URL:               i.GetHTMLURL(),
		State:             i.GetState(),
		CreatedAt:         timePtr(i.GetCreatedAt().Time),
		UpdatedAt:         timePtr(i.GetUpdatedAt().Time),
		Comments:          i.GetComments(),
		Reactions:         i.GetReactions().GetTotalCount(),
		Labels:            labels,
		IsPullRequest:     i.IsPullRequest(),
		Assignees:         assignees,
		AuthorAssociation: i.GetAuthorAssociation(),
	}
}

func toAuthor(u *github.User) model.Author {
	return model.Author{
		Login:      u.GetLogin(),
		ID:         u.GetID(),
		AvatarURL:  u.GetAvatarURL(),
		ProfileURL: u.GetHTMLURL(),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
