// internal/github/review.go
package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"oss-tldr/internal/model"
)

const (
	listPageSize  = 100
	maxListPages  = 10
	unknownAuthor = "Unknown"
)

// PullRequestPatches lists the per-file diffs of a pull request. Files
// without a textual patch, such as binaries, are skipped.
func (c *Client) PullRequestPatches(ctx context.Context, owner, name string, number int) ([]model.Patch, error) {
	files, err := listAll(ctx, c, "list pull request files", func(opts github.ListOptions) ([]*github.CommitFile, *github.Response, error) {
		return c.gh.PullRequests.ListFiles(ctx, owner, name, number, &opts)
	})
	if err != nil {
		return nil, classify(owner+"/"+name, err)
	}

	patches := make([]model.Patch, 0, len(files))
	for _, f := range files {
		if f.GetPatch() == "" {
			continue
		}
		patches = append(patches, model.Patch{File: f.GetFilename(), Patch: f.GetPatch()})
	}
	return patches, nil
}

// Discussion loads an issue or pull request with its comments and, for pull
// requests, its reviews. Comments and reviews are fetched concurrently.
func (c *Client) Discussion(ctx context.Context, owner, name string, number int) (model.Discussion, error) {
	repo := owner + "/" + name

	var issue *github.Issue
	err := c.withRetry(ctx, "get issue", func() (*github.Response, error) {
		i, resp, err := c.gh.Issues.Get(ctx, owner, name, number)
		issue = i
		return resp, err
	})
	if err != nil {
		return model.Discussion{}, classify(repo, err)
	}

	d := model.Discussion{
		Number:        number,
		Title:         issue.GetTitle(),
		Body:          issue.GetBody(),
		IsPullRequest: issue.IsPullRequest(),
		Reviews:       []model.Comment{},
		Comments:      []model.Comment{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		comments, err := listAll(gctx, c, "list issue comments", func(opts github.ListOptions) ([]*github.IssueComment, *github.Response, error) {
			return c.gh.Issues.ListComments(gctx, owner, name, number, &github.IssueListCommentsOptions{ListOptions: opts})
		})
		if err != nil {
			return fmt.Errorf("list comments of #%d: %w", number, err)
		}
		for _, comment := range comments {
			d.Comments = append(d.Comments, model.Comment{Author: loginOrUnknown(comment.GetUser()), Body: comment.GetBody()})
		}
		return nil
	})
	if d.IsPullRequest {
		g.Go(func() error {
			reviews, err := listAll(gctx, c, "list reviews", func(opts github.ListOptions) ([]*github.PullRequestReview, *github.Response, error) {
				return c.gh.PullRequests.ListReviews(gctx, owner, name, number, &opts)
			})
			if err != nil {
				return fmt.Errorf("list reviews of #%d: %w", number, err)
			}
			for _, review := range reviews {
				d.Reviews = append(d.Reviews, model.Comment{Author: loginOrUnknown(review.GetUser()), Body: review.GetBody()})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Discussion{}, classify(repo, err)
	}
	return d, nil
}

// listAll follows pagination up to maxListPages pages.
func listAll[T any](ctx context.Context, c *Client, op string, list func(github.ListOptions) ([]T, *github.Response, error)) ([]T, error) {
	var all []T
	opts := github.ListOptions{PerPage: listPageSize, Page: 1}
	for range maxListPages {
		var batch []T
		next := 0
		err := c.withRetry(ctx, op, func() (*github.Response, error) {
			b, resp, err := list(opts)
			batch = b
			if resp != nil {
				next = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if next == 0 {
			break
		}
		opts.Page = next
	}
	return all, nil
}

func loginOrUnknown(u *github.User) string {
	if login := u.GetLogin(); login != "" {
		return login
	}
	return unknownAuthor
}
