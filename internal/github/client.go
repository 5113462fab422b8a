// internal/github/client.go
package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"oss-tldr/internal/model"
)

const (
	maxRetries       = 3
	retryBackoff     = 500 * time.Millisecond
	maxRateLimitWait = time.Minute
	defaultMaxItems  = 10
)

// Client is a wrapper around the go-github client, scoped to one user's token.
type Client struct {
	gh       *github.Client
	logger   *slog.Logger
	maxItems int
	backoff  time.Duration
}

// Option configures a Client.
type Option func(*Client) error

// WithEnterpriseURL points the client at a GitHub Enterprise API.
func WithEnterpriseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return nil
		}
		gh, err := c.gh.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return err
		}
		c.gh = gh
		return nil
	}
}

// WithMaxItems bounds how many ranked items FetchActivity returns.
func WithMaxItems(n int) Option {
	return func(c *Client) error {
		if n > 0 {
			c.maxItems = n
		}
		return nil
	}
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client.
func NewClient(token string, logger *slog.Logger, opts ...Option) (*Client, error) {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	c := &Client{
		gh:       github.NewClient(tc),
		logger:   logger,
		maxItems: defaultMaxItems,
		backoff:  retryBackoff,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// GetRepository fetches repository details and translates them to our internal model.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*model.Repository, error) {
	var repo *github.Repository
	err := c.withRetry(ctx, "get repository", func() (*github.Response, error) {
		r, resp, err := c.gh.Repositories.Get(ctx, owner, name)
		repo = r
		return resp, err
	})
	if err != nil {
		return nil, classify(owner+"/"+name, err)
	}
	return toInternalRepository(repo), nil
}

// withRetry retries server errors with linear backoff and waits out a rate
// limit when its reset is close enough.
func (c *Client) withRetry(ctx context.Context, op string, call func() (*github.Response, error)) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		_, err = call()
		if err == nil {
			return nil
		}
		wait, ok := c.retryDelay(err, attempt)
		if !ok || attempt == maxRetries {
			return err
		}

		c.logger.Warn("Retrying GitHub request", "op", op, "attempt", attempt, "wait", wait.String(), "error", err)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return err
}

func (c *Client) retryDelay(err error, attempt int) (time.Duration, bool) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		wait := time.Until(rateErr.Rate.Reset.Time)
		if wait > maxRateLimitWait {
			return 0, false
		}
		return max(wait, 0), true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		wait := abuseErr.GetRetryAfter()
		if wait > maxRateLimitWait {
			return 0, false
		}
		return wait, true
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode >= http.StatusInternalServerError {
		return time.Duration(attempt) * c.backoff, true
	}
	return 0, false
}

// toInternalRepository translates a github.Repository object to our internal model.Repository.
func toInternalRepository(r *github.Repository) *model.Repository {
	return &model.Repository{
		GithubRepoID:  r.GetID(),
		FullName:      r.GetFullName(),
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		Description:   r.Description,
		URL:           r.GetHTMLURL(),
		Private:       r.GetPrivate(),
		Fork:          r.GetFork(),
		Archived:      r.GetArchived(),
		Language:      r.Language,
		StarsCount:    r.GetStargazersCount(),
		RepoUpdatedAt: r.GetUpdatedAt().Time,
	}
}
