// internal/llm/client.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/errgroup"

	"oss-tldr/internal/model"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// Config holds the model settings shared by every call.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int64
	Concurrency int
}

// Result is the outcome of summarizing one item.
type Result struct {
	Summary string
	Err     error
}

// Client summarizes activity, aggregates summaries and explains changes with
// the Anthropic Messages API.
type Client struct {
	client anthropic.Client
	cfg    Config
	logger *slog.Logger
}

// NewClient creates a Client. Extra request options are passed to the SDK.
func NewClient(cfg Config, logger *slog.Logger, opts ...option.RequestOption) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &Client{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
		logger: logger,
	}
}

// Summarize produces a short summary per item, in order. A failed item
// carries its error and an empty summary; the batch itself never fails.
func (c *Client) Summarize(ctx context.Context, items []model.ActivityItem) []Result {
	results := make([]Result, len(items))

	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)
	for i := range items {
		g.Go(func() error {
			results[i] = c.summarizeItem(ctx, items[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *Client) summarizeItem(ctx context.Context, item model.ActivityItem) Result {
	input, err := json.Marshal(struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}{Title: item.Title, Body: item.Body})
	if err != nil {
		return Result{Err: err}
	}

	summary, err := c.complete(ctx, itemSummaryPrompt, string(input))
	if err != nil {
		c.logger.Debug("Item summary failed", "number", item.Number, "error", err)
		return Result{Err: fmt.Errorf("summarize #%d: %w", item.Number, err)}
	}
	return Result{Summary: summary}
}

// Aggregate returns a digest of the given summaries in one response.
func (c *Client) Aggregate(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, digestPrompt, strings.TrimSpace(text))
}

// AggregateStream yields the digest as text deltas. Stopping the iteration
// closes the upstream stream; a failure is yielded as the final value.
func (c *Client) AggregateStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return c.stream(ctx, "stream digest", digestPrompt, strings.TrimSpace(text))
}

// ExplainDiff describes the meaningful changes of one file's diff.
func (c *Client) ExplainDiff(ctx context.Context, file, patch string) (string, error) {
	return c.complete(ctx, diffPrompt, fmt.Sprintf("File: %s\n\nDiff:\n%s", file, strings.TrimSpace(patch)))
}

// DeepDive streams a Markdown write-up of an issue or pull request and its
// conversation, with the same stopping and failure rules as AggregateStream.
func (c *Client) DeepDive(ctx context.Context, d model.Discussion) iter.Seq2[string, error] {
	input, err := json.Marshal(d)
	if err != nil {
		return func(yield func(string, error) bool) {
			yield("", err)
		}
	}
	return c.stream(ctx, "stream deep dive", deepDivePrompt, string(input))
}

func (c *Client) stream(ctx context.Context, op, system, user string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := c.client.Messages.NewStreaming(ctx, c.params(system, user))
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch delta := ev.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if delta.Text == "" {
						continue
					}
					if !yield(delta.Text, nil) {
						return
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield("", fmt.Errorf("%s: %w", op, err))
		}
	}
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	message, err := c.client.Messages.New(ctx, c.params(system, user))
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func (c *Client) params(system, user string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
}
