// internal/report/engine_test.go
package report

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss-tldr/internal/database"
	"oss-tldr/internal/database/databasetest"
	custom_errors "oss-tldr/internal/errors"
	"oss-tldr/internal/github"
	"oss-tldr/internal/llm"
	"oss-tldr/internal/model"
	"oss-tldr/internal/timeframe"
	"oss-tldr/internal/tracker"
)

type fakeSource struct {
	mu      sync.Mutex
	items   map[model.ItemKind][]model.ActivityItem
	err     error
	calls   map[model.ItemKind]int
	release chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		items: make(map[model.ItemKind][]model.ActivityItem),
		calls: make(map[model.ItemKind]int),
	}
}

func (f *fakeSource) GetRepository(_ context.Context, owner, name string) (*model.Repository, error) {
	return &model.Repository{Owner: owner, Name: name, FullName: owner + "/" + name}, nil
}

func (f *fakeSource) FetchActivity(ctx context.Context, q github.ActivityQuery) ([]model.ActivityItem, error) {
	f.mu.Lock()
	f.calls[q.Kind]++
	items, err, release := f.items[q.Kind], f.err, f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := make([]model.ActivityItem, len(items))
	copy(out, items)
	return out, nil
}

func (f *fakeSource) fetches(kind model.ItemKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

type fakeTracker struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTracker) Track(_ context.Context, _ tracker.RepositorySource, _ model.User, owner, name string) (database.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return database.Repository{ID: 1, FullName: owner + "/" + name}, nil
}

type fakeLLM struct {
	mu           sync.Mutex
	failNumbers  map[int]bool
	chunks       []string
	streamErr    error
	streams      int
	stopped      bool
	aggregateErr error
	aggregated   []string
}

func (f *fakeLLM) Summarize(_ context.Context, items []model.ActivityItem) []llm.Result {
	results := make([]llm.Result, len(items))
	for i, item := range items {
		if f.failNumbers[item.Number] {
			results[i] = llm.Result{Err: errors.New("model overloaded")}
			continue
		}
		results[i] = llm.Result{Summary: "Summary of " + item.Title}
	}
	return results
}

func (f *fakeLLM) Aggregate(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aggregated = append(f.aggregated, text)
	if f.aggregateErr != nil {
		return "", f.aggregateErr
	}
	return fmt.Sprintf("%d updates", len(strings.Split(text, "\n"))), nil
}

func (f *fakeLLM) AggregateStream(_ context.Context, _ string) iter.Seq2[string, error] {
	f.mu.Lock()
	f.streams++
	f.mu.Unlock()
	return func(yield func(string, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				f.mu.Lock()
				f.stopped = true
				f.mu.Unlock()
				return
			}
		}
		if f.streamErr != nil {
			yield("", f.streamErr)
		}
	}
}

type testEngine struct {
	*Engine
	mem     *databasetest.Memory
	src     *fakeSource
	llm     *fakeLLM
	tracker *fakeTracker
	clock   time.Time
}

func newTestEngine(t *testing.T, opts Options) *testEngine {
	t.Helper()
	te := &testEngine{
		mem:     databasetest.NewMemory(),
		src:     newFakeSource(),
		llm:     &fakeLLM{chunks: []string{"Busy week. ", "Two fixes landed."}},
		tracker: &fakeTracker{},
		clock:   time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC),
	}
	store := NewStore(te.mem, UniformPolicy(time.Hour), testLogger)
	store.now = func() time.Time { return te.clock }
	te.Engine = NewEngine(store, te.tracker, te.llm, te.llm, opts, testLogger)
	return te
}

func (te *testEngine) request(force bool) Request {
	return Request{
		User:      model.User{ID: 100, Login: "viewer"},
		Owner:     "octo",
		Name:      "widget",
		Timeframe: timeframe.LastWeek,
		Force:     force,
		Source:    te.src,
	}
}

func item(id int64, number int, login, title string, pr bool) model.ActivityItem {
	return model.ActivityItem{
		ID:            id,
		Number:        number,
		Title:         title,
		Author:        model.Author{Login: login, ProfileURL: "https://github.com/" + login},
		IsPullRequest: pr,
	}
}

func collect(t *testing.T, s iter.Seq2[string, error]) (string, error) {
	t.Helper()
	var sb strings.Builder
	for chunk, err := range s {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk)
	}
	return sb.String(), nil
}

func TestNewEngine_DefaultOptions(t *testing.T) {
	te := newTestEngine(t, Options{})

	assert.Equal(t, 10, te.opts.MaxItems)
	assert.Equal(t, 60*time.Second, te.opts.FetchTimeout)
	assert.Equal(t, 90*time.Second, te.opts.SummarizeTimeout)
	assert.Equal(t, 90*time.Second, te.opts.AggregateTimeout)

	custom := newTestEngine(t, Options{MaxItems: 3, FetchTimeout: time.Second})
	assert.Equal(t, 3, custom.opts.MaxItems)
	assert.Equal(t, time.Second, custom.opts.FetchTimeout)
}

func TestEngine_EndToEnd(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{MaxItems: 10})
	te.src.items[model.KindPR] = []model.ActivityItem{
		item(1, 10, "alice", "Add caching", true),
		item(2, 11, "alice", "Fix flaky test", true),
		item(3, 12, "bob", "Bump deps", true),
	}
	te.src.items[model.KindIssue] = []model.ActivityItem{
		item(4, 13, "alice", "Crash on start", false),
	}

	first, err := te.PullRequests(ctx, te.request(false))
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.Len(t, first.Data, 3)
	assert.Equal(t, "Summary of Add caching", first.Data[0].Summary)
	require.Len(t, te.mem.Reports(), 1, "first request creates the report row")

	te.clock = te.clock.Add(30 * time.Minute)
	second, err := te.PullRequests(ctx, te.request(false))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, te.src.fetches(model.KindPR), "cache hit must not fetch")

	people, err := te.People(ctx, te.request(false))
	require.NoError(t, err)
	assert.False(t, people.Cached)
	assert.Equal(t, 1, te.src.fetches(model.KindPR), "cached prs are reused")
	assert.Equal(t, 1, te.src.fetches(model.KindIssue), "missing issues are fetched")

	require.Len(t, people.Data, 2)
	assert.Equal(t, "alice", people.Data[0].Username)
	assert.Equal(t, 3, people.Data[0].TotalItems)
	assert.Len(t, people.Data[0].PRs, 2)
	assert.Len(t, people.Data[0].Issues, 1)
	assert.Equal(t, "3 updates", people.Data[0].TLDR)
	assert.Equal(t, "bob", people.Data[1].Username)
	assert.Equal(t, 1, people.Data[1].TotalItems)

	issues, err := te.Issues(ctx, te.request(false))
	require.NoError(t, err)
	assert.True(t, issues.Cached, "issues fetched for people are persisted to their own section")

	assert.Len(t, te.mem.Reports(), 1, "all sections share one report row")
	assert.Equal(t, 4, te.tracker.calls, "tracking runs on every request")
}

func TestEngine_ForceBypass(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{})
	te.src.items[model.KindIssue] = []model.ActivityItem{item(1, 1, "alice", "Old", false)}

	_, err := te.Issues(ctx, te.request(false))
	require.NoError(t, err)
	before := te.mem.Reports()[0].IssuesGeneratedAt.Time

	te.src.items[model.KindIssue] = []model.ActivityItem{item(2, 2, "bob", "New", false)}
	te.clock = te.clock.Add(5 * time.Minute)

	res, err := te.Issues(ctx, te.request(true))
	require.NoError(t, err)
	assert.False(t, res.Cached)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "New", res.Data[0].Title)
	assert.Equal(t, 2, te.src.fetches(model.KindIssue))

	after := te.mem.Reports()[0].IssuesGeneratedAt.Time
	assert.True(t, after.After(before), "force overwrites the timestamp")

	cached, err := te.Issues(ctx, te.request(false))
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Equal(t, "New", cached.Data[0].Title)
}

func TestEngine_ExpiredSectionIsRegenerated(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{})
	te.src.items[model.KindPR] = []model.ActivityItem{item(1, 1, "alice", "A", true)}

	_, err := te.PullRequests(ctx, te.request(false))
	require.NoError(t, err)

	te.clock = te.clock.Add(61 * time.Minute)
	res, err := te.PullRequests(ctx, te.request(false))
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, te.src.fetches(model.KindPR))
}

func TestEngine_EmptyActivityIsCached(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{})

	first, err := te.PullRequests(ctx, te.request(false))
	require.NoError(t, err)
	assert.NotNil(t, first.Data)
	assert.Empty(t, first.Data)

	second, err := te.PullRequests(ctx, te.request(false))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Empty(t, second.Data)
	assert.Equal(t, 1, te.src.fetches(model.KindPR))
}

func TestEngine_SummaryFailuresAreAbsorbed(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{})
	te.llm.failNumbers = map[int]bool{2: true}
	te.src.items[model.KindPR] = []model.ActivityItem{
		item(1, 1, "alice", "One", true),
		item(2, 2, "alice", "Two", true),
	}

	res, err := te.PullRequests(ctx, te.request(false))
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "Summary of One", res.Data[0].Summary)
	assert.Empty(t, res.Data[1].Summary)
}

func TestEngine_TopKIsEnforced(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{MaxItems: 2})
	te.src.items[model.KindPR] = []model.ActivityItem{
		item(1, 1, "a", "1", true),
		item(2, 2, "b", "2", true),
		item(3, 3, "c", "3", true),
	}

	res, err := te.PullRequests(ctx, te.request(false))
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
}

func TestEngine_FetchFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{})
	te.src.err = errors.New("search unavailable")

	_, err := te.PullRequests(ctx, te.request(false))

	var pErr *custom_errors.PipelineError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, custom_errors.StageFetch, pErr.Stage)
	assert.Equal(t, "prs", pErr.Section)
	assert.Empty(t, te.mem.Reports())
}

func TestEngine_InvalidTimeframe(t *testing.T) {
	te := newTestEngine(t, Options{})
	req := te.request(false)
	req.Timeframe = "last_decade"

	_, err := te.PullRequests(context.Background(), req)

	var tfErr *custom_errors.InvalidTimeframeError
	assert.ErrorAs(t, err, &tfErr)
	assert.Zero(t, te.tracker.calls)
}

func TestEngine_TLDR_RefusesWithoutDependencies(t *testing.T) {
	ctx := context.Background()

	t.Run("both missing", func(t *testing.T) {
		te := newTestEngine(t, Options{})

		_, err := te.TLDR(ctx, te.request(false))

		assert.ErrorIs(t, err, custom_errors.ErrDependencyMissing)
		assert.Empty(t, te.mem.Reports(), "refusal must not create a report")
		assert.Zero(t, te.mem.TotalMutations())
		assert.Zero(t, te.src.fetches(model.KindPR))
		assert.Zero(t, te.src.fetches(model.KindIssue))
	})

	t.Run("issues missing", func(t *testing.T) {
		te := newTestEngine(t, Options{})
		te.src.items[model.KindPR] = []model.ActivityItem{item(1, 1, "alice", "A", true)}
		_, err := te.PullRequests(ctx, te.request(false))
		require.NoError(t, err)
		mutations := te.mem.TotalMutations()

		_, err = te.TLDR(ctx, te.request(false))

		assert.ErrorIs(t, err, custom_errors.ErrDependencyMissing)
		assert.Equal(t, mutations, te.mem.TotalMutations())
	})
}

func TestEngine_TLDR_EmptyCorpus(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{})
	_, err := te.PullRequests(ctx, te.request(false))
	require.NoError(t, err)
	_, err = te.Issues(ctx, te.request(false))
	require.NoError(t, err)

	stream, err := te.TLDR(ctx, te.request(false))
	require.NoError(t, err)
	text, err := collect(t, stream.Chunks)

	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Zero(t, te.mem.Mutations["UpdateReportTLDR"])
	assert.Zero(t, te.llm.streams)
}

func seedDependencies(t *testing.T, te *testEngine) {
	t.Helper()
	te.src.items[model.KindPR] = []model.ActivityItem{item(1, 1, "alice", "Add caching", true)}
	te.src.items[model.KindIssue] = []model.ActivityItem{item(2, 2, "bob", "Crash", false)}
	_, err := te.PullRequests(context.Background(), te.request(false))
	require.NoError(t, err)
	_, err = te.Issues(context.Background(), te.request(false))
	require.NoError(t, err)
}

func TestEngine_TLDR_StreamsAndPersistsOnce(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{})
	seedDependencies(t, te)

	stream, err := te.TLDR(ctx, te.request(false))
	require.NoError(t, err)
	assert.False(t, stream.Cached)

	var chunks []string
	for chunk, err := range stream.Chunks {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
		assert.Zero(t, te.mem.Mutations["UpdateReportTLDR"], "nothing is written before the stream ends")
	}
	assert.Equal(t, []string{"Busy week. ", "Two fixes landed."}, chunks)
	assert.Equal(t, 1, te.mem.Mutations["UpdateReportTLDR"])

	cached, err := te.TLDR(ctx, te.request(false))
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	text, err := collect(t, cached.Chunks)
	require.NoError(t, err)
	assert.Equal(t, "Busy week. Two fixes landed.", text)
	assert.Equal(t, 1, te.llm.streams)
}

func TestEngine_TLDR_ConsumerStopsEarly(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{})
	seedDependencies(t, te)

	stream, err := te.TLDR(ctx, te.request(false))
	require.NoError(t, err)
	for range stream.Chunks {
		break
	}

	assert.True(t, te.llm.stopped, "the aggregator stream is closed")
	assert.Zero(t, te.mem.Mutations["UpdateReportTLDR"])
	assert.False(t, te.mem.Reports()[0].TldrText.Valid)
}

func TestEngine_TLDR_RequestCancelledMidStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	te := newTestEngine(t, Options{})
	seedDependencies(t, te)

	stream, err := te.TLDR(ctx, te.request(false))
	require.NoError(t, err)

	// The fake aggregator ignores its context and yields every chunk.
	var chunks []string
	var streamErr error
	for chunk, err := range stream.Chunks {
		if err != nil {
			streamErr = err
			break
		}
		chunks = append(chunks, chunk)
		cancel()
	}

	assert.Equal(t, []string{"Busy week. ", "Two fixes landed."}, chunks)
	var pErr *custom_errors.PipelineError
	require.ErrorAs(t, streamErr, &pErr)
	assert.Equal(t, custom_errors.StageAggregate, pErr.Stage)
	assert.ErrorIs(t, streamErr, context.Canceled)
	assert.Zero(t, te.mem.Mutations["UpdateReportTLDR"])
	assert.False(t, te.mem.Reports()[0].TldrText.Valid)
}

func TestEngine_TLDR_StreamError(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{})
	seedDependencies(t, te)
	te.llm.streamErr = errors.New("overloaded")

	stream, err := te.TLDR(ctx, te.request(false))
	require.NoError(t, err)
	text, err := collect(t, stream.Chunks)

	assert.Equal(t, "Busy week. Two fixes landed.", text)
	var pErr *custom_errors.PipelineError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, custom_errors.StageAggregate, pErr.Stage)
	assert.Zero(t, te.mem.Mutations["UpdateReportTLDR"])
}

func TestEngine_TLDR_UsesStaleDependencies(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{})
	seedDependencies(t, te)
	te.clock = te.clock.Add(48 * time.Hour)

	stream, err := te.TLDR(ctx, te.request(false))
	require.NoError(t, err)
	_, err = collect(t, stream.Chunks)
	require.NoError(t, err)

	assert.Equal(t, 1, te.src.fetches(model.KindPR), "stale dependencies are not regenerated")
	assert.Equal(t, 1, te.mem.Mutations["UpdateReportTLDR"])
}

func TestChunkText(t *testing.T) {
	text := strings.Repeat("é", 120)

	var sizes []int
	var sb strings.Builder
	for chunk := range chunkText(text, 50) {
		sizes = append(sizes, len([]rune(chunk)))
		sb.WriteString(chunk)
	}

	assert.Equal(t, []int{50, 50, 20}, sizes)
	assert.Equal(t, text, sb.String())
}

func TestEngine_SingleFlight(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, Options{SingleFlight: true})
	te.src.items[model.KindPR] = []model.ActivityItem{item(1, 1, "alice", "A", true)}
	te.src.release = make(chan struct{})

	var wg sync.WaitGroup
	results := make([]Result[[]model.ActivityItem], 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := te.PullRequests(ctx, te.request(false))
			assert.NoError(t, err)
			results[i] = res
		}()
	}

	require.Eventually(t, func() bool {
		te.tracker.mu.Lock()
		defer te.tracker.mu.Unlock()
		return te.tracker.calls == 2 && te.src.fetches(model.KindPR) == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(te.src.release)
	wg.Wait()

	assert.Equal(t, 1, te.src.fetches(model.KindPR))
	assert.Equal(t, results[0].Data, results[1].Data)
	assert.Equal(t, 1, te.mem.Mutations["UpdateReportPRs"])
}
