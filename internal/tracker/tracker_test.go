// internal/tracker/tracker_test.go
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"oss-tldr/internal/database"
	"oss-tldr/internal/database/databasetest"
	custom_errors "oss-tldr/internal/errors"
	"oss-tldr/internal/model"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

type stubSource struct {
	repo *model.Repository
	err  error
}

func (s stubSource) GetRepository(context.Context, string, string) (*model.Repository, error) {
	return s.repo, s.err
}

func TestTracker_track(t *testing.T) {
	ctx := context.Background()
	description := "Widgets for everyone"
	updated := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	meta := &model.Repository{
		GithubRepoID:  12345,
		FullName:      "octo/widget",
		Owner:         "octo",
		Name:          "widget",
		Description:   &description,
		URL:           "https://github.com/octo/widget",
		StarsCount:    42,
		RepoUpdatedAt: updated,
	}
	user := model.User{ID: 9, Login: "viewer", Name: "Vi Ewer"}

	t.Run("upserts repository and user then links them", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		tr := &Tracker{logger: logger}

		mockQ.On("UpsertRepository", ctx, database.UpsertRepositoryParams{
			FullName:        "octo/widget",
			Owner:           "octo",
			Name:            "widget",
			Description:     pgtype.Text{String: description, Valid: true},
			HtmlUrl:         "https://github.com/octo/widget",
			StargazersCount: 42,
			GithubUpdatedAt: pgtype.Timestamptz{Time: updated, Valid: true},
		}).Return(database.Repository{ID: 5, FullName: "octo/widget"}, nil).Once()
		mockQ.On("UpsertUser", ctx, database.UpsertUserParams{
			ID:    9,
			Login: "viewer",
			Name:  pgtype.Text{String: "Vi Ewer", Valid: true},
		}).Return(database.User{ID: 9}, nil).Once()
		mockQ.On("TrackRepository", ctx, database.TrackRepositoryParams{UserID: 9, RepositoryID: 5}).Return(nil).Once()

		repo, err := tr.track(ctx, mockQ, meta, user)

		require.NoError(t, err)
		assert.Equal(t, int64(5), repo.ID)
		mockQ.AssertExpectations(t)
	})

	t.Run("stops when the repository upsert fails", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		tr := &Tracker{logger: logger}
		dbErr := errors.New("unexpected database error")

		mockQ.On("UpsertRepository", ctx, mock.Anything).Return(database.Repository{}, dbErr).Once()

		_, err := tr.track(ctx, mockQ, meta, user)

		assert.ErrorIs(t, err, dbErr)
		mockQ.AssertNotCalled(t, "UpsertUser", mock.Anything, mock.Anything)
		mockQ.AssertNotCalled(t, "TrackRepository", mock.Anything, mock.Anything)
	})
}

func TestTracker_Track_SourceErrors(t *testing.T) {
	ctx := context.Background()
	tr := &Tracker{logger: logger}

	t.Run("classified errors pass through", func(t *testing.T) {
		want := &custom_errors.RepositoryNotAccessibleError{Repo: "octo/secret", Reason: "repository not found or no access"}

		_, err := tr.Track(ctx, stubSource{err: want}, model.User{ID: 1}, "octo", "secret")

		assert.Same(t, want, err)
	})

	t.Run("other errors become not accessible", func(t *testing.T) {
		_, err := tr.Track(ctx, stubSource{err: errors.New("boom")}, model.User{ID: 1}, "octo", "widget")

		var na *custom_errors.RepositoryNotAccessibleError
		require.ErrorAs(t, err, &na)
		assert.Equal(t, "octo/widget", na.Repo)
	})

	t.Run("malformed names are rejected before any lookup", func(t *testing.T) {
		_, err := tr.Track(ctx, stubSource{}, model.User{ID: 1}, "", "widget")

		var formatErr *custom_errors.ErrInvalidRepoFormat
		assert.ErrorAs(t, err, &formatErr)
	})
}

func TestTracker_Untrack(t *testing.T) {
	ctx := context.Background()

	t.Run("removes an existing link", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		tr := &Tracker{q: mockQ, logger: logger}
		mockQ.On("GetRepositoryByFullName", ctx, "octo/widget").Return(database.Repository{ID: 5}, nil).Once()
		mockQ.On("UntrackRepository", ctx, database.UntrackRepositoryParams{UserID: 9, RepositoryID: 5}).Return(int64(1), nil).Once()

		removed, err := tr.Untrack(ctx, 9, "octo", "widget")

		require.NoError(t, err)
		assert.True(t, removed)
		mockQ.AssertExpectations(t)
	})

	t.Run("unknown repository is a no-op", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		tr := &Tracker{q: mockQ, logger: logger}
		mockQ.On("GetRepositoryByFullName", ctx, "octo/nope").Return(database.Repository{}, pgx.ErrNoRows).Once()

		removed, err := tr.Untrack(ctx, 9, "octo", "nope")

		require.NoError(t, err)
		assert.False(t, removed)
		mockQ.AssertNotCalled(t, "UntrackRepository", mock.Anything, mock.Anything)
	})
}

func TestTracker_Repositories(t *testing.T) {
	ctx := context.Background()
	mem := databasetest.NewMemory()
	tr := &Tracker{q: mem, logger: logger}

	repos, err := tr.Repositories(ctx, 9)
	require.NoError(t, err)
	assert.NotNil(t, repos)
	assert.Empty(t, repos)

	for _, name := range []string{"octo/first", "octo/second"} {
		repo, err := mem.UpsertRepository(ctx, database.UpsertRepositoryParams{FullName: name})
		require.NoError(t, err)
		require.NoError(t, mem.TrackRepository(ctx, database.TrackRepositoryParams{UserID: 9, RepositoryID: repo.ID}))
	}

	repos, err = tr.Repositories(ctx, 9)
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "octo/second", repos[0].FullName)
}

func TestFullName(t *testing.T) {
	name, err := FullName("octo", "widget")
	require.NoError(t, err)
	assert.Equal(t, "octo/widget", name)

	for _, tc := range [][2]string{{"", "x"}, {"x", ""}, {"a/b", "c"}} {
		_, err := FullName(tc[0], tc[1])
		assert.Error(t, err, tc)
	}
}
