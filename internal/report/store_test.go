// internal/report/store_test.go
package report

import (
	"context"
	"encoding/json"
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
	"oss-tldr/internal/timeframe"
)

var testLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

func newTestStore(q database.Querier, now time.Time) *Store {
	s := NewStore(q, UniformPolicy(time.Hour), testLogger)
	s.now = func() time.Time { return now }
	return s
}

func ts(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func TestStore_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 20, 15, 30, 0, 0, time.UTC)
	latestParams := database.GetLatestReportParams{RepositoryID: 7, Timeframe: "last_week"}

	t.Run("returns the latest existing report", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		existing := database.Report{ID: 3, RepositoryID: 7, Timeframe: "last_week"}
		mockQ.On("GetLatestReport", ctx, latestParams).Return(existing, nil).Once()

		r, err := newTestStore(mockQ, now).GetOrCreate(ctx, 7, timeframe.LastWeek)

		require.NoError(t, err)
		assert.Equal(t, existing, r)
		mockQ.AssertExpectations(t)
		mockQ.AssertNotCalled(t, "CreateReport", mock.Anything, mock.Anything)
	})

	t.Run("creates an empty report stamped with the resolved range", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		mockQ.On("GetLatestReport", ctx, latestParams).Return(database.Report{}, pgx.ErrNoRows).Once()

		today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
		want := database.CreateReportParams{
			RepositoryID:   7,
			Timeframe:      "last_week",
			TimeframeStart: ts(today.AddDate(0, 0, -7)),
			TimeframeEnd:   ts(today),
			Version:        2,
		}
		created := database.Report{ID: 11, RepositoryID: 7, Timeframe: "last_week"}
		mockQ.On("CreateReport", ctx, want).Return(created, nil).Once()

		r, err := newTestStore(mockQ, now).GetOrCreate(ctx, 7, timeframe.LastWeek)

		require.NoError(t, err)
		assert.Equal(t, created, r)
		mockQ.AssertExpectations(t)
	})

	t.Run("returns lookup errors without creating", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		dbErr := errors.New("connection reset")
		mockQ.On("GetLatestReport", ctx, latestParams).Return(database.Report{}, dbErr).Once()

		_, err := newTestStore(mockQ, now).GetOrCreate(ctx, 7, timeframe.LastWeek)

		assert.ErrorIs(t, err, dbErr)
		mockQ.AssertNotCalled(t, "CreateReport", mock.Anything, mock.Anything)
	})
}

func TestStore_ReadItems_Freshness(t *testing.T) {
	ctx := context.Background()
	written := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	key := Key{RepositoryID: 7, Timeframe: timeframe.LastWeek}
	payload, err := json.Marshal([]model.ActivityItem{{ID: 1, Number: 42, Title: "Fix build", Summary: "Fixes the build."}})
	require.NoError(t, err)

	row := database.Report{ID: 3, RepositoryID: 7, Timeframe: "last_week", Prs: payload, PrsGeneratedAt: ts(written)}

	cases := []struct {
		name      string
		age       time.Duration
		bypass    bool
		wantFound bool
	}{
		{name: "fresh at 59 minutes", age: 59 * time.Minute, wantFound: true},
		{name: "exactly at the threshold", age: time.Hour, wantFound: true},
		{name: "expired at 61 minutes", age: 61 * time.Minute, wantFound: false},
		{name: "bypass ignores age", age: 30 * 24 * time.Hour, bypass: true, wantFound: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockQ := new(databasetest.MockQuerier)
			mockQ.On("GetLatestReport", ctx, mock.Anything).Return(row, nil).Once()

			items, found, err := newTestStore(mockQ, written.Add(tc.age)).ReadItems(ctx, key, model.SectionPRs, tc.bypass)

			require.NoError(t, err)
			assert.Equal(t, tc.wantFound, found)
			if tc.wantFound {
				require.Len(t, items, 1)
				assert.Equal(t, "Fixes the build.", items[0].Summary)
			} else {
				assert.Nil(t, items)
			}
		})
	}
}

func TestStore_Read_Missing(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	key := Key{RepositoryID: 7, Timeframe: timeframe.LastDay}

	t.Run("no report row", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		mockQ.On("GetLatestReport", ctx, mock.Anything).Return(database.Report{}, pgx.ErrNoRows).Once()

		_, found, err := newTestStore(mockQ, now).ReadItems(ctx, key, model.SectionIssues, true)

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("section never written", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		mockQ.On("GetLatestReport", ctx, mock.Anything).Return(database.Report{ID: 1}, nil).Once()

		_, found, err := newTestStore(mockQ, now).ReadTLDR(ctx, key, true)

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("payload without timestamp is stale unless bypassing", func(t *testing.T) {
		row := database.Report{ID: 1, People: []byte(`[]`)}
		mockQ := new(databasetest.MockQuerier)
		mockQ.On("GetLatestReport", ctx, mock.Anything).Return(row, nil).Twice()
		s := newTestStore(mockQ, now)

		_, found, err := s.ReadPeople(ctx, key, false)
		require.NoError(t, err)
		assert.False(t, found)

		people, found, err := s.ReadPeople(ctx, key, true)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, people)
	})

	t.Run("empty item list is a cached result", func(t *testing.T) {
		row := database.Report{ID: 1, Issues: []byte(`[]`), IssuesGeneratedAt: ts(now.Add(-time.Minute))}
		mockQ := new(databasetest.MockQuerier)
		mockQ.On("GetLatestReport", ctx, mock.Anything).Return(row, nil).Once()

		items, found, err := newTestStore(mockQ, now).ReadItems(ctx, key, model.SectionIssues, false)

		require.NoError(t, err)
		assert.True(t, found)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestStore_Write(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

	t.Run("stamps only the written section", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		want := database.UpdateReportIssuesParams{ID: 3, Issues: []byte(`[]`), IssuesGeneratedAt: ts(now)}
		mockQ.On("UpdateReportIssues", ctx, want).Return(database.Report{ID: 3}, nil).Once()

		_, err := newTestStore(mockQ, now).WriteItems(ctx, 3, model.SectionIssues, nil)

		require.NoError(t, err)
		mockQ.AssertExpectations(t)
		mockQ.AssertNotCalled(t, "UpdateReportPRs", mock.Anything, mock.Anything)
	})

	t.Run("writes tldr text", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		want := database.UpdateReportTLDRParams{ID: 3, TldrText: pgtype.Text{String: "All quiet.", Valid: true}, TldrGeneratedAt: ts(now)}
		mockQ.On("UpdateReportTLDR", ctx, want).Return(database.Report{ID: 3}, nil).Once()

		_, err := newTestStore(mockQ, now).WriteTLDR(ctx, 3, "All quiet.")

		require.NoError(t, err)
		mockQ.AssertExpectations(t)
	})

	t.Run("unknown report is ReportNotFound", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)
		mockQ.On("UpdateReportPeople", ctx, mock.Anything).Return(database.Report{}, pgx.ErrNoRows).Once()

		_, err := newTestStore(mockQ, now).WritePeople(ctx, 99, []model.Contributor{{Username: "alice"}})

		assert.ErrorIs(t, err, custom_errors.ErrReportNotFound)
	})

	t.Run("rejects non-item sections", func(t *testing.T) {
		mockQ := new(databasetest.MockQuerier)

		_, err := newTestStore(mockQ, now).WriteItems(ctx, 3, model.SectionTLDR, nil)

		assert.Error(t, err)
		mockQ.AssertExpectations(t)
	})
}

func TestPolicies(t *testing.T) {
	tiered := DefaultTieredPolicy()
	assert.Equal(t, time.Hour, tiered.Threshold(timeframe.LastDay))
	assert.Equal(t, 6*time.Hour, tiered.Threshold(timeframe.LastWeek))
	assert.Equal(t, 24*time.Hour, tiered.Threshold(timeframe.LastMonth))
	assert.Equal(t, 7*24*time.Hour, tiered.Threshold(timeframe.LastYear))

	for _, tf := range timeframe.All {
		assert.Equal(t, time.Hour, UniformPolicy(time.Hour).Threshold(tf))
	}

	p, err := NewPolicy("tiered", 0)
	require.NoError(t, err)
	assert.IsType(t, TieredPolicy{}, p)

	p, err = NewPolicy("uniform", 0)
	require.NoError(t, err)
	assert.Equal(t, UniformPolicy(DefaultTTL), p)

	_, err = NewPolicy("lru", time.Hour)
	assert.Error(t, err)
}
