// internal/tracker/tracker.go
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"oss-tldr/internal/database"
	custom_errors "oss-tldr/internal/errors"
	"oss-tldr/internal/model"
)

// RepositorySource looks up live repository metadata.
type RepositorySource interface {
	GetRepository(ctx context.Context, owner, name string) (*model.Repository, error)
}

// Tracker records which users have looked at which repositories.
type Tracker struct {
	dbpool *pgxpool.Pool
	q      database.Querier
	logger *slog.Logger
}

// New creates a Tracker backed by the pool.
func New(dbpool *pgxpool.Pool, logger *slog.Logger) *Tracker {
	return &Tracker{
		dbpool: dbpool,
		q:      database.New(dbpool),
		logger: logger,
	}
}

// Track refreshes the repository row from live metadata and links it to the
// user. It runs on every section request, cached or not.
func (t *Tracker) Track(ctx context.Context, src RepositorySource, user model.User, owner, name string) (database.Repository, error) {
	fullName, err := FullName(owner, name)
	if err != nil {
		return database.Repository{}, err
	}

	meta, err := src.GetRepository(ctx, owner, name)
	if err != nil {
		var notAccessible *custom_errors.RepositoryNotAccessibleError
		if errors.As(err, &notAccessible) {
			return database.Repository{}, err
		}
		return database.Repository{}, &custom_errors.RepositoryNotAccessibleError{Repo: fullName, Reason: err.Error(), Err: err}
	}

	tx, err := t.dbpool.Begin(ctx)
	if err != nil {
		return database.Repository{}, err
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction is already committed.

	repo, err := t.track(ctx, database.New(tx), meta, user)
	if err != nil {
		return database.Repository{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return database.Repository{}, err
	}
	return repo, nil
}

func (t *Tracker) track(ctx context.Context, q database.Querier, meta *model.Repository, user model.User) (database.Repository, error) {
	logger := t.logger.With("owner", meta.Owner, "repo", meta.Name, "user", user.Login)

	repo, err := q.UpsertRepository(ctx, upsertParams(meta))
	if err != nil {
		return database.Repository{}, fmt.Errorf("upsert repository: %w", err)
	}

	if _, err := q.UpsertUser(ctx, database.UpsertUserParams{
		ID:        user.ID,
		Login:     user.Login,
		Name:      toText(user.Name),
		Email:     toText(user.Email),
		AvatarUrl: toText(user.AvatarURL),
	}); err != nil {
		return database.Repository{}, fmt.Errorf("upsert user: %w", err)
	}

	if err := q.TrackRepository(ctx, database.TrackRepositoryParams{UserID: user.ID, RepositoryID: repo.ID}); err != nil {
		return database.Repository{}, fmt.Errorf("track repository: %w", err)
	}
	logger.Debug("Repository tracked", "repository_id", repo.ID)
	return repo, nil
}

// Repositories lists the repositories a user tracks, most recently added first.
func (t *Tracker) Repositories(ctx context.Context, userID int64) ([]database.Repository, error) {
	repos, err := t.q.ListTrackedRepositories(ctx, userID)
	if err != nil {
		return nil, err
	}
	if repos == nil {
		repos = []database.Repository{}
	}
	return repos, nil
}

// Untrack removes the link between a user and a repository. It reports
// false when there was nothing to remove.
func (t *Tracker) Untrack(ctx context.Context, userID int64, owner, name string) (bool, error) {
	fullName, err := FullName(owner, name)
	if err != nil {
		return false, err
	}

	repo, err := t.q.GetRepositoryByFullName(ctx, fullName)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	n, err := t.q.UntrackRepository(ctx, database.UntrackRepositoryParams{UserID: userID, RepositoryID: repo.ID})
	if err != nil {
		return false, err
	}
	if n > 0 {
		t.logger.Info("Repository untracked", "user_id", userID, "repo", fullName)
	}
	return n > 0, nil
}

// FullName validates owner and name and joins them as "owner/name".
func FullName(owner, name string) (string, error) {
	full := owner + "/" + name
	if owner == "" || name == "" || strings.Contains(owner, "/") || strings.Contains(name, "/") {
		return "", &custom_errors.ErrInvalidRepoFormat{Repo: full}
	}
	return full, nil
}

func upsertParams(r *model.Repository) database.UpsertRepositoryParams {
	fullName := r.FullName
	if fullName == "" {
		fullName = r.Owner + "/" + r.Name
	}
	return database.UpsertRepositoryParams{
		FullName:        fullName,
		Owner:           r.Owner,
		Name:            r.Name,
		Description:     toNullText(r.Description),
		HtmlUrl:         r.URL,
		IsPrivate:       r.Private,
		IsFork:          r.Fork,
		IsArchived:      r.Archived,
		Language:        toNullText(r.Language),
		StargazersCount: int32(r.StarsCount),
		GithubUpdatedAt: toTimestamptz(r.RepoUpdatedAt),
	}
}

func toText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func toNullText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return toText(*s)
}

func toTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}
