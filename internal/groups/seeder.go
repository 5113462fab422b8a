// internal/groups/seeder.go
package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"oss-tldr/internal/database"
)

// Seeder keeps system groups in the database in line with the YAML files in a directory.
type Seeder struct {
	dbpool   *pgxpool.Pool
	logger   *slog.Logger
	dir      string
	schedule string
}

// NewSeeder creates a Seeder. An empty schedule seeds once at startup only.
func NewSeeder(dbpool *pgxpool.Pool, logger *slog.Logger, dir, schedule string) (*Seeder, error) {
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return nil, fmt.Errorf("invalid group reseed schedule %q: %w", schedule, err)
		}
	}
	return &Seeder{
		dbpool:   dbpool,
		logger:   logger,
		dir:      dir,
		schedule: schedule,
	}, nil
}

// Start seeds once and then again on every tick of the schedule until ctx is done.
func (s *Seeder) Start(ctx context.Context) {
	s.logger.Info("Starting group seeder", "dir", s.dir, "schedule", s.schedule)
	s.runSeed(ctx) // Initial seed

	if s.schedule == "" {
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.runSeed(ctx) }); err != nil {
		s.logger.Error("Failed to schedule group reseeding", "error", err)
		return
	}
	c.Start()

	<-ctx.Done()
	s.logger.Info("Group seeder shutting down", "reason", ctx.Err())
	<-c.Stop().Done()
}

func (s *Seeder) runSeed(ctx context.Context) {
	if err := s.Seed(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Failed to seed system groups", "error", err)
	}
}

// Seed loads the definitions and upserts them in a single transaction.
func (s *Seeder) Seed(ctx context.Context) error {
	defs, err := LoadDir(s.dir, s.logger)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return nil
	}

	err = database.InTx(ctx, s.dbpool, func(q database.Querier) error {
		return s.seed(ctx, q, defs)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Seeded system groups", "count", len(defs))
	return nil
}

func (s *Seeder) seed(ctx context.Context, q database.Querier, defs []Definition) error {
	for _, def := range defs {
		if err := s.seedGroup(ctx, q, def); err != nil {
			return fmt.Errorf("seed group %q: %w", def.ID, err)
		}
	}
	return nil
}

func (s *Seeder) seedGroup(ctx context.Context, q database.Querier, def Definition) error {
	description := pgtype.Text{String: def.Description, Valid: def.Description != ""}

	var group database.Group
	existing, err := q.GetGroupBySlug(ctx, def.ID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		group, err = q.CreateGroup(ctx, database.CreateGroupParams{
			Name:        def.Name,
			Description: description,
			Slug:        def.ID,
			IsSystem:    true,
		})
		if err != nil {
			return err
		}
	case err != nil:
		return err
	case !existing.IsSystem:
		s.logger.Warn("Group slug is taken by a user group, skipping", "slug", def.ID)
		return nil
	default:
		group, err = q.UpdateGroup(ctx, database.UpdateGroupParams{
			ID:          existing.ID,
			Name:        def.Name,
			Description: description,
		})
		if err != nil {
			return err
		}
		if err := q.DeleteGroupRepositories(ctx, group.ID); err != nil {
			return err
		}
	}

	_, err = q.CreateGroupRepositories(ctx, repositoryRows(group.ID, def.Repos))
	return err
}

func repositoryRows(groupID int64, repos []string) []database.CreateGroupRepositoriesParams {
	rows := make([]database.CreateGroupRepositoriesParams, len(repos))
	for i, repo := range repos {
		rows[i] = database.CreateGroupRepositoriesParams{
			GroupID:              groupID,
			RepositoryIdentifier: repo,
			Position:             int32(i),
		}
	}
	return rows
}
