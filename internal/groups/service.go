// internal/groups/service.go
package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"oss-tldr/internal/database"
	custom_errors "oss-tldr/internal/errors"
)

// Group is a named list of repositories, either system-defined or owned by a user.
type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Repos       []string `json:"repos"`
	IsSystem    bool     `json:"is_system"`
}

// CreateInput is the payload for a new user group.
type CreateInput struct {
	Name        string   `json:"name" validate:"required,min=1,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Repos       []string `json:"repos" validate:"required,min=1"`
}

// UpdateInput changes only the fields that are set.
type UpdateInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Repos       []string `json:"repos" validate:"omitempty,min=1"`
}

type txFunc func(ctx context.Context, fn func(q database.Querier) error) error

// Service manages the groups visible to a user.
type Service struct {
	q      database.Querier
	inTx   txFunc
	logger *slog.Logger
}

// NewService creates a Service backed by the pool.
func NewService(dbpool *pgxpool.Pool, logger *slog.Logger) *Service {
	return &Service{
		q: database.New(dbpool),
		inTx: func(ctx context.Context, fn func(q database.Querier) error) error {
			return database.InTx(ctx, dbpool, fn)
		},
		logger: logger,
	}
}

// List returns the system groups and the user's own groups.
func (s *Service) List(ctx context.Context, userID int64) (system, own []Group, err error) {
	rows, err := s.q.ListGroupsForUser(ctx, pgtype.Int8{Int64: userID, Valid: true})
	if err != nil {
		return nil, nil, fmt.Errorf("list groups: %w", err)
	}

	ids := make([]int64, len(rows))
	for i, g := range rows {
		ids[i] = g.ID
	}
	repos, err := s.reposByGroup(ctx, s.q, ids)
	if err != nil {
		return nil, nil, err
	}

	system, own = []Group{}, []Group{}
	for _, g := range rows {
		out := toGroup(g, repos[g.ID])
		if g.IsSystem {
			system = append(system, out)
		} else {
			own = append(own, out)
		}
	}
	return system, own, nil
}

// Get returns a system group or one of the user's own groups.
func (s *Service) Get(ctx context.Context, userID int64, slug string) (Group, error) {
	g, err := s.visible(ctx, s.q, userID, slug)
	if err != nil {
		return Group{}, err
	}
	repos, err := s.reposByGroup(ctx, s.q, []int64{g.ID})
	if err != nil {
		return Group{}, err
	}
	return toGroup(g, repos[g.ID]), nil
}

// Create stores a new group owned by the user under a unique slug.
func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (Group, error) {
	repos, err := NormalizeRepos(in.Repos)
	if err != nil {
		return Group{}, err
	}

	var out Group
	err = s.inTx(ctx, func(q database.Querier) error {
		slug, err := uniqueSlug(ctx, q, Slugify(in.Name), 0)
		if err != nil {
			return err
		}
		g, err := q.CreateGroup(ctx, database.CreateGroupParams{
			Name:        in.Name,
			Description: toText(in.Description),
			Slug:        slug,
			CreatedByID: pgtype.Int8{Int64: userID, Valid: true},
		})
		if err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		if _, err := q.CreateGroupRepositories(ctx, repositoryRows(g.ID, repos)); err != nil {
			return fmt.Errorf("create group repositories: %w", err)
		}
		out = toGroup(g, repos)
		return nil
	})
	if err != nil {
		return Group{}, err
	}
	s.logger.Info("Created group", "slug", out.ID, "user_id", userID, "repos", len(repos))
	return out, nil
}

// Update applies the set fields of in to one of the user's groups. The slug
// does not follow a renamed group.
func (s *Service) Update(ctx context.Context, userID int64, slug string, in UpdateInput) (Group, error) {
	var repos []string
	if in.Repos != nil {
		normalized, err := NormalizeRepos(in.Repos)
		if err != nil {
			return Group{}, err
		}
		repos = normalized
	}

	var out Group
	err := s.inTx(ctx, func(q database.Querier) error {
		g, err := s.owned(ctx, q, userID, slug)
		if err != nil {
			return err
		}

		params := database.UpdateGroupParams{ID: g.ID, Name: g.Name, Description: g.Description}
		if in.Name != nil {
			params.Name = *in.Name
		}
		if in.Description != nil {
			params.Description = toText(in.Description)
		}
		g, err = q.UpdateGroup(ctx, params)
		if err != nil {
			return fmt.Errorf("update group: %w", err)
		}

		if repos != nil {
			if err := q.DeleteGroupRepositories(ctx, g.ID); err != nil {
				return fmt.Errorf("clear group repositories: %w", err)
			}
			if _, err := q.CreateGroupRepositories(ctx, repositoryRows(g.ID, repos)); err != nil {
				return fmt.Errorf("create group repositories: %w", err)
			}
		} else {
			current, err := s.reposByGroup(ctx, q, []int64{g.ID})
			if err != nil {
				return err
			}
			repos = current[g.ID]
		}
		out = toGroup(g, repos)
		return nil
	})
	if err != nil {
		return Group{}, err
	}
	return out, nil
}

// Delete removes one of the user's groups.
func (s *Service) Delete(ctx context.Context, userID int64, slug string) error {
	return s.inTx(ctx, func(q database.Querier) error {
		g, err := s.owned(ctx, q, userID, slug)
		if err != nil {
			return err
		}
		if err := q.DeleteGroup(ctx, g.ID); err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		s.logger.Info("Deleted group", "slug", slug, "user_id", userID)
		return nil
	})
}

// visible finds a group the user may read. Other users' groups look missing.
func (s *Service) visible(ctx context.Context, q database.Querier, userID int64, slug string) (database.Group, error) {
	g, err := q.GetGroupBySlug(ctx, slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.Group{}, custom_errors.ErrGroupNotFound
	}
	if err != nil {
		return database.Group{}, fmt.Errorf("get group: %w", err)
	}
	if !g.IsSystem && (!g.CreatedByID.Valid || g.CreatedByID.Int64 != userID) {
		return database.Group{}, custom_errors.ErrGroupNotFound
	}
	return g, nil
}

// owned finds a group the user may modify.
func (s *Service) owned(ctx context.Context, q database.Querier, userID int64, slug string) (database.Group, error) {
	g, err := s.visible(ctx, q, userID, slug)
	if err != nil {
		return database.Group{}, err
	}
	if g.IsSystem {
		return database.Group{}, custom_errors.ErrGroupReadOnly
	}
	return g, nil
}

func (s *Service) reposByGroup(ctx context.Context, q database.Querier, ids []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.ListGroupRepositories(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list group repositories: %w", err)
	}
	for _, r := range rows {
		out[r.GroupID] = append(out[r.GroupID], r.RepositoryIdentifier)
	}
	return out, nil
}

func toGroup(g database.Group, repos []string) Group {
	if repos == nil {
		repos = []string{}
	}
	out := Group{ID: g.Slug, Name: g.Name, Repos: repos, IsSystem: g.IsSystem}
	if g.Description.Valid {
		desc := g.Description.String
		out.Description = &desc
	}
	return out
}

func toText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
