// internal/groups/slug.go
package groups

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"oss-tldr/internal/database"
	custom_errors "oss-tldr/internal/errors"
)

const (
	maxSlugLength = 64
	fallbackSlug  = "group"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a group name into a URL-safe identifier.
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// uniqueSlug appends -1, -2, ... to base until no other group holds it.
// A slug already held by excludeID counts as free.
func uniqueSlug(ctx context.Context, q database.Querier, base string, excludeID int64) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		g, err := q.GetGroupBySlug(ctx, candidate)
		if errors.Is(err, pgx.ErrNoRows) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if excludeID != 0 && g.ID == excludeID {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// NormalizeRepo accepts "owner/name" or a GitHub URL and returns "owner/name".
func NormalizeRepo(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	path := ref
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "github.com/") {
		raw := ref
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return "", &custom_errors.ErrInvalidRepoFormat{Repo: ref}
		}
		path = u.Path
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || (len(parts) > 2 && path == ref) {
		return "", &custom_errors.ErrInvalidRepoFormat{Repo: ref}
	}
	owner, name := parts[0], strings.TrimSuffix(parts[1], ".git")
	if owner == "" || name == "" {
		return "", &custom_errors.ErrInvalidRepoFormat{Repo: ref}
	}
	return owner + "/" + name, nil
}

// NormalizeRepos normalizes every reference and drops duplicates, keeping
// the first occurrence.
func NormalizeRepos(refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		repo, err := NormalizeRepo(ref)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[repo]; ok {
			continue
		}
		seen[repo] = struct{}{}
		out = append(out, repo)
	}
	return out, nil
}
