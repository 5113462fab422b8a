// internal/api/users.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// trackedRepository is the client view of a tracked repository.
type trackedRepository struct {
	ID          int64   `json:"id"`
	FullName    string  `json:"full_name"`
	Owner       string  `json:"owner"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	HTMLURL     string  `json:"html_url"`
	IsPrivate   bool    `json:"is_private"`
	IsFork      bool    `json:"is_fork"`
	IsArchived  bool    `json:"is_archived"`
	Language    *string `json:"language"`
	Stars       int32   `json:"stargazers_count"`
}

// listRepositories handles GET /v1/users/me/repositories
func (h *Handler) listRepositories(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	repos, err := h.tracking.Repositories(r.Context(), session.User.ID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}

	out := make([]trackedRepository, len(repos))
	for i, repo := range repos {
		out[i] = trackedRepository{
			ID:         repo.ID,
			FullName:   repo.FullName,
			Owner:      repo.Owner,
			Name:       repo.Name,
			HTMLURL:    repo.HtmlUrl,
			IsPrivate:  repo.IsPrivate,
			IsFork:     repo.IsFork,
			IsArchived: repo.IsArchived,
			Stars:      repo.StargazersCount,
		}
		if repo.Description.Valid {
			out[i].Description = &repo.Description.String
		}
		if repo.Language.Valid {
			out[i].Language = &repo.Language.String
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"repositories": out})
}

// untrackRepository handles DELETE /v1/users/me/repositories/{owner}/{repo}
func (h *Handler) untrackRepository(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	removed, err := h.tracking.Untrack(r.Context(), session.User.ID, chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	if !removed {
		respondWithError(w, http.StatusNotFound, "Repository not tracked")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
