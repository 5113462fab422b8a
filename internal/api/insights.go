// internal/api/insights.go
package api

import (
	"fmt"
	"iter"
	"net/http"
	"strconv"
	"strings"

	custom_errors "oss-tldr/internal/errors"
	"oss-tldr/internal/groups"
)

// deepDiveErrorMarker prefixes the last line of a deep dive that failed after it started.
const deepDiveErrorMarker = "⚠️ Error generating summary: "

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	v, err := strconv.Atoi(strings.Trim(string(b), `"`))
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	*n = flexInt(v)
	return nil
}

type patchesRequest struct {
	RepoURL     string  `json:"repo_url" validate:"required"`
	PullRequest flexInt `json:"pull_request" validate:"gt=0"`
}

type diffRequest struct {
	File  string `json:"file" validate:"required"`
	Patch string `json:"patch" validate:"required"`
}

type deepDiveRequest struct {
	RepoURL string  `json:"repo_url" validate:"required"`
	Issue   flexInt `json:"issue" validate:"gt=0"`
}

// splitRepo resolves "owner/name" or a GitHub URL.
func splitRepo(ref string) (owner, name string, err error) {
	repo, err := groups.NormalizeRepo(ref)
	if err != nil {
		return "", "", err
	}
	owner, name, _ = strings.Cut(repo, "/")
	return owner, name, nil
}

// listPatches handles POST /v1/patches
func (h *Handler) listPatches(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var in patchesRequest
	if !h.decode(w, r, &in) {
		return
	}
	owner, name, err := splitRepo(in.RepoURL)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	src, ok := h.source(w, session)
	if !ok {
		return
	}

	patches, err := src.PullRequestPatches(r.Context(), owner, name, int(in.PullRequest))
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"patches": patches})
}

// explainDiff handles POST /v1/diff
func (h *Handler) explainDiff(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}
	var in diffRequest
	if !h.decode(w, r, &in) {
		return
	}

	explanation, err := h.insights.ExplainDiff(r.Context(), in.File, in.Patch)
	if err != nil {
		respondWithDomainError(w, h.logger, &custom_errors.PipelineError{Section: "diff", Stage: custom_errors.StageSummarize, Err: err})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}

// deepDive streams a Markdown write-up of one issue or pull request.
// POST /v1/deepdive
func (h *Handler) deepDive(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var in deepDiveRequest
	if !h.decode(w, r, &in) {
		return
	}
	owner, name, err := splitRepo(in.RepoURL)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	src, ok := h.source(w, session)
	if !ok {
		return
	}

	d, err := src.Discussion(r.Context(), owner, name, int(in.Issue))
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	logger := h.logger.With("owner", owner, "repo", name, "number", d.Number)
	logger.Info("Generating deep dive", "pull_request", d.IsPullRequest, "comments", len(d.Comments), "reviews", len(d.Reviews))
	writeStream(w, logger, asPipeline(h.insights.DeepDive(r.Context(), d), "deepdive"), deepDiveErrorMarker, nil)
}

// asPipeline reports model failures of a stream as aggregate stage errors.
func asPipeline(chunks iter.Seq2[string, error], section string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for chunk, err := range chunks {
			if err != nil {
				yield("", &custom_errors.PipelineError{Section: section, Stage: custom_errors.StageAggregate, Err: err})
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

