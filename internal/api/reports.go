// internal/api/reports.go
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"oss-tldr/internal/report"
	"oss-tldr/internal/timeframe"
)

// tldrErrorMarker prefixes the last line of a TL;DR stream that failed after it started.
const tldrErrorMarker = "⚠️ Error generating TL;DR: "

// sectionRequest reads the common report parameters.
// GET /v1/reports/{owner}/{repo}/{section}?timeframe=last_week&force=true
func (h *Handler) sectionRequest(w http.ResponseWriter, r *http.Request) (report.Request, bool) {
	session, ok := h.session(w, r)
	if !ok {
		return report.Request{}, false
	}

	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'force' parameter. Must be true or false.")
			return report.Request{}, false
		}
		force = parsed
	}

	src, ok := h.source(w, session)
	if !ok {
		return report.Request{}, false
	}

	return report.Request{
		User:      session.User,
		Owner:     chi.URLParam(r, "owner"),
		Name:      chi.URLParam(r, "repo"),
		Timeframe: timeframe.Timeframe(r.URL.Query().Get("timeframe")),
		Force:     force,
		Source:    src,
	}, true
}

// getPullRequests handles GET /v1/reports/{owner}/{repo}/prs
func (h *Handler) getPullRequests(w http.ResponseWriter, r *http.Request) {
	req, ok := h.sectionRequest(w, r)
	if !ok {
		return
	}
	res, err := h.reports.PullRequests(r.Context(), req)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"prs": res.Data, "cached": res.Cached})
}

// getIssues handles GET /v1/reports/{owner}/{repo}/issues
func (h *Handler) getIssues(w http.ResponseWriter, r *http.Request) {
	req, ok := h.sectionRequest(w, r)
	if !ok {
		return
	}
	res, err := h.reports.Issues(r.Context(), req)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"issues": res.Data, "cached": res.Cached})
}

// getPeople handles GET /v1/reports/{owner}/{repo}/people
func (h *Handler) getPeople(w http.ResponseWriter, r *http.Request) {
	req, ok := h.sectionRequest(w, r)
	if !ok {
		return
	}
	res, err := h.reports.People(r.Context(), req)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"people": res.Data, "cached": res.Cached})
}

// getTLDR streams the digest as plain text, flushing every chunk.
// GET /v1/reports/{owner}/{repo}/tldr
func (h *Handler) getTLDR(w http.ResponseWriter, r *http.Request) {
	req, ok := h.sectionRequest(w, r)
	if !ok {
		return
	}
	stream, err := h.reports.TLDR(r.Context(), req)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}

	cache := "MISS"
	if stream.Cached {
		cache = "HIT"
	}
	logger := h.logger.With("owner", req.Owner, "repo", req.Name, "timeframe", req.Timeframe)
	writeStream(w, logger, stream.Chunks, tldrErrorMarker, http.Header{"X-Cache": {cache}})
}
