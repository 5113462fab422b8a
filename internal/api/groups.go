// internal/api/groups.go
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"oss-tldr/internal/groups"
	"oss-tldr/internal/report"
	"oss-tldr/internal/timeframe"
)

// groupReportRequest is the body of POST /v1/groups/report. With a group_id
// the stored group supplies name and repos unless the body sets them.
type groupReportRequest struct {
	Timeframe string   `json:"timeframe"`
	GroupID   string   `json:"group_id"`
	Name      string   `json:"name" validate:"max=100"`
	Repos     []string `json:"repos" validate:"max=50"`
}

type groupReportResponse struct {
	GroupID   *string                   `json:"group_id"`
	Name      string                    `json:"name"`
	Timeframe timeframe.Timeframe       `json:"timeframe"`
	TLDR      *string                   `json:"tldr"`
	Repos     []report.RepositoryDigest `json:"repos"`
}

// listGroups handles GET /v1/groups
func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	system, own, err := h.groups.List(r.Context(), session.User.ID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"system_groups": system, "user_groups": own})
}

// getGroup handles GET /v1/groups/{slug}
func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	g, err := h.groups.Get(r.Context(), session.User.ID, chi.URLParam(r, "slug"))
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, g)
}

// createGroup handles POST /v1/groups
func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var in groups.CreateInput
	if !h.decode(w, r, &in) {
		return
	}
	g, err := h.groups.Create(r.Context(), session.User.ID, in)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, g)
}

// updateGroup handles PUT /v1/groups/{slug}
func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var in groups.UpdateInput
	if !h.decode(w, r, &in) {
		return
	}
	g, err := h.groups.Update(r.Context(), session.User.ID, chi.URLParam(r, "slug"), in)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, g)
}

// deleteGroup handles DELETE /v1/groups/{slug}
func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.groups.Delete(r.Context(), session.User.ID, chi.URLParam(r, "slug")); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createGroupReport handles POST /v1/groups/report
func (h *Handler) createGroupReport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var in groupReportRequest
	if !h.decode(w, r, &in) {
		return
	}

	var groupID *string
	name, repos := strings.TrimSpace(in.Name), in.Repos
	if in.GroupID != "" {
		g, err := h.groups.Get(r.Context(), session.User.ID, in.GroupID)
		if err != nil {
			respondWithDomainError(w, h.logger, err)
			return
		}
		groupID = &g.ID
		if name == "" {
			name = g.Name
		}
		if len(repos) == 0 {
			repos = g.Repos
		}
	}
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Group name is required")
		return
	}
	repos, err := groups.NormalizeRepos(repos)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	if len(repos) == 0 {
		respondWithError(w, http.StatusBadRequest, "At least one repository is required")
		return
	}
	src, ok := h.source(w, session)
	if !ok {
		return
	}

	digest, err := h.reports.Group(r.Context(), report.GroupRequest{
		Repos:     repos,
		Timeframe: timeframe.Timeframe(in.Timeframe),
		Source:    src,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, groupReportResponse{
		GroupID:   groupID,
		Name:      name,
		Timeframe: digest.Timeframe,
		TLDR:      digest.TLDR,
		Repos:     digest.Repos,
	})
}

// decode reads a JSON body into v and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		respondWithDomainError(w, h.logger, err)
		return false
	}
	return true
}
