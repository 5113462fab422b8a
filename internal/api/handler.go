// internal/api/handler.go
package api

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"oss-tldr/internal/database"
	"oss-tldr/internal/groups"
	"oss-tldr/internal/model"
	"oss-tldr/internal/report"
)

// Reports serves report sections.
type Reports interface {
	PullRequests(ctx context.Context, req report.Request) (report.Result[[]model.ActivityItem], error)
	Issues(ctx context.Context, req report.Request) (report.Result[[]model.ActivityItem], error)
	People(ctx context.Context, req report.Request) (report.Result[[]model.Contributor], error)
	TLDR(ctx context.Context, req report.Request) (*report.Stream, error)
	Group(ctx context.Context, req report.GroupRequest) (*report.GroupDigest, error)
}

// Tracking exposes the repositories a user has looked at.
type Tracking interface {
	Repositories(ctx context.Context, userID int64) ([]database.Repository, error)
	Untrack(ctx context.Context, userID int64, owner, name string) (bool, error)
}

// Groups manages repository groups.
type Groups interface {
	List(ctx context.Context, userID int64) (system, own []groups.Group, err error)
	Get(ctx context.Context, userID int64, slug string) (groups.Group, error)
	Create(ctx context.Context, userID int64, in groups.CreateInput) (groups.Group, error)
	Update(ctx context.Context, userID int64, slug string, in groups.UpdateInput) (groups.Group, error)
	Delete(ctx context.Context, userID int64, slug string) error
}

// Insights explains individual changes and conversations with the model.
type Insights interface {
	ExplainDiff(ctx context.Context, file, patch string) (string, error)
	DeepDive(ctx context.Context, d model.Discussion) iter.Seq2[string, error]
}

// Source is the caller's view of GitHub.
type Source interface {
	report.Source
	PullRequestPatches(ctx context.Context, owner, name string, number int) ([]model.Patch, error)
	Discussion(ctx context.Context, owner, name string, number int) (model.Discussion, error)
}

// SourceFactory builds a GitHub source authenticated as the caller.
type SourceFactory func(githubToken string) (Source, error)

// Options configures the router.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Handler is the container for API dependencies.
type Handler struct {
	reports   Reports
	tracking  Tracking
	groups    Groups
	insights  Insights
	sources   SourceFactory
	jwtSecret []byte
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(reports Reports, tracking Tracking, groupSvc Groups, insights Insights, sources SourceFactory, opts Options, logger *slog.Logger) http.Handler {
	h := &Handler{
		reports:   reports,
		tracking:  tracking,
		groups:    groupSvc,
		insights:  insights,
		sources:   sources,
		jwtSecret: []byte(opts.JWTSecret),
		validate:  validator.New(),
		logger:    logger,
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 120 * time.Second
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Use(h.authenticate)

		// Streams and group digests run as long as the model keeps producing.
		r.Get("/reports/{owner}/{repo}/tldr", h.getTLDR)
		r.Post("/deepdive", h.deepDive)
		r.Post("/groups/report", h.createGroupReport)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(opts.RequestTimeout))

			r.Get("/reports/{owner}/{repo}/prs", h.getPullRequests)
			r.Get("/reports/{owner}/{repo}/issues", h.getIssues)
			r.Get("/reports/{owner}/{repo}/people", h.getPeople)

			r.Get("/users/me/repositories", h.listRepositories)
			r.Delete("/users/me/repositories/{owner}/{repo}", h.untrackRepository)

			r.Get("/groups", h.listGroups)
			r.Post("/groups", h.createGroup)
			r.Get("/groups/{slug}", h.getGroup)
			r.Put("/groups/{slug}", h.updateGroup)
			r.Delete("/groups/{slug}", h.deleteGroup)

			r.Post("/patches", h.listPatches)
			r.Post("/diff", h.explainDiff)
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// source builds the caller's GitHub source.
func (h *Handler) source(w http.ResponseWriter, session Session) (Source, bool) {
	src, err := h.sources(session.GithubToken)
	if err != nil {
		h.logger.Error("Failed to create GitHub client", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return src, true
}

// session returns the caller set by authenticate.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (Session, bool) {
	s, ok := sessionFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
	}
	return s, ok
}
