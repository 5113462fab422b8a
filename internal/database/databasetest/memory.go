// internal/database/databasetest/memory.go
package databasetest

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"oss-tldr/internal/database"
)

// Memory is an in-memory database.Querier for tests that walk through
// several queries. Rows are copied in and out, so callers never share state
// with the store.
type Memory struct {
	mu sync.Mutex

	nextID       int64
	reports      []database.Report
	repositories map[string]database.Repository
	users        map[int64]database.User
	tracked      map[int64][]int64
	groups       []database.Group
	groupRepos   []database.GroupRepository

	// Mutations counts every write by query name.
	Mutations map[string]int
}

var _ database.Querier = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		repositories: make(map[string]database.Repository),
		users:        make(map[int64]database.User),
		tracked:      make(map[int64][]int64),
		Mutations:    make(map[string]int),
	}
}

// Reports returns a copy of every report row in creation order.
func (m *Memory) Reports() []database.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.reports)
}

// TotalMutations sums Mutations.
func (m *Memory) TotalMutations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Mutations {
		n += c
	}
	return n
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func now() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

func (m *Memory) CreateReport(_ context.Context, arg database.CreateReportParams) (database.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations["CreateReport"]++
	r := database.Report{
		ID:             m.id(),
		RepositoryID:   arg.RepositoryID,
		Timeframe:      arg.Timeframe,
		TimeframeStart: arg.TimeframeStart,
		TimeframeEnd:   arg.TimeframeEnd,
		Version:        arg.Version,
		CreatedAt:      now(),
		UpdatedAt:      now(),
	}
	m.reports = append(m.reports, r)
	return r, nil
}

func (m *Memory) GetLatestReport(_ context.Context, arg database.GetLatestReportParams) (database.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.reports) - 1; i >= 0; i-- {
		r := m.reports[i]
		if r.RepositoryID == arg.RepositoryID && r.Timeframe == arg.Timeframe {
			return r, nil
		}
	}
	return database.Report{}, pgx.ErrNoRows
}

func (m *Memory) updateReport(name string, id int64, apply func(*database.Report)) (database.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].ID == id {
			m.Mutations[name]++
			apply(&m.reports[i])
			m.reports[i].UpdatedAt = now()
			return m.reports[i], nil
		}
	}
	return database.Report{}, pgx.ErrNoRows
}

func (m *Memory) UpdateReportPRs(_ context.Context, arg database.UpdateReportPRsParams) (database.Report, error) {
	return m.updateReport("UpdateReportPRs", arg.ID, func(r *database.Report) {
		r.Prs, r.PrsGeneratedAt = slices.Clone(arg.Prs), arg.PrsGeneratedAt
	})
}

func (m *Memory) UpdateReportIssues(_ context.Context, arg database.UpdateReportIssuesParams) (database.Report, error) {
	return m.updateReport("UpdateReportIssues", arg.ID, func(r *database.Report) {
		r.Issues, r.IssuesGeneratedAt = slices.Clone(arg.Issues), arg.IssuesGeneratedAt
	})
}

func (m *Memory) UpdateReportPeople(_ context.Context, arg database.UpdateReportPeopleParams) (database.Report, error) {
	return m.updateReport("UpdateReportPeople", arg.ID, func(r *database.Report) {
		r.People, r.PeopleGeneratedAt = slices.Clone(arg.People), arg.PeopleGeneratedAt
	})
}

func (m *Memory) UpdateReportTLDR(_ context.Context, arg database.UpdateReportTLDRParams) (database.Report, error) {
	return m.updateReport("UpdateReportTLDR", arg.ID, func(r *database.Report) {
		r.TldrText, r.TldrGeneratedAt = arg.TldrText, arg.TldrGeneratedAt
	})
}

func (m *Memory) UpsertRepository(_ context.Context, arg database.UpsertRepositoryParams) (database.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations["UpsertRepository"]++
	r, ok := m.repositories[arg.FullName]
	if !ok {
		r = database.Repository{ID: m.id(), FullName: arg.FullName, CreatedAt: now()}
	}
	r.Owner, r.Name, r.Description, r.HtmlUrl = arg.Owner, arg.Name, arg.Description, arg.HtmlUrl
	r.IsPrivate, r.IsFork, r.IsArchived = arg.IsPrivate, arg.IsFork, arg.IsArchived
	r.Language, r.StargazersCount, r.GithubUpdatedAt = arg.Language, arg.StargazersCount, arg.GithubUpdatedAt
	r.UpdatedAt = now()
	m.repositories[arg.FullName] = r
	return r, nil
}

func (m *Memory) GetRepositoryByFullName(_ context.Context, fullName string) (database.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.repositories[fullName]
	if !ok {
		return database.Repository{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *Memory) UpsertUser(_ context.Context, arg database.UpsertUserParams) (database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations["UpsertUser"]++
	u, ok := m.users[arg.ID]
	if !ok {
		u = database.User{ID: arg.ID, CreatedAt: now()}
	}
	u.Login = arg.Login
	if arg.Name.Valid {
		u.Name = arg.Name
	}
	if arg.Email.Valid {
		u.Email = arg.Email
	}
	if arg.AvatarUrl.Valid {
		u.AvatarUrl = arg.AvatarUrl
	}
	u.UpdatedAt = now()
	m.users[arg.ID] = u
	return u, nil
}

func (m *Memory) TrackRepository(_ context.Context, arg database.TrackRepositoryParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations["TrackRepository"]++
	if !slices.Contains(m.tracked[arg.UserID], arg.RepositoryID) {
		m.tracked[arg.UserID] = append(m.tracked[arg.UserID], arg.RepositoryID)
	}
	return nil
}

func (m *Memory) UntrackRepository(_ context.Context, arg database.UntrackRepositoryParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations["UntrackRepository"]++
	ids := m.tracked[arg.UserID]
	i := slices.Index(ids, arg.RepositoryID)
	if i < 0 {
		return 0, nil
	}
	m.tracked[arg.UserID] = slices.Delete(ids, i, i+1)
	return 1, nil
}

func (m *Memory) ListTrackedRepositories(_ context.Context, userID int64) ([]database.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Repository
	ids := m.tracked[userID]
	for i := len(ids) - 1; i >= 0; i-- {
		for _, r := range m.repositories {
			if r.ID == ids[i] {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *Memory) CreateGroup(_ context.Context, arg database.CreateGroupParams) (database.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations["CreateGroup"]++
	g := database.Group{
		ID:          m.id(),
		Name:        arg.Name,
		Description: arg.Description,
		Slug:        arg.Slug,
		IsSystem:    arg.IsSystem,
		CreatedByID: arg.CreatedByID,
		CreatedAt:   now(),
		UpdatedAt:   now(),
	}
	m.groups = append(m.groups, g)
	return g, nil
}

func (m *Memory) GetGroupBySlug(_ context.Context, slug string) (database.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.Slug == slug {
			return g, nil
		}
	}
	return database.Group{}, pgx.ErrNoRows
}

func (m *Memory) ListGroupsForUser(_ context.Context, createdByID pgtype.Int8) ([]database.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Group
	for _, g := range m.groups {
		if g.IsSystem || (createdByID.Valid && g.CreatedByID.Valid && g.CreatedByID.Int64 == createdByID.Int64) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsSystem != out[j].IsSystem {
			return out[i].IsSystem
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *Memory) UpdateGroup(_ context.Context, arg database.UpdateGroupParams) (database.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.groups {
		if m.groups[i].ID == arg.ID {
			m.Mutations["UpdateGroup"]++
			m.groups[i].Name, m.groups[i].Description, m.groups[i].UpdatedAt = arg.Name, arg.Description, now()
			return m.groups[i], nil
		}
	}
	return database.Group{}, pgx.ErrNoRows
}

func (m *Memory) DeleteGroup(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations["DeleteGroup"]++
	m.groups = slices.DeleteFunc(m.groups, func(g database.Group) bool { return g.ID == id })
	m.groupRepos = slices.DeleteFunc(m.groupRepos, func(r database.GroupRepository) bool { return r.GroupID == id })
	return nil
}

func (m *Memory) DeleteGroupRepositories(_ context.Context, groupID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations["DeleteGroupRepositories"]++
	m.groupRepos = slices.DeleteFunc(m.groupRepos, func(r database.GroupRepository) bool { return r.GroupID == groupID })
	return nil
}

func (m *Memory) CreateGroupRepositories(_ context.Context, arg []database.CreateGroupRepositoriesParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations["CreateGroupRepositories"]++
	for _, p := range arg {
		m.groupRepos = append(m.groupRepos, database.GroupRepository{
			ID:                   m.id(),
			GroupID:              p.GroupID,
			RepositoryIdentifier: p.RepositoryIdentifier,
			Position:             p.Position,
		})
	}
	return int64(len(arg)), nil
}

func (m *Memory) ListGroupRepositories(_ context.Context, groupIds []int64) ([]database.GroupRepository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.GroupRepository
	for _, r := range m.groupRepos {
		if slices.Contains(groupIds, r.GroupID) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GroupID != out[j].GroupID {
			return out[i].GroupID < out[j].GroupID
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}
