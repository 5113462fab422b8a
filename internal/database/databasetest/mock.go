// internal/database/databasetest/mock.go
package databasetest

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/mock"

	"oss-tldr/internal/database"
)

// MockQuerier is a mock of the database.Querier interface.
type MockQuerier struct {
	mock.Mock
}

var _ database.Querier = (*MockQuerier)(nil)

func (m *MockQuerier) CreateGroup(ctx context.Context, arg database.CreateGroupParams) (database.Group, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Group), args.Error(1)
}
func (m *MockQuerier) CreateGroupRepositories(ctx context.Context, arg []database.CreateGroupRepositoriesParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockQuerier) CreateReport(ctx context.Context, arg database.CreateReportParams) (database.Report, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Report), args.Error(1)
}
func (m *MockQuerier) DeleteGroup(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockQuerier) DeleteGroupRepositories(ctx context.Context, groupID int64) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}
func (m *MockQuerier) GetGroupBySlug(ctx context.Context, slug string) (database.Group, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(database.Group), args.Error(1)
}
func (m *MockQuerier) GetLatestReport(ctx context.Context, arg database.GetLatestReportParams) (database.Report, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Report), args.Error(1)
}
func (m *MockQuerier) GetRepositoryByFullName(ctx context.Context, fullName string) (database.Repository, error) {
	args := m.Called(ctx, fullName)
	return args.Get(0).(database.Repository), args.Error(1)
}
func (m *MockQuerier) ListGroupRepositories(ctx context.Context, groupIds []int64) ([]database.GroupRepository, error) {
	args := m.Called(ctx, groupIds)
	return args.Get(0).([]database.GroupRepository), args.Error(1)
}
func (m *MockQuerier) ListGroupsForUser(ctx context.Context, createdByID pgtype.Int8) ([]database.Group, error) {
	args := m.Called(ctx, createdByID)
	return args.Get(0).([]database.Group), args.Error(1)
}
func (m *MockQuerier) ListTrackedRepositories(ctx context.Context, userID int64) ([]database.Repository, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]database.Repository), args.Error(1)
}
func (m *MockQuerier) TrackRepository(ctx context.Context, arg database.TrackRepositoryParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}
func (m *MockQuerier) UntrackRepository(ctx context.Context, arg database.UntrackRepositoryParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockQuerier) UpdateGroup(ctx context.Context, arg database.UpdateGroupParams) (database.Group, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Group), args.Error(1)
}
func (m *MockQuerier) UpdateReportIssues(ctx context.Context, arg database.UpdateReportIssuesParams) (database.Report, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Report), args.Error(1)
}
func (m *MockQuerier) UpdateReportPRs(ctx context.Context, arg database.UpdateReportPRsParams) (database.Report, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Report), args.Error(1)
}
func (m *MockQuerier) UpdateReportPeople(ctx context.Context, arg database.UpdateReportPeopleParams) (database.Report, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Report), args.Error(1)
}
func (m *MockQuerier) UpdateReportTLDR(ctx context.Context, arg database.UpdateReportTLDRParams) (database.Report, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Report), args.Error(1)
}
func (m *MockQuerier) UpsertRepository(ctx context.Context, arg database.UpsertRepositoryParams) (database.Repository, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Repository), args.Error(1)
}
func (m *MockQuerier) UpsertUser(ctx context.Context, arg database.UpsertUserParams) (database.User, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.User), args.Error(1)
}
