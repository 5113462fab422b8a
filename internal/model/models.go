// internal/model/models.go
package model

import (
	"time"
)

// Repository represents the live metadata of a GitHub repository.
type Repository struct {
	GithubRepoID  int64
	FullName      string
	Owner         string
	Name          string
	Description   *string
	URL           string
	Private       bool
	Fork          bool
	Archived      bool
	Language      *string
	StarsCount    int
	RepoUpdatedAt time.Time
}

// User is the authenticated GitHub account making a request.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Author is the GitHub account that opened an issue or pull request.
type Author struct {
	Login      string `json:"login"`
	ID         int64  `json:"id"`
	AvatarURL  string `json:"avatar_url"`
	ProfileURL string `json:"html_url"`
}

// ActivityItem is an issue or pull request, converted once at the GitHub
// boundary. Summary is empty until the item has been summarized.
type ActivityItem struct {
	ID                int64      `json:"id"`
	Number            int        `json:"number"`
	Title             string     `json:"title"`
	Body              string     `json:"body"`
	Summary           string     `json:"summary"`
	Author            Author     `json:"user"`
	URL               string     `json:"html_url"`
	State             string     `json:"state"`
	CreatedAt         *time.Time `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"`
	Comments          int        `json:"comments"`
	Reactions         int        `json:"reactions"`
	Labels            []string   `json:"labels"`
	IsPullRequest     bool       `json:"is_pull_request"`
	Merged            *bool      `json:"merged"` // nil when unknown
	Assignees         []Author   `json:"assignees,omitempty"`
	AuthorAssociation string     `json:"author_association,omitempty"`
}

// Engagement is the raw interaction count used for ranking.
func (i ActivityItem) Engagement() int {
	return i.Comments + i.Reactions
}

// Contributor is one entry of the people section.
type Contributor struct {
	Username   string         `json:"username"`
	AvatarURL  string         `json:"avatar_url"`
	ProfileURL string         `json:"profile_url"`
	TLDR       string         `json:"tldr"`
	PRs        []ActivityItem `json:"prs"`
	Issues     []ActivityItem `json:"issues"`
	TotalItems int            `json:"total_items"`
}

// ItemKind filters activity searches.
type ItemKind string

const (
	KindPR    ItemKind = "pr"
	KindIssue ItemKind = "issue"
	KindAll   ItemKind = "all"
)

// Section names one independently cached facet of a report.
type Section string

const (
	SectionPRs    Section = "prs"
	SectionIssues Section = "issues"
	SectionPeople Section = "people"
	SectionTLDR   Section = "tldr"
)

// Kind returns the activity filter feeding an item section.
func (s Section) Kind() ItemKind {
	if s == SectionPRs {
		return KindPR
	}
	return KindIssue
}

// Patch is the unified diff of one file changed by a pull request.
type Patch struct {
	File  string `json:"file"`
	Patch string `json:"patch"`
}

// Comment is a discussion comment or a pull request review.
type Comment struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

// Discussion is an issue or pull request with its conversation, the input
// of a deep dive.
type Discussion struct {
	Number        int       `json:"-"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	IsPullRequest bool      `json:"-"`
	Reviews       []Comment `json:"reviews"`
	Comments      []Comment `json:"comments"`
}
