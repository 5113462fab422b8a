// internal/github/rank.go
package github

import (
	"sort"

	"github.com/google/go-github/v62/github"

	"oss-tldr/internal/model"
)

const topContributorCount = 10

// rank keeps the limit most engaged items and orders them by score:
// engagement plus a bonus for who wrote the item and who is assigned to it.
func rank(items []model.ActivityItem, topContributors map[string]struct{}, limit int) []model.ActivityItem {
	byEngagement := make([]model.ActivityItem, len(items))
	copy(byEngagement, items)
	sort.SliceStable(byEngagement, func(i, j int) bool {
		return byEngagement[i].Engagement() > byEngagement[j].Engagement()
	})
	if limit > 0 && len(byEngagement) > limit {
		byEngagement = byEngagement[:limit]
	}

	scores := make(map[int64]int, len(byEngagement))
	for _, item := range byEngagement {
		scores[item.ID] = score(item, topContributors)
	}
	sort.SliceStable(byEngagement, func(i, j int) bool {
		return scores[byEngagement[i].ID] > scores[byEngagement[j].ID]
	})
	return byEngagement
}

func score(item model.ActivityItem, topContributors map[string]struct{}) int {
	s := item.Engagement()

	_, isTop := topContributors[item.Author.Login]
	switch {
	case isTop || item.AuthorAssociation == "OWNER" || item.AuthorAssociation == "MEMBER":
		s += 10
	case item.AuthorAssociation == "COLLABORATOR":
		s += 5
	case item.AuthorAssociation == "CONTRIBUTOR":
		s += 3
	}

	for _, a := range item.Assignees {
		if _, ok := topContributors[a.Login]; ok {
			s += 3
		}
	}
	return s
}

func pickTopContributors(stats []*github.ContributorStats, n int) map[string]struct{} {
	sorted := make([]*github.ContributorStats, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GetTotal() > sorted[j].GetTotal()
	})

	top := make(map[string]struct{}, n)
	for _, s := range sorted {
		if len(top) == n {
			break
		}
		login := s.GetAuthor().GetLogin()
		if login == "" || isBot(login) {
			continue
		}
		top[login] = struct{}{}
	}
	return top
}
