package repositories

import (
	"sort"
	"strings"

	"notebook/app/models"
)

// PostQuery selects posts of a single owner. Empty fields do not filter.
type PostQuery struct {
	Owner    string
	Category string
	Tag      string
	Search   string
}

// Matches reports whether p satisfies every filter of the query.
func (q PostQuery) Matches(p *models.Post) bool {
	if p.Owner != q.Owner {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Tag != "" && !p.HasTag(q.Tag) {
		return false
	}
	if q.Search != "" && !matchesSearch(p, strings.ToLower(q.Search)) {
		return false
	}
	return true
}

// matchesSearch is a case-insensitive substring match over title, content and tags.
// needle must already be lower case.
func matchesSearch(p *models.Post, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Content), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// SortNewestFirst orders posts by creation time, newest first.
// Posts created at the same instant are ordered by ID so results are stable.
func SortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}

// distinct returns the sorted set of non-empty values.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
