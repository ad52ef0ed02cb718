package repository

import (
	"LinkShield-Backend/internal/domain"
	"LinkShield-Backend/internal/safety"
	"sort"
	"strings"
)

// Defaults for the admin table views.
const (
	DefaultPage   = 1
	DefaultLimit  = 10
	DefaultSortBy = "createdAt"
)

// NormalizeListParams fills in defaults for zero-valued parameters.
func NormalizeListParams(p ListParams) ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	if p.FilterBy == "" {
		p.FilterBy = "all"
	}
	return p
}

// ApplyLinkQuery runs the in-memory search/filter/sort/paginate pipeline over
// the full link listing. Both storage implementations share it so the admin
// view behaves identically regardless of backend.
func ApplyLinkQuery(rows []*LinkRow, p ListParams) *LinkPage {
	p = NormalizeListParams(p)

	if p.Search != "" {
		needle := strings.ToLower(p.Search)
		filtered := rows[:0:0]
		for _, row := range rows {
			if strings.Contains(strings.ToLower(row.OriginalURL), needle) ||
				strings.Contains(strings.ToLower(row.ShortCode), needle) ||
				containsFold(row.UserName, needle) ||
				containsFold(row.UserEmail, needle) ||
				containsFold(row.FlagReason, needle) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	if p.FilterBy != "all" {
		filtered := rows[:0:0]
		for _, row := range rows {
			if matchesFilter(row, p.FilterBy) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	total := len(rows)

	// Stable sort: ties keep their original relative order, nil sorts as "".
	sort.SliceStable(rows, func(i, j int) bool {
		less := linkLess(rows[i], rows[j], p.SortBy)
		if p.SortOrder == "desc" {
			return linkLess(rows[j], rows[i], p.SortBy)
		}
		return less
	})

	return &LinkPage{
		Links: paginate(rows, p.Page, p.Limit),
		Total: total,
	}
}

// ApplyUserQuery runs the same pipeline over the user listing.
func ApplyUserQuery(users []*domain.User, p ListParams) *UserPage {
	p = NormalizeListParams(p)

	if p.Search != "" {
		needle := strings.ToLower(p.Search)
		filtered := users[:0:0]
		for _, u := range users {
			if containsFold(u.Name, needle) ||
				strings.Contains(strings.ToLower(u.Email), needle) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	total := len(users)

	sort.SliceStable(users, func(i, j int) bool {
		less := userLess(users[i], users[j], p.SortBy)
		if p.SortOrder == "desc" {
			return userLess(users[j], users[i], p.SortBy)
		}
		return less
	})

	return &UserPage{
		Users: paginate(users, p.Page, p.Limit),
		Total: total,
	}
}

func matchesFilter(row *LinkRow, filterBy string) bool {
	switch filterBy {
	case "flagged":
		return row.Flagged
	case "security":
		return row.FlagReason != nil && safety.CategorizeReason(*row.FlagReason) == safety.BucketSecurity
	case "inappropriate":
		return row.FlagReason != nil && safety.CategorizeReason(*row.FlagReason) == safety.BucketInappropriate
	case "other":
		return row.FlagReason != nil && safety.CategorizeReason(*row.FlagReason) == safety.BucketOther
	}
	return false
}

func linkLess(a, b *LinkRow, sortBy string) bool {
	switch sortBy {
	case "clicks":
		return a.Clicks < b.Clicks
	case "createdAt":
		return a.CreatedAt.Before(b.CreatedAt)
	case "flagged":
		return !a.Flagged && b.Flagged
	case "originalUrl":
		return a.OriginalURL < b.OriginalURL
	case "shortCode":
		return a.ShortCode < b.ShortCode
	case "flagReason":
		return deref(a.FlagReason) < deref(b.FlagReason)
	case "userName":
		// Owner column shows name with email as fallback, sort the same way.
		return ownerLabel(a) < ownerLabel(b)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func userLess(a, b *domain.User, sortBy string) bool {
	switch sortBy {
	case "name":
		return deref(a.Name) < deref(b.Name)
	case "email":
		return a.Email < b.Email
	case "role":
		return a.Role < b.Role
	case "createdAt":
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func ownerLabel(row *LinkRow) string {
	if row.UserName != nil && *row.UserName != "" {
		return *row.UserName
	}
	return deref(row.UserEmail)
}

func paginate[T any](items []T, page, limit int) []T {
	offset := (page - 1) * limit
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsFold(s *string, lowerNeedle string) bool {
	return s != nil && strings.Contains(strings.ToLower(*s), lowerNeedle)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
