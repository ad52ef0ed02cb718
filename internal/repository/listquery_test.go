package repository

import (
	"LinkShield-Backend/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sampleRows() []*LinkRow {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []*LinkRow{
		{
			ID:          "l1",
			OriginalURL: "https://example.com/docs",
			ShortCode:   "docs1234",
			Clicks:      10,
			UserName:    strPtr("Alice"),
			UserEmail:   strPtr("alice@example.com"),
			CreatedAt:   base,
		},
		{
			ID:          "l2",
			OriginalURL: "https://phishing.example/login",
			ShortCode:   "bank5678",
			Clicks:      50,
			UserEmail:   strPtr("bob@example.com"),
			Flagged:     true,
			FlagReason:  strPtr("Known phishing domain"),
			CreatedAt:   base.Add(time.Hour),
		},
		{
			ID:          "l3",
			OriginalURL: "https://adult.example",
			ShortCode:   "xxx99999",
			Clicks:      5,
			Flagged:     true,
			FlagReason:  strPtr("Adult content"),
			CreatedAt:   base.Add(2 * time.Hour),
		},
		{
			ID:          "l4",
			OriginalURL: "https://weird.example",
			ShortCode:   "wrd00000",
			Clicks:      50,
			Flagged:     true,
			FlagReason:  strPtr("Suspicious redirect chain"),
			CreatedAt:   base.Add(3 * time.Hour),
		},
	}
}

func TestNormalizeListParams(t *testing.T) {
	t.Run("zero_values_get_defaults", func(t *testing.T) {
		p := NormalizeListParams(ListParams{})

		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 10, p.Limit)
		assert.Equal(t, "createdAt", p.SortBy)
		assert.Equal(t, "desc", p.SortOrder)
		assert.Equal(t, "all", p.FilterBy)
	})

	t.Run("unknown_sort_order_falls_back_to_desc", func(t *testing.T) {
		p := NormalizeListParams(ListParams{SortOrder: "sideways"})
		assert.Equal(t, "desc", p.SortOrder)
	})

	t.Run("explicit_values_kept", func(t *testing.T) {
		p := NormalizeListParams(ListParams{Page: 3, Limit: 25, SortBy: "clicks", SortOrder: "asc", FilterBy: "flagged"})

		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 25, p.Limit)
		assert.Equal(t, "clicks", p.SortBy)
		assert.Equal(t, "asc", p.SortOrder)
		assert.Equal(t, "flagged", p.FilterBy)
	})
}

func TestApplyLinkQuery(t *testing.T) {
	t.Run("default_order_newest_first", func(t *testing.T) {
		page := ApplyLinkQuery(sampleRows(), ListParams{})

		require.Len(t, page.Links, 4)
		assert.Equal(t, "l4", page.Links[0].ID)
		assert.Equal(t, "l1", page.Links[3].ID)
		assert.Equal(t, 4, page.Total)
	})

	t.Run("search_matches_url_code_owner_and_reason", func(t *testing.T) {
		cases := []struct {
			search string
			want   []string
		}{
			{"phishing", []string{"l2"}}, // matches both URL and flag reason
			{"DOCS", []string{"l1"}},     // case-insensitive, matches URL and code
			{"alice", []string{"l1"}},    // owner name
			{"bob@", []string{"l2"}},     // owner email
			{"redirect", []string{"l4"}}, // flag reason
			{"nothing-here", nil},
		}

		for _, tc := range cases {
			page := ApplyLinkQuery(sampleRows(), ListParams{Search: tc.search})

			var got []string
			for _, row := range page.Links {
				got = append(got, row.ID)
			}
			assert.ElementsMatch(t, tc.want, got, "search %q", tc.search)
		}
	})

	t.Run("filter_buckets", func(t *testing.T) {
		cases := []struct {
			filterBy string
			want     []string
		}{
			{"flagged", []string{"l2", "l3", "l4"}},
			{"security", []string{"l2"}},
			{"inappropriate", []string{"l3"}},
			{"other", []string{"l4"}},
			{"all", []string{"l1", "l2", "l3", "l4"}},
		}

		for _, tc := range cases {
			page := ApplyLinkQuery(sampleRows(), ListParams{FilterBy: tc.filterBy})

			var got []string
			for _, row := range page.Links {
				got = append(got, row.ID)
			}
			assert.ElementsMatch(t, tc.want, got, "filterBy %q", tc.filterBy)
		}
	})

	t.Run("sort_by_clicks_ties_keep_order", func(t *testing.T) {
		page := ApplyLinkQuery(sampleRows(), ListParams{SortBy: "clicks", SortOrder: "desc"})

		require.Len(t, page.Links, 4)
		// l2 and l4 both have 50 clicks; stable sort keeps l2 before l4
		assert.Equal(t, "l2", page.Links[0].ID)
		assert.Equal(t, "l4", page.Links[1].ID)
		assert.Equal(t, "l1", page.Links[2].ID)
		assert.Equal(t, "l3", page.Links[3].ID)
	})

	t.Run("sort_by_owner_uses_email_fallback", func(t *testing.T) {
		page := ApplyLinkQuery(sampleRows(), ListParams{SortBy: "userName", SortOrder: "asc"})

		require.Len(t, page.Links, 4)
		// Anonymous rows (empty label) first, then Alice, then bob@example.com
		assert.Equal(t, "l3", page.Links[0].ID)
		assert.Equal(t, "l4", page.Links[1].ID)
		assert.Equal(t, "l1", page.Links[2].ID)
		assert.Equal(t, "l2", page.Links[3].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		page := ApplyLinkQuery(sampleRows(), ListParams{Page: 2, Limit: 3, SortBy: "createdAt", SortOrder: "asc"})

		assert.Equal(t, 4, page.Total, "total counts rows before pagination")
		require.Len(t, page.Links, 1)
		assert.Equal(t, "l4", page.Links[0].ID)
	})

	t.Run("page_past_end_is_empty_not_nil", func(t *testing.T) {
		page := ApplyLinkQuery(sampleRows(), ListParams{Page: 10, Limit: 10})

		assert.NotNil(t, page.Links)
		assert.Empty(t, page.Links)
		assert.Equal(t, 4, page.Total)
	})

	t.Run("total_counts_after_filter", func(t *testing.T) {
		page := ApplyLinkQuery(sampleRows(), ListParams{FilterBy: "flagged", Limit: 2})

		assert.Equal(t, 3, page.Total)
		assert.Len(t, page.Links, 2)
	})
}

func TestApplyUserQuery(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	users := []*domain.User{
		{ID: "u1", Name: strPtr("Alice"), Email: "alice@example.com", Role: domain.RoleUser, CreatedAt: base},
		{ID: "u2", Email: "bob@example.com", Role: domain.RoleAdmin, CreatedAt: base.Add(time.Hour)},
		{ID: "u3", Name: strPtr("Carol"), Email: "carol@other.org", Role: domain.RoleUser, CreatedAt: base.Add(2 * time.Hour)},
	}

	t.Run("search_by_name_or_email", func(t *testing.T) {
		page := ApplyUserQuery(users, ListParams{Search: "example.com"})
		assert.Equal(t, 2, page.Total)

		page = ApplyUserQuery(users, ListParams{Search: "carol"})
		require.Len(t, page.Users, 1)
		assert.Equal(t, "u3", page.Users[0].ID)
	})

	t.Run("sort_by_role_asc", func(t *testing.T) {
		page := ApplyUserQuery(users, ListParams{SortBy: "role", SortOrder: "asc"})

		require.Len(t, page.Users, 3)
		// ADMIN < USER lexicographically
		assert.Equal(t, domain.RoleAdmin, page.Users[0].Role)
	})

	t.Run("default_order_newest_first", func(t *testing.T) {
		page := ApplyUserQuery(users, ListParams{})

		require.Len(t, page.Users, 3)
		assert.Equal(t, "u3", page.Users[0].ID)
	})
}
