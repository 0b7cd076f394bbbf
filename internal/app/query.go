package app

import (
	"sort"
	"strings"

	"flex_reviews/internal/domain"
)

// ApplyQuery filters with AND semantics then stably sorts. The input slice
// is never mutated; callers may hand in a cached set.
func ApplyQuery(reviews []domain.MergedReview, q domain.ReviewQuery) []domain.MergedReview {
	out := make([]domain.MergedReview, 0, len(reviews))
	for _, r := range reviews {
		if !matches(r, q) {
			continue
		}
		out = append(out, r)
	}
	sortReviews(out, q.SortBy, q.SortOrder)
	return out
}

func matches(r domain.MergedReview, q domain.ReviewQuery) bool {
	if v := strings.TrimSpace(q.ListingName); v != "" {
		if !strings.Contains(strings.ToLower(r.ListingName), strings.ToLower(v)) {
			return false
		}
	}
	if v := strings.TrimSpace(q.Channel); v != "" && r.Channel != v {
		return false
	}
	// Null ratings compare as 0, so a positive minimum excludes them.
	if q.MinRating != nil && ratingOrZero(r.Rating) < *q.MinRating {
		return false
	}
	if q.MaxRating != nil && ratingOrZero(r.Rating) > *q.MaxRating {
		return false
	}
	if v := strings.TrimSpace(q.Category); v != "" {
		found := false
		for _, c := range r.Categories {
			if c.Category == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// sortReviews sorts stably by one key; missing values sort as the type's
// zero-equivalent. Default is date descending (newest first).
func sortReviews(reviews []domain.MergedReview, sortBy, sortOrder string) {
	if sortBy == "" {
		sortBy = "date"
	}
	desc := sortOrder != "asc"

	cmp := func(a, b domain.MergedReview) int {
		switch sortBy {
		case "rating":
			return compareFloat(ratingOrZero(a.Rating), ratingOrZero(b.Rating))
		case "guestName":
			return strings.Compare(strings.ToLower(a.GuestName), strings.ToLower(b.GuestName))
		case "listingName":
			return strings.Compare(strings.ToLower(a.ListingName), strings.ToLower(b.ListingName))
		default: // date
			return a.Date.Compare(b.Date)
		}
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		c := cmp(reviews[i], reviews[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func ratingOrZero(r *float64) float64 {
	if r == nil {
		return 0
	}
	return *r
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
