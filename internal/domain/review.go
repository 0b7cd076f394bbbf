package domain

import "time"

// Review sources. Source is the provider of record; Channel is the
// guest-facing platform the provider reports (e.g. "Airbnb").
const (
	SourceHostaway = "hostaway"
	SourceGoogle   = "google"
	SourceMock     = "mock"
	SourceUnknown  = "unknown"
)

const AnonymousGuest = "Anonymous Guest"

// CategoryRating is a provider sub-rating on a 0–10 scale.
type CategoryRating struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

// CanonicalReview is the one shape every source adapter produces.
// ID is canonicalized at ingestion and is unique only within Source.
// Rating is nil when the provider reported none and no sub-ratings
// could stand in for it.
type CanonicalReview struct {
	ID          string           `json:"id"`
	Source      string           `json:"source"`
	Channel     string           `json:"channel"`
	ListingName string           `json:"listingName"`
	ListingID   *string          `json:"listingId"`
	GuestName   string           `json:"guestName"`
	Text        string           `json:"text"`
	Rating      *float64         `json:"rating"`
	Categories  []CategoryRating `json:"categories"`
	Date        time.Time        `json:"date"`
	Status      string           `json:"status"`
	Type        string           `json:"type"`
}

// MergedReview is a CanonicalReview enriched with its moderation state.
// Built fresh per request, never persisted.
type MergedReview struct {
	CanonicalReview
	Approved         bool    `json:"approved"`
	DisplayOnWebsite bool    `json:"displayOnWebsite"`
	Notes            *string `json:"notes"`
}

// ReviewQuery is the filter/sort input of the query engine. All filters are
// optional and compose with AND semantics.
type ReviewQuery struct {
	ListingName string // case-insensitive substring
	Channel     string // exact
	MinRating   *float64
	MaxRating   *float64
	Category    string // at least one category entry matches
	SortBy      string // date|rating|guestName|listingName (default date)
	SortOrder   string // asc|desc (default desc)
}

// ReviewsResult is a selected-and-merged review set together with the
// source that produced it.
type ReviewsResult struct {
	Reviews    []MergedReview `json:"reviews"`
	DataSource string         `json:"dataSource"`
}

// ListingStat is the per-listing breakdown of an AnalyticsSummary.
type ListingStat struct {
	ListingName   string `json:"listingName"`
	ReviewCount   int    `json:"reviewCount"`
	AverageRating string `json:"averageRating"`
}

// RatingBucket is one histogram bucket for integer-floored ratings 1–5.
type RatingBucket struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// AnalyticsSummary is derived and stateless, recomputed per request.
type AnalyticsSummary struct {
	TotalReviews       int            `json:"totalReviews"`
	AverageRating      string         `json:"averageRating"`
	RecentReviewsCount int            `json:"recentReviewsCount"`
	ListingStats       []ListingStat  `json:"listingStats"`
	RatingDistribution []RatingBucket `json:"ratingDistribution"`
	DataSource         string         `json:"dataSource"`
}
