package app

import (
	"fmt"
	"math"
	"time"

	"flex_reviews/internal/domain"
)

const recentWindow = 7 * 24 * time.Hour

// Summarize computes the dashboard statistics over whatever set it is given;
// it applies no filtering of its own. now is injected so the recency window
// is deterministic under test.
//
// Averages divide the rating sum by the total review count, with missing
// ratings contributing 0 to the sum. That matches what the dashboard has
// always shown; do not switch to a non-null divisor without a product call.
func Summarize(reviews []domain.MergedReview, now time.Time) domain.AnalyticsSummary {
	sum := domain.AnalyticsSummary{
		TotalReviews:       len(reviews),
		AverageRating:      "0.00",
		ListingStats:       []domain.ListingStat{},
		RatingDistribution: make([]domain.RatingBucket, 5),
	}
	for i := range sum.RatingDistribution {
		sum.RatingDistribution[i].Rating = i + 1
	}

	type listingAcc struct {
		count int
		total float64
	}
	accs := map[string]*listingAcc{}
	var order []string

	var ratingTotal float64
	cutoff := now.Add(-recentWindow)

	for _, r := range reviews {
		ratingTotal += ratingOrZero(r.Rating)

		name := r.ListingName
		if name == "" {
			name = "Unknown"
		}
		acc, ok := accs[name]
		if !ok {
			acc = &listingAcc{}
			accs[name] = acc
			order = append(order, name)
		}
		acc.count++
		acc.total += ratingOrZero(r.Rating)

		// Floors outside 1..5 are dropped from the histogram but still
		// count toward totals and the average.
		if r.Rating != nil && *r.Rating != 0 {
			if idx := int(math.Floor(*r.Rating)) - 1; idx >= 0 && idx < 5 {
				sum.RatingDistribution[idx].Count++
			}
		}

		if !r.Date.Before(cutoff) {
			sum.RecentReviewsCount++
		}
	}

	if len(reviews) > 0 {
		sum.AverageRating = fmt.Sprintf("%.2f", ratingTotal/float64(len(reviews)))
	}

	for _, name := range order {
		acc := accs[name]
		sum.ListingStats = append(sum.ListingStats, domain.ListingStat{
			ListingName:   name,
			ReviewCount:   acc.count,
			AverageRating: fmt.Sprintf("%.2f", acc.total/float64(acc.count)),
		})
	}
	return sum
}
