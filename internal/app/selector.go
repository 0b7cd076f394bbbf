package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

// SelectReviews applies the source policy, strictly ordered and
// short-circuiting on the first non-empty result:
//
//  1. Google Places, when the client has credentials AND at least one
//     listing→place mapping is configured.
//  2. Hostaway, tagged "mock" when the client served fallback data.
//  3. Nothing: empty set tagged "unknown".
//
// Availability beats source purity: an unconfigured or failing provider is a
// routing signal, never an error.
func (s *ReviewService) SelectReviews(ctx context.Context) ([]domain.CanonicalReview, string) {
	if s.places != nil && s.places.IsConfigured() && len(s.placeMap) > 0 {
		if reviews := s.fetchPlaces(ctx); len(reviews) > 0 {
			observability.ObserveSource(domain.SourceGoogle)
			return reviews, domain.SourceGoogle
		}
		log.Info().Msg("Google Places returned no reviews, trying Hostaway")
	}

	raw, isMock, err := s.hostaway.GetReviews(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Hostaway fetch failed; degrading to empty set")
	}
	if len(raw) > 0 {
		src := domain.SourceHostaway
		if isMock {
			src = domain.SourceMock
		}
		observability.ObserveSource(src)
		return NormalizeHostaway(raw, src, s.now()), src
	}

	observability.ObserveSource(domain.SourceUnknown)
	return []domain.CanonicalReview{}, domain.SourceUnknown
}

// fetchPlaces fans out across the configured places with bounded
// concurrency. Each place fails independently: one bad place contributes an
// empty slice and never cancels the others. Output keeps the configured
// place order regardless of completion order.
func (s *ReviewService) fetchPlaces(ctx context.Context) []domain.CanonicalReview {
	sem := semaphore.NewWeighted(int64(s.workers))
	perPlace := make([][]domain.CanonicalReview, len(s.placeMap))
	var wg sync.WaitGroup

	for i, m := range s.placeMap {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("place fan-out aborted")
			break
		}
		wg.Add(1)
		go func(i int, m domain.PlaceMapping) {
			defer wg.Done()
			defer sem.Release(1)

			placeName, raw, err := s.places.GetPlaceReviews(ctx, m.PlaceID)
			if err != nil {
				log.Warn().Str("place_id", m.PlaceID).Err(err).Msg("place fetch failed")
				return
			}
			name := m.ListingName
			if name == "" {
				name = placeName
			}
			perPlace[i] = NormalizeGoogle(raw, m.PlaceID, name)
		}(i, m)
	}
	wg.Wait()

	var out []domain.CanonicalReview
	for _, rs := range perPlace {
		out = append(out, rs...)
	}
	return out
}
