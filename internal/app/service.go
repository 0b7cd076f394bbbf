package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

const (
	mergedCacheKey    = "reviews:merged"
	analyticsCacheKey = "analytics:summary"
)

// ReviewService runs the aggregation pipeline: source selection → moderation
// join → filter/sort or analytics. Two request-level caches (merged set,
// analytics summary) are invalidated eagerly on every moderation write.
type ReviewService struct {
	hostaway domain.HostawayClient
	places   domain.PlacesClient
	placeMap []domain.PlaceMapping
	store    domain.ModerationStore
	cache    domain.Cache
	cacheTTL time.Duration
	workers  int
	now      func() time.Time
}

func NewReviewService(
	hostaway domain.HostawayClient,
	places domain.PlacesClient,
	placeMap []domain.PlaceMapping,
	store domain.ModerationStore,
	cache domain.Cache,
	ttl time.Duration,
	workers int,
) *ReviewService {
	if workers <= 0 {
		workers = 4
	}
	return &ReviewService{
		hostaway: hostaway,
		places:   places,
		placeMap: placeMap,
		store:    store,
		cache:    cache,
		cacheTTL: ttl,
		workers:  workers,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListReviews is the dashboard read path: merged set, then filters and sort.
func (s *ReviewService) ListReviews(ctx context.Context, q domain.ReviewQuery) (domain.ReviewsResult, error) {
	merged, err := s.mergedSet(ctx)
	if err != nil {
		return domain.ReviewsResult{}, err
	}
	merged.Reviews = ApplyQuery(merged.Reviews, q)
	return merged, nil
}

// ApprovedReviews is the public listing-page read path: only reviews whose
// moderation record carries both approved and displayOnWebsite survive, and
// both flags are forced true on output.
func (s *ReviewService) ApprovedReviews(ctx context.Context, listingName, source string) (domain.ReviewsResult, error) {
	merged, err := s.mergedSet(ctx)
	if err != nil {
		return domain.ReviewsResult{}, err
	}
	out := make([]domain.MergedReview, 0, len(merged.Reviews))
	for _, r := range merged.Reviews {
		if !r.Approved || !r.DisplayOnWebsite {
			continue
		}
		if source != "" && r.Source != source {
			continue
		}
		r.Approved = true
		r.DisplayOnWebsite = true
		out = append(out, r)
	}
	if listingName != "" {
		out = ApplyQuery(out, domain.ReviewQuery{ListingName: listingName})
	}
	merged.Reviews = out
	return merged, nil
}

// UpdateSelection validates and persists a partial moderation write, then
// drops both caches so the next read reflects it.
func (s *ReviewService) UpdateSelection(ctx context.Context, u domain.ModerationUpdate) (domain.ModerationRecord, error) {
	if err := u.Validate(); err != nil {
		return domain.ModerationRecord{}, err
	}
	u.ReviewID = CanonicalID(u.ReviewID)
	rec, err := s.store.Upsert(ctx, u)
	if err != nil {
		return domain.ModerationRecord{}, err
	}
	s.invalidate(ctx)
	return rec, nil
}

// DeleteSelection removes a moderation record, with the same validation and
// cache invalidation as the upsert path.
func (s *ReviewService) DeleteSelection(ctx context.Context, reviewID, source string) (bool, error) {
	if reviewID == "" || source == "" {
		return false, domain.ErrValidation
	}
	ok, err := s.store.Delete(ctx, CanonicalID(reviewID), source)
	if err != nil {
		return false, err
	}
	s.invalidate(ctx)
	return ok, nil
}

// Analytics summarizes the merged set, serving a cached summary unless the
// caller forces a refresh.
func (s *ReviewService) Analytics(ctx context.Context, refresh bool) (domain.AnalyticsSummary, error) {
	if !refresh {
		var cached domain.AnalyticsSummary
		if ok, _ := s.cache.Get(ctx, analyticsCacheKey, &cached); ok {
			return cached, nil
		}
	}
	merged, err := s.mergedSet(ctx)
	if err != nil {
		return domain.AnalyticsSummary{}, err
	}
	sum := Summarize(merged.Reviews, s.now())
	sum.DataSource = merged.DataSource
	if err := s.cache.Set(ctx, analyticsCacheKey, sum, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Msg("analytics cache set failed")
	}
	return sum, nil
}

// mergedSet selects a source, joins moderation state, and caches the result
// (the reconciliation cache). A store read failure degrades to an empty
// record set: no moderation state yet, not a failed request.
func (s *ReviewService) mergedSet(ctx context.Context) (domain.ReviewsResult, error) {
	var cached domain.ReviewsResult
	if ok, _ := s.cache.Get(ctx, mergedCacheKey, &cached); ok {
		return cached, nil
	}

	reviews, dataSource := s.SelectReviews(ctx)

	records, err := s.store.FindAll(ctx, domain.ModerationFilter{})
	if err != nil {
		log.Warn().Err(err).Msg("moderation read failed; joining empty state")
		records = nil
	}

	result := domain.ReviewsResult{
		Reviews:    AttachModeration(reviews, records),
		DataSource: dataSource,
	}
	if err := s.cache.Set(ctx, mergedCacheKey, result, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Msg("merged cache set failed")
	}
	return result, nil
}

func (s *ReviewService) invalidate(ctx context.Context) {
	if err := s.cache.Del(ctx, mergedCacheKey); err != nil {
		log.Warn().Err(err).Msg("merged cache del failed")
	}
	if err := s.cache.Del(ctx, analyticsCacheKey); err != nil {
		log.Warn().Err(err).Msg("analytics cache del failed")
	}
}
