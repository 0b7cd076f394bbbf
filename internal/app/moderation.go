package app

import "flex_reviews/internal/domain"

// reviewKey is the moderation join key: source plus the canonical form of
// the identifier, so "42", 42 and "42.0" land on the same entry no matter
// which representation either side arrived in.
func reviewKey(source, id string) string {
	return source + "-" + canonicalIDString(id)
}

// AttachModeration joins canonical reviews with their persisted moderation
// records, defaulting to {false, false, nil} when no record exists. Pure and
// idempotent over the same inputs.
func AttachModeration(reviews []domain.CanonicalReview, records []domain.ModerationRecord) []domain.MergedReview {
	byKey := make(map[string]domain.ModerationRecord, len(records))
	for _, rec := range records {
		byKey[reviewKey(rec.Source, rec.ReviewID)] = rec
	}

	out := make([]domain.MergedReview, 0, len(reviews))
	for _, rv := range reviews {
		m := domain.MergedReview{CanonicalReview: rv}
		if rec, ok := byKey[reviewKey(rv.Source, rv.ID)]; ok {
			m.Approved = rec.Approved
			m.DisplayOnWebsite = rec.DisplayOnWebsite
			m.Notes = rec.Notes
		}
		out = append(out, m)
	}
	return out
}
