package domain

import "context"

// ModerationStore persists operator moderation state. Upsert and Delete are
// the only mutators; both key on (reviewID, source).
type ModerationStore interface {
	FindAll(ctx context.Context, f ModerationFilter) ([]ModerationRecord, error)
	Upsert(ctx context.Context, u ModerationUpdate) (ModerationRecord, error)
	Delete(ctx context.Context, reviewID, source string) (bool, error)
}

// HostawayClient fetches raw property-management reviews. A provider or auth
// failure is absorbed by the client: it falls back to the local dataset and
// reports isMock=true, so callers never see a transport error.
type HostawayClient interface {
	GetReviews(ctx context.Context) (result []map[string]any, isMock bool, err error)
}

// PlacesClient fetches raw place reviews. IsConfigured reports whether
// credentials exist; its absence is a routing signal, not an error.
type PlacesClient interface {
	IsConfigured() bool
	GetPlaceReviews(ctx context.Context, placeID string) (placeName string, reviews []map[string]any, err error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// PlaceMapping ties an operator listing name to a provider place id. The
// listing name wins over the provider's own place name on normalized output.
type PlaceMapping struct {
	ListingName string
	PlaceID     string
}
