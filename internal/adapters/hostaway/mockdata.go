package hostaway

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// The fallback dataset mirrors the provider's /reviews wire shape, so it
// goes through the exact same normalization path as live data.
//
//go:embed data/mock-hostaway-reviews.json
var mockReviewsJSON []byte

var (
	mockOnce   sync.Once
	mockResult []map[string]any
)

func fallbackReviews() []map[string]any {
	mockOnce.Do(func() {
		var env reviewsEnvelope
		if err := json.Unmarshal(mockReviewsJSON, &env); err != nil {
			log.Error().Err(err).Msg("fallback dataset is unreadable")
			return
		}
		mockResult = env.Result
	})
	return mockResult
}
