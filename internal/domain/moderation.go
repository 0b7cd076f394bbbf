package domain

import (
	"errors"
	"time"
)

// ErrValidation marks a moderation write rejected before anything was
// persisted (missing reviewId or source).
var ErrValidation = errors.New("validation failed")

// ModerationRecord is operator-authored approval/publish/notes state,
// unique per (ReviewID, Source). DisplayOnWebsite=true does not imply
// Approved=true at this layer; the public read path requires both flags.
type ModerationRecord struct {
	ReviewID         string    `json:"reviewId"`
	Source           string    `json:"source"`
	ListingID        *string   `json:"listingId"`
	ListingName      *string   `json:"listingName"`
	Approved         bool      `json:"approved"`
	DisplayOnWebsite bool      `json:"displayOnWebsite"`
	Notes            *string   `json:"notes"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ModerationUpdate is a partial write: nil pointer fields are left as they
// are in the stored record (or take their defaults on first insert).
type ModerationUpdate struct {
	ReviewID         string  `json:"reviewId"`
	Source           string  `json:"source"`
	ListingID        *string `json:"listingId"`
	ListingName      *string `json:"listingName"`
	Approved         *bool   `json:"approved"`
	DisplayOnWebsite *bool   `json:"displayOnWebsite"`
	Notes            *string `json:"notes"`
}

func (u ModerationUpdate) Validate() error {
	if u.ReviewID == "" || u.Source == "" {
		return ErrValidation
	}
	return nil
}

// ModerationFilter narrows FindAll. Nil/empty fields match everything.
type ModerationFilter struct {
	Approved         *bool
	DisplayOnWebsite *bool
	Source           string
}
