package app

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

/********** flexible payload helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

/********** identifier canonicalization **********/

// CanonicalID collapses the numeric/string representations a provider
// identifier can arrive in (42, "42", "42.0") into one string form. The
// moderation join keys on this form on both sides, so a single lookup
// replaces multi-representation indexing.
func CanonicalID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return canonicalIDString(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return canonicalIDString(fmt.Sprintf("%v", t))
	}
}

func canonicalIDString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// randomSuffix gives synthesized ids for records the provider sent without one.
func randomSuffix() string {
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b[:])
}

/********** Hostaway / mock normalizer **********/

// NormalizeHostaway maps raw property-management review records to the
// canonical shape. source is "hostaway" or "mock" (the fallback dataset uses
// the same wire shape). Malformed fields degrade to their defaults; a bad
// record never aborts the batch.
func NormalizeHostaway(in []map[string]any, source string, now time.Time) []domain.CanonicalReview {
	out := make([]domain.CanonicalReview, 0, len(in))
	for _, r := range in {
		id := CanonicalID(r["id"])
		if id == "" {
			id = "hostaway-" + randomSuffix()
		}
		cats := hostawayCategories(r)
		rv := domain.CanonicalReview{
			ID:          id,
			Source:      source,
			Channel:     firstNonEmpty(lookupStr(r, "channel"), "Hostaway"),
			ListingName: firstNonEmpty(lookupStr(r, "listingName"), "Unknown Listing"),
			ListingID:   ptrStr(CanonicalID(r["listingId"])),
			GuestName:   firstNonEmpty(lookupStr(r, "guestName"), domain.AnonymousGuest),
			Text:        firstNonEmpty(lookupStr(r, "publicReview"), lookupStr(r, "privateReview")),
			Rating:      overallRating(r, cats),
			Categories:  cats,
			Date:        parseHostawayDate(lookupStr(r, "submittedAt"), now),
			Status:      firstNonEmpty(lookupStr(r, "status"), "published"),
			Type:        firstNonEmpty(lookupStr(r, "type"), "guest-to-host"),
		}
		out = append(out, rv)
	}
	return out
}

// overallRating prefers the provider's explicit rating; otherwise it halves
// the 0–10 category average to the 0–5 scale, rounded to one decimal.
func overallRating(r map[string]any, cats []domain.CategoryRating) *float64 {
	if f := getFloatFlexible(r, "rating"); f != nil {
		return f
	}
	if len(cats) == 0 {
		return nil
	}
	var sum float64
	for _, c := range cats {
		sum += c.Rating
	}
	avg10 := sum / float64(len(cats))
	v := math.Round(avg10/2*10) / 10
	return &v
}

func hostawayCategories(r map[string]any) []domain.CategoryRating {
	raw, ok := r["reviewCategory"].([]any)
	if !ok {
		return []domain.CategoryRating{}
	}
	out := make([]domain.CategoryRating, 0, len(raw))
	for _, it := range raw {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		c := domain.CategoryRating{Category: lookupStr(m, "category")}
		if f := getFloatFlexible(m, "rating"); f != nil {
			c.Rating = *f
		}
		out = append(out, c)
	}
	return out
}

// parseHostawayDate converts the provider's "YYYY-MM-DD HH:MM:SS" form to a
// parseable timestamp by substituting the first space with "T". Unparseable
// input falls back to now rather than failing the request.
func parseHostawayDate(s string, now time.Time) time.Time {
	if s == "" {
		return now
	}
	iso := strings.Replace(s, " ", "T", 1)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.UTC()
		}
	}
	return now
}

/********** Google Places normalizer **********/

// NormalizeGoogle maps raw place reviews. listingName is injected by the
// caller per place because the provider's place name may differ from the
// operator's listing name. Google reports no category sub-ratings.
func NormalizeGoogle(in []map[string]any, placeID, listingName string) []domain.CanonicalReview {
	out := make([]domain.CanonicalReview, 0, len(in))
	for _, r := range in {
		rating := 0.0
		if f := getFloatFlexible(r, "rating"); f != nil {
			rating = *f
		}
		epoch := int64(0)
		if f := getFloatFlexible(r, "time"); f != nil {
			epoch = int64(*f)
		}
		rv := domain.CanonicalReview{
			ID:          fmt.Sprintf("google-%d-%s", epoch, placeID),
			Source:      domain.SourceGoogle,
			Channel:     "Google",
			ListingName: firstNonEmpty(listingName, "Unknown Listing"),
			ListingID:   ptrStr(placeID),
			GuestName:   firstNonEmpty(lookupStr(r, "author_name"), domain.AnonymousGuest),
			Text:        lookupStr(r, "text"),
			Rating:      &rating,
			Categories:  []domain.CategoryRating{},
			Date:        time.Unix(epoch, 0).UTC(),
			Status:      "published",
			Type:        "guest-to-host",
		}
		out = append(out, rv)
	}
	return out
}
