package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

// ---- fakes ----

type fakeHostaway struct {
	result []map[string]any
	isMock bool
	err    error
	calls  int
}

func (f *fakeHostaway) GetReviews(ctx context.Context) ([]map[string]any, bool, error) {
	f.calls++
	return f.result, f.isMock, f.err
}

type fakePlaces struct {
	configured bool
	byPlace    map[string][]map[string]any
	errPlaces  map[string]error
	names      map[string]string
}

func (f *fakePlaces) IsConfigured() bool { return f.configured }
func (f *fakePlaces) GetPlaceReviews(ctx context.Context, placeID string) (string, []map[string]any, error) {
	if err, ok := f.errPlaces[placeID]; ok {
		return "", nil, err
	}
	return f.names[placeID], f.byPlace[placeID], nil
}

type fakeStore struct {
	mu      sync.Mutex
	records []domain.ModerationRecord
	findErr error
	upserts []domain.ModerationUpdate
}

func (f *fakeStore) FindAll(ctx context.Context, flt domain.ModerationFilter) ([]domain.ModerationRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []domain.ModerationRecord
	for _, r := range f.records {
		if flt.Approved != nil && r.Approved != *flt.Approved {
			continue
		}
		if flt.DisplayOnWebsite != nil && r.DisplayOnWebsite != *flt.DisplayOnWebsite {
			continue
		}
		if flt.Source != "" && r.Source != flt.Source {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) Upsert(ctx context.Context, u domain.ModerationUpdate) (domain.ModerationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, u)
	rec := domain.ModerationRecord{ReviewID: u.ReviewID, Source: u.Source, UpdatedAt: time.Now()}
	if u.Approved != nil {
		rec.Approved = *u.Approved
	}
	if u.DisplayOnWebsite != nil {
		rec.DisplayOnWebsite = *u.DisplayOnWebsite
	}
	rec.Notes = u.Notes
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) Delete(ctx context.Context, reviewID, source string) (bool, error) {
	for i, r := range f.records {
		if r.ReviewID == reviewID && r.Source == source {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.ReviewsResult:
		*d = v.(domain.ReviewsResult)
	case *domain.AnalyticsSummary:
		*d = v.(domain.AnalyticsSummary)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

func newService(h *fakeHostaway, p *fakePlaces, placeMap []domain.PlaceMapping, st *fakeStore, c *fakeCache) *app.ReviewService {
	return app.NewReviewService(h, p, placeMap, st, c, 5*time.Minute, 4)
}

func googleRaw(epoch float64, author string) map[string]any {
	return map[string]any{"author_name": author, "rating": 5.0, "text": "great", "time": epoch}
}

// ---- tests ----

func TestSelectReviews_GoogleWinsWhenConfiguredAndNonEmpty(t *testing.T) {
	h := &fakeHostaway{result: []map[string]any{hostawayRaw(nil)}}
	p := &fakePlaces{
		configured: true,
		byPlace:    map[string][]map[string]any{"p1": {googleRaw(1724278000, "Jane")}},
		names:      map[string]string{"p1": "Provider Place Name"},
	}
	svc := newService(h, p, []domain.PlaceMapping{{ListingName: "Shoreditch Heights", PlaceID: "p1"}}, &fakeStore{}, &fakeCache{})

	reviews, src := svc.SelectReviews(context.Background())
	if src != domain.SourceGoogle {
		t.Fatalf("source: %q", src)
	}
	if len(reviews) != 1 || reviews[0].ListingName != "Shoreditch Heights" {
		t.Fatalf("reviews: %+v", reviews)
	}
	if h.calls != 0 {
		t.Fatalf("hostaway should not be called when google answers")
	}
}

func TestSelectReviews_FallsBackToHostawayOnEmptyGoogle(t *testing.T) {
	h := &fakeHostaway{result: []map[string]any{hostawayRaw(nil), hostawayRaw(map[string]any{"id": 2.0}), hostawayRaw(map[string]any{"id": 3.0})}}
	p := &fakePlaces{configured: true, byPlace: map[string][]map[string]any{}}
	svc := newService(h, p, []domain.PlaceMapping{{ListingName: "X", PlaceID: "p1"}}, &fakeStore{}, &fakeCache{})

	reviews, src := svc.SelectReviews(context.Background())
	if src != domain.SourceHostaway {
		t.Fatalf("source: %q", src)
	}
	if len(reviews) != 3 {
		t.Fatalf("len: %d", len(reviews))
	}
}

func TestSelectReviews_SkipsGoogleWithoutPlaceMap(t *testing.T) {
	h := &fakeHostaway{result: []map[string]any{hostawayRaw(nil)}}
	p := &fakePlaces{configured: true, byPlace: map[string][]map[string]any{"p1": {googleRaw(1, "A")}}}
	svc := newService(h, p, nil, &fakeStore{}, &fakeCache{})

	_, src := svc.SelectReviews(context.Background())
	if src != domain.SourceHostaway {
		t.Fatalf("configured key without mappings must not route to google, got %q", src)
	}
}

func TestSelectReviews_MockTag(t *testing.T) {
	h := &fakeHostaway{result: []map[string]any{hostawayRaw(nil)}, isMock: true}
	svc := newService(h, &fakePlaces{}, nil, &fakeStore{}, &fakeCache{})

	reviews, src := svc.SelectReviews(context.Background())
	if src != domain.SourceMock {
		t.Fatalf("source: %q", src)
	}
	if reviews[0].Source != domain.SourceMock {
		t.Fatalf("review source should carry the mock tag, got %q", reviews[0].Source)
	}
}

func TestSelectReviews_UnknownWhenNothingAnswers(t *testing.T) {
	h := &fakeHostaway{err: errors.New("boom")}
	svc := newService(h, &fakePlaces{}, nil, &fakeStore{}, &fakeCache{})

	reviews, src := svc.SelectReviews(context.Background())
	if src != domain.SourceUnknown || len(reviews) != 0 {
		t.Fatalf("got %q with %d reviews", src, len(reviews))
	}
}

func TestSelectReviews_PlaceFailureIsIsolated(t *testing.T) {
	p := &fakePlaces{
		configured: true,
		byPlace: map[string][]map[string]any{
			"ok1": {googleRaw(100, "A")},
			"ok2": {googleRaw(200, "B")},
		},
		errPlaces: map[string]error{"bad": errors.New("quota exceeded")},
	}
	svc := newService(&fakeHostaway{}, p, []domain.PlaceMapping{
		{ListingName: "L1", PlaceID: "ok1"},
		{ListingName: "L2", PlaceID: "bad"},
		{ListingName: "L3", PlaceID: "ok2"},
	}, &fakeStore{}, &fakeCache{})

	reviews, src := svc.SelectReviews(context.Background())
	if src != domain.SourceGoogle {
		t.Fatalf("source: %q", src)
	}
	if len(reviews) != 2 {
		t.Fatalf("one failing place must not drop the others: %d", len(reviews))
	}
	// configured place order is preserved
	if reviews[0].ListingName != "L1" || reviews[1].ListingName != "L3" {
		t.Fatalf("order: %q %q", reviews[0].ListingName, reviews[1].ListingName)
	}
}
