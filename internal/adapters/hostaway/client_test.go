package hostaway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flex_reviews/internal/adapters/hostaway"
)

func reviewsPayload(n int) map[string]any {
	result := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, map[string]any{"id": float64(1000 + i), "publicReview": "ok"})
	}
	return map[string]any{"status": "success", "result": result}
}

func newProvider(t *testing.T, tokenHits, reviewHits *int32, reviewStatus int, n int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accessTokens":
			atomic.AddInt32(tokenHits, 1)
			if r.Method != http.MethodPost {
				w.WriteHeader(405)
				return
			}
			if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
				w.WriteHeader(400)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-123", "expires_in": 3600})
		case "/reviews":
			atomic.AddInt32(reviewHits, 1)
			if r.Header.Get("Authorization") != "Bearer tok-123" {
				w.WriteHeader(401)
				return
			}
			w.WriteHeader(reviewStatus)
			if reviewStatus == 200 {
				_ = json.NewEncoder(w).Encode(reviewsPayload(n))
			}
		default:
			w.WriteHeader(404)
		}
	}))
}

func TestGetReviews_LiveFetch(t *testing.T) {
	var tokenHits, reviewHits int32
	ts := newProvider(t, &tokenHits, &reviewHits, 200, 3)
	defer ts.Close()

	cl := hostaway.New(ts.URL, "client-id", "client-secret", 100)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, isMock, err := cl.GetReviews(ctx)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if isMock {
		t.Fatalf("expected live data")
	}
	if len(result) != 3 {
		t.Fatalf("len: %d", len(result))
	}
}

func TestGetReviews_TokenCachedAcrossCalls(t *testing.T) {
	var tokenHits, reviewHits int32
	ts := newProvider(t, &tokenHits, &reviewHits, 200, 1)
	defer ts.Close()

	cl := hostaway.New(ts.URL, "client-id", "client-secret", 100)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := cl.GetReviews(ctx); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if atomic.LoadInt32(&tokenHits) != 1 {
		t.Fatalf("token endpoint hit %d times, want 1", tokenHits)
	}
	if atomic.LoadInt32(&reviewHits) != 3 {
		t.Fatalf("review hits: %d", reviewHits)
	}
}

func TestGetReviews_NoCredentialsServesFallback(t *testing.T) {
	cl := hostaway.New("http://unused.invalid", "", "", 100)

	result, isMock, err := cl.GetReviews(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !isMock {
		t.Fatalf("expected fallback data")
	}
	if len(result) == 0 {
		t.Fatalf("fallback dataset must not be empty")
	}
}

func TestGetReviews_ProviderErrorDegradesToFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	cl := hostaway.New(ts.URL, "client-id", "client-secret", 100)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, isMock, err := cl.GetReviews(ctx)
	if err != nil {
		t.Fatalf("provider failure must never surface: %v", err)
	}
	if !isMock || len(result) == 0 {
		t.Fatalf("expected fallback, got isMock=%v len=%d", isMock, len(result))
	}
}

func TestGetReviews_EmptyProviderResultServesFallback(t *testing.T) {
	var tokenHits, reviewHits int32
	ts := newProvider(t, &tokenHits, &reviewHits, 200, 0)
	defer ts.Close()

	cl := hostaway.New(ts.URL, "client-id", "client-secret", 100)

	result, isMock, err := cl.GetReviews(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !isMock || len(result) == 0 {
		t.Fatalf("empty provider result must fall back, got isMock=%v len=%d", isMock, len(result))
	}
}
