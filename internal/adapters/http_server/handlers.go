// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

type Handlers struct{ Svc *app.ReviewService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"message":   "Flex Living Reviews API",
			"version":   "2.0.0",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/api/reviews/hostaway", h.listReviews)
	s.mux.Get("/api/reviews/approved", h.approvedReviews)
	s.mux.Get("/api/reviews/analytics", h.analytics)
	s.mux.Post("/api/reviews/selection", h.updateSelection)
	s.mux.Delete("/api/reviews/selection", h.deleteSelection)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// parseQuery maps query params onto a ReviewQuery. Unknown sort keys and
// non-numeric rating bounds are ignored, matching the dashboard's tolerance.
func parseQuery(r *http.Request) domain.ReviewQuery {
	qs := r.URL.Query()
	q := domain.ReviewQuery{
		ListingName: qs.Get("listingName"),
		Channel:     qs.Get("channel"),
		Category:    qs.Get("category"),
		SortBy:      qs.Get("sortBy"),
		SortOrder:   qs.Get("sortOrder"),
	}
	if v := qs.Get("minRating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.MinRating = &f
		}
	}
	if v := qs.Get("maxRating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.MaxRating = &f
		}
	}
	return q
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.ListReviews(r.Context(), parseQuery(r))
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Aggregation Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"count":      len(res.Reviews),
		"reviews":    res.Reviews,
		"dataSource": res.DataSource,
	})
}

func (h *Handlers) approvedReviews(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	res, err := h.Svc.ApprovedReviews(r.Context(), qs.Get("listingName"), qs.Get("source"))
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Aggregation Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"count":      len(res.Reviews),
		"reviews":    res.Reviews,
		"dataSource": res.DataSource,
	})
}

func (h *Handlers) analytics(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"
	sum, err := h.Svc.Analytics(r.Context(), refresh)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Analytics Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"analytics": sum,
	})
}

// selectionRequest tolerates a numeric reviewId: the dashboard sends the
// canonical string id, but older clients forward the provider's raw number.
type selectionRequest struct {
	ReviewID         any     `json:"reviewId"`
	Source           string  `json:"source"`
	ListingID        *string `json:"listingId"`
	ListingName      *string `json:"listingName"`
	Approved         *bool   `json:"approved"`
	DisplayOnWebsite *bool   `json:"displayOnWebsite"`
	Notes            *string `json:"notes"`
}

func (h *Handlers) updateSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be JSON")
		return
	}

	rec, err := h.Svc.UpdateSelection(r.Context(), domain.ModerationUpdate{
		ReviewID:         app.CanonicalID(req.ReviewID),
		Source:           req.Source,
		ListingID:        req.ListingID,
		ListingName:      req.ListingName,
		Approved:         req.Approved,
		DisplayOnWebsite: req.DisplayOnWebsite,
		Notes:            req.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeProblem(w, http.StatusBadRequest, "Invalid Selection", "reviewId and source are required")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Selection Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": rec})
}

func (h *Handlers) deleteSelection(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	ok, err := h.Svc.DeleteSelection(r.Context(), qs.Get("reviewId"), qs.Get("source"))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeProblem(w, http.StatusBadRequest, "Invalid Selection", "reviewId and source are required")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Selection Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "deleted": ok})
}
