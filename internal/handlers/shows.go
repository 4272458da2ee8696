// Package handlers exposes the read side of the catalog: a filtered show
// listing and single-show detail. The ingestion path writes, this package
// only reads.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/example/tvtracker/internal/platform/api"
	"github.com/example/tvtracker/internal/platform/httpserver"
	"github.com/example/tvtracker/internal/store"
)

type showResponse struct {
	ID         string   `json:"id"`
	ProviderID int64    `json:"provider_id"`
	Name       string   `json:"name"`
	Language   string   `json:"language"`
	Premiered  string   `json:"premiered,omitempty"`
	Status     string   `json:"status,omitempty"`
	Rating     *float64 `json:"rating"`
	Summary    string   `json:"summary,omitempty"`
	Image      string   `json:"image,omitempty"`
}

type distributorResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type releaseResponse struct {
	ID          string `json:"id"`
	EpisodeID   int64  `json:"episode_id"`
	EpisodeName string `json:"episode_name,omitempty"`
	Airdate     string `json:"airdate,omitempty"`
	Airstamp    string `json:"airstamp,omitempty"`
	Runtime     *int32 `json:"runtime"`
	Season      *int32 `json:"season"`
	Number      *int32 `json:"number"`
}

type showDetailResponse struct {
	showResponse
	Distributors []distributorResponse `json:"distributors"`
	Releases     []releaseResponse     `json:"releases"`
}

func toShowResponse(s store.Show) showResponse {
	return showResponse{
		ID:         s.ID.String(),
		ProviderID: s.ProviderID,
		Name:       s.Name,
		Language:   s.Language,
		Premiered:  fmtDate(s.Premiered),
		Status:     s.Status,
		Rating:     s.Rating,
		Summary:    s.Summary,
		Image:      s.Image,
	}
}

func toShowDetailResponse(d *store.ShowDetail) showDetailResponse {
	out := showDetailResponse{
		showResponse: toShowResponse(d.Show),
		Distributors: make([]distributorResponse, 0, len(d.Distributors)),
		Releases:     make([]releaseResponse, 0, len(d.Releases)),
	}
	for _, dist := range d.Distributors {
		out.Distributors = append(out.Distributors, distributorResponse{
			ID:      dist.ID.String(),
			Name:    dist.Name,
			Country: dist.Country,
			Kind:    dist.Kind,
		})
	}
	for _, rel := range d.Releases {
		out.Releases = append(out.Releases, releaseResponse{
			ID:          rel.ID.String(),
			EpisodeID:   rel.EpisodeID,
			EpisodeName: rel.EpisodeName,
			Airdate:     fmtDate(rel.Airdate),
			Airstamp:    fmtTime(rel.Airstamp),
			Runtime:     rel.Runtime,
			Season:      rel.Season,
			Number:      rel.Number,
		})
	}
	return out
}

// ListShows handles GET /v1/shows with optional filters and pagination.
//
// Query params: date_from, date_to (premiere range, YYYY-MM-DD), min_rating,
// language, distributor (name), country, limit, offset. Malformed filter
// values behave as "no filter".
func ListShows(catalog store.Catalog, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		q := r.URL.Query()
		f := store.ShowFilter{
			PremieredFrom: parseDatePtr(q.Get("date_from")),
			PremieredTo:   parseDatePtr(q.Get("date_to")),
			MinRating:     parseFloatPtr(q.Get("min_rating")),
			Language:      strings.TrimSpace(q.Get("language")),
			Distributor:   strings.TrimSpace(q.Get("distributor")),
			Country:       strings.TrimSpace(q.Get("country")),
			Limit:         parseInt(q.Get("limit"), 25, 1, 100),
			Offset:        parseInt(q.Get("offset"), 0, 0, 100000),
		}

		key := "ListShows:" + r.URL.RawQuery
		if cache != nil {
			if cached, ok := cache.Get(key); ok {
				api.WriteJSON(w, http.StatusOK, cached)
				return
			}
		}

		shows, total, err := catalog.ListShows(r.Context(), f)
		if err != nil {
			api.Internal(w, rid)
			return
		}

		items := make([]showResponse, 0, len(shows))
		for _, s := range shows {
			items = append(items, toShowResponse(s))
		}
		resp := map[string]any{"shows": items, "total": total, "limit": f.Limit, "offset": f.Offset}
		if cache != nil {
			cache.Set(key, resp)
		}
		api.WriteJSON(w, http.StatusOK, resp)
	}
}

// GetShow handles GET /v1/shows/{show_id}: one show with its distributors
// and release history.
func GetShow(catalog store.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		raw := strings.TrimSpace(chi.URLParam(r, "show_id"))
		id, err := uuid.Parse(raw)
		if err != nil {
			api.BadRequest(w, "VALIDATION_SHOW_ID", "Invalid show_id", rid, map[string]any{"show_id": raw})
			return
		}

		detail, err := catalog.GetShow(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "show not found", rid)
				return
			}
			api.Internal(w, rid)
			return
		}

		api.WriteJSON(w, http.StatusOK, toShowDetailResponse(detail))
	}
}
