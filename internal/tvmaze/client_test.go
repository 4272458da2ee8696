package tvmaze

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

var testDate = time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

func TestClient_FetchEpisodes(t *testing.T) {
	var gotDates []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedule" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		gotDates = append(gotDates, r.URL.Query().Get("date"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Pilot", "airdate": "2025-08-15"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	episodes := c.FetchEpisodes(context.Background(), testDate)

	if len(episodes) != 1 || episodes[0].ID != 1 || episodes[0].Name != "Pilot" {
		t.Fatalf("unexpected episodes: %+v", episodes)
	}
	if len(gotDates) != 1 || gotDates[0] != "2025-08-15" {
		t.Fatalf("expected one request with date=2025-08-15, got %v", gotDates)
	}
}

func TestClient_CachesDateForInstanceLifetime(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`[{"id": 1}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	_ = c.FetchEpisodes(context.Background(), testDate)
	_ = c.FetchEpisodes(context.Background(), testDate)
	if calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", calls)
	}

	// A different date is a fresh fetch.
	_ = c.FetchEpisodes(context.Background(), testDate.AddDate(0, 0, 1))
	if calls != 2 {
		t.Fatalf("expected a second upstream call for the next date, got %d", calls)
	}
}

func TestClient_Non200IsAnEmptyDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	if got := c.FetchEpisodes(context.Background(), testDate); len(got) != 0 {
		t.Fatalf("expected empty result on 500, got %+v", got)
	}
}

func TestClient_TransportErrorIsAnEmptyDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, zap.NewNop())
	if got := c.FetchEpisodes(context.Background(), testDate); len(got) != 0 {
		t.Fatalf("expected empty result on transport error, got %+v", got)
	}
}

func TestClient_MalformedBodyIsAnEmptyDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	if got := c.FetchEpisodes(context.Background(), testDate); len(got) != 0 {
		t.Fatalf("expected empty result on decode error, got %+v", got)
	}
}
