package tvmaze

import (
	"encoding/json"
	"testing"
	"time"
)

const sampleRecord = `{
	"id": 123,
	"name": "Test Episode",
	"airdate": "2025-08-15",
	"airstamp": "2025-08-15T20:00:00Z",
	"runtime": 60,
	"season": 2,
	"number": 3,
	"show": {
		"id": 999,
		"name": "Test Show",
		"premiered": "2013-06-03",
		"language": "English",
		"status": "Running",
		"rating": {"average": 8.4},
		"summary": "A very good show.",
		"image": {"medium": "http://example.com/show.jpg"},
		"network": {
			"name": "Test Network",
			"country": {"name": "USA"},
			"type": "network"
		}
	}
}`

func decodeRecord(t *testing.T, raw string) ScheduleEpisode {
	t.Helper()
	var ep ScheduleEpisode
	if err := json.Unmarshal([]byte(raw), &ep); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return ep
}

func TestScheduleEpisode_Accessors(t *testing.T) {
	ep := decodeRecord(t, sampleRecord)

	if ep.ID != 123 || ep.Name != "Test Episode" {
		t.Fatalf("unexpected episode identity: %+v", ep)
	}
	if got := ep.AirDate(); got == nil || got.Format("2006-01-02") != "2025-08-15" {
		t.Fatalf("unexpected airdate: %v", got)
	}
	want := time.Date(2025, 8, 15, 20, 0, 0, 0, time.UTC)
	if got := ep.AirStamp(); got == nil || !got.Equal(want) {
		t.Fatalf("unexpected airstamp: %v", got)
	}
	if ep.Runtime == nil || *ep.Runtime != 60 {
		t.Fatalf("unexpected runtime: %v", ep.Runtime)
	}

	show := ep.Show
	if show == nil || show.ID != 999 || show.Name != "Test Show" {
		t.Fatalf("unexpected show: %+v", show)
	}
	if r := show.AverageRating(); r == nil || *r != 8.4 {
		t.Fatalf("unexpected rating: %v", r)
	}
	if show.ImageURL() != "http://example.com/show.jpg" {
		t.Fatalf("unexpected image: %q", show.ImageURL())
	}
	if p := show.PremiereDate(); p == nil || p.Format("2006-01-02") != "2013-06-03" {
		t.Fatalf("unexpected premiere: %v", p)
	}

	d := show.Distributor()
	if d == nil || d.Name != "Test Network" || d.CountryName() != "USA" || d.Kind() != "network" {
		t.Fatalf("unexpected distributor: %+v", d)
	}
}

func TestScheduleEpisode_MalformedDatesResolveToNil(t *testing.T) {
	ep := decodeRecord(t, `{"id": 1, "airdate": "not-a-date", "airstamp": "garbage"}`)
	if ep.AirDate() != nil {
		t.Fatal("expected nil airdate for malformed input")
	}
	if ep.AirStamp() != nil {
		t.Fatal("expected nil airstamp for malformed input")
	}

	ep = decodeRecord(t, `{"id": 2}`)
	if ep.AirDate() != nil || ep.AirStamp() != nil {
		t.Fatal("expected nil date fields when absent")
	}
	if ep.Runtime != nil || ep.Season != nil || ep.Number != nil {
		t.Fatal("expected nil numeric fields when absent")
	}
}

func TestScheduleEpisode_NoShowSignal(t *testing.T) {
	ep := decodeRecord(t, `{"id": 5, "name": "Orphan"}`)
	if ep.Show != nil {
		t.Fatal("expected nil show when payload is absent")
	}
}

func TestShowRecord_DistributorFallsBackToWebChannel(t *testing.T) {
	ep := decodeRecord(t, `{
		"id": 7,
		"show": {
			"id": 1,
			"name": "Streaming Only",
			"webChannel": {"name": "NetStream", "country": {"name": "Canada"}, "type": "web_channel"}
		}
	}`)
	d := ep.Show.Distributor()
	if d == nil || d.Name != "NetStream" {
		t.Fatalf("expected web channel distributor, got %+v", d)
	}
	if d.Kind() != "web_channel" {
		t.Fatalf("expected web_channel kind, got %q", d.Kind())
	}
}

func TestDistributorRecord_KindDefaultsToNetwork(t *testing.T) {
	ep := decodeRecord(t, `{
		"id": 8,
		"show": {
			"id": 2,
			"name": "Main Channel",
			"network": {"name": "BBC One", "country": {"name": "United Kingdom"}}
		}
	}`)
	if got := ep.Show.Distributor().Kind(); got != DefaultDistributorKind {
		t.Fatalf("expected default kind %q, got %q", DefaultDistributorKind, got)
	}
}

func TestShowRecord_NoDistributor(t *testing.T) {
	ep := decodeRecord(t, `{"id": 9, "show": {"id": 3, "name": "Indie"}}`)
	if ep.Show.Distributor() != nil {
		t.Fatal("expected nil distributor when neither network nor webChannel is present")
	}
}
