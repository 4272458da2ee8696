package ingest

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/example/tvtracker/internal/store"
	"github.com/example/tvtracker/internal/tvmaze"
)

func floatPtr(f float64) *float64 { return &f }
func int32Ptr(n int32) *int32     { return &n }

func sampleEpisode() tvmaze.ScheduleEpisode {
	show := &tvmaze.ShowRecord{
		ID:        999,
		Name:      "Test Show",
		Premiered: "2013-06-03",
		Language:  "English",
		Status:    "Running",
		Summary:   "A very good show.",
		Network: &tvmaze.DistributorRecord{
			Name: "Test Network",
			Type: "network",
		},
	}
	show.Rating.Average = floatPtr(8.4)
	show.Image.Medium = "http://example.com/show.jpg"
	show.Network.Country.Name = "USA"

	return tvmaze.ScheduleEpisode{
		ID:       123,
		Name:     "Test Episode",
		Airdate:  "2025-08-15",
		Airstamp: "2025-08-15T20:00:00Z",
		Runtime:  int32Ptr(60),
		Season:   int32Ptr(2),
		Number:   int32Ptr(3),
		Show:     show,
	}
}

type failingIngest struct {
	err   error
	calls int
}

func (f *failingIngest) StoreBroadcast(_ context.Context, _ store.Broadcast) error {
	f.calls++
	return f.err
}

func TestBroadcastStore_PersistStoresRecord(t *testing.T) {
	mem := store.NewMemoryStore()
	bs := NewBroadcastStore(zap.NewNop(), mem)

	if got := bs.Persist(context.Background(), sampleEpisode()); got != OutcomeStored {
		t.Fatalf("expected OutcomeStored, got %v", got)
	}
	shows, distributors, releases := mem.Counts()
	if shows != 1 || distributors != 1 || releases != 1 {
		t.Fatalf("expected 1/1/1 rows, got %d/%d/%d", shows, distributors, releases)
	}
}

func TestBroadcastStore_SkipsRecordWithoutShow(t *testing.T) {
	sink := &failingIngest{}
	bs := NewBroadcastStore(zap.NewNop(), sink)

	ep := sampleEpisode()
	ep.Show = nil
	if got := bs.Persist(context.Background(), ep); got != OutcomeSkipped {
		t.Fatalf("expected OutcomeSkipped, got %v", got)
	}
	if sink.calls != 0 {
		t.Fatalf("expected no store call for a show-less record, got %d", sink.calls)
	}
}

func TestBroadcastStore_ContainsPersistenceErrors(t *testing.T) {
	sink := &failingIngest{err: errors.New("constraint violation")}
	bs := NewBroadcastStore(zap.NewNop(), sink)

	if got := bs.Persist(context.Background(), sampleEpisode()); got != OutcomeFailed {
		t.Fatalf("expected OutcomeFailed, got %v", got)
	}
}

func TestBuildBroadcast_FieldMapping(t *testing.T) {
	b := buildBroadcast(sampleEpisode())

	if b.Show.ProviderID != 999 || b.Show.Name != "Test Show" || b.Show.Language != "English" {
		t.Fatalf("unexpected show input: %+v", b.Show)
	}
	if b.Show.Rating == nil || *b.Show.Rating != 8.4 {
		t.Fatalf("unexpected rating: %v", b.Show.Rating)
	}
	if b.Show.Premiered == nil || b.Show.Premiered.Format("2006-01-02") != "2013-06-03" {
		t.Fatalf("unexpected premiere: %v", b.Show.Premiered)
	}
	if b.Distributor == nil || b.Distributor.Name != "Test Network" ||
		b.Distributor.Country != "USA" || b.Distributor.Kind != "network" {
		t.Fatalf("unexpected distributor input: %+v", b.Distributor)
	}
	if b.Release.EpisodeID != 123 || b.Release.EpisodeName != "Test Episode" {
		t.Fatalf("unexpected release input: %+v", b.Release)
	}
	if b.Release.Airdate == nil || b.Release.Airstamp == nil {
		t.Fatal("expected parsed air date and timestamp")
	}
	if b.Release.Runtime == nil || *b.Release.Runtime != 60 {
		t.Fatalf("unexpected runtime: %v", b.Release.Runtime)
	}
}

func TestBuildBroadcast_NoDistributorPayload(t *testing.T) {
	ep := sampleEpisode()
	ep.Show.Network = nil
	if b := buildBroadcast(ep); b.Distributor != nil {
		t.Fatalf("expected nil distributor input, got %+v", b.Distributor)
	}
}
