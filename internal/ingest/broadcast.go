// Package ingest persists TVMaze schedule data: the broadcast store writes
// one record at a time, the importer drives a whole date range.
package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/tvtracker/internal/store"
	"github.com/example/tvtracker/internal/tvmaze"
)

// Outcome is the terminal state of one record.
type Outcome int

const (
	// OutcomeSkipped: the record carried no show payload; an episode cannot
	// be imported without its parent show.
	OutcomeSkipped Outcome = iota
	// OutcomeStored: show, distributor and release committed together.
	OutcomeStored
	// OutcomeFailed: the record's transaction rolled back; logged, never
	// propagated.
	OutcomeFailed
)

// BroadcastStore persists one fetched record end-to-end as an all-or-nothing
// unit. Persistence errors are contained here so a bad record cannot abort
// the batch.
type BroadcastStore struct {
	Log   *zap.Logger
	Store store.Ingest
}

func NewBroadcastStore(log *zap.Logger, st store.Ingest) *BroadcastStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &BroadcastStore{Log: log, Store: st}
}

// Persist maps the record into normalized inputs and hands them to the
// store's atomic StoreBroadcast.
func (b *BroadcastStore) Persist(ctx context.Context, ep tvmaze.ScheduleEpisode) Outcome {
	if ep.Show == nil {
		return OutcomeSkipped
	}

	if err := b.Store.StoreBroadcast(ctx, buildBroadcast(ep)); err != nil {
		b.Log.Error("episode import failure",
			zap.Int64("episode_id", ep.ID), zap.Error(err))
		return OutcomeFailed
	}
	return OutcomeStored
}

func buildBroadcast(ep tvmaze.ScheduleEpisode) store.Broadcast {
	show := ep.Show
	out := store.Broadcast{
		Show: store.ShowInput{
			ProviderID: show.ID,
			Name:       show.Name,
			Language:   show.Language,
			Status:     show.Status,
			Rating:     show.AverageRating(),
			Summary:    show.Summary,
			Image:      show.ImageURL(),
			Premiered:  show.PremiereDate(),
		},
		Release: store.ReleaseInput{
			EpisodeID:   ep.ID,
			EpisodeName: ep.Name,
			Airdate:     ep.AirDate(),
			Airstamp:    ep.AirStamp(),
			Runtime:     ep.Runtime,
			Season:      ep.Season,
			Number:      ep.Number,
		},
	}
	if d := show.Distributor(); d != nil {
		out.Distributor = &store.DistributorInput{
			Name:    d.Name,
			Country: d.CountryName(),
			Kind:    d.Kind(),
		}
	}
	return out
}
