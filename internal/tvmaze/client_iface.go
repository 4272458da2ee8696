package tvmaze

import (
	"context"
	"time"
)

// ScheduleSource is the port for fetching one date's schedule records.
type ScheduleSource interface {
	FetchEpisodes(ctx context.Context, date time.Time) []ScheduleEpisode
}
