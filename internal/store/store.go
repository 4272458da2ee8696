// Package store persists shows, distributors and releases. The ingestion
// path is the sole writer; the read API only reads.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by reads when no row matches.
var ErrNotFound = errors.New("store: not found")

// Show is a persisted TV show. ProviderID is the immutable business key;
// ID is the internal surrogate assigned on first insert.
type Show struct {
	ID         uuid.UUID  `json:"id"`
	ProviderID int64      `json:"provider_id"`
	Name       string     `json:"name"`
	Language   string     `json:"language"`
	Status     string     `json:"status,omitempty"`
	Rating     *float64   `json:"rating"`
	Summary    string     `json:"summary,omitempty"`
	Image      string     `json:"image,omitempty"`
	Premiered  *time.Time `json:"premiered"`
}

// Distributor is a network or web channel, unique by (name, country).
// An unknown country is stored as "" so the composite key stays enforceable.
type Distributor struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Country string    `json:"country,omitempty"`
	Kind    string    `json:"kind,omitempty"`
}

// Release is one broadcast occurrence of an episode, unique by the upstream
// episode id. DistributorID is nil when the upstream recorded no channel.
type Release struct {
	ID            uuid.UUID  `json:"id"`
	EpisodeID     int64      `json:"episode_id"`
	ShowID        uuid.UUID  `json:"show_id"`
	DistributorID *uuid.UUID `json:"distributor_id"`
	EpisodeName   string     `json:"episode_name,omitempty"`
	Airdate       *time.Time `json:"airdate"`
	Airstamp      *time.Time `json:"airstamp"`
	Runtime       *int32     `json:"runtime"`
	Season        *int32     `json:"season"`
	Number        *int32     `json:"number"`
}

// ShowDetail is a show with its distributors and release history.
type ShowDetail struct {
	Show
	Distributors []Distributor `json:"distributors"`
	Releases     []Release     `json:"releases"`
}

// ShowInput carries the normalized show fields of one broadcast record.
type ShowInput struct {
	ProviderID int64
	Name       string
	Language   string
	Status     string
	Rating     *float64
	Summary    string
	Image      string
	Premiered  *time.Time
}

// DistributorInput carries the normalized distributor fields; a nil input
// means the record had no distributor payload.
type DistributorInput struct {
	Name    string
	Country string
	Kind    string
}

// ReleaseInput carries the normalized episode fields. The parent identities
// are resolved inside StoreBroadcast, never by the caller.
type ReleaseInput struct {
	EpisodeID   int64
	EpisodeName string
	Airdate     *time.Time
	Airstamp    *time.Time
	Runtime     *int32
	Season      *int32
	Number      *int32
}

// Broadcast is one record's worth of writes: the show, its optional
// distributor and the release referencing both.
type Broadcast struct {
	Show        ShowInput
	Distributor *DistributorInput
	Release     ReleaseInput
}

// ShowFilter narrows and pages the show listing. Zero values mean "no
// filter". Distributor and Country match through the release history.
type ShowFilter struct {
	PremieredFrom *time.Time
	PremieredTo   *time.Time
	MinRating     *float64
	Language      string
	Distributor   string
	Country       string

	Limit  int
	Offset int
}

// Ingest is the write port used by the broadcast store. StoreBroadcast
// upserts the show, the distributor (when present) and the release as one
// atomic unit, in that order; on error nothing is persisted.
type Ingest interface {
	StoreBroadcast(ctx context.Context, b Broadcast) error
}

// Catalog is the read port used by the API handlers.
type Catalog interface {
	ListShows(ctx context.Context, f ShowFilter) ([]Show, int, error)
	GetShow(ctx context.Context, id uuid.UUID) (*ShowDetail, error)
}

// Store is the full persistence surface.
type Store interface {
	Ingest
	Catalog
}
