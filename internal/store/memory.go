package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type distributorKey struct {
	name    string
	country string
}

// MemoryStore is an in-memory Store with the same upsert semantics as the
// Postgres implementation: stable surrogate ids per business key and
// last-writer-wins on mutable fields. Used by tests and as a dev fallback.
type MemoryStore struct {
	mu           sync.RWMutex
	shows        map[int64]*Show
	distributors map[distributorKey]*Distributor
	releases     map[int64]*Release
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shows:        make(map[int64]*Show),
		distributors: make(map[distributorKey]*Distributor),
		releases:     make(map[int64]*Release),
	}
}

// StoreBroadcast mirrors the transactional contract: the record is validated
// up front and the three maps are written under one lock, so a rejected
// record leaves no partial state behind.
func (s *MemoryStore) StoreBroadcast(ctx context.Context, b Broadcast) error {
	// The memory analog of the NOT NULL constraints.
	if b.Show.Name == "" {
		return fmt.Errorf("memory: show %d: name is required", b.Show.ProviderID)
	}
	if b.Show.Language == "" {
		return fmt.Errorf("memory: show %d: language is required", b.Show.ProviderID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shows[b.Show.ProviderID]
	if !ok {
		sh = &Show{ID: uuid.New(), ProviderID: b.Show.ProviderID}
		s.shows[b.Show.ProviderID] = sh
	}
	sh.Name = b.Show.Name
	sh.Language = b.Show.Language
	sh.Status = b.Show.Status
	sh.Rating = b.Show.Rating
	sh.Summary = b.Show.Summary
	sh.Image = b.Show.Image
	sh.Premiered = b.Show.Premiered

	var distributorID *uuid.UUID
	if b.Distributor != nil {
		key := distributorKey{name: b.Distributor.Name, country: b.Distributor.Country}
		d, ok := s.distributors[key]
		if !ok {
			d = &Distributor{ID: uuid.New(), Name: b.Distributor.Name, Country: b.Distributor.Country}
			s.distributors[key] = d
		}
		d.Kind = b.Distributor.Kind
		distributorID = &d.ID
	}

	rel, ok := s.releases[b.Release.EpisodeID]
	if !ok {
		rel = &Release{ID: uuid.New(), EpisodeID: b.Release.EpisodeID}
		s.releases[b.Release.EpisodeID] = rel
	}
	rel.ShowID = sh.ID
	rel.DistributorID = distributorID
	rel.EpisodeName = b.Release.EpisodeName
	rel.Airdate = b.Release.Airdate
	rel.Airstamp = b.Release.Airstamp
	rel.Runtime = b.Release.Runtime
	rel.Season = b.Release.Season
	rel.Number = b.Release.Number

	return nil
}

func (s *MemoryStore) ListShows(ctx context.Context, f ShowFilter) ([]Show, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Show
	for _, sh := range s.shows {
		if !s.matches(sh, f) {
			continue
		}
		matched = append(matched, *sh)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *MemoryStore) GetShow(ctx context.Context, id uuid.UUID) (*ShowDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var detail *ShowDetail
	for _, sh := range s.shows {
		if sh.ID == id {
			detail = &ShowDetail{Show: *sh}
			break
		}
	}
	if detail == nil {
		return nil, ErrNotFound
	}

	seen := make(map[uuid.UUID]bool)
	for _, rel := range s.releases {
		if rel.ShowID != id {
			continue
		}
		detail.Releases = append(detail.Releases, *rel)
		if rel.DistributorID == nil || seen[*rel.DistributorID] {
			continue
		}
		seen[*rel.DistributorID] = true
		for _, d := range s.distributors {
			if d.ID == *rel.DistributorID {
				detail.Distributors = append(detail.Distributors, *d)
			}
		}
	}

	sort.Slice(detail.Distributors, func(i, j int) bool {
		if detail.Distributors[i].Name != detail.Distributors[j].Name {
			return detail.Distributors[i].Name < detail.Distributors[j].Name
		}
		return detail.Distributors[i].Country < detail.Distributors[j].Country
	})
	sort.Slice(detail.Releases, func(i, j int) bool {
		a, b := detail.Releases[i], detail.Releases[j]
		switch {
		case a.Airstamp == nil && b.Airstamp == nil:
			return a.EpisodeID < b.EpisodeID
		case a.Airstamp == nil:
			return false
		case b.Airstamp == nil:
			return true
		case !a.Airstamp.Equal(*b.Airstamp):
			return a.Airstamp.Before(*b.Airstamp)
		default:
			return a.EpisodeID < b.EpisodeID
		}
	})
	return detail, nil
}

// Counts reports row counts per entity; test helper for the idempotency
// properties.
func (s *MemoryStore) Counts() (shows, distributors, releases int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shows), len(s.distributors), len(s.releases)
}

func (s *MemoryStore) matches(sh *Show, f ShowFilter) bool {
	if f.PremieredFrom != nil && (sh.Premiered == nil || sh.Premiered.Before(*f.PremieredFrom)) {
		return false
	}
	if f.PremieredTo != nil && (sh.Premiered == nil || sh.Premiered.After(*f.PremieredTo)) {
		return false
	}
	if f.MinRating != nil && (sh.Rating == nil || *sh.Rating < *f.MinRating) {
		return false
	}
	if f.Language != "" && sh.Language != f.Language {
		return false
	}
	if f.Distributor == "" && f.Country == "" {
		return true
	}
	for _, rel := range s.releases {
		if rel.ShowID != sh.ID || rel.DistributorID == nil {
			continue
		}
		for key, d := range s.distributors {
			if d.ID != *rel.DistributorID {
				continue
			}
			if f.Distributor != "" && key.name != f.Distributor {
				continue
			}
			if f.Country != "" && key.country != f.Country {
				continue
			}
			return true
		}
	}
	return false
}
