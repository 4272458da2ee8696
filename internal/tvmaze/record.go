package tvmaze

import (
	"strings"
	"time"
)

const (
	airdateLayout = "2006-01-02"

	// DefaultDistributorKind is assumed when the upstream type field is
	// absent; main-channel broadcasts omit an explicit type.
	DefaultDistributorKind = "network"
)

// ScheduleEpisode is one raw schedule record: a single broadcast of an
// episode with its parent show embedded. Fields that can be absent upstream
// are pointers or checked empties; accessor methods never fail on malformed
// input, they resolve to the zero/nil value instead.
type ScheduleEpisode struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Airdate  string      `json:"airdate"`
	Airstamp string      `json:"airstamp"`
	Runtime  *int32      `json:"runtime"`
	Season   *int32      `json:"season"`
	Number   *int32      `json:"number"`
	Show     *ShowRecord `json:"show"`
}

// ShowRecord is the embedded show payload of a schedule record.
type ShowRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Premiered string `json:"premiered"`
	Language  string `json:"language"`
	Status    string `json:"status"`
	Rating    struct {
		Average *float64 `json:"average"`
	} `json:"rating"`
	Summary string `json:"summary"`
	Image   struct {
		Medium string `json:"medium"`
	} `json:"image"`
	Network    *DistributorRecord `json:"network"`
	WebChannel *DistributorRecord `json:"webChannel"`
}

// DistributorRecord is the network or web channel that aired the episode.
type DistributorRecord struct {
	Name    string `json:"name"`
	Country struct {
		Name string `json:"name"`
	} `json:"country"`
	Type string `json:"type"`
}

// AirDate returns the parsed broadcast date, or nil when absent or malformed.
func (e *ScheduleEpisode) AirDate() *time.Time {
	return parseDate(e.Airdate)
}

// AirStamp returns the parsed broadcast timestamp, or nil when absent or
// malformed.
func (e *ScheduleEpisode) AirStamp() *time.Time {
	s := strings.TrimSpace(e.Airstamp)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// PremiereDate returns the show's parsed premiere date, or nil.
func (s *ShowRecord) PremiereDate() *time.Time {
	return parseDate(s.Premiered)
}

// AverageRating returns the nullable average viewer rating.
func (s *ShowRecord) AverageRating() *float64 {
	return s.Rating.Average
}

// ImageURL returns the medium-resolution image URL, if any.
func (s *ShowRecord) ImageURL() string {
	return s.Image.Medium
}

// Distributor returns the airing network, falling back to the web channel.
// Nil when the record carries neither.
func (s *ShowRecord) Distributor() *DistributorRecord {
	if s.Network != nil {
		return s.Network
	}
	return s.WebChannel
}

// Kind classifies the distributor, defaulting to "network" when the
// upstream type field is omitted.
func (d *DistributorRecord) Kind() string {
	if k := strings.TrimSpace(d.Type); k != "" {
		return k
	}
	return DefaultDistributorKind
}

// CountryName returns the distributor's country, or "" when not recorded.
func (d *DistributorRecord) CountryName() string {
	return d.Country.Name
}

func parseDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	t, err := time.Parse(airdateLayout, v)
	if err != nil {
		return nil
	}
	return &t
}
