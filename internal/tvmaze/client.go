// Package tvmaze talks to the TVMaze public schedule API and exposes typed
// views over its records.
// API docs: https://www.tvmaze.com/api#schedule
package tvmaze

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client fetches the episode schedule for single dates. Failures never
// escape FetchEpisodes: a non-200 status or transport error is logged and
// surfaces as an empty day. A fetched date is cached for the lifetime of
// the instance, so one import run issues at most one request per date.
// Not safe for concurrent use; the importer is sequential by design.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Log        *zap.Logger

	cache map[string][]ScheduleEpisode
}

func New(baseURL string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.tvmaze.com"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Log:        log,
		cache:      make(map[string][]ScheduleEpisode),
	}
}

// FetchEpisodes returns the scheduled episodes for one date. An empty slice
// means "no episodes that day", whether the upstream had none or the call
// failed; the cause is observable in the log only.
func (c *Client) FetchEpisodes(ctx context.Context, date time.Time) []ScheduleEpisode {
	key := date.Format(airdateLayout)
	if cached, ok := c.cache[key]; ok {
		return cached
	}

	episodes, err := c.fetchSchedule(ctx, key)
	if err != nil {
		c.Log.Error("tvmaze api error", zap.String("date", key), zap.Error(err))
		episodes = nil
	}
	c.cache[key] = episodes
	return episodes
}

func (c *Client) fetchSchedule(ctx context.Context, date string) ([]ScheduleEpisode, error) {
	u := c.BaseURL + "/schedule?date=" + url.QueryEscape(date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tvtracker-importer/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		// Treated as an empty day, but keep the cause observable.
		c.Log.Warn("tvmaze non-200 response",
			zap.String("date", date), zap.Int("status", resp.StatusCode))
		return nil, nil
	}
	var out []ScheduleEpisode
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
