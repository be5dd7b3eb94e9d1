// Package fred implements the SeriesSource collaborator against the FRED
// observations API. Full series are fetched once per TTL and every
// point-in-time read is answered from the cached copy, so scoring never
// blocks on the network mid-cycle.
package fred

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	domrepo "Aegis/internal/domain/repository"
	"Aegis/pkg/cache"
	"Aegis/pkg/config"
	apphttp "Aegis/pkg/http"
	applogger "Aegis/pkg/logger"
)

const (
	lockTTL      = 30 * time.Second
	lockWait     = 100 * time.Millisecond
	lockAttempts = 50
)

// Client fetches and caches FRED series.
type Client struct {
	apiKey   string
	baseURL  string
	cacheTTL time.Duration
	lookback int // years

	http  *apphttp.Client
	cache cache.Service
	l     *applogger.Logger
}

// New creates a FRED-backed SeriesSource.
func New(cfg *config.Config, hc *apphttp.Client, c cache.Service, l *applogger.Logger) domrepo.SeriesSource {
	return &Client{
		apiKey:   cfg.FRED.APIKey,
		baseURL:  cfg.FRED.BaseURL,
		cacheTTL: cfg.FRED.CacheTTL,
		lookback: cfg.FRED.LookbackYrs,
		http:     hc,
		cache:    c,
		l:        l,
	}
}

// ValueAt returns the most recent observation dated at or before asOf.
func (c *Client) ValueAt(ctx context.Context, seriesID string, asOf time.Time) (*domrepo.Observation, error) {
	obs, err := c.observations(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	// observations are ascending; walk back to the first point in range
	for i := len(obs) - 1; i >= 0; i-- {
		if !obs[i].Date.After(asOf) {
			o := obs[i]
			return &o, nil
		}
	}
	return nil, nil
}

// Window returns observations with from <= date <= to, ascending.
func (c *Client) Window(ctx context.Context, seriesID string, from, to time.Time) ([]domrepo.Observation, error) {
	obs, err := c.observations(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	var out []domrepo.Observation
	for _, o := range obs {
		if o.Date.Before(from) || o.Date.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// observations serves the full cached series, fetching on a miss. Population
// uses a per-series lock so concurrent backtest cycles do not stampede the
// API for the same series.
func (c *Client) observations(ctx context.Context, seriesID string) ([]domrepo.Observation, error) {
	key := cache.GenerateKey("fred:series", seriesID)

	var obs []domrepo.Observation
	if err := c.cache.Get(ctx, key, &obs); err == nil {
		return obs, nil
	}

	lockKey := key + ":fetch"
	var locked bool
	for i := 0; i < lockAttempts; i++ {
		ok, err := c.cache.TryLock(ctx, lockKey, lockTTL)
		if err != nil || ok {
			locked = ok
			break
		}
		// someone else is fetching; wait for their result
		time.Sleep(lockWait)
		if err := c.cache.Get(ctx, key, &obs); err == nil {
			return obs, nil
		}
	}
	// unlock only a lock we hold; Unlock is a delete and would release
	// another fetcher's in-flight lock otherwise
	if locked {
		defer func() {
			if err := c.cache.Unlock(ctx, lockKey); err != nil {
				c.l.Warn("unlock failed", applogger.String("key", lockKey), applogger.Error(err))
			}
		}()
	}

	obs, err := c.fetch(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, obs, c.cacheTTL); err != nil {
		c.l.Warn("cache set failed", applogger.String("series", seriesID), applogger.Error(err))
	}
	return obs, nil
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredResponse struct {
	Observations []fredObservation `json:"observations"`
}

func (c *Client) fetch(ctx context.Context, seriesID string) ([]domrepo.Observation, error) {
	start := time.Now().AddDate(-c.lookback, 0, 0)

	var resp fredResponse
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    c.baseURL + "/series/observations",
		QueryParams: map[string][]string{
			"series_id":         {seriesID},
			"api_key":           {c.apiKey},
			"file_type":         {"json"},
			"observation_start": {start.Format("2006-01-02")},
			"sort_order":        {"asc"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fred fetch %s: %w", seriesID, err)
	}

	obs := make([]domrepo.Observation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		if o.Value == "." || o.Value == "" {
			// FRED encodes missing points as "."
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		d, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			continue
		}
		obs = append(obs, domrepo.Observation{Date: d, Value: v})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })

	c.l.Debug("fetched series",
		applogger.String("series", seriesID),
		applogger.Int("observations", len(obs)))
	return obs, nil
}
