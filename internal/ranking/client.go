package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/logger"
	"github.com/osse101/BingoBot_Go/internal/metrics"
)

const (
	DefaultBaseURL       = "https://api.wiseoldman.net/v2"
	DefaultTimeout       = 10 * time.Second
	DefaultRatePerSecond = 1.5
	DefaultCacheSize     = 2048
	DefaultCacheTTL      = 6 * time.Hour
	DefaultUserAgent     = "BingoBot/1.0"

	maxRetries     = 2
	initialBackoff = 500 * time.Millisecond
)

// Config configures the ranking client
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	CacheSize     int
	CacheTTL      time.Duration
	UserAgent     string
}

// Client looks up skill experience from the ranking service. Historical
// snapshots never change, so lookups by date are cached; current lookups are not.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	backoff     time.Duration
	history     *expirable.LRU[string, int64]
}

// NewClient creates a ranking client, filling zero config values with defaults
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = DefaultRatePerSecond
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		userAgent:   cfg.UserAgent,
		backoff:     initialBackoff,
		history:     expirable.NewLRU[string, int64](cfg.CacheSize, nil, cfg.CacheTTL),
	}
}

type skillEntry struct {
	Experience int64 `json:"experience"`
}

type snapshot struct {
	CreatedAt time.Time `json:"createdAt"`
	Data      struct {
		Skills map[string]skillEntry `json:"skills"`
	} `json:"data"`
}

type playerDetails struct {
	Username       string    `json:"username"`
	LatestSnapshot *snapshot `json:"latestSnapshot"`
}

// CurrentExperience returns the player's latest recorded experience in skill
func (c *Client) CurrentExperience(ctx context.Context, playerName, skill string) (int64, error) {
	endpoint := fmt.Sprintf("%s/players/%s", c.baseURL, url.PathEscape(normalizeName(playerName)))

	var details playerDetails
	if err := c.doRequest(ctx, endpoint, &details); err != nil {
		return 0, err
	}
	if details.LatestSnapshot == nil {
		metrics.RankingLookups.WithLabelValues(metrics.ResultNotFound).Inc()
		return 0, fmt.Errorf("%w: %s has no snapshots", domain.ErrPlayerNotFound, playerName)
	}

	xp, err := skillExperience(details.LatestSnapshot, skill)
	if err != nil {
		return 0, err
	}
	metrics.RankingLookups.WithLabelValues(metrics.ResultFetched).Inc()
	return xp, nil
}

// ExperienceAtOrBefore returns the experience from the closest snapshot taken
// at or before at. found is false when no such snapshot exists; a snapshot
// with zero or unranked experience is still found.
func (c *Client) ExperienceAtOrBefore(ctx context.Context, playerName, skill string, at time.Time) (xp int64, found bool, err error) {
	key := cacheKey(playerName, skill, at)
	if xp, ok := c.history.Get(key); ok {
		metrics.RankingLookups.WithLabelValues(metrics.ResultHit).Inc()
		return xp, true, nil
	}

	q := url.Values{}
	q.Set("endDate", at.UTC().Format(time.RFC3339))
	q.Set("limit", "1")
	endpoint := fmt.Sprintf("%s/players/%s/snapshots?%s", c.baseURL, url.PathEscape(normalizeName(playerName)), q.Encode())

	var snapshots []snapshot
	if err := c.doRequest(ctx, endpoint, &snapshots); err != nil {
		return 0, false, err
	}

	closest := closestAtOrBefore(snapshots, at)
	if closest == nil {
		logger.FromContext(ctx).Debug("No ranking snapshot before time", "player_name", playerName, "at", at)
		metrics.RankingLookups.WithLabelValues(metrics.ResultFetched).Inc()
		return 0, false, nil
	}

	xp, err = skillExperience(closest, skill)
	if err != nil {
		return 0, false, err
	}
	c.history.Add(key, xp)
	metrics.RankingLookups.WithLabelValues(metrics.ResultFetched).Inc()
	return xp, true, nil
}

// closestAtOrBefore picks the latest snapshot not after at; the service may ignore the limit
func closestAtOrBefore(snapshots []snapshot, at time.Time) *snapshot {
	var best *snapshot
	for i := range snapshots {
		s := &snapshots[i]
		if s.CreatedAt.After(at) {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	return best
}

func skillExperience(s *snapshot, skill string) (int64, error) {
	entry, ok := s.Data.Skills[strings.ToLower(skill)]
	if !ok {
		metrics.RankingLookups.WithLabelValues(metrics.ResultError).Inc()
		return 0, fmt.Errorf("%w: skill %q missing from snapshot", domain.ErrRankingUnavailable, skill)
	}
	// The service reports -1 for unranked skills
	if entry.Experience < 0 {
		return 0, nil
	}
	return entry.Experience, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cacheKey(playerName, skill string, at time.Time) string {
	return normalizeName(playerName) + "|" + strings.ToLower(skill) + "|" + strconv.FormatInt(at.Unix(), 10)
}

// doRequest performs a GET with rate limiting, retrying only on 429 and 5xx
func (c *Client) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	log := logger.FromContext(ctx)
	backoff := c.backoff
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", domain.ErrRankingUnavailable, ctx.Err())
			}
		}

		retry, err := c.get(ctx, endpoint, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
		log.Debug("Ranking request failed, retrying", "attempt", attempt+1, "error", err)
	}

	if errors.Is(lastErr, domain.ErrPlayerNotFound) {
		metrics.RankingLookups.WithLabelValues(metrics.ResultNotFound).Inc()
	} else {
		metrics.RankingLookups.WithLabelValues(metrics.ResultError).Inc()
	}
	return lastErr
}

func (c *Client) get(ctx context.Context, endpoint string, result interface{}) (bool, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("%w: rate limiter: %v", domain.ErrRankingUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("%w: build request: %v", domain.ErrRankingUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("%w: %v", domain.ErrRankingUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, fmt.Errorf("%w: read body: %v", domain.ErrRankingUnavailable, err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return false, fmt.Errorf("%w: decode body: %v", domain.ErrRankingUnavailable, err)
		}
		return false, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, domain.ErrPlayerNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return true, fmt.Errorf("%w: HTTP %d", domain.ErrRankingUnavailable, resp.StatusCode)
	default:
		return false, fmt.Errorf("%w: HTTP %d", domain.ErrRankingUnavailable, resp.StatusCode)
	}
}
