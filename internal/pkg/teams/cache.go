package teams

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/metrics"
)

const cacheKeyPrefix = "teams:calendar:"

// Cache is the byte store behind CachedClient.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// CachedClient serves repeated cycle fetches from a cache. Only successful
// responses of closed cycles are stored; cache failures fall through to the
// upstream.
type CachedClient struct {
	next     attendance.CalendarClient
	cache    Cache
	ttl      time.Duration
	location *time.Location
	clock    func() time.Time
}

func NewCachedClient(next attendance.CalendarClient, cache Cache, ttl time.Duration, location *time.Location) *CachedClient {
	if location == nil {
		location = time.Local
	}
	return &CachedClient{next: next, cache: cache, ttl: ttl, location: location, clock: time.Now}
}

// live reports whether cycle can still gain clock events. The current cycle
// and anything later always go to the upstream.
func (c *CachedClient) live(cycle string) bool {
	return cycle >= c.clock().In(c.location).Format(attendance.MonthLayout)
}

func CacheKey(emCode, cycle string) string {
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, emCode, cycle)
}

func (c *CachedClient) FetchCalendar(ctx context.Context, creds attendance.Credentials, cycle string) ([]attendance.RawCalendarEntry, error) {
	if c.live(cycle) {
		metrics.CacheLookups.WithLabelValues("bypass").Inc()
		return c.next.FetchCalendar(ctx, creds, cycle)
	}

	key := CacheKey(creds.EmCode, cycle)

	cached, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		slog.Warn("Calendar cache read failed", "key", key, "error", err)
	case ok:
		var entries []attendance.RawCalendarEntry
		if err := json.Unmarshal(cached, &entries); err == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return entries, nil
		}
		metrics.CacheLookups.WithLabelValues("error").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	entries, err := c.next.FetchCalendar(ctx, creds, cycle)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			slog.Warn("Calendar cache write failed", "key", key, "error", err)
		}
	}

	return entries, nil
}

// Invalidate drops every cached cycle of an employee.
func (c *CachedClient) Invalidate(ctx context.Context, emCode string) error {
	return c.cache.DeletePrefix(ctx, cacheKeyPrefix+emCode+":")
}
