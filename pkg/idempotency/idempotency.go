// Package idempotency makes retried requests safe: concurrent calls with the
// same key share one execution, and completed results are replayed from a
// cache.Store until they expire.
package idempotency

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/amirasaad/fintechflow/pkg/cache"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a completed result is remembered.
const DefaultTTL = 24 * time.Hour

// Result is a remembered response.
type Result struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// Guard coalesces and remembers keyed executions.
type Guard struct {
	store    cache.Store
	ttl      time.Duration
	inflight singleflight.Group
	logger   *slog.Logger
}

// NewGuard returns a Guard over store.
func NewGuard(store cache.Store, ttl time.Duration, logger *slog.Logger) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{store: store, ttl: ttl, logger: logger.With("component", "idempotency")}
}

// Do runs fn once per key. A stored result is returned without calling fn;
// replayed reports whether that happened. Failed executions are not stored so
// the client may retry them.
func (g *Guard) Do(
	ctx context.Context,
	key string,
	fn func() (*Result, error),
) (res *Result, replayed bool, err error) {
	if cached, ok := g.lookup(ctx, key); ok {
		return cached, true, nil
	}

	v, err, shared := g.inflight.Do(key, func() (any, error) {
		// Another caller may have finished while we waited.
		if cached, ok := g.lookup(ctx, key); ok {
			return outcome{res: cached, replayed: true}, nil
		}
		out, err := fn()
		if err != nil {
			return nil, err
		}
		if data, merr := json.Marshal(out); merr == nil {
			if serr := g.store.Set(ctx, key, data, g.ttl); serr != nil {
				g.logger.Warn("failed to remember result", "key", key, "error", serr)
			}
		}
		return outcome{res: out}, nil
	})
	if err != nil {
		return nil, false, err
	}
	if shared {
		g.logger.Debug("🔁 [SKIP] request coalesced", "key", key)
	}
	o := v.(outcome)
	return o.res, o.replayed, nil
}

type outcome struct {
	res      *Result
	replayed bool
}

func (g *Guard) lookup(ctx context.Context, key string) (*Result, bool) {
	data, ok, err := g.store.Get(ctx, key)
	if err != nil {
		g.logger.Warn("idempotency lookup failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return &res, true
}
