// Package cache holds the optional read-through cache the pipeline consults
// before fetching. Entries are keyed by exactly (market, timeframe).
package cache

import (
	"context"
	"fmt"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
)

// Key identifies one cached candle sequence.
type Key struct {
	Market    types.Market
	Timeframe types.Timeframe
}

// String returns the storage key, e.g. "smc:candles:BTCUSD:1h".
func (k Key) String() string {
	return fmt.Sprintf("smc:candles:%s:%s", k.Market, k.Timeframe)
}

// Cache stores canonical candle sequences. Implementations must be safe for
// concurrent readers; concurrent writers of one key resolve last-write-wins.
type Cache interface {
	// Get returns the cached sequence and true on a hit.
	Get(ctx context.Context, key Key) (types.CandleSequence, bool, error)
	// Set stores a copy of candles under key.
	Set(ctx context.Context, key Key, candles types.CandleSequence) error
	// Reset drops every entry.
	Reset(ctx context.Context) error
}

// Backend selects a cache implementation.
type Backend string

const (
	BackendNone   Backend = "none"
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)
