package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Tier classifies how volatile a piece of market data is
type Tier string

const (
	TierShort Tier = "short" // live prices, per-coin data
	TierLong  Tier = "long"  // slow-moving aggregates
)

// UnmarshalYAML implements custom YAML unmarshaling for Tier
func (t *Tier) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	switch str {
	case "short", "long":
		*t = Tier(str)
		return nil
	default:
		return fmt.Errorf("invalid cache tier '%s': must be one of 'short', 'long'", str)
	}
}

// CacheEntry is a validated upstream payload stored under its cache key.
// Entries are replaced wholesale on refresh and never mutated in place.
type CacheEntry struct {
	Key      string          `json:"key"`
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"stored_at"`
}

// Age returns how old the entry is relative to now
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// IsFresh reports whether the entry is younger than ttl
func (e *CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}

// CacheStats is a point-in-time view of the cache for diagnostics
type CacheStats struct {
	Entries int `json:"entries"`
	Pending int `json:"pending"`
}
