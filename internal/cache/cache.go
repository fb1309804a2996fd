// Package cache holds derived lead-engine data (the composition summary) that is
// expensive to rebuild on every AI request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// Keys used by the lead engine.
const (
	// KeyComposition holds the composition summary of the whole lead table.
	KeyComposition = "leads:composition"
	// KeyDistribution holds the top industry shares.
	KeyDistribution = "leads:distribution"
	// PrefixLeads covers every key derived from the lead table.
	PrefixLeads = "leads:"
)

// GetJSON loads key and decodes it into v. It returns ErrCacheMiss when absent.
func GetJSON(ctx context.Context, c Client, key string, v interface{}) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Client, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}

// InvalidateLeads drops everything derived from the lead table. Call it after
// any write to leads.
func InvalidateLeads(ctx context.Context, c Client) error {
	if c == nil {
		return nil
	}
	return c.DeleteByPrefix(ctx, PrefixLeads)
}
