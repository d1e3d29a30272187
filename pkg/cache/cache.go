// Package cache stores computed query results.
//
// A [Cache] is a byte store with per-entry expiry. Four backends exist:
// [NullCache] (caching off), [FileCache] for the command line, and
// [RedisCache] and [MongoCache] for servers sharing results between
// replicas. [Open] picks one from [Options].
//
// Keys come from a [Keyer]. Every key embeds the SHA-256 of the canonical
// model document, so editing a model never returns stale answers.
// [ScopedKeyer] prefixes keys to give tenants separate namespaces.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLModel  = 7 * 24 * time.Hour
	TTLQuery  = 24 * time.Hour
	TTLRender = 24 * time.Hour
)

// Cache is a key/value store for serialized results.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	ModelKey(modelHash string) string
	QueryKey(modelHash string, opts QueryKeyOpts) string
	RenderKey(modelHash string, opts RenderKeyOpts) string
}

// QueryKeyOpts identifies one query against a model.
type QueryKeyOpts struct {
	Kind    string            `json:"kind"`
	On      []string          `json:"on,omitempty"`
	Doing   []string          `json:"doing,omitempty"`
	Knowing []string          `json:"knowing,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
	Profile map[string]string `json:"profile,omitempty"`
}

// RenderKeyOpts identifies one rendering of a model.
type RenderKeyOpts struct {
	Format      string   `json:"format"`
	Detailed    bool     `json:"detailed,omitempty"`
	HideLatents bool     `json:"hide_latents,omitempty"`
	Highlight   []string `json:"highlight,omitempty"`
}

// DefaultKeyer hashes the key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ModelKey returns the key of a parsed model document.
func (DefaultKeyer) ModelKey(modelHash string) string {
	return "model:" + modelHash
}

// QueryKey returns the key of a query result.
func (DefaultKeyer) QueryKey(modelHash string, opts QueryKeyOpts) string {
	return hashKey("query:"+opts.Kind, modelHash, opts)
}

// RenderKey returns the key of a rendered diagram.
func (DefaultKeyer) RenderKey(modelHash string, opts RenderKeyOpts) string {
	return hashKey("render:"+opts.Format, modelHash, opts)
}
