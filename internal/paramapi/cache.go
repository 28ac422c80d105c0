package paramapi

import (
	"context"
	"time"

	"nc-param-manager/internal/common/metrics"
	"nc-param-manager/internal/parameters"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SchemaCache memoizes fetched schemas per package for a bounded time.
// Only successful fetches are cached.
type SchemaCache struct {
	*Client
	cache *expirable.LRU[string, *parameters.Schema]
}

// NewSchemaCache wraps client. size <= 0 disables eviction by count.
func NewSchemaCache(client *Client, size int, ttl time.Duration) *SchemaCache {
	return &SchemaCache{
		Client: client,
		cache:  expirable.NewLRU[string, *parameters.Schema](size, nil, ttl),
	}
}

func (s *SchemaCache) GetConfig(ctx context.Context, pkg string) (*parameters.Schema, error) {
	if schema, ok := s.cache.Get(pkg); ok {
		metrics.SchemaCacheLookups.WithLabelValues(metrics.ResultHit).Inc()
		return schema, nil
	}
	metrics.SchemaCacheLookups.WithLabelValues(metrics.ResultMiss).Inc()

	schema, err := s.Client.GetConfig(ctx, pkg)
	if err != nil {
		return nil, err
	}
	s.cache.Add(pkg, schema)
	return schema, nil
}

func (s *SchemaCache) Len() int { return s.cache.Len() }
