package sqlstore

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goliatone/go-outplay/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const nodeStateCacheKeyPrefix = "go-outplay::webhook_subscription::v1"

// cachedSubscription is the cache payload: the record plus its presence flag,
// so a confirmed miss is cacheable too.
type cachedSubscription struct {
	Subscription core.WebhookSubscription
	Found        bool
}

// CachedNodeStateStore layers a read-through cache over a node state store.
// Writes invalidate rather than populate.
type CachedNodeStateStore struct {
	base  core.NodeStateStore
	cache repositorycache.CacheService
}

func NewCachedNodeStateStore(base core.NodeStateStore, cacheService repositorycache.CacheService) (*CachedNodeStateStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base node state store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: node state cache service is required")
	}
	return &CachedNodeStateStore{base: base, cache: cacheService}, nil
}

// NodeStateCacheKey returns the deterministic cache key for a node's
// subscription record: go-outplay::webhook_subscription::v1::<node_key>.
func NodeStateCacheKey(node core.NodeRef) string {
	return nodeStateCacheKeyPrefix + "::" + url.PathEscape(node.Key())
}

func (s *CachedNodeStateStore) Load(ctx context.Context, node core.NodeRef) (core.WebhookSubscription, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.WebhookSubscription{}, false, fmt.Errorf("sqlstore: cached node state store is not configured")
	}
	cached, err := repositorycache.GetOrFetch(ctx, s.cache, NodeStateCacheKey(node), func(ctx context.Context) (cachedSubscription, error) {
		sub, found, fetchErr := s.base.Load(ctx, node)
		if fetchErr != nil {
			return cachedSubscription{}, fetchErr
		}
		return cachedSubscription{Subscription: sub, Found: found}, nil
	})
	if err != nil {
		return core.WebhookSubscription{}, false, err
	}
	return cached.Subscription, cached.Found, nil
}

func (s *CachedNodeStateStore) Save(ctx context.Context, node core.NodeRef, sub core.WebhookSubscription) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached node state store is not configured")
	}
	if err := s.base.Save(ctx, node, sub); err != nil {
		return err
	}
	return s.cache.Delete(ctx, NodeStateCacheKey(node))
}

func (s *CachedNodeStateStore) Clear(ctx context.Context, node core.NodeRef) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached node state store is not configured")
	}
	if err := s.base.Clear(ctx, node); err != nil {
		return err
	}
	return s.cache.Delete(ctx, NodeStateCacheKey(node))
}

var _ core.NodeStateStore = (*CachedNodeStateStore)(nil)
