package badger

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/servicechain/executor/module"
	"github.com/servicechain/executor/storage"
)

const DefaultCacheSize = 1000

func withLimit(limit uint) func(*Cache) {
	return func(c *Cache) {
		c.limit = limit
	}
}

type retrieveFunc func(key interface{}) (interface{}, error)

func withRetrieve(retrieve retrieveFunc) func(*Cache) {
	return func(c *Cache) {
		c.retrieve = retrieve
	}
}

func noRetrieve(interface{}) (interface{}, error) {
	return nil, fmt.Errorf("no retrieve function for cache get available")
}

// Cache is a read-through LRU cache in front of badger lookups. Keys are
// heights or hashes.
type Cache struct {
	metrics  module.CacheMetrics
	limit    uint
	retrieve retrieveFunc
	resource string
	cache    *lru.Cache
}

func newCache(collector module.CacheMetrics, resource string, options ...func(*Cache)) *Cache {
	c := Cache{
		metrics:  collector,
		limit:    DefaultCacheSize,
		retrieve: noRetrieve,
		resource: resource,
	}
	for _, option := range options {
		option(&c)
	}
	c.cache, _ = lru.New(int(c.limit))
	c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
	return &c
}

// Get will try to retrieve the resource from cache first, and then from the
// injected retrieve function.
func (c *Cache) Get(key interface{}) (interface{}, error) {

	// check if we have it in the cache
	resource, cached := c.cache.Get(key)
	if cached {
		c.metrics.CacheHit(c.resource)
		return resource, nil
	}

	// get it from the database
	resource, err := c.retrieve(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.metrics.CacheNotFound(c.resource)
		}
		return nil, fmt.Errorf("could not retrieve resource: %w", err)
	}
	c.metrics.CacheMiss(c.resource)

	// cache the resource and eject least recently used one if we reached limit
	evicted := c.cache.Add(key, resource)
	if !evicted {
		c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
	}

	return resource, nil
}

// Insert adds a resource the caller has just stored.
func (c *Cache) Insert(key interface{}, resource interface{}) {
	evicted := c.cache.Add(key, resource)
	if !evicted {
		c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
	}
}

// Remove drops the resource with the given key, if cached.
func (c *Cache) Remove(key interface{}) {
	c.cache.Remove(key)
	c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
}
