// Package cache provides an optional Redis-backed response cache for the
// data-source endpoints.
//
// The source API sends no cache headers, so entry lifetime is controlled by a
// client-side TTL instead of an expires header. The dataset is reloaded as a
// whole by the loader, which makes repeated count/page/all requests within a
// session identical and safely cacheable.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := cache.NewStore(redisClient, 60*time.Second)
//
//	key := cache.Key{
//		Endpoint: "/data",
//		Query:    url.Values{"limit": {"10000"}, "offset": {"0"}},
//	}
//
//	entry, err := store.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the source, then store.Set(ctx, key, body)
//	}
//
// # Metrics
//
//   - rowview_cache_hits_total - Cache hits
//   - rowview_cache_misses_total - Cache misses
//   - rowview_cache_errors_total{operation} - Cache operation errors
package cache
