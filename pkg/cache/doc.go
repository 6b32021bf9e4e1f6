// Package cache provides a generic key-value cache with in-memory and Redis
// backends behind a single [Cache] interface.
//
// TTL semantics for Set are shared by both backends:
//   - positive duration: the entry expires after it
//   - zero: the backend's default TTL applies
//   - negative: the entry never expires
//
// [Memory] keeps entries in a map with an LRU list, expires them lazily on
// read and periodically through a janitor goroutine:
//
//	c := cache.NewMemory[Session](
//	    cache.WithDefaultTTL(30*time.Minute),
//	    cache.WithCleanupInterval(time.Minute),
//	)
//	defer c.Close()
//
// [Redis] stores JSON-encoded values (or any [Marshaler]) under an optional
// key prefix; the client comes from pkg/redis:
//
//	c := cache.NewRedis[Session](client, nil, cache.WithPrefix("sess"))
//
// [GetOrSet] deduplicates concurrent misses for the same key with singleflight.
package cache
