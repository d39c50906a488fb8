// Package cache provides the sharded LRU used for shaped text layouts and
// other per-key derived data that is expensive to rebuild each frame.
//
//	c := cache.NewSharded[string, int](256, cache.StringHasher)
//	v := c.GetOrCreate("key", func() int { return 42 })
//
// Sharded is safe for concurrent use and must not be copied after creation.
package cache
