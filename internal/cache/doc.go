// Package cache provides the bounded map used by the renderer's caches.
//
// A Cache evicts its oldest entry whenever it grows past its limit. What
// "oldest" means depends on the Order it was created with:
//
//   - AccessOrder: least recently read or written (glyph cache).
//   - InsertionOrder: first inserted, reads do not refresh (janitor caches
//     for dynamic textures and color-space LUTs).
//
// Example:
//
//	c := cache.New[string, int](100, cache.AccessOrder)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
