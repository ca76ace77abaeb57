// Package highlight caches syntax highlight spans per fixed-size line
// chunk. A background worker tokenizes chunk text popped from a FIFO
// queue and replaces the chunk's cache entry; the edit path keeps
// cached spans approximately valid in between by shifting them across
// insertions and deletions. The render path reads the cache with a
// non-blocking lock attempt and tolerates stale or missing entries.
package highlight
