// Package cache implements the record cache behind the space-dns daemon:
// a bounded, TTL-aware store for address records keyed by (domain, type).
//
// Two structures cover the same entries: a map for O(1) lookup and a
// doubly-linked recency list for eviction and expiry sweeps. An entry is
// reachable from both or from neither. Structural changes (insert, delete,
// evict, reposition) are serialized by one mutex; entry lifetime is a
// separate atomic refcount, so releasing a handle does not contend with
// structural work on other goroutines.
//
// Policy notes, all deliberate:
//   - First insert wins per key; a duplicate insert is a successful no-op
//     until the stored entry expires or is deleted.
//   - Get does not reposition an entry. Recency is driven by explicit
//     Touch calls, so eviction order is insert/refresh order, not strict
//     LRU-on-read.
//   - Get never returns an expired entry; expiry is lazy on lookup and
//     batched in InvalidateExpired.
package cache
