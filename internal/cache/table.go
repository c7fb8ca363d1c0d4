package cache

import (
	"container/list"
	"sync"
	"time"
)

// key is the composite lookup key. Domains are compared byte-for-byte;
// normalization (lower-casing, trailing dot) is the caller's job.
type key struct {
	domain string
	rtype  RecordType
}

// Table is a bounded record cache. One Table is meant to be constructed
// explicitly and shared by reference; all methods are safe for
// concurrent use except Close.
type Table struct {
	mu       sync.Mutex
	capacity int
	index    map[key]*slot
	order    *list.List // Front = least recently touched
	free     []*slot

	// now is the table's clock; tests substitute it before use.
	now func() time.Time
}

// New creates a table holding at most capacity entries. A capacity of
// zero or less disables the cache: every operation becomes a cheap
// no-op or miss, which lets callers turn caching off without guarding
// each call site.
func New(capacity int) *Table {
	return &Table{
		capacity: capacity,
		index:    make(map[key]*slot),
		order:    list.New(),
		now:      time.Now,
	}
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.index)
}

// Insert stores an address record for (domain, rtype). If a live entry
// for the key already exists the call is a successful no-op: the first
// answer wins until it expires or is deleted, so duplicate resolutions
// don't thrash the recency order. When the table is full the least
// recently touched entry is evicted to make room.
//
// Validation failures leave the table untouched.
func (t *Table) Insert(domain string, ttl int, rtype RecordType, addr []byte) error {
	if len(domain) > MaxDomainLen {
		return ErrDomainTooLong
	}
	want := rtype.addrLen()
	if want == 0 {
		return ErrUnsupportedType
	}
	if len(addr) != want {
		return ErrBadAddressLen
	}

	if t.capacity <= 0 {
		return nil
	}

	now := t.now()
	k := key{domain, rtype}

	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.index[k]; ok {
		if !old.expired(now) {
			return nil
		}
		// The previous answer's TTL has elapsed; drop it and store
		// the new one.
		t.unlinkLocked(old)
		t.releaseLocked(old)
	}

	s := t.allocLocked()
	s.domain = domain
	s.rtype = rtype
	copy(s.addr[:], addr)
	s.addrLen = uint8(want)
	s.ttl = ttl
	s.insertedAt = now
	s.ref.Store(1) // the table's own ownership unit

	t.index[k] = s
	s.elem = t.order.PushBack(s)

	if len(t.index) > t.capacity {
		t.evictLocked()
	}
	return nil
}

// Get returns a handle to the live entry for (domain, rtype), or a miss.
// A stale entry found here is dropped on the spot, so Get never returns
// a record whose TTL has elapsed, whether or not a sweep has run. Every
// handle returned must be paired with exactly one Release.
//
// Get does not touch the recency order; see Touch.
func (t *Table) Get(domain string, rtype RecordType) (Handle, bool) {
	if t.capacity <= 0 {
		return Handle{}, false
	}

	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.index[key{domain, rtype}]
	if !ok {
		return Handle{}, false
	}
	if s.expired(now) {
		t.unlinkLocked(s)
		t.releaseLocked(s)
		return Handle{}, false
	}

	h := Handle{s: s, gen: s.gen.Load()}
	s.ref.Add(1)
	return h, true
}

// Release returns a handle obtained from Get. The entry is recycled
// once the last reference is gone and the table itself has let go of
// it. The handle must not be used afterwards.
//
// Release stays off the structural lock except on that terminal
// transition, so callers dropping handles do not block inserts,
// deletes, or sweeps running elsewhere.
func (t *Table) Release(h Handle) {
	if !h.valid() {
		return
	}
	if h.s.ref.Add(-1) != 0 {
		return
	}
	t.mu.Lock()
	t.freeLocked(h.s)
	t.mu.Unlock()
}

// Touch marks the entry as most recently confirmed, moving it to the
// tail of the recency list. It is how a resolver says "this answer was
// just served/validated" without re-inserting. No-op if the entry has
// already been evicted, expired, or deleted.
func (t *Table) Touch(h Handle) {
	if h.s == nil {
		return
	}
	t.mu.Lock()
	if h.s.gen.Load() == h.gen && h.s.elem != nil {
		t.order.MoveToBack(h.s.elem)
	}
	t.mu.Unlock()
}

// Delete removes the entry from the table regardless of its TTL, for
// answers known to be bad before they expire. The caller's handle
// remains valid until its own Release.
func (t *Table) Delete(h Handle) {
	if h.s == nil {
		return
	}
	t.mu.Lock()
	if h.s.gen.Load() == h.gen && h.s.elem != nil {
		t.unlinkLocked(h.s)
		t.releaseLocked(h.s)
	}
	t.mu.Unlock()
}

// RemainingTTL returns how many whole seconds of the entry's TTL are
// left, never negative. It reads only immutable fields and takes no
// lock.
func (t *Table) RemainingTTL(h Handle) int {
	if !h.valid() {
		return 0
	}
	s := h.s
	rem := s.insertedAt.Add(time.Duration(s.ttl) * time.Second).Sub(t.now())
	if rem < 0 {
		return 0
	}
	return int(rem / time.Second)
}

// Close tears the table down, dropping every entry unconditionally --
// outstanding handles included. It is for shutdown only: the caller
// must guarantee no other table operation is in flight.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for e := t.order.Front(); e != nil; {
		next := e.Next()
		s := e.Value.(*slot)
		s.elem = nil
		s.gen.Add(1)
		s.ref.Store(0)
		e = next
	}
	t.order.Init()
	t.index = make(map[key]*slot)
	t.free = nil
}

// evictLocked drops the entry at the head of the recency list, the
// least recently touched one.
func (t *Table) evictLocked() {
	front := t.order.Front()
	if front == nil {
		return
	}
	s := front.Value.(*slot)
	t.unlinkLocked(s)
	t.releaseLocked(s)
}

// unlinkLocked removes s from both structures. After this the entry is
// unreachable; it lives on only through outstanding references.
func (t *Table) unlinkLocked(s *slot) {
	delete(t.index, key{s.domain, s.rtype})
	if s.elem != nil {
		t.order.Remove(s.elem)
		s.elem = nil
	}
}

// releaseLocked drops the table's own ownership unit of an already
// unlinked entry.
func (t *Table) releaseLocked(s *slot) {
	if s.ref.Add(-1) == 0 {
		t.freeLocked(s)
	}
}

// freeLocked recycles a slot whose refcount reached zero. Bumping gen
// first invalidates any stale handles before the slot can be reused.
func (t *Table) freeLocked(s *slot) {
	s.gen.Add(1)
	s.domain = ""
	t.free = append(t.free, s)
}

// allocLocked takes a slot off the free list, or grows the arena.
func (t *Table) allocLocked() *slot {
	if n := len(t.free); n > 0 {
		s := t.free[n-1]
		t.free = t.free[:n-1]
		return s
	}
	return &slot{}
}
