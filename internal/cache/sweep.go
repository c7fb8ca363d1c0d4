package cache

// InvalidateExpired drops every entry whose TTL has elapsed. It is
// meant to run periodically from an external timer; Get already expires
// entries lazily, so the sweep exists to reclaim records nobody asks
// for anymore.
//
// The whole list is scanned. The list is ordered by touch time, not by
// expiry time, and Touch can move a long-lived entry ahead of
// short-lived untouched ones, so stopping at the first fresh entry
// could leave expired records stranded behind it across every pass.
// The list is bounded by capacity and the sweep runs off the request
// path, so the full walk is affordable.
func (t *Table) InvalidateExpired() {
	if t.capacity <= 0 {
		return
	}

	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	for e := t.order.Front(); e != nil; {
		next := e.Next()
		s := e.Value.(*slot)
		if s.expired(now) {
			t.unlinkLocked(s)
			t.releaseLocked(s)
		}
		e = next
	}
}
