package cache

import (
	"container/list"
	"errors"
	"net"
	"sync/atomic"
	"time"
)

// RecordType identifies the kind of address record an entry holds.
// The values are DNS wire types so callers working with DNS messages
// can pass query types through unchanged.
type RecordType uint16

const (
	// TypeA is an IPv4 address record (4-byte address).
	TypeA RecordType = 1

	// TypeAAAA is an IPv6 address record (16-byte address).
	TypeAAAA RecordType = 28
)

// MaxDomainLen is the longest domain name Insert accepts, matching the
// DNS limit on a full presentation-format name.
const MaxDomainLen = 255

var (
	// ErrDomainTooLong is returned by Insert when the domain name
	// exceeds MaxDomainLen.
	ErrDomainTooLong = errors.New("cache: domain name too long")

	// ErrUnsupportedType is returned by Insert for record types other
	// than TypeA and TypeAAAA.
	ErrUnsupportedType = errors.New("cache: unsupported record type")

	// ErrBadAddressLen is returned by Insert when the address length
	// does not match the record type (4 bytes for A, 16 for AAAA).
	ErrBadAddressLen = errors.New("cache: address length does not match record type")
)

// addrLen returns the exact address size for a record type, or 0 if the
// type is not supported.
func (rt RecordType) addrLen() int {
	switch rt {
	case TypeA:
		return net.IPv4len
	case TypeAAAA:
		return net.IPv6len
	}
	return 0
}

// String returns the conventional DNS name of the type.
func (rt RecordType) String() string {
	switch rt {
	case TypeA:
		return "A"
	case TypeAAAA:
		return "AAAA"
	}
	return "TYPE?"
}

// slot is one arena cell. Slots are allocated once and recycled through
// the table's free list; gen is bumped every time a slot is freed so
// handles into a previous occupant stop matching.
//
// All fields except ref and gen are written only between allocation and
// linking, under the table lock, and are read-only afterwards.
type slot struct {
	gen atomic.Uint32
	ref atomic.Int32

	domain     string
	rtype      RecordType
	addr       [net.IPv6len]byte
	addrLen    uint8
	ttl        int // seconds, fixed at insert
	insertedAt time.Time

	// elem is the slot's position in the recency list; nil once the
	// entry has been unlinked.
	elem *list.Element
}

// expired reports whether the entry's TTL has elapsed at now.
func (s *slot) expired(now time.Time) bool {
	return now.Sub(s.insertedAt) > time.Duration(s.ttl)*time.Second
}

// Handle is a counted reference to a live cache entry, obtained from
// Get. A handle stays valid until the matching Release; the record
// fields it exposes are immutable for that entire window. The zero
// Handle is invalid and ignored by all table operations.
//
// Using a handle after releasing it is a caller bug. The generation
// snapshot turns most such uses into no-ops, but that is a safety net,
// not a contract.
type Handle struct {
	s   *slot
	gen uint32
}

// valid reports whether the handle still points at the entry it was
// minted for.
func (h Handle) valid() bool {
	return h.s != nil && h.s.gen.Load() == h.gen
}

// Domain returns the entry's domain name.
func (h Handle) Domain() string { return h.s.domain }

// Type returns the entry's record type.
func (h Handle) Type() RecordType { return h.s.rtype }

// TTL returns the TTL the entry was inserted with, in seconds.
func (h Handle) TTL() int { return h.s.ttl }

// Addr returns a copy of the entry's address, 4 bytes for an A record
// and 16 for an AAAA record.
func (h Handle) Addr() net.IP {
	ip := make(net.IP, h.s.addrLen)
	copy(ip, h.s.addr[:h.s.addrLen])
	return ip
}
