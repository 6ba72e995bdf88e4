// Package intern implements the shared string intern cache: a bounded
// open-hash table with chaining that maps a byte sequence to a single
// canonical Go string, so repeated JSON keys share one allocation and
// compare equal by value instead of being re-decoded on every parse.
//
// The hash function is a direct port of oj's cache.c hash_calc: an
// almost-Murmur mix operating on 4-byte words with a tail handled a byte
// or two at a time.
package intern

import "sync"

const (
	defaultBuckets = 8192
	rehashLimit    = 64 // average chain length that triggers a bucket doubling
)

const (
	m32 = 0x5bd1e995
)

// hash computes the oj-style almost-Murmur 32-bit mix over key.
func hash(key []byte) uint32 {
	h := uint32(len(key))
	end := len(key)
	full := end &^ 3
	i := 0
	for i < full {
		k := uint32(key[i]) | uint32(key[i+1])<<8 | uint32(key[i+2])<<16 | uint32(key[i+3])<<24
		k *= m32
		k ^= k >> 24
		h *= m32
		h ^= k * m32
		i += 4
	}
	switch end - i {
	case 3:
		k16 := uint32(key[i]) | uint32(key[i+1])<<8
		h ^= k16 << 8
		h ^= uint32(key[i+2])
	case 2:
		k16 := uint32(key[i]) | uint32(key[i+1])<<8
		h ^= k16 << 8
	case 1:
		h ^= uint32(key[i])
	}
	h *= m32
	h ^= h >> 13
	h *= m32
	h ^= h >> 15
	return h
}

type slot struct {
	next  *slot
	h     uint32
	key   []byte
	value string
}

// Cache is a process-scoped string intern table. The zero value is not
// usable; construct one with New.
type Cache struct {
	mu      sync.Mutex
	buckets []*slot
	count   int
}

// New creates a Cache with the given initial bucket count, rounded up to
// the next power of two (minimum 8).
func New(buckets int) *Cache {
	n := 8
	for n < buckets {
		n <<= 1
	}
	return &Cache{buckets: make([]*slot, n)}
}

// NewDefault creates a Cache using the baseline 8192-bucket size spec.md
// names.
func NewDefault() *Cache {
	return New(defaultBuckets)
}

// Intern returns the canonical string for key, inserting it on first
// sight. The returned string is safe to retain; it does not alias key.
func (c *Cache) Intern(key []byte) string {
	h := hash(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := h & uint32(len(c.buckets)-1)
	for s := c.buckets[idx]; s != nil; s = s.next {
		if s.h == h && len(s.key) == len(key) && byteEqual(s.key, key) {
			return s.value
		}
	}

	owned := make([]byte, len(key))
	copy(owned, key)
	v := string(owned)
	c.buckets[idx] = &slot{next: c.buckets[idx], h: h, key: owned, value: v}
	c.count++

	if c.count > rehashLimit*len(c.buckets) {
		c.rehash()
	}
	return v
}

// rehash doubles the bucket array. Callers must hold c.mu.
func (c *Cache) rehash() {
	fresh := make([]*slot, len(c.buckets)*2)
	mask := uint32(len(fresh) - 1)
	for _, head := range c.buckets {
		for s := head; s != nil; {
			next := s.next
			idx := s.h & mask
			s.next = fresh[idx]
			fresh[idx] = s
			s = next
		}
	}
	c.buckets = fresh
}

func byteEqual(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Len reports the number of distinct interned strings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
