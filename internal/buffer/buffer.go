// Package buffer implements the grow-on-demand output sink the serializer
// writes into. It mirrors oj's Out struct (buf/cur/end, assure_size before
// every append) rather than reaching for bytes.Buffer, so a cold Buffer can
// satisfy most small documents entirely out of its inline array.
package buffer

// inlineSize is the size of the small-object storage carried inline in
// every Buffer. Documents at or under this size never touch the heap.
const inlineSize = 4096

// minGrowth is the smallest capacity a grown Buffer's heap-allocated
// backing array is given.
const minGrowth = 4096

// Buffer is a grow-on-demand byte sink. The zero value is ready to use.
type Buffer struct {
	inline   [inlineSize]byte
	head     []byte // current backing array; head[:cursor] is valid data
	cursor   int
	heap     bool // true once head points at a heap allocation
	inlineOn bool // true once inline has been wired up as head
}

func (b *Buffer) ensureInline() {
	if !b.inlineOn {
		b.head = b.inline[:]
		b.inlineOn = true
	}
}

// Reserve guarantees that at least n more bytes can be written without a
// further allocation. Every serializer entry point calls this before
// writing so the growth decision happens once per string, not once per
// byte.
func (b *Buffer) Reserve(n int) {
	b.ensureInline()
	if b.cursor+n <= len(b.head) {
		return
	}
	b.grow(n)
}

// grow doubles capacity (at least to cursor+n), migrating from the inline
// array to a heap buffer on first growth.
func (b *Buffer) grow(n int) {
	need := b.cursor + n
	newCap := len(b.head) * 2
	if newCap < need {
		newCap = need
	}
	if newCap < minGrowth {
		newCap = minGrowth
	}
	fresh := make([]byte, newCap)
	copy(fresh, b.head[:b.cursor])
	b.head = fresh
	b.heap = true
}

// WriteByte appends a single byte, growing if necessary.
func (b *Buffer) WriteByte(c byte) error {
	b.Reserve(1)
	b.head[b.cursor] = c
	b.cursor++
	return nil
}

// Write appends p, growing if necessary. Always returns len(p), nil.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Reserve(len(p))
	n := copy(b.head[b.cursor:], p)
	b.cursor += n
	return n, nil
}

// WriteString appends s, growing if necessary.
func (b *Buffer) WriteString(s string) (int, error) {
	b.Reserve(len(s))
	n := copy(b.head[b.cursor:], s)
	b.cursor += n
	return n, nil
}

// Bytes returns the valid portion of the buffer. The returned slice aliases
// the Buffer's storage and is invalidated by the next write.
func (b *Buffer) Bytes() []byte {
	if !b.inlineOn {
		return nil
	}
	return b.head[:b.cursor]
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return b.cursor
}

// Reset empties the buffer without releasing any heap allocation, so a
// Buffer can be reused across Marshal calls.
func (b *Buffer) Reset() {
	b.cursor = 0
}
