// Package buffer implements a growable byte container with independent
// read and write cursors. It is the framing primitive the Hessian codec
// and the base64 codec are built on: a document can be filled, drained,
// rewound for a failover retry, or reset without reallocating.
package buffer

// EOF is returned by Get when the read cursor has reached the write
// cursor. It is distinct from a valid byte value (0-255).
const EOF = -1

// defaultGrowth is used when New is called with a non-positive capacity.
const defaultGrowth = 64

// Buffer is a growable byte container with a write cursor (length) and
// an independent read cursor. Writes grow capacity by doubling; reads
// never grow the buffer and never move the write cursor.
type Buffer struct {
	data   []byte
	length int // write cursor / logical length
	read   int // read cursor
}

// New creates a Buffer with the given initial capacity. A non-positive
// capacity is replaced by a small default; allocation in Go cannot fail
// the way the C create() could return NULL, so New never fails.
func New(initialCapacity int) *Buffer {
	if initialCapacity <= 0 {
		initialCapacity = defaultGrowth
	}
	return &Buffer{data: make([]byte, initialCapacity)}
}

// NewFromBytes creates a Buffer pre-loaded with the given bytes, write
// cursor at the end, read cursor at the start.
func NewFromBytes(b []byte) *Buffer {
	buf := &Buffer{data: make([]byte, len(b))}
	copy(buf.data, b)
	buf.length = len(b)
	return buf
}

func (b *Buffer) grow(need int) {
	if len(b.data) >= need {
		return
	}
	newCap := len(b.data)
	if newCap == 0 {
		newCap = defaultGrowth
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, newCap)
	copy(grown, b.data[:b.length])
	b.data = grown
}

// Put appends a single byte, growing the buffer if needed.
func (b *Buffer) Put(c byte) {
	b.grow(b.length + 1)
	b.data[b.length] = c
	b.length++
}

// Write appends src to the buffer and returns the number of bytes
// written (always len(src); Write never partially fails).
func (b *Buffer) Write(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	b.grow(b.length + len(src))
	copy(b.data[b.length:], src)
	b.length += len(src)
	return len(src)
}

// Get reads and consumes a single byte, or returns EOF if the read
// cursor has caught up with the write cursor.
func (b *Buffer) Get() int {
	if b.read >= b.length {
		return EOF
	}
	c := b.data[b.read]
	b.read++
	return int(c)
}

// Read consumes up to len(dst) bytes into dst and returns the number
// of bytes actually read (which may be less than len(dst) at EOF).
func (b *Buffer) Read(dst []byte) int {
	avail := b.length - b.read
	if avail <= 0 {
		return 0
	}
	n := len(dst)
	if n > avail {
		n = avail
	}
	copy(dst, b.data[b.read:b.read+n])
	b.read += n
	return n
}

// EOF reports whether the read cursor has reached the write cursor.
func (b *Buffer) EOF() bool {
	return b.read >= b.length
}

// Length returns the logical length (write cursor position).
func (b *Buffer) Length() int {
	return b.length
}

// Bytes returns the written portion of the buffer. The caller must not
// mutate the returned slice; it aliases the buffer's storage.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.length]
}

// Rewind resets the read cursor to zero without touching the write
// cursor or the data already written — used to retry a failed POST
// against the next failover endpoint.
func (b *Buffer) Rewind() {
	b.read = 0
}

// Reset sets both cursors to zero, logically emptying the buffer while
// keeping the underlying storage for reuse.
func (b *Buffer) Reset() {
	b.read = 0
	b.length = 0
}
