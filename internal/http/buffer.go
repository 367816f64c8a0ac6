package http

// initialBufferSize is the allocation made on the first append.
const initialBufferSize = 1024

// Buffer is a growable byte sequence used to accumulate response data.
// The zero value is empty and ready to use.
//
// When an append would exceed the current capacity, the capacity at
// least doubles, so the total copying cost over a sequence of appends
// is amortized linear. Cap() >= Len() holds at every point.
type Buffer struct {
	data []byte
}

// Append adds p to the end of the buffer, growing it as needed.
func (b *Buffer) Append(p []byte) {
	if need := len(b.data) + len(p); need > cap(b.data) {
		b.grow(need)
	}
	b.data = append(b.data, p...)
}

// grow reallocates to at least need bytes of capacity, doubling from
// the current capacity so repeated appends stay cheap.
func (b *Buffer) grow(need int) {
	newCap := cap(b.data)
	if newCap == 0 {
		newCap = initialBufferSize
	}
	for newCap < need {
		newCap *= 2
	}

	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
}

// Len returns the number of bytes currently held.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the currently allocated size.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// Bytes returns the buffer's contents. The slice aliases the buffer's
// storage and is valid until the next Append.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// String returns the buffer's contents as a string.
func (b *Buffer) String() string {
	return string(b.data)
}
