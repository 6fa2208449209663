package bus

// InlineSize is the number of payload bytes a Buffer can hold inline,
// without referencing caller memory.
const InlineSize = 8

// Buffer holds the payload of one transfer segment. Payloads of up to
// InlineSize bytes are stored inline, by value; longer payloads are held by
// reference, and the caller is responsible for keeping the referenced
// memory alive for the duration of the transfer. The storage mode is
// selected automatically at set time.
//
// A Buffer is populated during segment construction and read-only during
// the transfer.
type Buffer struct {
	ref    []byte
	inline [InlineSize]byte
	n      uint8
	packed bool
}

// Set stores p, copying it inline when it fits and referencing it
// otherwise. Set does not take ownership of p in reference mode.
func (b *Buffer) Set(p []byte) {
	if len(p) <= InlineSize {
		b.n = uint8(copy(b.inline[:], p))
		b.packed = true
		b.ref = nil
		return
	}
	b.ref = p
	b.packed = false
}

// SetLength prepares zeroed storage of n bytes with no caller-owned
// backing: inline when n fits, freshly allocated otherwise. This is the
// pointer-free receive path for transfers whose result is read back from
// the segment.
func (b *Buffer) SetLength(n int) {
	if n <= InlineSize {
		b.inline = [InlineSize]byte{}
		b.n = uint8(n)
		b.packed = true
		b.ref = nil
		return
	}
	b.ref = make([]byte, n)
	b.packed = false
}

// Bytes returns the payload. In inline mode the returned slice aliases
// storage inside the Buffer itself and can never dangle.
func (b *Buffer) Bytes() []byte {
	if b.packed {
		return b.inline[:b.n]
	}
	return b.ref
}

// Len returns the payload length.
func (b *Buffer) Len() int {
	if b.packed {
		return int(b.n)
	}
	return len(b.ref)
}

// IsInline reports whether the payload is stored inline.
func (b *Buffer) IsInline() bool {
	return b.packed
}
