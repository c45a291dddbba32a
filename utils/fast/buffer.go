package fast

// Reader and Writer are thin, non-thread-safe wrappers around a byte slice,
// used by the fixed-layout state serializer. The Reader performs no bounds
// checking of its own; reading past the end panics, and the caller is
// expected to recover and translate the panic into a decoding error.

type Reader struct {
	buf    []byte
	offset int
}

type Writer struct {
	buf []byte
}

// NewReader creates a Reader to consume the provided byte slice.
func NewReader(bb []byte) *Reader {
	return &Reader{
		buf:    bb,
		offset: 0,
	}
}

// NewWriter creates a Writer that appends to the provided initial slice.
// Usually called with make([]byte, 0, capacity).
func NewWriter(bb []byte) *Writer {
	return &Writer{
		buf: bb,
	}
}

// WriteByte appends a single byte.
func (b *Writer) WriteByte(v byte) {
	b.buf = append(b.buf, v)
}

// Write appends a slice of bytes.
func (b *Writer) Write(v []byte) {
	b.buf = append(b.buf, v...)
}

// Read consumes and returns the next n bytes.
// The returned slice shares memory with the underlying buffer.
func (b *Reader) Read(n int) []byte {
	res := b.buf[b.offset : b.offset+n]
	b.offset += n
	return res
}

// ReadByte consumes and returns a single byte.
func (b *Reader) ReadByte() byte {
	res := b.buf[b.offset]
	b.offset++
	return res
}

// Position returns the current cursor index of the Reader.
func (b *Reader) Position() int {
	return b.offset
}

// Bytes returns the entire underlying buffer of the Reader.
func (b *Reader) Bytes() []byte {
	return b.buf
}

// Bytes returns the accumulated content of the Writer.
func (b *Writer) Bytes() []byte {
	return b.buf
}

// Empty reports whether the Reader has consumed the whole buffer.
func (b *Reader) Empty() bool {
	return len(b.buf) == b.offset
}
