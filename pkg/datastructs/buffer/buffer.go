package buffer

import (
	"bytes"
	"errors"
	"io"

	"github.com/breutil/go-common/pkg/utils"
)

// ErrPrependOverflow is returned when Prepend is asked for more bytes than
// the space in front of the read index.
var ErrPrependOverflow = errors.New("buffer: not enough prependable space")

var crlf = []byte("\r\n")

// Buffer is a byte read/write buffer with separate read and write indexes
// over one contiguous backing slice:
//
//	+-------------------+------------------+------------------+
//	| prependable bytes |  readable bytes  |  writable bytes  |
//	+-------------------+------------------+------------------+
//	0        <=      readIdx    <=      writeIdx    <=     len(buf)
//
// Appends go to the write index, reads consume from the read index, and the
// reserved prepend region lets a header be stamped in front of the payload
// after the payload is written. It is NOT thread-safe.
type Buffer struct {
	buf      []byte
	readIdx  int
	writeIdx int
}

// NewBuffer creates a Buffer with the given initial payload capacity.
// A non-positive size falls back to InitialSize.
func NewBuffer(initialSize int) *Buffer {
	if initialSize <= 0 {
		initialSize = InitialSize
	}
	return &Buffer{
		buf:      make([]byte, PrependSize+initialSize),
		readIdx:  PrependSize,
		writeIdx: PrependSize,
	}
}

// ReadableBytes returns the number of bytes available to read.
func (b *Buffer) ReadableBytes() int {
	return b.writeIdx - b.readIdx
}

// WritableBytes returns the number of bytes that can be appended without
// growing or compacting.
func (b *Buffer) WritableBytes() int {
	return len(b.buf) - b.writeIdx
}

// PrependableBytes returns the space in front of the read index.
func (b *Buffer) PrependableBytes() int {
	return b.readIdx
}

// Capacity returns the total size of the backing slice.
func (b *Buffer) Capacity() int {
	return len(b.buf)
}

// Peek returns the readable bytes without consuming them.
// The slice aliases the backing storage and is invalidated by any mutation.
func (b *Buffer) Peek() []byte {
	return b.buf[b.readIdx:b.writeIdx]
}

// FindCRLF returns the offset of the first "\r\n" within the readable bytes,
// or -1 if absent. The offset is relative to Peek().
func (b *Buffer) FindCRLF() int {
	return bytes.Index(b.Peek(), crlf)
}

// FindCRLFFrom is FindCRLF starting at the given offset into the readable
// bytes. Out-of-range offsets yield -1.
func (b *Buffer) FindCRLFFrom(start int) int {
	readable := b.Peek()
	if start < 0 || start >= len(readable) {
		return -1
	}
	idx := bytes.Index(readable[start:], crlf)
	if idx < 0 {
		return -1
	}
	return start + idx
}

// FindEOL returns the offset of the first '\n' within the readable bytes,
// or -1 if absent.
func (b *Buffer) FindEOL() int {
	return bytes.IndexByte(b.Peek(), '\n')
}

// Retrieve consumes n readable bytes. Consuming everything (or more than is
// readable) resets the indexes to reclaim the full buffer.
func (b *Buffer) Retrieve(n int) {
	if n <= 0 {
		return
	}
	if n >= b.ReadableBytes() {
		b.RetrieveAll()
		return
	}
	b.readIdx += n
}

// RetrieveAll consumes all readable bytes and resets both indexes to the
// prepend mark.
func (b *Buffer) RetrieveAll() {
	b.readIdx = PrependSize
	b.writeIdx = PrependSize
}

// RetrieveAllString consumes all readable bytes and returns them as a string.
func (b *Buffer) RetrieveAllString() string {
	return b.RetrieveString(b.ReadableBytes())
}

// RetrieveString consumes n readable bytes and returns them as a string.
// n is clamped to the readable length.
func (b *Buffer) RetrieveString(n int) string {
	if n > b.ReadableBytes() {
		n = b.ReadableBytes()
	}
	if n <= 0 {
		return ""
	}
	s := string(b.buf[b.readIdx : b.readIdx+n])
	b.Retrieve(n)
	return s
}

// Append copies data after the current write index, growing or compacting
// as needed.
func (b *Buffer) Append(data []byte) {
	b.EnsureWritable(len(data))
	copy(b.buf[b.writeIdx:], data)
	b.HasWritten(len(data))
}

// AppendString appends a string without an intermediate copy.
func (b *Buffer) AppendString(s string) {
	b.Append(utils.StringToBytes(s))
}

// Prepend copies data into the space in front of the read index, typically a
// header stamped after the payload was appended.
func (b *Buffer) Prepend(data []byte) error {
	if len(data) > b.PrependableBytes() {
		return ErrPrependOverflow
	}
	b.readIdx -= len(data)
	copy(b.buf[b.readIdx:], data)
	return nil
}

// EnsureWritable guarantees space for another n bytes, first by compacting
// the dead prepend region, then by growing the backing slice.
func (b *Buffer) EnsureWritable(n int) {
	if b.WritableBytes() >= n {
		return
	}
	b.makeSpace(n)
}

// HasWritten advances the write index after the caller wrote directly into
// WritableSlice.
func (b *Buffer) HasWritten(n int) {
	b.writeIdx += n
}

// WritableSlice returns the writable region for direct writes.
// Call HasWritten with the number of bytes actually produced.
func (b *Buffer) WritableSlice() []byte {
	return b.buf[b.writeIdx:]
}

// Shrink reallocates the backing slice down to the readable bytes plus the
// given reserve, dropping slack after a large burst.
func (b *Buffer) Shrink(reserve int) {
	if reserve < 0 {
		reserve = 0
	}
	readable := b.ReadableBytes()
	newBuf := make([]byte, PrependSize+readable+reserve)
	copy(newBuf[PrependSize:], b.Peek())
	b.buf = newBuf
	b.readIdx = PrependSize
	b.writeIdx = PrependSize + readable
}

// String returns the readable bytes as a string without consuming them.
func (b *Buffer) String() string {
	return string(b.Peek())
}

// Read implements io.Reader, consuming readable bytes into p.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.ReadableBytes() == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.Peek())
	b.Retrieve(n)
	return n, nil
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Append(p)
	return len(p), nil
}

// WriteTo implements io.WriterTo, draining all readable bytes into w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	readable := b.Peek()
	if len(readable) == 0 {
		return 0, nil
	}
	n, err := w.Write(readable)
	b.Retrieve(n)
	return int64(n), err
}

// ReadFrom implements io.ReaderFrom, appending from r until EOF.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		b.EnsureWritable(minReadChunk)
		n, err := r.Read(b.WritableSlice())
		if n > 0 {
			b.HasWritten(n)
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

const minReadChunk = 512

// makeSpace frees room for n more bytes. When the dead prepend region plus
// the writable tail already covers the need, the readable bytes slide back
// to the prepend mark instead of reallocating.
func (b *Buffer) makeSpace(n int) {
	if b.PrependableBytes()+b.WritableBytes() >= PrependSize+n {
		readable := b.ReadableBytes()
		copy(b.buf[PrependSize:], b.Peek())
		b.readIdx = PrependSize
		b.writeIdx = PrependSize + readable
		return
	}

	newCap := utils.CeilToPowerOfTwo(b.writeIdx + n)
	newBuf := make([]byte, newCap)
	copy(newBuf, b.buf[:b.writeIdx])
	b.buf = newBuf
}
