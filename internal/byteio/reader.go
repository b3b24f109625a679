// Package byteio provides a seek/peek cursor over an immutable byte slice,
// with bounded reads that fail cleanly on underflow. It backs the HEIF
// container parser's box-header and fixed-width field reads.
package byteio

import (
	"encoding/binary"

	"github.com/ausocean/heic/internal/heicerr"
)

// Reader is a cursor over buf with absolute repositioning via SeekTo and
// lookahead via Peek.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader positioned at the start of buf. buf is
// borrowed, not copied: it must outlive the Reader.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current byte offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	const op = "byteio.Reader"
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, heicerr.New(op, heicerr.Truncated)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadN reads and returns the next n bytes, advancing the cursor.
func (r *Reader) ReadN(n int) ([]byte, error) { return r.take(n) }

// Peek returns the next n bytes without advancing the cursor.
func (r *Reader) Peek(n int) ([]byte, error) {
	const op = "byteio.Reader.Peek"
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, heicerr.New(op, heicerr.Truncated)
	}
	return r.buf[r.pos : r.pos+n], nil
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

// SeekTo repositions the cursor to an absolute offset.
func (r *Reader) SeekTo(pos int) error {
	const op = "byteio.Reader.SeekTo"
	if pos < 0 || pos > len(r.buf) {
		return heicerr.New(op, heicerr.Truncated)
	}
	r.pos = pos
	return nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a big-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// U64 reads a big-endian uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// UintN reads an n-byte (1/2/3/4/8) big-endian unsigned integer, the
// variable-width idiom ISOBMFF uses throughout iloc/ipma for fields whose
// size is only known at parse time from a preceding version/flags field.
func (r *Reader) UintN(n int) (uint64, error) {
	const op = "byteio.Reader.UintN"
	if n == 0 {
		return 0, nil
	}
	b, err := r.take(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	if n > 8 {
		return 0, heicerr.New(op, heicerr.Malformed)
	}
	return v, nil
}
