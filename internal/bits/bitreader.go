// Package bits provides a bit reader over an in-memory byte slice, used by
// the HEVC bitstream reader to pull fixed-width fields and Exp-Golomb codes
// out of an RBSP payload.
package bits

import (
	"bufio"
	"bytes"
	"io"

	"github.com/ausocean/heic/internal/heicerr"
)

type bytePeeker interface {
	io.ByteReader
	Peek(int) ([]byte, error)
}

// Reader reads bits from a byte source, most-significant-bit first.
type Reader struct {
	r     bytePeeker
	n     uint64
	bits  int
	nRead int
}

// NewReader returns a new Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{r: bufio.NewReader(bytes.NewReader(buf))}
}

// ReadBits reads n bits from the source and returns them in the
// least-significant part of a uint64. Returns a Truncated error if fewer
// than n bits remain.
func (br *Reader) ReadBits(n int) (uint64, error) {
	for n > br.bits {
		b, err := br.r.ReadByte()
		if err != nil {
			return 0, heicerr.Wrap("bits.ReadBits", heicerr.Truncated, err)
		}
		br.nRead++
		br.n <<= 8
		br.n |= uint64(b)
		br.bits += 8
	}

	r := (br.n >> uint(br.bits-n)) & ((1 << uint(n)) - 1)
	br.bits -= n
	return r, nil
}

// PeekBits returns the next n bits without advancing the reader.
func (br *Reader) PeekBits(n int) (uint64, error) {
	need := (n - br.bits + 7) / 8
	if need < 0 {
		need = 0
	}
	byt, err := br.r.Peek(need)
	if err != nil {
		return 0, heicerr.Wrap("bits.PeekBits", heicerr.Truncated, err)
	}
	n2 := br.n
	bits := br.bits
	for i := 0; bits < n; i++ {
		n2 <<= 8
		n2 |= uint64(byt[i])
		bits += 8
	}
	return (n2 >> uint(bits-n)) & ((1 << uint(n)) - 1), nil
}

// ByteAligned reports whether the reader sits at the start of a byte.
func (br *Reader) ByteAligned() bool { return br.bits == 0 }

// Off returns the bit offset within the current byte.
func (br *Reader) Off() int { return br.bits }

// BytesRead returns the number of source bytes consumed so far.
func (br *Reader) BytesRead() int { return br.nRead }
