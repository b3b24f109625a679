// Package heif decodes the ISO-BMFF-like box tree of a HEIF/HEIC container
// and resolves image items to concrete byte ranges, without touching the
// HEVC payload itself.
package heif

import (
	"github.com/ausocean/heic/internal/byteio"
	"github.com/ausocean/heic/internal/heicerr"
)

// box is one parsed box header: its four-character type, the absolute
// start/end offsets of its full extent (header + body) in the container,
// and the offset where its body begins.
type box struct {
	Type       string
	Start      int
	End        int
	BodyStart  int
}

// readBoxHeader parses one box header at r's current position (ISO/IEC
// 14496-12 §4.2), handling the 32-bit size, the size==0 ("to end of file")
// and size==1 (64-bit largesize) cases.
func readBoxHeader(r *byteio.Reader) (box, error) {
	const op = "heif.readBoxHeader"
	start := r.Pos()
	size32, err := r.U32()
	if err != nil {
		return box{}, heicerr.Wrap(op, heicerr.Truncated, err)
	}
	typeBytes, err := r.ReadN(4)
	if err != nil {
		return box{}, heicerr.Wrap(op, heicerr.Truncated, err)
	}
	typ := string(typeBytes)

	size := int64(size32)
	if size32 == 1 {
		size64, err := r.U64()
		if err != nil {
			return box{}, heicerr.Wrap(op, heicerr.Truncated, err)
		}
		size = int64(size64)
	} else if size32 == 0 {
		size = int64(r.Len() - start)
	}
	if size < int64(r.Pos()-start) {
		return box{}, heicerr.New(op, heicerr.Malformed)
	}

	end := start + int(size)
	if end > r.Len() {
		return box{}, heicerr.New(op, heicerr.Truncated)
	}
	return box{Type: typ, Start: start, End: end, BodyStart: r.Pos()}, nil
}

// fullBoxVersionFlags reads the 1-byte version and 3-byte flags field
// present at the start of every "full box" body (ISO/IEC 14496-12 §4.2).
func fullBoxVersionFlags(r *byteio.Reader) (version int, flags uint32, err error) {
	v, err := r.U8()
	if err != nil {
		return 0, 0, err
	}
	f, err := r.ReadN(3)
	if err != nil {
		return 0, 0, err
	}
	return int(v), uint32(f[0])<<16 | uint32(f[1])<<8 | uint32(f[2]), nil
}

// walkBoxes calls fn for every top-level box from r's current position up
// to the absolute offset end in r's underlying buffer, stopping and
// propagating any error fn returns.
func walkBoxes(r *byteio.Reader, end int, fn func(b box) error) error {
	const op = "heif.walkBoxes"
	for r.Pos() < end {
		b, err := readBoxHeader(r)
		if err != nil {
			return heicerr.Wrap(op, heicerr.Malformed, err)
		}
		if b.End > end {
			return heicerr.New(op, heicerr.Malformed)
		}
		if err := fn(b); err != nil {
			return err
		}
		if err := r.SeekTo(b.End); err != nil {
			return heicerr.Wrap(op, heicerr.Malformed, err)
		}
	}
	return nil
}
