package hevcdec

import (
	"github.com/ausocean/heic/internal/bits"
	"github.com/ausocean/heic/internal/heicerr"
)

// fieldReader wraps a bits.Reader with a sticky error: once a read fails,
// every subsequent read is a no-op returning zero, and the caller checks
// err() once at the end of a syntax structure instead of after every field.
type fieldReader struct {
	br     *bits.Reader
	stored error
}

func newFieldReader(br *bits.Reader) *fieldReader {
	return &fieldReader{br: br}
}

func (r *fieldReader) err() error { return r.stored }

// readBits reads n fixed-width bits.
func (r *fieldReader) readBits(n int) uint64 {
	if r.stored != nil {
		return 0
	}
	v, err := r.br.ReadBits(n)
	if err != nil {
		r.stored = err
		return 0
	}
	return v
}

// readFlag reads a single bit as a bool.
func (r *fieldReader) readFlag() bool {
	return r.readBits(1) == 1
}

// readUe reads an unsigned Exp-Golomb coded value per H.265 §9.2.
func (r *fieldReader) readUe() uint64 {
	if r.stored != nil {
		return 0
	}
	leadingZeros := 0
	for {
		b, err := r.br.ReadBits(1)
		if err != nil {
			r.stored = err
			return 0
		}
		if b != 0 {
			break
		}
		leadingZeros++
		if leadingZeros > 32 {
			r.stored = heicerr.New("hevcdec.readUe", heicerr.Malformed)
			return 0
		}
	}
	if leadingZeros == 0 {
		return 0
	}
	suffix, err := r.br.ReadBits(leadingZeros)
	if err != nil {
		r.stored = err
		return 0
	}
	return (1<<uint(leadingZeros) - 1) + suffix
}

// readSe reads a signed Exp-Golomb coded value per H.265 §9.2.2.
func (r *fieldReader) readSe() int64 {
	ue := r.readUe()
	if r.stored != nil {
		return 0
	}
	if ue%2 == 0 {
		return -int64(ue / 2)
	}
	return int64(ue+1) / 2
}
