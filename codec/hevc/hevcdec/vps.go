package hevcdec

import (
	"github.com/ausocean/heic/internal/bits"
	"github.com/ausocean/heic/internal/heicerr"
)

// VPS holds the minimal video parameter set fields this core needs: just
// enough to validate the id referenced by an SPS. HEIF still images carry
// a single-layer VPS, so the layer-set/HRD machinery is not modelled.
type VPS struct {
	ID int
}

// ParseVPS parses a VPS RBSP payload (NAL header already stripped).
func ParseVPS(rbsp []byte) (*VPS, error) {
	const op = "hevcdec.ParseVPS"
	br := bits.NewReader(rbsp)
	r := newFieldReader(br)
	v := &VPS{ID: int(r.readBits(4))}
	if err := r.err(); err != nil {
		return nil, heicerr.Wrap(op, heicerr.Truncated, err)
	}
	return v, nil
}
