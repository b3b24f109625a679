package hevcdec

import (
	"github.com/ausocean/heic/internal/heicerr"
)

// NAL unit types this core cares about (H.265 Table 7-1).
const (
	NalVPS  = 32
	NalSPS  = 33
	NalPPS  = 34
	NalIDRW = 19 // IDR_W_RADL
	NalIDRN = 20 // IDR_N_LP
	NalCRA  = 21
)

// NALUnit is a single HEVC network abstraction layer unit with its
// emulation-prevention bytes already stripped from Payload (RBSP form).
type NALUnit struct {
	ForbiddenZeroBit bool
	Type             int
	LayerID          int
	TemporalIDPlus1  int
	Payload          []byte // RBSP payload, header bytes excluded.
}

// ParseNALUnit parses the 2-byte HEVC NAL header (H.265 §7.3.1.2) and returns
// the unit with emulation-prevention bytes removed from the remaining bytes.
func ParseNALUnit(b []byte) (*NALUnit, error) {
	const op = "hevcdec.ParseNALUnit"
	if len(b) < 2 {
		return nil, heicerr.New(op, heicerr.Truncated)
	}
	n := &NALUnit{
		ForbiddenZeroBit: b[0]&0x80 != 0,
		Type:             int(b[0]>>1) & 0x3f,
		LayerID:          (int(b[0]&0x01) << 5) | int(b[1]>>3),
		TemporalIDPlus1:  int(b[1] & 0x07),
	}
	n.Payload = stripEmulationPrevention(b[2:])
	return n, nil
}

// stripEmulationPrevention removes the 0x03 emulation-prevention byte that
// follows every 0x00 0x00 pair in the raw NAL byte stream, yielding RBSP.
func stripEmulationPrevention(b []byte) []byte {
	out := make([]byte, 0, len(b))
	zeros := 0
	for _, c := range b {
		if zeros >= 2 && c == 0x03 {
			zeros = 0
			continue
		}
		out = append(out, c)
		if c == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}

// SplitAnnexB splits an Annex-B byte stream (start codes 0x000001 or
// 0x00000001) into the byte ranges of its individual NAL units, in order.
func SplitAnnexB(b []byte) [][]byte {
	var units [][]byte
	starts := findStartCodes(b)
	for i, s := range starts {
		end := len(b)
		if i+1 < len(starts) {
			end = starts[i+1].codeStart
		}
		if s.unitStart >= end {
			continue
		}
		units = append(units, b[s.unitStart:end])
	}
	return units
}

type startCode struct {
	codeStart, unitStart int
}

func findStartCodes(b []byte) []startCode {
	var out []startCode
	for i := 0; i+2 < len(b); i++ {
		if b[i] == 0 && b[i+1] == 0 && b[i+2] == 1 {
			out = append(out, startCode{codeStart: i, unitStart: i + 3})
			i += 2
		}
	}
	return out
}

// SplitLengthPrefixed splits a length-prefixed NAL stream (as found inside
// an hvcC-configured sample, or embedded in hvcC itself) using lengthSize
// bytes (1, 2, or 4) per hvcC's lengthSizeMinusOne + 1.
func SplitLengthPrefixed(b []byte, lengthSize int) ([][]byte, error) {
	const op = "hevcdec.SplitLengthPrefixed"
	var units [][]byte
	for len(b) > 0 {
		if len(b) < lengthSize {
			return nil, heicerr.New(op, heicerr.Truncated)
		}
		var n int
		for i := 0; i < lengthSize; i++ {
			n = n<<8 | int(b[i])
		}
		b = b[lengthSize:]
		if n < 0 || n > len(b) {
			return nil, heicerr.New(op, heicerr.Truncated)
		}
		units = append(units, b[:n])
		b = b[n:]
	}
	return units, nil
}
