package hevcdec

import (
	"encoding/binary"

	"github.com/ausocean/heic/internal/heicerr"
)

// NaluArray groups the NAL units of one type embedded in an hvcC record.
type NaluArray struct {
	ArrayCompleteness bool
	NALUnitType       int
	NALUs             [][]byte
}

// DecoderConfigurationRecord is the parsed form of the hvcC box payload
// (ISO/IEC 14496-15 §8.3.3.1).
type DecoderConfigurationRecord struct {
	ConfigurationVersion uint8
	GeneralProfileSpace  uint8
	GeneralTierFlag      bool
	GeneralProfileIDC    uint8
	ChromaFormatIDC      uint8
	BitDepthLumaMinus8   uint8
	BitDepthChromaMinus8 uint8
	LengthSizeMinusOne   uint8
	NaluArrays           []NaluArray
}

// ParseHVCC parses the raw hvcC record bytes.
func ParseHVCC(b []byte) (*DecoderConfigurationRecord, error) {
	const op = "hevcdec.ParseHVCC"
	if len(b) < 23 {
		return nil, heicerr.New(op, heicerr.Truncated)
	}
	r := &DecoderConfigurationRecord{
		ConfigurationVersion: b[0],
		GeneralProfileSpace:  b[1] >> 6,
		GeneralTierFlag:      (b[1]>>5)&0x01 != 0,
		GeneralProfileIDC:    b[1] & 0x1f,
		ChromaFormatIDC:      b[16] & 0x03,
		BitDepthLumaMinus8:   b[17] & 0x07,
		BitDepthChromaMinus8: b[18] & 0x07,
		LengthSizeMinusOne:   b[21] & 0x03,
	}
	numArrays := int(b[22])
	off := 23
	for i := 0; i < numArrays; i++ {
		if off+3 > len(b) {
			return nil, heicerr.New(op, heicerr.Truncated)
		}
		arr := NaluArray{
			ArrayCompleteness: b[off]&0x80 != 0,
			NALUnitType:       int(b[off] & 0x3f),
		}
		count := int(binary.BigEndian.Uint16(b[off+1 : off+3]))
		off += 3
		for j := 0; j < count; j++ {
			if off+2 > len(b) {
				return nil, heicerr.New(op, heicerr.Truncated)
			}
			n := int(binary.BigEndian.Uint16(b[off : off+2]))
			off += 2
			if off+n > len(b) {
				return nil, heicerr.New(op, heicerr.Truncated)
			}
			arr.NALUs = append(arr.NALUs, b[off:off+n])
			off += n
		}
		r.NaluArrays = append(r.NaluArrays, arr)
	}
	return r, nil
}

// NALUsOfType returns the embedded NAL unit payloads of the given type,
// e.g. NalSPS, in record order.
func (r *DecoderConfigurationRecord) NALUsOfType(t int) [][]byte {
	var out [][]byte
	for _, arr := range r.NaluArrays {
		if arr.NALUnitType == t {
			out = append(out, arr.NALUs...)
		}
	}
	return out
}

// LengthSize returns the byte width of the length field prefixing each NAL
// unit in samples governed by this record.
func (r *DecoderConfigurationRecord) LengthSize() int {
	return int(r.LengthSizeMinusOne) + 1
}
