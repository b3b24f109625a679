package hevcdec

import "testing"

func buildMinimalHVCC(spsPayload, ppsPayload []byte) []byte {
	b := make([]byte, 23)
	b[0] = 1                      // configurationVersion
	b[1] = 0<<6 | 0<<5 | 1         // profile_space=0, tier=0, profile_idc=1
	b[16] = 1                      // chroma_format_idc = 4:2:0
	b[17] = 0                      // bit_depth_luma_minus8
	b[18] = 0                      // bit_depth_chroma_minus8
	b[21] = 3                      // length_size_minus_one = 3 -> 4-byte lengths
	b[22] = 2                      // numOfArrays

	appendArray := func(dst []byte, nalType int, payload []byte) []byte {
		dst = append(dst, byte(nalType&0x3f))
		dst = append(dst, 0x00, 0x01) // numNalus = 1
		n := len(payload)
		dst = append(dst, byte(n>>8), byte(n))
		dst = append(dst, payload...)
		return dst
	}
	b = appendArray(b, NalSPS, spsPayload)
	b = appendArray(b, NalPPS, ppsPayload)
	return b
}

func TestParseHVCC(t *testing.T) {
	spsNAL := []byte{0x42, 0x01, 0xaa, 0xbb}
	ppsNAL := []byte{0x44, 0x01, 0xcc}
	rec, err := ParseHVCC(buildMinimalHVCC(spsNAL, ppsNAL))
	if err != nil {
		t.Fatalf("ParseHVCC failed: %v", err)
	}
	if rec.ChromaFormatIDC != 1 {
		t.Errorf("ChromaFormatIDC = %d, want 1", rec.ChromaFormatIDC)
	}
	if rec.LengthSize() != 4 {
		t.Errorf("LengthSize() = %d, want 4", rec.LengthSize())
	}
	spsNALUs := rec.NALUsOfType(NalSPS)
	if len(spsNALUs) != 1 {
		t.Fatalf("got %d SPS NALUs, want 1", len(spsNALUs))
	}
	if string(spsNALUs[0]) != string(spsNAL) {
		t.Errorf("SPS NALU mismatch: got %v, want %v", spsNALUs[0], spsNAL)
	}
	ppsNALUs := rec.NALUsOfType(NalPPS)
	if len(ppsNALUs) != 1 || string(ppsNALUs[0]) != string(ppsNAL) {
		t.Errorf("PPS NALU mismatch: got %v", ppsNALUs)
	}
}

func TestParseHVCCTruncated(t *testing.T) {
	if _, err := ParseHVCC(make([]byte, 10)); err == nil {
		t.Error("expected ParseHVCC to fail on a header shorter than 23 bytes")
	}
}
