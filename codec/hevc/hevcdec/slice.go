package hevcdec

import (
	"github.com/ausocean/heic/internal/bits"
	"github.com/ausocean/heic/internal/heicerr"
)

// isSupportedIRAP reports whether a NAL unit type is an IDR slice, the only
// IRAP class this core parses in full. Non-IDR IRAP types (CRA, BLA) carry
// slice_pic_order_cnt_lsb and short_term_ref_pic_set() fields ahead of the
// SAO/QP fields that this core does not parse, so they are rejected as
// Unsupported rather than mis-aligned.
func isSupportedIRAP(nalType int) bool {
	return nalType == NalIDRW || nalType == NalIDRN
}

// SliceHeader holds the slice header fields this core consumes (H.265
// §7.3.6.1).
type SliceHeader struct {
	FirstSliceSegmentInPicFlag           bool
	PPSID                                int
	SliceSAOLumaFlag                     bool
	SliceSAOChromaFlag                   bool
	SliceQP                              int
	DeblockingFilterDisabledFlag         bool
	BetaOffsetDiv2                       int
	TcOffsetDiv2                         int
	LoopFilterAcrossSlicesEnabledFlag    bool
}

// ParseSliceHeader parses a slice segment header RBSP payload (NAL header
// already stripped) given the NAL unit type and the active SPS/PPS.
//
// This core decodes one IDR slice per picture (the IDR subset of IRAP), so
// reference picture set signalling and P/B-slice fields never appear on
// that path and are not parsed. Non-IDR IRAP types (CRA, BLA) carry
// slice_pic_order_cnt_lsb/short_term_ref_pic_set fields this core does not
// parse and are rejected as Unsupported rather than silently mis-parsed.
func ParseSliceHeader(rbsp []byte, nalType int, sps *SPS, pps *PPS) (*SliceHeader, error) {
	const op = "hevcdec.ParseSliceHeader"
	if !isSupportedIRAP(nalType) {
		return nil, heicerr.New(op, heicerr.Unsupported)
	}

	br := bits.NewReader(rbsp)
	r := newFieldReader(br)

	h := &SliceHeader{}
	h.FirstSliceSegmentInPicFlag = r.readFlag()
	r.readBits(1) // no_output_of_prior_pics_flag
	h.PPSID = int(r.readUe())

	if !h.FirstSliceSegmentInPicFlag {
		return nil, heicerr.New(op, heicerr.Unsupported)
	}

	for i := 0; i < pps.NumExtraSliceHeaderBits; i++ {
		r.readBits(1) // slice_reserved_flag[i]
	}
	r.readUe() // slice_type (I slice expected; value not load-bearing here)
	if pps.OutputFlagPresentFlag {
		r.readBits(1) // pic_output_flag
	}

	if sps.SampleAdaptiveOffsetEnabledFlag {
		h.SliceSAOLumaFlag = r.readFlag()
		h.SliceSAOChromaFlag = r.readFlag() // ChromaArrayType != 0 always holds: this core is 4:2:0-only.
	}

	qpDelta := int(r.readSe())
	h.SliceQP = 26 + qpDelta // init_qp_minus26 folded in by caller via pps if needed; base is relative here.

	h.LoopFilterAcrossSlicesEnabledFlag = pps.LoopFilterAcrossSlicesEnabledFlag
	h.DeblockingFilterDisabledFlag = pps.PpsDeblockingFilterDisabledFlag
	h.BetaOffsetDiv2 = pps.BetaOffsetDiv2
	h.TcOffsetDiv2 = pps.TcOffsetDiv2

	if pps.DeblockingFilterOverrideEnabledFlag {
		override := r.readFlag()
		if override {
			h.DeblockingFilterDisabledFlag = r.readFlag()
			if !h.DeblockingFilterDisabledFlag {
				h.BetaOffsetDiv2 = int(r.readSe())
				h.TcOffsetDiv2 = int(r.readSe())
			}
		}
	}

	if pps.LoopFilterAcrossSlicesEnabledFlag {
		h.LoopFilterAcrossSlicesEnabledFlag = r.readFlag()
	}

	if err := r.err(); err != nil {
		return nil, heicerr.Wrap(op, heicerr.Truncated, err)
	}
	return h, nil
}
