package hevcdec

import (
	"github.com/ausocean/heic/internal/bits"
	"github.com/ausocean/heic/internal/heicerr"
)

// PPS holds the picture parameter set fields this core consumes (H.265
// §7.3.2.3). Tiling fields are parsed far enough to stay bitstream-aligned
// (tiles are not modelled by this core) and discarded. Parsing stops after
// the deblocking offsets; the scaling-list and later fields are not read.
type PPS struct {
	ID                                   int
	SPSID                                int
	NumExtraSliceHeaderBits              int
	OutputFlagPresentFlag                bool
	CuQpDeltaEnabledFlag                 bool
	LoopFilterAcrossSlicesEnabledFlag    bool
	DeblockingFilterControlPresentFlag   bool
	DeblockingFilterOverrideEnabledFlag  bool
	PpsDeblockingFilterDisabledFlag      bool
	BetaOffsetDiv2                       int
	TcOffsetDiv2                         int
}

// ParsePPS parses a PPS RBSP payload (NAL header already stripped).
func ParsePPS(rbsp []byte) (*PPS, error) {
	const op = "hevcdec.ParsePPS"
	br := bits.NewReader(rbsp)
	r := newFieldReader(br)

	p := &PPS{}
	p.ID = int(r.readUe())
	p.SPSID = int(r.readUe())
	r.readBits(1) // dependent_slice_segments_enabled_flag
	p.OutputFlagPresentFlag = r.readFlag()
	p.NumExtraSliceHeaderBits = int(r.readBits(3))
	r.readBits(1) // sign_data_hiding_enabled_flag
	r.readBits(1) // cabac_init_present_flag
	r.readUe()    // num_ref_idx_l0_default_active_minus1
	r.readUe()    // num_ref_idx_l1_default_active_minus1
	r.readSe()    // init_qp_minus26
	r.readBits(1) // constrained_intra_pred_flag
	r.readBits(1) // transform_skip_enabled_flag
	p.CuQpDeltaEnabledFlag = r.readFlag()
	if p.CuQpDeltaEnabledFlag {
		r.readUe() // diff_cu_qp_delta_depth
	}
	r.readSe()    // pps_cb_qp_offset
	r.readSe()    // pps_cr_qp_offset
	r.readBits(1) // pps_slice_chroma_qp_offsets_present_flag
	r.readBits(1) // weighted_pred_flag
	r.readBits(1) // weighted_bipred_flag
	r.readBits(1) // transquant_bypass_enabled_flag
	tilesEnabled := r.readFlag()
	r.readBits(1) // entropy_coding_sync_enabled_flag
	if tilesEnabled {
		numTileColumnsMinus1 := int(r.readUe())
		numTileRowsMinus1 := int(r.readUe())
		uniform := r.readFlag()
		if !uniform {
			for i := 0; i < numTileColumnsMinus1; i++ {
				r.readUe()
			}
			for i := 0; i < numTileRowsMinus1; i++ {
				r.readUe()
			}
		}
		r.readBits(1) // loop_filter_across_tiles_enabled_flag
	}
	p.LoopFilterAcrossSlicesEnabledFlag = r.readFlag()
	p.DeblockingFilterControlPresentFlag = r.readFlag()
	if p.DeblockingFilterControlPresentFlag {
		p.DeblockingFilterOverrideEnabledFlag = r.readFlag()
		p.PpsDeblockingFilterDisabledFlag = r.readFlag()
		if !p.PpsDeblockingFilterDisabledFlag {
			p.BetaOffsetDiv2 = int(r.readSe())
			p.TcOffsetDiv2 = int(r.readSe())
		}
	}

	if err := r.err(); err != nil {
		return nil, heicerr.Wrap(op, heicerr.Truncated, err)
	}
	return p, nil
}
