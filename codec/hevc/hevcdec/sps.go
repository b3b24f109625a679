package hevcdec

import (
	"github.com/ausocean/heic/internal/bits"
	"github.com/ausocean/heic/internal/heicerr"
)

// Supported chroma formats. This core only decodes 4:2:0.
const chroma420 = 1

// SPS holds the sequence parameter set fields this core consumes (H.265
// §7.3.2.2). Syntax elements with no downstream use ahead of
// sample_adaptive_offset_enabled_flag (profile/tier/level, scaling lists)
// are parsed far enough to stay bitstream-aligned and then discarded rather
// than stored. Parsing stops at that flag; the short-term reference picture
// sets, VUI and later fields are not read.
type SPS struct {
	ID                                 int
	ChromaFormatIDC                    int
	PicWidthInLumaSamples               int
	PicHeightInLumaSamples              int
	ConformanceWindowFlag               bool
	ConfWinLeftOffset                   int
	ConfWinRightOffset                  int
	ConfWinTopOffset                    int
	ConfWinBottomOffset                 int
	BitDepthLumaMinus8                  int
	BitDepthChromaMinus8                int
	Log2MinLumaCodingBlockSizeMinus3    int
	Log2DiffMaxMinLumaCodingBlockSize   int
	SampleAdaptiveOffsetEnabledFlag     bool
}

// CTBSize returns the coding tree block side length in luma samples.
func (s *SPS) CTBSize() int {
	return 1 << uint(s.Log2MinLumaCodingBlockSizeMinus3+3+s.Log2DiffMaxMinLumaCodingBlockSize)
}

// CropWidthOrFull returns the conformance-cropped picture width, or the
// full luma width if no conformance window is signalled.
func (s *SPS) CropWidthOrFull() int {
	if !s.ConformanceWindowFlag {
		return s.PicWidthInLumaSamples
	}
	const subW = 2
	return s.PicWidthInLumaSamples - (s.ConfWinLeftOffset+s.ConfWinRightOffset)*subW
}

// CropHeightOrFull returns the conformance-cropped picture height, or the
// full luma height if no conformance window is signalled.
func (s *SPS) CropHeightOrFull() int {
	if !s.ConformanceWindowFlag {
		return s.PicHeightInLumaSamples
	}
	const subH = 2
	return s.PicHeightInLumaSamples - (s.ConfWinTopOffset+s.ConfWinBottomOffset)*subH
}

// BitDepthLuma returns the luma sample bit depth.
func (s *SPS) BitDepthLuma() int { return s.BitDepthLumaMinus8 + 8 }

// ParseSPS parses an SPS RBSP payload (NAL header already stripped).
func ParseSPS(rbsp []byte) (*SPS, error) {
	const op = "hevcdec.ParseSPS"
	br := bits.NewReader(rbsp)
	r := newFieldReader(br)

	r.readBits(4) // sps_video_parameter_set_id
	maxSubLayersMinus1 := int(r.readBits(3))
	r.readBits(1) // sps_temporal_id_nesting_flag
	parseProfileTierLevel(r, maxSubLayersMinus1)

	s := &SPS{}
	s.ID = int(r.readUe())
	s.ChromaFormatIDC = int(r.readUe())
	if s.ChromaFormatIDC == 3 {
		r.readBits(1) // separate_colour_plane_flag
	}
	s.PicWidthInLumaSamples = int(r.readUe())
	s.PicHeightInLumaSamples = int(r.readUe())
	s.ConformanceWindowFlag = r.readFlag()
	if s.ConformanceWindowFlag {
		s.ConfWinLeftOffset = int(r.readUe())
		s.ConfWinRightOffset = int(r.readUe())
		s.ConfWinTopOffset = int(r.readUe())
		s.ConfWinBottomOffset = int(r.readUe())
	}
	s.BitDepthLumaMinus8 = int(r.readUe())
	s.BitDepthChromaMinus8 = int(r.readUe())
	r.readUe() // log2_max_pic_order_cnt_lsb_minus4

	subLayerOrderingPresent := r.readFlag()
	start := maxSubLayersMinus1
	if subLayerOrderingPresent {
		start = 0
	}
	for i := start; i <= maxSubLayersMinus1; i++ {
		r.readUe() // sps_max_dec_pic_buffering_minus1
		r.readUe() // sps_max_num_reorder_pics
		r.readUe() // sps_max_latency_increase_plus1
	}

	s.Log2MinLumaCodingBlockSizeMinus3 = int(r.readUe())
	s.Log2DiffMaxMinLumaCodingBlockSize = int(r.readUe())
	r.readUe() // log2_min_luma_transform_block_size_minus2
	r.readUe() // log2_diff_max_min_luma_transform_block_size
	r.readUe() // max_transform_hierarchy_depth_inter
	r.readUe() // max_transform_hierarchy_depth_intra

	scalingListEnabled := r.readFlag()
	if scalingListEnabled {
		scalingListDataPresent := r.readFlag()
		if scalingListDataPresent {
			parseScalingListData(r)
		}
	}
	r.readBits(1) // amp_enabled_flag
	s.SampleAdaptiveOffsetEnabledFlag = r.readFlag()

	if err := r.err(); err != nil {
		return nil, heicerr.Wrap(op, heicerr.Truncated, err)
	}

	if s.ChromaFormatIDC != chroma420 {
		return nil, heicerr.New(op, heicerr.Unsupported)
	}
	if s.BitDepthLuma() != 8 || s.BitDepthChromaMinus8+8 != 8 {
		return nil, heicerr.New(op, heicerr.Unsupported)
	}
	if s.PicWidthInLumaSamples <= 0 || s.PicHeightInLumaSamples <= 0 {
		return nil, heicerr.New(op, heicerr.Malformed)
	}
	ctb := s.CTBSize()
	if ctb != 16 && ctb != 32 && ctb != 64 {
		return nil, heicerr.New(op, heicerr.Malformed)
	}
	return s, nil
}

// parseScalingListData consumes the scaling_list_data() syntax structure
// (H.265 §7.3.4) so that later SPS fields (amp_enabled_flag,
// sample_adaptive_offset_enabled_flag) are read from the correct bit
// offset. The decoded scaling lists themselves have no use in this core,
// since it does not perform the inverse transform.
func parseScalingListData(r *fieldReader) {
	for sizeID := 0; sizeID < 4; sizeID++ {
		step := 1
		if sizeID == 3 {
			step = 3
		}
		for matrixID := 0; matrixID < 6; matrixID += step {
			predModeFlag := r.readFlag()
			if !predModeFlag {
				r.readUe() // scaling_list_pred_matrix_id_delta
				continue
			}
			coefNum := 64
			if n := 1 << uint(4+sizeID*2); n < coefNum {
				coefNum = n
			}
			if sizeID > 1 {
				r.readSe() // scaling_list_dc_coef_minus8
			}
			for i := 0; i < coefNum; i++ {
				r.readSe() // scaling_list_delta_coef
			}
		}
	}
}

// parseProfileTierLevel consumes the fixed-layout profile/tier/level
// structure (H.265 §7.3.3) ahead of the fields this core needs. Its values
// are not retained: this core doesn't gate on profile or level.
func parseProfileTierLevel(r *fieldReader, maxSubLayersMinus1 int) {
	r.readBits(2)  // general_profile_space
	r.readBits(1)  // general_tier_flag
	r.readBits(5)  // general_profile_idc
	r.readBits(32) // general_profile_compatibility_flag[32]
	r.readBits(48) // general_*_constraint_flag + reserved (48 bits total)
	r.readBits(8)  // general_level_idc

	profilePresent := make([]bool, maxSubLayersMinus1)
	levelPresent := make([]bool, maxSubLayersMinus1)
	for i := 0; i < maxSubLayersMinus1; i++ {
		profilePresent[i] = r.readFlag()
		levelPresent[i] = r.readFlag()
	}
	if maxSubLayersMinus1 > 0 {
		for i := maxSubLayersMinus1; i < 8; i++ {
			r.readBits(2) // reserved_zero_2bits
		}
	}
	for i := 0; i < maxSubLayersMinus1; i++ {
		if profilePresent[i] {
			r.readBits(2)
			r.readBits(1)
			r.readBits(5)
			r.readBits(32)
			r.readBits(48)
		}
		if levelPresent[i] {
			r.readBits(8)
		}
	}
}
