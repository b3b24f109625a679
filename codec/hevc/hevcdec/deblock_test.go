package hevcdec

import "testing"

// TestFilterLumaPairStrong mirrors the bS=2 strong filter scenario: a
// vertical edge with P = [100,100,100,100], Q = [120,120,120,120], tc = 10
// must yield delta = clamp(20,-10,10) = 10, P' = 105, Q' = 115.
func TestFilterLumaPairStrong(t *testing.T) {
	f := NewFrame(2, 4)
	for row := 0; row < 4; row++ {
		f.Set(PlaneY, row, 0, 100)
		f.Set(PlaneY, row, 1, 120)
	}
	for row := 0; row < 4; row++ {
		filterLumaPair(f, row, 0, row, 1, 10, true)
	}
	for row := 0; row < 4; row++ {
		if got := f.At(PlaneY, row, 0); got != 105 {
			t.Errorf("row %d: P' = %d, want 105", row, got)
		}
		if got := f.At(PlaneY, row, 1); got != 115 {
			t.Errorf("row %d: Q' = %d, want 115", row, got)
		}
	}
}

// TestFilterLumaPairWeak mirrors the bS=1 weak filter scenario: the same
// samples and tc, but delta = clamp(9*20/16,-10,10) = clamp(11,-10,10) =
// 10, giving P' = 110, Q' = 110.
func TestFilterLumaPairWeak(t *testing.T) {
	f := NewFrame(2, 4)
	for row := 0; row < 4; row++ {
		f.Set(PlaneY, row, 0, 100)
		f.Set(PlaneY, row, 1, 120)
	}
	for row := 0; row < 4; row++ {
		filterLumaPair(f, row, 0, row, 1, 10, false)
	}
	for row := 0; row < 4; row++ {
		if got := f.At(PlaneY, row, 0); got != 110 {
			t.Errorf("row %d: P' = %d, want 110", row, got)
		}
		if got := f.At(PlaneY, row, 1); got != 110 {
			t.Errorf("row %d: Q' = %d, want 110", row, got)
		}
	}
}

// TestDeblockSkipsBSZero exercises the bS=0 path end to end: both sides
// inter with no non-zero coefficients, so the whole picture must be
// byte-identical before and after Deblock.
func TestDeblockSkipsBSZero(t *testing.T) {
	sps := &SPS{
		PicWidthInLumaSamples:             16,
		PicHeightInLumaSamples:             16,
		Log2MinLumaCodingBlockSizeMinus3:   0,
		Log2DiffMaxMinLumaCodingBlockSize:  1, // CTB = 16
	}
	pps := &PPS{}
	sh := &SliceHeader{LoopFilterAcrossSlicesEnabledFlag: true}
	frame := NewFrame(16, 16)
	for i := range frame.Y {
		frame.Y[i] = 100
	}
	metadata := NewMetadata(16, 16) // all PredInter, all NonZeroCoeff false.
	before := frame.Clone()

	Deblock(frame, sps, pps, sh, metadata)

	for i := range frame.Y {
		if frame.Y[i] != before.Y[i] {
			t.Fatalf("luma sample %d changed from %d to %d with bS=0 everywhere", i, before.Y[i], frame.Y[i])
		}
	}
}

// TestDeblockNoopWhenDisabled verifies slice_deblocking_filter_disabled_flag
// makes Deblock a full no-op even where boundary strengths would otherwise
// be non-zero.
func TestDeblockNoopWhenDisabled(t *testing.T) {
	sps := &SPS{
		PicWidthInLumaSamples:             16,
		PicHeightInLumaSamples:             16,
		Log2MinLumaCodingBlockSizeMinus3:   0,
		Log2DiffMaxMinLumaCodingBlockSize:  1,
	}
	pps := &PPS{}
	sh := &SliceHeader{DeblockingFilterDisabledFlag: true}
	frame := NewFrame(16, 16)
	for i := range frame.Y {
		frame.Y[i] = 100
	}
	metadata := NewMetadata(16, 16)
	for i := range metadata.PredMode {
		metadata.PredMode[i] = PredIntra // would otherwise force bS=2 everywhere.
	}
	before := frame.Clone()

	Deblock(frame, sps, pps, sh, metadata)

	for i := range frame.Y {
		if frame.Y[i] != before.Y[i] {
			t.Fatalf("luma sample %d changed despite DeblockingFilterDisabledFlag", i)
		}
	}
}

// TestFilterChromaPairGate mirrors the chroma-gate scenario: bS=1 on a TU
// boundary (luma weak filter territory) must leave chroma untouched, since
// filterChromaEdges only ever calls filterChromaPair when bS == 2.
func TestFilterChromaPairGate(t *testing.T) {
	sps := &SPS{
		PicWidthInLumaSamples:             16,
		PicHeightInLumaSamples:             16,
		Log2MinLumaCodingBlockSizeMinus3:   0,
		Log2DiffMaxMinLumaCodingBlockSize:  1,
	}
	pps := &PPS{}
	sh := &SliceHeader{LoopFilterAcrossSlicesEnabledFlag: true}
	frame := NewFrame(16, 16)
	for i := range frame.Cb {
		frame.Cb[i] = 128
		frame.Cr[i] = 128
	}
	metadata := NewMetadata(16, 16)
	// Force bS=1 (not 2) at every cell: non-zero coefficients, no intra.
	for i := range metadata.NonZeroCoeff {
		metadata.NonZeroCoeff[i] = true
	}
	beforeCb := append([]uint16(nil), frame.Cb...)
	beforeCr := append([]uint16(nil), frame.Cr...)

	Deblock(frame, sps, pps, sh, metadata)

	for i := range frame.Cb {
		if frame.Cb[i] != beforeCb[i] || frame.Cr[i] != beforeCr[i] {
			t.Fatalf("chroma sample %d changed despite bS=1 (chroma only filters at bS=2)", i)
		}
	}
}

// TestLumaWindowInBoundsRejectsPartialWindow verifies that a 4-sample
// window skips as a whole when any one of its four pairs would read
// outside the plane, rather than filtering only the in-range rows.
func TestLumaWindowInBoundsRejectsPartialWindow(t *testing.T) {
	f := NewFrame(4, 3) // height 3: a vertical window at y=0 spans rows 0..3, one out of range.
	if lumaWindowInBounds(f, 0, 0, 0, 1, true) {
		t.Error("expected a window with an out-of-range row to be rejected")
	}
	f2 := NewFrame(4, 4)
	if !lumaWindowInBounds(f2, 0, 0, 0, 1, true) {
		t.Error("expected a fully in-range window to be accepted")
	}
}

// TestFilterChromaPairStrong exercises the chroma strong-filter formula
// directly: δ = clamp((q0-p0)/2, -tc, tc) = clamp(10,-10,10) = 10, giving
// P' = 110, Q' = 110.
func TestFilterChromaPairStrong(t *testing.T) {
	f := NewFrame(4, 4)
	f.Set(PlaneCb, 0, 0, 100)
	f.Set(PlaneCb, 0, 1, 120)
	filterChromaPair(f, PlaneCb, 0, 0, 0, 1, 10)
	if got := f.At(PlaneCb, 0, 0); got != 110 {
		t.Errorf("P' = %d, want 110", got)
	}
	if got := f.At(PlaneCb, 0, 1); got != 110 {
		t.Errorf("Q' = %d, want 110", got)
	}
}
